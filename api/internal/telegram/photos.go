package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"shelf-scan/api/internal/util"
)

const detectTimeout = 90 * time.Second

func (r *Router) acceptPhoto(msg tgbotapi.Message) {
	cid := msg.Chat.ID
	ph := msg.Photo[len(msg.Photo)-1]
	file, err := r.Bot.GetFile(tgbotapi.FileConfig{FileID: ph.FileID})
	if err != nil {
		r.sendError(cid, err)
		return
	}
	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", r.Bot.Token, file.FilePath)
	img, err := download(url)
	if err != nil {
		r.sendError(cid, err)
		return
	}
	r.send(cid, "Принял фото, ищу товары…")

	ctx, cancel := context.WithTimeout(context.Background(), detectTimeout)
	defer cancel()

	dets, err := r.Engine.Detect(ctx, img, util.SniffMimeHTTP(img))
	if err != nil {
		r.sendError(cid, err)
		return
	}
	if len(dets) == 0 {
		r.send(cid, "Товары на фото не найдены.")
		return
	}

	imgRef, err := r.Images.Insert(ctx, "sha256:"+util.SHA256Hex(img))
	if err != nil {
		r.sendError(cid, err)
		return
	}
	rows, err := r.Detections.InsertBatch(ctx, imgRef.ID, dets)
	if err != nil {
		r.sendError(cid, err)
		return
	}

	out := tgbotapi.NewMessage(cid, fmt.Sprintf("Нашёл %d товар(ов). Выберите, для какого подобрать совпадения:", len(rows)))
	out.ReplyMarkup = makeDetectionKeyboard(rows)
	if _, err := r.Bot.Send(out); err != nil {
		r.sendError(cid, err)
	}
}

func download(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(resp.Body)
}
