package telegram

import (
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"shelf-scan/api/internal/catalog"
	"shelf-scan/api/internal/resolve"
	"shelf-scan/api/internal/store"
	"shelf-scan/api/internal/vision"
)

// Router — операторский фронт поверх того же конвейера, что и HTTP API:
// фото полки → детекции → клавиатура кандидатов → резолв по тапу.
type Router struct {
	Bot        *tgbotapi.BotAPI
	Engine     vision.Engine
	Matcher    catalog.Matcher
	Images     *store.ImageRepo
	Detections *store.DetectionRepo
	Resolver   *resolve.Resolver
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	switch {
	case upd.CallbackQuery != nil:
		r.handleCallback(*upd.CallbackQuery)
	case upd.Message == nil:
		return
	case upd.Message.IsCommand():
		r.handleCommand(*upd.Message)
	case len(upd.Message.Photo) > 0:
		r.acceptPhoto(*upd.Message)
	default:
		r.send(upd.Message.Chat.ID, "Пришлите фото полки или товара — найду товары и предложу совпадения из каталога.")
	}
}

func (r *Router) handleCommand(msg tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start":
		r.send(cid, "Пришлите фото полки. Для каждого найденного товара предложу кандидатов из каталога; тап по кандидату фиксирует выбор.")
	case "health":
		r.send(cid, "✅ OK: "+r.Engine.Name()+" ("+r.Engine.GetModel()+")")
	default:
		r.send(cid, "Неизвестная команда")
	}
}

func (r *Router) send(chatID int64, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	if _, err := r.Bot.Send(m); err != nil {
		log.Printf("telegram send: %v", err)
	}
}

func (r *Router) sendError(chatID int64, err error) {
	r.send(chatID, "⚠️ "+strings.TrimSpace(err.Error()))
}
