package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const interactiveTimeout = 10 * time.Second

// Данные callback:
//
//	cand:<detectionID>       — подобрать кандидатов для детекции
//	res:<detectionID>:<idx>  — зафиксировать кандидата по индексу рабочего
//	                           набора (два uuid не влезают в лимит 64 байта)
func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	// Message опционален (inline-режим, сообщения старше 48ч) — без него
	// коллбэк некуда адресовать
	if cb.Message == nil {
		return
	}
	cid := cb.Message.Chat.ID
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")) // ack

	switch {
	case strings.HasPrefix(cb.Data, "cand:"):
		r.onPickDetection(cid, strings.TrimPrefix(cb.Data, "cand:"))
	case strings.HasPrefix(cb.Data, "res:"):
		r.onPickCandidate(cid, cb.Message.MessageID, strings.TrimPrefix(cb.Data, "res:"))
	}
}

func (r *Router) onPickDetection(chatID int64, detectionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), interactiveTimeout)
	defer cancel()

	det, err := r.Detections.Get(ctx, detectionID)
	if err != nil {
		r.sendError(chatID, fmt.Errorf("детекция не найдена: %w", err))
		return
	}
	cands, err := r.Matcher.FindCandidates(ctx, det.Label, nil)
	if err != nil {
		r.sendError(chatID, err)
		return
	}
	if len(cands) == 0 {
		r.send(chatID, "Каталог не нашёл совпадений для «"+det.Label+"».")
		return
	}
	r.Resolver.Propose(det.ID, cands)

	out := tgbotapi.NewMessage(chatID, "Кандидаты для «"+det.Label+"»:\n"+formatCandidates(cands))
	out.ReplyMarkup = makeCandidateKeyboard(det.ID, cands)
	if _, err := r.Bot.Send(out); err != nil {
		r.sendError(chatID, err)
	}
}

func (r *Router) onPickCandidate(chatID int64, msgID int, data string) {
	i := strings.LastIndexByte(data, ':')
	if i <= 0 {
		return
	}
	detectionID := data[:i]
	idx, err := strconv.Atoi(data[i+1:])
	if err != nil {
		return
	}
	cands, ok := r.Resolver.Proposed(detectionID)
	if !ok || idx < 0 || idx >= len(cands) {
		r.send(chatID, "Контекст выбора устарел, подберите кандидатов заново.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactiveTimeout)
	defer cancel()

	_, match, err := r.Resolver.Resolve(ctx, detectionID, cands[idx].ID)
	if err != nil {
		r.sendError(chatID, err)
		return
	}

	// убрать клавиатуру
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, msgID, tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
	_, _ = r.Bot.Send(edit)

	r.send(chatID, fmt.Sprintf("✅ Зафиксировано: %s — %s (GTIN %s, %s)",
		match.BrandName, match.ProductName, match.GTIN, match.Category))
}
