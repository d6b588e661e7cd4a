package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"shelf-scan/api/internal/catalog"
	"shelf-scan/api/internal/store"
)

const maxKeyboardRows = 8

func makeDetectionKeyboard(dets []store.Detection) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(dets))
	for _, d := range dets {
		if len(rows) == maxKeyboardRows {
			break
		}
		btn := tgbotapi.NewInlineKeyboardButtonData(truncate(d.Label, 40), "cand:"+d.ID)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func makeCandidateKeyboard(detectionID string, cands []catalog.Candidate) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(cands))
	for i := range cands {
		if len(rows) == maxKeyboardRows {
			break
		}
		btn := tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("res:%s:%d", detectionID, i),
		)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func formatCandidates(cands []catalog.Candidate) string {
	var b strings.Builder
	for i, c := range cands {
		if i == maxKeyboardRows {
			break
		}
		fmt.Fprintf(&b, "%d. %s — %s", i+1, c.BrandName, c.ProductName)
		if c.GTIN != "" {
			fmt.Fprintf(&b, " (GTIN %s)", c.GTIN)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
