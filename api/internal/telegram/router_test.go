package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

// Коллбэк без Message (inline-режим, сообщение старше 48ч) — валидный апдейт;
// он должен тихо игнорироваться, а не ронять процесс поллинга.
func TestHandleUpdate_CallbackWithoutMessageIsIgnored(t *testing.T) {
	r := &Router{}
	upd := tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{ID: "cb-1", Data: "cand:det-1"},
	}
	assert.NotPanics(t, func() { r.HandleUpdate(upd) })
}

func TestHandleUpdate_EmptyUpdateIsIgnored(t *testing.T) {
	r := &Router{}
	assert.NotPanics(t, func() { r.HandleUpdate(tgbotapi.Update{}) })
}
