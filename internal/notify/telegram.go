package notify

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram wraps the two bots: the user-facing one and the ops bot that
// alerts the admin chat. Either bot may be absent in development; sends
// to a missing bot are no-ops.
type Telegram struct {
	userBot   *tgbotapi.BotAPI
	opsBot    *tgbotapi.BotAPI
	opsChatID int64
}

func NewTelegram(userBot, opsBot *tgbotapi.BotAPI, opsChatID int64) *Telegram {
	return &Telegram{userBot: userBot, opsBot: opsBot, opsChatID: opsChatID}
}

// NotifyUser sends a message to a linked user chat via the user bot.
func (t *Telegram) NotifyUser(chatID int64, text string) error {
	if t.userBot == nil || chatID == 0 {
		return nil
	}
	_, err := t.userBot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// AlertOps sends a message to the fixed admin chat via the ops bot.
func (t *Telegram) AlertOps(text string) error {
	if t.opsBot == nil || t.opsChatID == 0 {
		return nil
	}
	_, err := t.opsBot.Send(tgbotapi.NewMessage(t.opsChatID, text))
	return err
}
