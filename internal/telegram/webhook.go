package telegram

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"huparfum-backend/internal/db"
	"huparfum-backend/internal/logger"
	"huparfum-backend/internal/notify"
)

// Messenger is the slice of the Telegram notifier the webhook needs.
type Messenger interface {
	NotifyUser(chatID int64, text string) error
	AlertOps(text string) error
}

// Webhook handles updates pushed by the Telegram Bot API. It is
// stateless: every update is resolved against the database alone.
type Webhook struct {
	store *db.Store
	codec *LinkCodec
	tg    Messenger
}

func NewWebhook(store *db.Store, codec *LinkCodec, tg Messenger) *Webhook {
	return &Webhook{store: store, codec: codec, tg: tg}
}

// Handle is the gin handler for POST /api/telegram/webhook. Telegram
// retries deliveries that do not answer 200, so every recognized shape
// is acknowledged with {ok:true} even when nothing was done.
func (h *Webhook) Handle(c *gin.Context) {
	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false})
		return
	}

	if update.Message != nil && update.Message.Text != "" {
		chatID := update.Message.Chat.ID
		username := ""
		if update.Message.From != nil {
			username = update.Message.From.UserName
		}
		text := strings.TrimSpace(update.Message.Text)

		switch {
		case text == "/start":
			h.sendToUser(chatID, notify.Welcome())
		case strings.HasPrefix(text, "/start "):
			token := strings.TrimSpace(strings.TrimPrefix(text, "/start "))
			h.handleLink(chatID, username, token)
		case text == "/status":
			h.handleStatus(chatID)
		}
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// handleLink resolves a /start deep-link token. Re-running the same
// token for an already-linked pair is a no-op: the confirmation is not
// re-sent.
func (h *Webhook) handleLink(chatID int64, username, token string) {
	payload, err := h.codec.Decode(token)
	if err != nil {
		h.sendToUser(chatID, "⚠️ رابط الربط غير صالح أو منتهي الصلاحية.")
		return
	}

	order, err := h.store.OrderByID(payload.OrderID)
	if err != nil || order.UserID != payload.UserID {
		h.sendToUser(chatID, "⚠️ رابط الربط غير صالح أو منتهي الصلاحية.")
		return
	}

	user := &order.User
	if order.TelegramLinked && user.TelegramChatID != nil && *user.TelegramChatID == chatID {
		return
	}

	if err := h.store.LinkTelegram(user.ID, order.ID, chatID, username); err != nil {
		logger.Error("telegram link failed", zap.Error(err), zap.Uint("order_id", order.ID))
		h.sendToUser(chatID, "⚠️ تعذر إتمام الربط، حاول مجدداً لاحقاً.")
		return
	}
	user.TelegramUsername = username

	h.sendToUser(chatID, notify.LinkConfirmation(order))
	if err := h.tg.AlertOps(notify.LinkAlert(user, order)); err != nil {
		logger.NotifyFailure("telegram_ops", err, zap.Uint("order_id", order.ID))
	}
}

func (h *Webhook) handleStatus(chatID int64) {
	user, err := h.store.UserByTelegramChatID(chatID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.sendToUser(chatID, "لم يتم ربط حسابك بعد. استعمل رابط الربط من صفحة طلبك.")
		}
		return
	}
	orders, err := h.store.OrdersByUser(user.ID, 5)
	if err != nil {
		logger.Error("status lookup failed", zap.Error(err), zap.Uint("user_id", user.ID))
		return
	}
	h.sendToUser(chatID, notify.OrdersList(orders))
}

func (h *Webhook) sendToUser(chatID int64, text string) {
	if err := h.tg.NotifyUser(chatID, text); err != nil {
		logger.NotifyFailure("telegram_user", err, zap.Int64("chat_id", chatID))
	}
}
