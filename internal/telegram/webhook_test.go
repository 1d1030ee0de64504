package telegram

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"huparfum-backend/internal/db"
)

type messengerRecorder struct {
	userMessages []string
	opsMessages  []string
}

func (m *messengerRecorder) NotifyUser(_ int64, text string) error {
	m.userMessages = append(m.userMessages, text)
	return nil
}

func (m *messengerRecorder) AlertOps(text string) error {
	m.opsMessages = append(m.opsMessages, text)
	return nil
}

func newTestWebhook(t *testing.T) (*gin.Engine, *db.Store, *LinkCodec, *messengerRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	g, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	store := db.NewStore(g)
	require.NoError(t, store.AutoMigrate())

	codec := NewLinkCodec("webhook-test-secret", "huparfum_bot")
	tg := &messengerRecorder{}

	r := gin.New()
	r.POST("/api/telegram/webhook", NewWebhook(store, codec, tg).Handle)
	return r, store, codec, tg
}

func seedOrder(t *testing.T, store *db.Store) (*db.User, *db.Order) {
	t.Helper()
	u := &db.User{Name: "Amina", Phone: "0550000001", Email: "amina@example.com", Password: "x"}
	require.NoError(t, store.CreateUser(u))
	p := &db.Product{Name: "Oud Royal", Price: decimal.NewFromInt(4500), Stock: 10}
	require.NoError(t, store.CreateProduct(p))
	o := &db.Order{UserID: u.ID, ProductID: p.ID, Quantity: 1, Status: db.StatusRequested}
	require.NoError(t, store.CreateOrder(o))
	return u, o
}

func postUpdate(t *testing.T, r *gin.Engine, chatID int64, text string) *httptest.ResponseRecorder {
	t.Helper()
	body := fmt.Sprintf(`{
		"update_id": 1,
		"message": {
			"message_id": 1,
			"from": {"id": %d, "is_bot": false, "first_name": "Amina", "username": "amina_dz"},
			"chat": {"id": %d, "type": "private"},
			"date": 1700000000,
			"text": %q
		}
	}`, chatID, chatID, text)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/telegram/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookStartWithToken(t *testing.T) {
	r, store, codec, tg := newTestWebhook(t)
	u, o := seedOrder(t, store)

	token, err := codec.Encode(u.ID, o.ID, time.Hour)
	require.NoError(t, err)

	w := postUpdate(t, r, 777001, "/start "+token)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"ok":true}`, w.Body.String())

	linked, err := store.UserByTelegramChatID(777001)
	require.NoError(t, err)
	require.Equal(t, u.ID, linked.ID)
	require.Equal(t, "amina_dz", linked.TelegramUsername)

	order, err := store.OrderByID(o.ID)
	require.NoError(t, err)
	require.True(t, order.TelegramLinked)

	require.Len(t, tg.userMessages, 1)
	require.Len(t, tg.opsMessages, 1)
}

func TestWebhookStartTokenIdempotent(t *testing.T) {
	r, store, codec, tg := newTestWebhook(t)
	u, o := seedOrder(t, store)
	token, err := codec.Encode(u.ID, o.ID, time.Hour)
	require.NoError(t, err)

	postUpdate(t, r, 777001, "/start "+token)
	userMsgs, opsMsgs := len(tg.userMessages), len(tg.opsMessages)

	// Replaying the same token must not re-send the confirmation.
	w := postUpdate(t, r, 777001, "/start "+token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, tg.userMessages, userMsgs)
	require.Len(t, tg.opsMessages, opsMsgs)
}

func TestWebhookStartInvalidToken(t *testing.T) {
	r, store, _, tg := newTestWebhook(t)
	seedOrder(t, store)

	w := postUpdate(t, r, 777001, "/start not-a-token")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, tg.userMessages, 1)
	require.Empty(t, tg.opsMessages)

	_, err := store.UserByTelegramChatID(777001)
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestWebhookStartTokenWrongUser(t *testing.T) {
	r, store, codec, _ := newTestWebhook(t)
	_, o := seedOrder(t, store)

	// Token claims a user the order does not belong to.
	token, err := codec.Encode(9999, o.ID, time.Hour)
	require.NoError(t, err)
	postUpdate(t, r, 777001, "/start "+token)

	order, err := store.OrderByID(o.ID)
	require.NoError(t, err)
	require.False(t, order.TelegramLinked)
}

func TestWebhookBareStart(t *testing.T) {
	r, _, _, tg := newTestWebhook(t)
	w := postUpdate(t, r, 777001, "/start")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, tg.userMessages, 1)
}

func TestWebhookStatus(t *testing.T) {
	r, store, codec, tg := newTestWebhook(t)
	u, o := seedOrder(t, store)
	token, err := codec.Encode(u.ID, o.ID, time.Hour)
	require.NoError(t, err)
	postUpdate(t, r, 777001, "/start "+token)
	before := len(tg.userMessages)

	w := postUpdate(t, r, 777001, "/status")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, tg.userMessages, before+1)
	require.Contains(t, tg.userMessages[before], o.Reference)
}

func TestWebhookStatusUnlinked(t *testing.T) {
	r, _, _, tg := newTestWebhook(t)
	w := postUpdate(t, r, 123456, "/status")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, tg.userMessages, 1)
}

func TestWebhookIgnoresOtherUpdates(t *testing.T) {
	r, _, _, tg := newTestWebhook(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/telegram/webhook",
		strings.NewReader(`{"update_id": 7, "edited_message": null}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"ok":true}`, w.Body.String())
	require.Empty(t, tg.userMessages)
	require.Empty(t, tg.opsMessages)
}
