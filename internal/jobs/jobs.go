package jobs

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"huparfum-backend/internal/db"
	"huparfum-backend/internal/logger"
	"huparfum-backend/internal/notify"
)

// Messenger is the slice of the Telegram notifier the jobs need.
type Messenger interface {
	AlertOps(text string) error
}

// DailySummary returns the cron job that reports the last day's order
// counts by status to the ops chat.
func DailySummary(store *db.Store, tg Messenger) func() {
	return func() {
		counts, err := store.CountOrdersByStatusSince(time.Now().Add(-24 * time.Hour))
		if err != nil {
			logger.Error("daily summary failed", zap.Error(err))
			return
		}
		var b strings.Builder
		b.WriteString("📊 ملخص آخر 24 ساعة:\n")
		total := int64(0)
		for _, s := range []db.OrderStatus{
			db.StatusRequested, db.StatusUnderDiscussion, db.StatusPayed,
			db.StatusDelivering, db.StatusDelivered,
		} {
			if n := counts[s]; n > 0 {
				fmt.Fprintf(&b, "• %s: %d\n", notify.StatusLabel(s), n)
				total += n
			}
		}
		if total == 0 {
			b.WriteString("لا طلبات جديدة.")
		}
		if err := tg.AlertOps(b.String()); err != nil {
			logger.NotifyFailure("telegram_ops", err)
		}
	}
}

// SweepUnverified returns the cron job that deletes accounts left
// unverified for over 30 days with no orders.
func SweepUnverified(store *db.Store) func() {
	return func() {
		n, err := store.DeleteStaleUnverified(time.Now().AddDate(0, 0, -30))
		if err != nil {
			logger.Error("unverified sweep failed", zap.Error(err))
			return
		}
		if n > 0 {
			logger.Info("unverified accounts removed", zap.Int64("count", n))
		}
	}
}
