package main

import (
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"huparfum-backend/config"
	"huparfum-backend/internal/api"
	"huparfum-backend/internal/auth"
	"huparfum-backend/internal/db"
	"huparfum-backend/internal/jobs"
	"huparfum-backend/internal/notify"
	"huparfum-backend/internal/orders"
	"huparfum-backend/internal/settings"
	"huparfum-backend/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	userBot := mustBot(cfg.UserBotToken)
	opsBot := mustBot(cfg.OpsBotToken)
	tg := notify.NewTelegram(userBot, opsBot, cfg.OpsChatID)

	mail := notify.NewEmail(notify.EmailConfig{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUser,
		Password:    cfg.SMTPPass,
		From:        cfg.SMTPFrom,
		FrontendURL: cfg.FrontendURL,
	})

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	jwtSvc := auth.NewService(cfg.JWTSecret)
	codec := telegram.NewLinkCodec(cfg.TelegramLinkSecret, cfg.UserBotName)
	orderSvc := orders.NewService(store, mail, tg)
	settingSvc := settings.NewService(store, settings.NewRedisCache(rdb, 5*time.Minute))
	webhook := telegram.NewWebhook(store, codec, tg)

	c := cron.New()
	c.AddFunc("0 10 * * *", jobs.DailySummary(store, tg))
	c.AddFunc("30 3 * * *", jobs.SweepUnverified(store))
	c.Start()

	server := api.New(cfg, store, jwtSvc, orderSvc, settingSvc, mail, codec, webhook, rdb)
	log.Printf("listening on %s", cfg.ListenAddr)
	if err := server.Router().Run(cfg.ListenAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// mustBot builds a bot API client, tolerating an empty token so the
// server still runs without Telegram in development.
func mustBot(token string) *tgbotapi.BotAPI {
	if token == "" {
		return nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Fatalf("telegram bot: %v", err)
	}
	return bot
}
