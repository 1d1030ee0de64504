package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"huparfum-backend/config"
	"huparfum-backend/internal/auth"
	"huparfum-backend/internal/db"
	"huparfum-backend/internal/notify"
	"huparfum-backend/internal/orders"
	"huparfum-backend/internal/settings"
	"huparfum-backend/internal/telegram"
)

// Server wires every handler to its dependencies. Everything is injected
// through New; no handler reaches for package-level state.
type Server struct {
	cfg      *config.Config
	store    *db.Store
	jwt      *auth.Service
	orders   *orders.Service
	settings *settings.Service
	mail     *notify.Email
	codec    *telegram.LinkCodec
	webhook  *telegram.Webhook
	rdb      *redis.Client
}

func New(
	cfg *config.Config,
	store *db.Store,
	jwtSvc *auth.Service,
	orderSvc *orders.Service,
	settingSvc *settings.Service,
	mail *notify.Email,
	codec *telegram.LinkCodec,
	webhook *telegram.Webhook,
	rdb *redis.Client,
) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		jwt:      jwtSvc,
		orders:   orderSvc,
		settings: settingSvc,
		mail:     mail,
		codec:    codec,
		webhook:  webhook,
		rdb:      rdb,
	}
}

// Router builds the gin engine with the full /api surface.
func (s *Server) Router() *gin.Engine {
	if s.cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(rateLimit(s.rdb, 120, time.Minute))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", s.register)
		authGroup.POST("/login", s.login)
		authGroup.POST("/admin/login", s.adminLogin)
		authGroup.GET("/verify", s.verifyEmail)
		authGroup.GET("/me", s.requireUser(), s.me)
	}

	api.GET("/products", s.listProducts)
	api.GET("/products/:id", s.getProduct)

	orderGroup := api.Group("/orders", s.requireUser())
	{
		orderGroup.POST("", s.createOrder)
		orderGroup.GET("", s.listMyOrders)
		orderGroup.GET("/:id", s.getMyOrder)
		orderGroup.POST("/:id/telegram-link", s.telegramLink)
	}

	adminGroup := api.Group("/admin", s.requireAdmin())
	{
		adminGroup.GET("/orders", s.adminListOrders)
		adminGroup.PUT("/orders/:id/status", s.updateOrderStatus)
		adminGroup.POST("/products", s.createProduct)
		adminGroup.PUT("/products/:id", s.updateProduct)
		adminGroup.DELETE("/products/:id", s.deleteProduct)
		adminGroup.GET("/users", s.adminListUsers)
	}

	api.POST("/telegram/webhook", s.webhook.Handle)

	settingGroup := api.Group("/settings")
	{
		settingGroup.GET("", s.listSettings)
		settingGroup.GET("/:key", s.getSetting)
		settingGroup.PUT("/:key", s.requireAdmin(), s.putSetting)
	}

	featureGroup := api.Group("/features")
	{
		featureGroup.GET("", s.listFeatures)
		featureGroup.GET("/:name", s.getFeature)
		featureGroup.PUT("/:name", s.requireAdmin(), s.putFeature)
	}

	return r
}
