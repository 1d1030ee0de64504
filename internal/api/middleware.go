package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"huparfum-backend/internal/auth"
	"huparfum-backend/internal/db"
	"huparfum-backend/internal/logger"
)

const (
	ctxUserKey  = "current_user"
	ctxAdminKey = "current_admin"

	bearerPrefix = "Bearer "
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(header, bearerPrefix)
}

// requireUser loads the user principal behind a user-type token.
// Missing, invalid, expired and wrong-type tokens all answer 401; a
// valid token whose row is gone answers 404.
func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := s.jwt.Verify(bearerToken(c), auth.TokenUser)
		if err != nil {
			unauthorized(c)
			return
		}
		user, err := s.store.UserByID(claims.ID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": msgUserNotFound})
				return
			}
			c.Abort()
			s.internalError(c, err)
			return
		}
		c.Set(ctxUserKey, user)
		c.Next()
	}
}

func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := s.jwt.Verify(bearerToken(c), auth.TokenAdmin)
		if err != nil {
			unauthorized(c)
			return
		}
		admin, err := s.store.AdminByID(claims.ID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": msgUserNotFound})
				return
			}
			c.Abort()
			s.internalError(c, err)
			return
		}
		c.Set(ctxAdminKey, admin)
		c.Next()
	}
}

func currentUser(c *gin.Context) *db.User {
	return c.MustGet(ctxUserKey).(*db.User)
}

// rateLimit is a fixed request-count window per client IP backed by
// redis INCR. Redis being down fails open: ingress limiting is not worth
// taking the store down for.
func rateLimit(rdb *redis.Client, limit int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}
		key := "rate:" + c.ClientIP()
		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			logger.Warn("rate limit unavailable", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(c.Request.Context(), key, window)
		}
		if count > limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": msgTooManyRequests})
			return
		}
		c.Next()
	}
}
