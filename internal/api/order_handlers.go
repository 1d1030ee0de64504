package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"huparfum-backend/internal/db"
	"huparfum-backend/internal/orders"
)

const linkTokenTTL = 24 * time.Hour

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

type createOrderRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

func (s *Server) createOrder(c *gin.Context) {
	user := currentUser(c)

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgInvalidBody)
		return
	}

	if s.settings.EmailVerificationRequired(c.Request.Context()) && !user.EmailVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": msgEmailNotVerified})
		return
	}

	order, err := s.orders.Create(user.ID, req.ProductID, req.Quantity)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"order": order})
	case errors.Is(err, orders.ErrInvalidQuantity):
		badRequest(c, msgInvalidQuantity)
	case errors.Is(err, db.ErrInsufficientStock):
		badRequest(c, msgInsufficientStock)
	case errors.Is(err, db.ErrNotFound):
		notFoundError(c, msgProductNotFound)
	default:
		s.internalError(c, err)
	}
}

func (s *Server) listMyOrders(c *gin.Context) {
	user := currentUser(c)
	list, err := s.store.OrdersByUser(user.ID, 0)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

func (s *Server) getMyOrder(c *gin.Context) {
	user := currentUser(c)
	id, ok := idParam(c)
	if !ok {
		badRequest(c, msgInvalidBody)
		return
	}
	order, err := s.store.OrderByID(id)
	if err != nil || order.UserID != user.ID {
		notFoundError(c, msgOrderNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// telegramLink hands out the encrypted deep link that binds this order's
// user to a Telegram chat.
func (s *Server) telegramLink(c *gin.Context) {
	user := currentUser(c)
	id, ok := idParam(c)
	if !ok {
		badRequest(c, msgInvalidBody)
		return
	}
	order, err := s.store.OrderByID(id)
	if err != nil || order.UserID != user.ID {
		notFoundError(c, msgOrderNotFound)
		return
	}
	token, err := s.codec.Encode(user.ID, order.ID, linkTokenTTL)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "link": s.codec.DeepLink(token)})
}
