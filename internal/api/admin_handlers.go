package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"huparfum-backend/internal/db"
	"huparfum-backend/internal/orders"
)

// adminOrderView flattens an order with its customer and product for the
// back-office list.
type adminOrderView struct {
	db.Order
	Customer adminCustomerView `json:"customer"`
	Item     adminProductView  `json:"product"`
}

type adminCustomerView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type adminProductView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

func (s *Server) adminListOrders(c *gin.Context) {
	list, err := s.store.Orders()
	if err != nil {
		s.internalError(c, err)
		return
	}
	views := make([]adminOrderView, 0, len(list))
	for _, o := range list {
		views = append(views, adminOrderView{
			Order: o,
			Customer: adminCustomerView{
				ID:    o.User.ID,
				Name:  o.User.Name,
				Phone: o.User.Phone,
				Email: o.User.Email,
			},
			Item: adminProductView{
				ID:    o.Product.ID,
				Name:  o.Product.Name,
				Price: o.Product.Price.StringFixed(2),
			},
		})
	}
	c.JSON(http.StatusOK, gin.H{"orders": views})
}

type updateStatusRequest struct {
	Status         string  `json:"status"`
	DeliveryAgency *string `json:"delivery_agency"`
}

// updateOrderStatus persists the transition and triggers the
// notification fan-out. A failed notification never fails this request.
func (s *Server) updateOrderStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		notFoundError(c, msgOrderNotFound)
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgInvalidBody)
		return
	}

	order, err := s.orders.UpdateStatus(id, req.Status, req.DeliveryAgency)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"order": gin.H{
			"id":              order.ID,
			"status":          order.Status,
			"delivery_agency": order.DeliveryAgency,
		}})
	case errors.Is(err, orders.ErrMissingStatus):
		badRequest(c, msgMissingStatus)
	case errors.Is(err, orders.ErrInvalidStatus), errors.Is(err, orders.ErrTransitionRefused):
		badRequest(c, msgInvalidStatus)
	case errors.Is(err, db.ErrNotFound):
		notFoundError(c, msgOrderNotFound)
	default:
		s.internalError(c, err)
	}
}

func (s *Server) adminListUsers(c *gin.Context) {
	users, err := s.store.Users()
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
