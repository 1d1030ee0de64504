package orders

import (
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"huparfum-backend/internal/db"
	"huparfum-backend/internal/logger"
	"huparfum-backend/internal/notify"
)

var (
	ErrMissingStatus     = errors.New("missing status")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrTransitionRefused = errors.New("status transition not allowed")
)

// Mailer is the slice of the email sender the order lifecycle needs.
type Mailer interface {
	OrderConfirmation(u *db.User, o *db.Order, p *db.Product, total decimal.Decimal) error
	PaymentConfirmation(u *db.User, o *db.Order) error
	DeliveryInProgress(u *db.User, o *db.Order, agency string) error
	DeliveryComplete(u *db.User, o *db.Order) error
}

// Messenger is the slice of the Telegram notifier the order lifecycle
// needs.
type Messenger interface {
	NotifyUser(chatID int64, text string) error
	AlertOps(text string) error
}

// Service owns order creation and status updates, including the
// best-effort notification fan-out that follows each persisted change.
type Service struct {
	store *db.Store
	mail  Mailer
	tg    Messenger
}

func NewService(store *db.Store, mail Mailer, tg Messenger) *Service {
	return &Service{store: store, mail: mail, tg: tg}
}

// Create validates both foreign keys, guards and decrements stock, and
// persists the order as requested/unlinked. Confirmation email and ops
// alert follow; their failures are logged and swallowed.
func (s *Service) Create(userID, productID uint, quantity int) (*db.Order, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	user, err := s.store.UserByID(userID)
	if err != nil {
		return nil, err
	}
	product, err := s.store.ProductByID(productID)
	if err != nil {
		return nil, err
	}

	order := &db.Order{
		UserID:         user.ID,
		ProductID:      product.ID,
		Quantity:       quantity,
		Status:         db.StatusRequested,
		TelegramLinked: false,
	}
	if err := s.store.CreateOrder(order); err != nil {
		return nil, err
	}

	total := product.Price.Mul(decimal.NewFromInt(int64(quantity)))
	if err := s.mail.OrderConfirmation(user, order, product, total); err != nil {
		logger.NotifyFailure("email", err, zap.Uint("order_id", order.ID))
	}
	if err := s.tg.AlertOps(notify.NewOrderAlert(order, user, product, total)); err != nil {
		logger.NotifyFailure("telegram_ops", err, zap.Uint("order_id", order.ID))
	}
	return order, nil
}

// UpdateStatus persists the new status first; the status change is
// authoritative even when every notification after it fails.
func (s *Service) UpdateStatus(orderID uint, newStatus string, agency *string) (*db.Order, error) {
	if newStatus == "" {
		return nil, ErrMissingStatus
	}
	status := db.OrderStatus(newStatus)
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	order, err := s.store.OrderByID(orderID)
	if err != nil {
		return nil, err
	}
	old := order.Status
	if !old.CanTransitionTo(status) {
		return nil, ErrTransitionRefused
	}

	if err := s.store.UpdateOrderStatus(order.ID, status, agency); err != nil {
		return nil, err
	}
	order.Status = status
	if agency != nil {
		order.DeliveryAgency = agency
	}

	s.dispatch(order, old)
	return order, nil
}

// dispatch fans the status change out to email and both Telegram chats,
// sequentially, logging and swallowing every delivery error.
func (s *Service) dispatch(order *db.Order, old db.OrderStatus) {
	user := &order.User

	if user.Email != "" {
		var mailErr error
		switch order.Status {
		case db.StatusPayed:
			mailErr = s.mail.PaymentConfirmation(user, order)
		case db.StatusDelivering:
			agency := notify.PlaceholderAgency
			if order.DeliveryAgency != nil && *order.DeliveryAgency != "" {
				agency = *order.DeliveryAgency
			}
			mailErr = s.mail.DeliveryInProgress(user, order, agency)
		case db.StatusDelivered:
			mailErr = s.mail.DeliveryComplete(user, order)
		}
		if mailErr != nil {
			logger.NotifyFailure("email", mailErr,
				zap.Uint("order_id", order.ID), zap.String("status", order.Status.String()))
		}
	}

	if order.TelegramLinked && user.TelegramChatID != nil {
		if err := s.tg.NotifyUser(*user.TelegramChatID, notify.StatusUpdate(order)); err != nil {
			logger.NotifyFailure("telegram_user", err, zap.Uint("order_id", order.ID))
		}
	}

	if err := s.tg.AlertOps(notify.StatusChangeAlert(order, old)); err != nil {
		logger.NotifyFailure("telegram_ops", err, zap.Uint("order_id", order.ID))
	}
}
