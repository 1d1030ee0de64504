package db

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order. The listed order is the
// happy path; the transitions table below is deliberately permissive and
// allows any status to be set from any other, including overwriting
// delivered_successfully.
type OrderStatus string

const (
	StatusRequested       OrderStatus = "requested"
	StatusUnderDiscussion OrderStatus = "under_discussion"
	StatusPayed           OrderStatus = "payed"
	StatusDelivering      OrderStatus = "delivering"
	StatusDelivered       OrderStatus = "delivered_successfully"
)

var allStatuses = []OrderStatus{
	StatusRequested,
	StatusUnderDiscussion,
	StatusPayed,
	StatusDelivering,
	StatusDelivered,
}

func (s OrderStatus) IsValid() bool {
	for _, v := range allStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo consults the allowed-transitions table. Every pair of
// valid statuses is currently allowed; tightening the lifecycle later is
// a change to this table, not to the handlers.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	return s.IsValid() && target.IsValid()
}

// AdminRole distinguishes admin principals. Admins are created by the
// seed command only.
type AdminRole string

const (
	RoleSuperAdmin AdminRole = "super_admin"
	RoleAdmin      AdminRole = "admin"
	RoleModerator  AdminRole = "moderator"
)

// FlagStatus is the three-state toggle of a feature flag.
type FlagStatus string

const (
	FlagRequired FlagStatus = "required"
	FlagOptional FlagStatus = "optional"
	FlagDisabled FlagStatus = "disabled"
)

func (s FlagStatus) IsValid() bool {
	return s == FlagRequired || s == FlagOptional || s == FlagDisabled
}

type User struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	Name             string `json:"name"`
	Phone            string `gorm:"uniqueIndex" json:"phone"`
	Email            string `gorm:"uniqueIndex" json:"email"`
	Password         string `json:"-"`
	EmailVerified    bool   `gorm:"default:false" json:"email_verified"`
	TelegramUsername string `json:"telegram_username,omitempty"`
	// Nullable so the unique index ignores users who never linked a chat.
	TelegramChatID *int64    `gorm:"uniqueIndex" json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Admin struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `json:"name"`
	Email          string    `gorm:"uniqueIndex" json:"email"`
	Password       string    `json:"-"`
	Role           AdminRole `gorm:"default:admin" json:"role"`
	TelegramChatID int64     `json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Order struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	Reference      string      `gorm:"uniqueIndex" json:"reference"`
	UserID         uint        `gorm:"not null" json:"user_id"`
	User           User        `json:"-"`
	ProductID      uint        `gorm:"not null" json:"product_id"`
	Product        Product     `json:"-"`
	Quantity       int         `gorm:"not null" json:"quantity"`
	Status         OrderStatus `gorm:"default:requested" json:"status"`
	DeliveryAgency *string     `json:"delivery_agency,omitempty"`
	TelegramLinked bool        `gorm:"default:false" json:"telegram_linked"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type FeatureFlag struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	FeatureName string          `gorm:"uniqueIndex" json:"feature_name"`
	Status      FlagStatus      `gorm:"default:disabled" json:"status"`
	Config      json.RawMessage `gorm:"type:jsonb" json:"config,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type WebsiteSetting struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Key       string          `gorm:"uniqueIndex" json:"key"`
	Category  string          `json:"category"`
	Value     json.RawMessage `gorm:"type:jsonb" json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}
