package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Store wraps the gorm handle with the queries the handlers need. The
// handle is injected, never kept as a package global.
type Store struct {
	db *gorm.DB
}

func NewStore(g *gorm.DB) *Store {
	return &Store{db: g}
}

// Open connects to Postgres and runs migrations.
func Open(dsn string) (*Store, error) {
	g, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	s := &Store{db: g}
	if err := s.AutoMigrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&User{}, &Admin{}, &Product{}, &Order{}, &FeatureFlag{}, &WebsiteSetting{},
	)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// --- Users ---

func (s *Store) CreateUser(u *User) error {
	return s.db.Create(u).Error
}

func (s *Store) UserByID(id uint) (*User, error) {
	var u User
	if err := s.db.First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) UserByEmail(email string) (*User, error) {
	var u User
	if err := s.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) UserByTelegramChatID(chatID int64) (*User, error) {
	var u User
	if err := s.db.Where("telegram_chat_id = ?", chatID).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) Users() ([]User, error) {
	var users []User
	err := s.db.Order("created_at desc").Find(&users).Error
	return users, err
}

func (s *Store) MarkEmailVerified(email string) error {
	res := s.db.Model(&User{}).Where("email = ?", email).Update("email_verified", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// LinkTelegram binds a chat to the user and marks the order linked in one
// transaction so the webhook cannot leave them half-linked.
func (s *Store) LinkTelegram(userID uint, orderID uint, chatID int64, username string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"telegram_chat_id":  chatID,
			"telegram_username": username,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&Order{}).Where("id = ?", orderID).Update("telegram_linked", true).Error
	})
}

// DeleteStaleUnverified removes accounts that never verified their email,
// are older than the cutoff and never placed an order.
func (s *Store) DeleteStaleUnverified(before time.Time) (int64, error) {
	res := s.db.Where(
		"email_verified = ? AND created_at < ? AND id NOT IN (SELECT user_id FROM orders)",
		false, before,
	).Delete(&User{})
	return res.RowsAffected, res.Error
}

// --- Admins ---

func (s *Store) CreateAdmin(a *Admin) error {
	return s.db.Create(a).Error
}

func (s *Store) AdminByID(id uint) (*Admin, error) {
	var a Admin
	if err := s.db.First(&a, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *Store) AdminByEmail(email string) (*Admin, error) {
	var a Admin
	if err := s.db.Where("email = ?", email).First(&a).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// --- Products ---

func (s *Store) CreateProduct(p *Product) error {
	return s.db.Create(p).Error
}

func (s *Store) SaveProduct(p *Product) error {
	return s.db.Save(p).Error
}

func (s *Store) DeleteProduct(id uint) error {
	res := s.db.Delete(&Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ProductByID(id uint) (*Product, error) {
	var p Product
	if err := s.db.First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Store) Products(category string) ([]Product, error) {
	var products []Product
	q := s.db.Order("id")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Find(&products).Error
	return products, err
}

// --- Orders ---

// CreateOrder persists the order and decrements product stock in one
// transaction. The conditional UPDATE doubles as the overselling guard.
func (s *Store) CreateOrder(o *Order) error {
	if o.Reference == "" {
		o.Reference = uuid.NewString()
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			"UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?",
			o.Quantity, o.ProductID, o.Quantity,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientStock
		}
		// Never cascade into the association fields.
		return tx.Omit(clause.Associations).Create(o).Error
	})
}

func (s *Store) OrderByID(id uint) (*Order, error) {
	var o Order
	if err := s.db.Preload("User").Preload("Product").First(&o, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (s *Store) Orders() ([]Order, error) {
	var orders []Order
	err := s.db.Preload("User").Preload("Product").Order("created_at desc").Find(&orders).Error
	return orders, err
}

func (s *Store) OrdersByUser(userID uint, limit int) ([]Order, error) {
	var orders []Order
	q := s.db.Preload("Product").Where("user_id = ?", userID).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&orders).Error
	return orders, err
}

func (s *Store) UpdateOrderStatus(id uint, status OrderStatus, agency *string) error {
	updates := map[string]interface{}{"status": status}
	if agency != nil {
		updates["delivery_agency"] = *agency
	}
	res := s.db.Model(&Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CountOrdersByStatusSince(t time.Time) (map[OrderStatus]int64, error) {
	type row struct {
		Status OrderStatus
		N      int64
	}
	var rows []row
	err := s.db.Model(&Order{}).
		Select("status, count(*) as n").
		Where("created_at >= ?", t).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[OrderStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.N
	}
	return counts, nil
}

// --- Feature flags ---

func (s *Store) FeatureFlagByName(name string) (*FeatureFlag, error) {
	var f FeatureFlag
	if err := s.db.Where("feature_name = ?", name).First(&f).Error; err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

func (s *Store) FeatureFlags() ([]FeatureFlag, error) {
	var flags []FeatureFlag
	err := s.db.Order("feature_name").Find(&flags).Error
	return flags, err
}

func (s *Store) UpsertFeatureFlag(f *FeatureFlag) error {
	var existing FeatureFlag
	err := s.db.Where("feature_name = ?", f.FeatureName).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(f).Error
	}
	if err != nil {
		return err
	}
	f.ID = existing.ID
	return s.db.Save(f).Error
}

// --- Website settings ---

func (s *Store) SettingByKey(key string) (*WebsiteSetting, error) {
	var w WebsiteSetting
	if err := s.db.Where("key = ?", key).First(&w).Error; err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

func (s *Store) Settings(category string) ([]WebsiteSetting, error) {
	var settings []WebsiteSetting
	q := s.db.Order("key")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Find(&settings).Error
	return settings, err
}

func (s *Store) UpsertSetting(w *WebsiteSetting) error {
	var existing WebsiteSetting
	err := s.db.Where("key = ?", w.Key).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(w).Error
	}
	if err != nil {
		return err
	}
	w.ID = existing.ID
	return s.db.Save(w).Error
}
