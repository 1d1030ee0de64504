package notify

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"huparfum-backend/internal/db"
)

// PlaceholderAgency stands in when the admin updates an order to
// delivering without naming a delivery agency.
const PlaceholderAgency = "غير محددة بعد"

var statusLabels = map[db.OrderStatus]string{
	db.StatusRequested:       "تم استلام الطلب",
	db.StatusUnderDiscussion: "قيد المناقشة",
	db.StatusPayed:           "تم الدفع",
	db.StatusDelivering:      "قيد التوصيل",
	db.StatusDelivered:       "تم التوصيل بنجاح",
}

// StatusLabel returns the customer-facing label of a status.
func StatusLabel(s db.OrderStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// StatusUpdate is the user-bot message sent on any status change of a
// linked order.
func StatusUpdate(o *db.Order) string {
	return fmt.Sprintf("📦 تحديث طلبك %s:\n%s", o.Reference, StatusLabel(o.Status))
}

// NewOrderAlert is the ops-chat message for a fresh order.
func NewOrderAlert(o *db.Order, u *db.User, p *db.Product, total decimal.Decimal) string {
	return fmt.Sprintf("🛒 طلب جديد %s\nالزبون: %s (%s)\nالمنتج: %s × %d\nالمجموع: %s دج",
		o.Reference, u.Name, u.Phone, p.Name, o.Quantity, total.StringFixed(2))
}

// StatusChangeAlert is the ops-chat summary of an old→new transition.
func StatusChangeAlert(o *db.Order, old db.OrderStatus) string {
	return fmt.Sprintf("🔄 الطلب %s: %s ← %s", o.Reference, StatusLabel(old), StatusLabel(o.Status))
}

// LinkConfirmation is sent to the user chat right after a successful
// Telegram link.
func LinkConfirmation(o *db.Order) string {
	return fmt.Sprintf("✅ تم ربط حسابك بنجاح!\nستصلك تحديثات طلبك %s هنا.", o.Reference)
}

// LinkAlert is the ops-chat message for a completed link.
func LinkAlert(u *db.User, o *db.Order) string {
	return fmt.Sprintf("🔗 ربط تيليغرام: %s (@%s) — الطلب %s", u.Name, u.TelegramUsername, o.Reference)
}

// Welcome answers a bare /start.
func Welcome() string {
	return "مرحباً بك في HuParfum! 🌸\nلمتابعة طلباتك، استعمل رابط الربط الموجود في صفحة طلبك.\nأرسل /status لعرض آخر طلباتك."
}

// OrdersList formats the last orders for the /status command.
func OrdersList(orders []db.Order) string {
	if len(orders) == 0 {
		return "لا توجد طلبات مسجلة بعد."
	}
	var b strings.Builder
	b.WriteString("آخر طلباتك:\n")
	for _, o := range orders {
		fmt.Fprintf(&b, "• %s — %s × %d — %s\n", o.Reference, o.Product.Name, o.Quantity, StatusLabel(o.Status))
	}
	return b.String()
}
