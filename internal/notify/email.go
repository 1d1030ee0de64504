package notify

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"

	"huparfum-backend/internal/db"
)

// Email sends the transactional mails over SMTP. Every send is best
// effort from the caller's point of view: errors are returned so the
// caller can log them, but nothing retries.
type Email struct {
	dialer      *gomail.Dialer
	from        string
	frontendURL string
}

type EmailConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	FrontendURL string
}

func NewEmail(cfg EmailConfig) *Email {
	return &Email{
		dialer:      gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:        cfg.From,
		frontendURL: cfg.FrontendURL,
	}
}

func (e *Email) send(to, subject, htmlBody string) error {
	if to == "" {
		// Users without an email on file are skipped silently.
		return nil
	}
	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	return e.dialer.DialAndSend(m)
}

func (e *Email) Verification(to, name, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", e.frontendURL, token)
	body := fmt.Sprintf(`<p>مرحباً %s،</p>
<p>شكراً لتسجيلك في HuParfum. يرجى تأكيد بريدك الإلكتروني عبر الرابط التالي:</p>
<p><a href="%s">تأكيد البريد الإلكتروني</a></p>
<p>الرابط صالح لمدة 24 ساعة.</p>`, name, link)
	return e.send(to, "HuParfum — تأكيد البريد الإلكتروني", body)
}

func (e *Email) OrderConfirmation(u *db.User, o *db.Order, p *db.Product, total decimal.Decimal) error {
	body := fmt.Sprintf(`<p>مرحباً %s،</p>
<p>تم استلام طلبك رقم <b>%s</b> بنجاح.</p>
<p>%s × %d — المجموع: %s دج</p>
<p>سنتواصل معك قريباً لتأكيد التفاصيل.</p>`,
		u.Name, o.Reference, p.Name, o.Quantity, total.StringFixed(2))
	return e.send(u.Email, "HuParfum — تأكيد الطلب", body)
}

func (e *Email) PaymentConfirmation(u *db.User, o *db.Order) error {
	body := fmt.Sprintf(`<p>مرحباً %s،</p>
<p>تم تأكيد دفع طلبك رقم <b>%s</b>.</p>
<p>سيتم تجهيز طلبك للشحن.</p>`, u.Name, o.Reference)
	return e.send(u.Email, "HuParfum — تأكيد الدفع", body)
}

func (e *Email) DeliveryInProgress(u *db.User, o *db.Order, agency string) error {
	body := fmt.Sprintf(`<p>مرحباً %s،</p>
<p>طلبك رقم <b>%s</b> في طريقه إليك.</p>
<p>شركة التوصيل: %s</p>`, u.Name, o.Reference, agency)
	return e.send(u.Email, "HuParfum — طلبك قيد التوصيل", body)
}

func (e *Email) DeliveryComplete(u *db.User, o *db.Order) error {
	body := fmt.Sprintf(`<p>مرحباً %s،</p>
<p>تم توصيل طلبك رقم <b>%s</b> بنجاح.</p>
<p>شكراً لثقتك بـ HuParfum.</p>`, u.Name, o.Reference)
	return e.send(u.Email, "HuParfum — تم التوصيل", body)
}
