package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/vladislavdragonenkov/bakery/internal/domain"
)

// SMTPConfig — параметры подключения к почтовому серверу.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	ShopName string
}

// sender отправляет готовые письма; *gomail.Dialer реализует его.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer отправляет письма-подтверждения через SMTP.
type SMTPMailer struct {
	from     string
	shopName string
	sender   sender
}

// NewSMTPMailer создаёт mailer поверх gomail.Dialer.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return newSMTPMailer(cfg, gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password))
}

func newSMTPMailer(cfg SMTPConfig, s sender) *SMTPMailer {
	return &SMTPMailer{
		from:     cfg.From,
		shopName: cfg.ShopName,
		sender:   s,
	}
}

var confirmationTemplate = template.Must(template.New("confirmation").Parse(
	`{{.Order.LastName}} {{.Order.FirstName}} 様

{{.Shop}}をご利用いただきありがとうございます。
以下の内容でご予約を承りました。

ご予約番号: {{.Order.ID}}
お受け取り日: {{.Order.Date}} {{.Order.PickupHour}}
お電話番号: {{.Order.Tel}}

{{range .Order.Cakes}}- {{.Name}} {{.Size}} × {{.Amount}}{{if .MessageCake}} (プレート: {{.MessageCake}}){{end}}
{{end}}{{if .Order.Message}}
ご要望: {{.Order.Message}}
{{end}}
{{if .HasQR}}店頭で添付のQRコードをご提示ください。
{{end}}`))

// Subject возвращает тему письма для заказа.
func (m *SMTPMailer) Subject(order domain.Order) string {
	subject := fmt.Sprintf("ご予約確認 #%d", order.ID)
	if m.shopName != "" {
		subject = "【" + m.shopName + "】" + subject
	}
	return subject
}

// RenderBody формирует текст письма.
func (m *SMTPMailer) RenderBody(order domain.Order, hasQR bool) (string, error) {
	var buf bytes.Buffer
	err := confirmationTemplate.Execute(&buf, struct {
		Order domain.Order
		Shop  string
		HasQR bool
	}{Order: order, Shop: m.shopOrDefault(), HasQR: hasQR})
	if err != nil {
		return "", fmt.Errorf("render confirmation: %w", err)
	}
	return buf.String(), nil
}

// SendConfirmation собирает письмо с QR-кодом во вложении и отправляет его.
// gomail не принимает контекст, поэтому таймаут обеспечивает Dispatcher.
func (m *SMTPMailer) SendConfirmation(ctx context.Context, order domain.Order, qrPNG []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(order.Email) == "" {
		return fmt.Errorf("order %d has no email", order.ID)
	}

	body, err := m.RenderBody(order, len(qrPNG) > 0)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", order.Email)
	msg.SetHeader("Subject", m.Subject(order))
	msg.SetBody("text/plain", body)

	if len(qrPNG) > 0 {
		msg.Attach(fmt.Sprintf("order-%d.png", order.ID),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(qrPNG)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {"image/png"}}),
		)
	}

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", order.Email, err)
	}
	return nil
}

func (m *SMTPMailer) shopOrDefault() string {
	if m.shopName == "" {
		return "当店"
	}
	return m.shopName
}

var _ domain.Mailer = (*SMTPMailer)(nil)
