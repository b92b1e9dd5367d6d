package utils

import (
	"crypto/rand"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"math/big"
	"net/smtp"
	"regexp"
	"strings"
	"time"

	"hotel-frontdesk/models"
)

//
// ===========================================================
//  INVOICE NUMBER
// ===========================================================
//

const (
	invoiceNumberMin = 100000
	invoiceNumberMax = 999999
)

var invoiceNumberRe = regexp.MustCompile(`^[1-9][0-9]{5}$`)

// GenerateInvoiceNumber returns a 6-digit number drawn uniformly from
// [100000, 999999). Uniqueness is not checked here.
func GenerateInvoiceNumber() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(invoiceNumberMax-invoiceNumberMin))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", invoiceNumberMin+n.Int64()), nil
}

func IsValidInvoiceNumber(s string) bool {
	return invoiceNumberRe.MatchString(strings.TrimSpace(s))
}

// PtrTime returns pointer to time.Time
func PtrTime(t time.Time) *time.Time { return &t }

//
// ===========================================================
//  EMAIL MASKING
// ===========================================================
//

// MaskEmail returns masked email for safe display
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}
	local := parts[0]
	domain := parts[1]

	maskedLocal := local
	if len(local) > 2 {
		maskedLocal = local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:]
	} else if len(local) == 2 {
		maskedLocal = local[:1] + "*"
	}

	domainParts := strings.Split(domain, ".")
	if len(domainParts) >= 2 && len(domainParts[0]) > 1 {
		domainParts[0] = domainParts[0][:1] + strings.Repeat("*", len(domainParts[0])-1)
	}

	return maskedLocal + "@" + strings.Join(domainParts, ".")
}

//
// ===========================================================
//  EMAIL SENDER (INVOICE)
// ===========================================================
//

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
}

func (c SMTPConfig) configured() bool {
	return c.Host != "" && c.Port != "" && c.Username != "" && c.Password != ""
}

var ErrMissingRecipient = errors.New("missing recipient email")

// SendInvoiceEmail sends a plain-text + HTML invoice. Without SMTP settings the
// message is only logged.
func SendInvoiceEmail(cfg SMTPConfig, recipient string, inv *models.InvoiceData) error {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return ErrMissingRecipient
	}
	if inv == nil {
		return errors.New("nil invoice")
	}

	if !cfg.configured() {
		slog.Info("[MOCK EMAIL] invoice",
			"to", MaskEmail(recipient), "invoice", inv.InvoiceNumber, "total", inv.TotalAmount)
		return nil
	}

	safe := func(s string) string {
		return strings.ReplaceAll(strings.TrimSpace(s), "\r\n", " ")
	}

	business := safe(inv.BusinessName)
	if business == "" {
		business = safe(cfg.FromName)
	}

	from := fmt.Sprintf("%s <%s>", safe(cfg.FromName), cfg.Username)
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	subject := fmt.Sprintf("Invoice %s - %s", safe(inv.InvoiceNumber), business)
	boundary := "----=_FRONTDESK_INVOICE_BOUNDARY"

	plainBody := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Thank you for staying with us. Here is your invoice:\n\n"+
			"Invoice: %s\n"+
			"Date: %s\n"+
			"Room: %s\n"+
			"Items:\n%s\n"+
			"Additional charges: %d\n"+
			"Discount: %d\n"+
			"Total: %d\n"+
			"Payment: %s (%s)\n\n"+
			"Best regards,\n%s",
		safe(inv.CustomerName),
		safe(inv.InvoiceNumber),
		inv.Date.Format("2006-01-02 15:04"),
		safe(inv.RoomNumber),
		productsText(inv.Products),
		inv.AdditionalCharges,
		inv.Discount,
		inv.TotalAmount,
		safe(inv.PaymentMethod),
		inv.PaymentStatus,
		business,
	)

	htmlBody := fmt.Sprintf(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice</title>
<style>
body { background:#f5f7fb; font-family:Arial, Helvetica, sans-serif; color:#222; }
.card { max-width:700px; margin:20px auto; background:#fff; border:1px solid #e6eef6; padding:24px; border-radius:8px; }
table { width:100%%; border-collapse:collapse; }
td, th { padding:6px; border-bottom:1px solid #eee; text-align:left; }
.total { font-weight:700; }
</style>
</head>
<body>
<div class="card">
  <h2>%s</h2>
  <p>%s<br>%s</p>
  <p>Invoice <strong>%s</strong> - %s</p>
  <p>Guest: %s<br>Room: %s</p>
  %s
  <p>Additional charges: %d<br>Discount: %d</p>
  <p class="total">Total: %d</p>
  <p>Payment: %s (%s)</p>
</div>
</body>
</html>`,
		html.EscapeString(business),
		html.EscapeString(safe(inv.BusinessAddress)),
		html.EscapeString(safe(inv.BusinessPhone)),
		html.EscapeString(safe(inv.InvoiceNumber)),
		inv.Date.Format("2006-01-02 15:04"),
		html.EscapeString(safe(inv.CustomerName)),
		html.EscapeString(safe(inv.RoomNumber)),
		productsHTML(inv.Products),
		inv.AdditionalCharges,
		inv.Discount,
		inv.TotalAmount,
		html.EscapeString(safe(inv.PaymentMethod)),
		inv.PaymentStatus,
	)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", recipient))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary))

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(plainBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(htmlBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	if err := smtp.SendMail(addr, auth, cfg.Username, []string{recipient}, []byte(sb.String())); err != nil {
		slog.Error("failed to send invoice email", "to", MaskEmail(recipient), "error", err)
		return err
	}

	slog.Info("invoice email sent", "to", MaskEmail(recipient), "invoice", inv.InvoiceNumber)
	return nil
}

func productsText(products []models.InvoiceProduct) string {
	if len(products) == 0 {
		return "N/A"
	}
	var b strings.Builder
	for _, p := range products {
		b.WriteString(fmt.Sprintf(" - %s x%d @ %d = %d\n", strings.TrimSpace(p.Name), p.Quantity, p.UnitPrice, p.Amount()))
	}
	return b.String()
}

func productsHTML(products []models.InvoiceProduct) string {
	if len(products) == 0 {
		return "<em>N/A</em>"
	}
	var b strings.Builder
	b.WriteString("<table><tr><th>Item</th><th>Qty</th><th>Unit</th><th>Amount</th></tr>")
	for _, p := range products {
		b.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%d</td><td>%d</td><td>%d</td></tr>",
			html.EscapeString(strings.TrimSpace(p.Name)), p.Quantity, p.UnitPrice, p.Amount()))
	}
	b.WriteString("</table>")
	return b.String()
}
