package services

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jacquesmit/myriad-green/models"
	"github.com/jacquesmit/myriad-green/sender"
)

const fallbackBodyTmpl = `<div>{{range .}}<p>{{.}}</p>{{end}}</div>`

// NotifierConfig carries the template IDs and company details used to build
// confirmation emails.
type NotifierConfig struct {
	CompanyName          string
	CompanyEmail         string
	CompanyPhone         string
	Currency             string
	OrderNotifyEmail     string
	TemplateOrder        string
	TemplateOrderAdmin   string
	TemplateBooking      string
	TemplateBookingAdmin string
}

// CheckoutNotification is everything the emails mention about one checkout.
type CheckoutNotification struct {
	Cart             []models.CartItem
	CustomerName     string
	CustomerPhone    string
	CustomerEmail    string
	IsBooking        bool
	BookingID        string
	BookingDateTime  string
	BookingHours     string
	BookingEmergency bool
	BookingMessage   string
}

// Notifier sends best-effort confirmation emails: a templated primary channel
// with a raw-SMTP fallback. Failures on both channels are swallowed — the
// checkout response never depends on mail delivery.
type Notifier struct {
	primary  sender.EmailSender
	fallback sender.EmailSender
	cfg      NotifierConfig
	bodyTmpl *template.Template
	logger   *zap.Logger
}

func NewNotifier(primary, fallback sender.EmailSender, cfg NotifierConfig, logger *zap.Logger) *Notifier {
	return &Notifier{
		primary:  primary,
		fallback: fallback,
		cfg:      cfg,
		bodyTmpl: template.Must(template.New("fallback").Parse(fallbackBodyTmpl)),
		logger:   logger,
	}
}

// SendCustomerConfirmation mails the customer. Returns whether any channel
// accepted the message.
func (n *Notifier) SendCustomerConfirmation(ctx context.Context, note CheckoutNotification) bool {
	templateID := n.cfg.TemplateOrder
	subject := "Order confirmation"
	if note.IsBooking {
		templateID = n.cfg.TemplateBooking
		subject = fmt.Sprintf("Booking received: %s", bookingServiceName(note.Cart))
	}

	msg := sender.Message{
		To:             note.CustomerEmail,
		Subject:        subject,
		TemplateID:     templateID,
		TemplateParams: n.templateParams(note, note.CustomerEmail),
	}
	n.renderFallbackBody(&msg, note, false)
	return n.send(ctx, msg)
}

// SendInternalNotification mails the operations inbox. Outcome is logged but
// never reported back to the checkout caller.
func (n *Notifier) SendInternalNotification(ctx context.Context, note CheckoutNotification) {
	if n.cfg.OrderNotifyEmail == "" {
		return
	}

	templateID := n.cfg.TemplateOrderAdmin
	subject := "New order"
	if note.IsBooking {
		templateID = n.cfg.TemplateBookingAdmin
		subject = fmt.Sprintf("New booking: %s", bookingServiceName(note.Cart))
	}

	msg := sender.Message{
		To:             n.cfg.OrderNotifyEmail,
		Subject:        subject,
		TemplateID:     templateID,
		TemplateParams: n.templateParams(note, n.cfg.OrderNotifyEmail),
	}
	n.renderFallbackBody(&msg, note, true)
	n.send(ctx, msg)
}

func (n *Notifier) send(ctx context.Context, msg sender.Message) bool {
	if n.primary != nil {
		if _, err := n.primary.SendEmail(ctx, msg); err == nil {
			return true
		} else {
			n.logger.Warn("primary email channel failed",
				zap.String("to", msg.To),
				zap.Error(err),
			)
		}
	}
	if n.fallback != nil {
		if _, err := n.fallback.SendEmail(ctx, msg); err == nil {
			return true
		} else {
			n.logger.Warn("fallback email channel failed",
				zap.String("to", msg.To),
				zap.Error(err),
			)
		}
	}
	return false
}

func (n *Notifier) templateParams(note CheckoutNotification, recipient string) map[string]string {
	total := fmt.Sprintf("%.2f", models.CartTotalMajorUnits(note.Cart))
	params := map[string]string{
		"to_email":       recipient,
		"email":          recipient,
		"customer_name":  note.CustomerName,
		"customer_phone": note.CustomerPhone,
		"company_name":   n.cfg.CompanyName,
		"company_email":  n.cfg.CompanyEmail,
		"company_phone":  n.cfg.CompanyPhone,
	}

	if !note.IsBooking {
		params["order_summary"] = orderSummary(note.Cart)
		params["order_total"] = total
		return params
	}

	service := bookingServiceName(note.Cart)
	emergency := "No"
	if note.BookingEmergency {
		emergency = "Yes"
	}
	// plain keys plus booking_* aliases, matching the template variants
	params["name"] = note.CustomerName
	params["phone"] = note.CustomerPhone
	params["service"] = service
	params["datetime"] = note.BookingDateTime
	params["isEmergency"] = emergency
	params["hours"] = note.BookingHours
	params["price"] = total
	params["message"] = note.BookingMessage
	params["booking_id"] = note.BookingID
	params["current_year"] = fmt.Sprintf("%d", time.Now().Year())
	params["booking_service"] = service
	params["booking_datetime"] = note.BookingDateTime
	params["booking_hours"] = note.BookingHours
	params["booking_emergency"] = emergency
	params["booking_price"] = total
	return params
}

func (n *Notifier) renderFallbackBody(msg *sender.Message, note CheckoutNotification, internal bool) {
	lines := n.bodyLines(note, internal)
	msg.TextBody = strings.Join(lines, "\n")

	var sb strings.Builder
	if err := n.bodyTmpl.Execute(&sb, lines); err != nil {
		n.logger.Warn("failed to render fallback email body", zap.Error(err))
		return
	}
	msg.HTMLBody = sb.String()
}

func (n *Notifier) bodyLines(note CheckoutNotification, internal bool) []string {
	currency := strings.ToUpper(n.cfg.Currency)
	total := fmt.Sprintf("%.2f %s", models.CartTotalMajorUnits(note.Cart), currency)

	var lines []string
	if internal {
		lines = append(lines,
			fmt.Sprintf("Customer: %s (%s)", note.CustomerName, note.CustomerPhone),
			fmt.Sprintf("Email: %s", note.CustomerEmail),
		)
	} else {
		lines = append(lines, fmt.Sprintf("Hi %s,", note.CustomerName))
	}

	if note.IsBooking {
		if !internal {
			lines = append(lines, "Thanks for your booking. Here are the details:")
		}
		lines = append(lines,
			fmt.Sprintf("Service: %s", bookingServiceName(note.Cart)),
			fmt.Sprintf("Date/Time: %s", note.BookingDateTime),
			fmt.Sprintf("Hours: %s", note.BookingHours),
		)
		emergency := "No"
		if note.BookingEmergency {
			emergency = "Yes"
		}
		lines = append(lines,
			fmt.Sprintf("Emergency: %s", emergency),
			fmt.Sprintf("Price: %s", total),
		)
		if note.BookingMessage != "" {
			lines = append(lines, fmt.Sprintf("Message: %s", note.BookingMessage))
		}
		lines = append(lines, fmt.Sprintf("Booking ID: %s", note.BookingID))
		return lines
	}

	if internal {
		lines = append(lines, fmt.Sprintf("Items: %s", orderSummary(note.Cart)))
	} else {
		lines = append(lines, "Thanks for your order. Summary:")
		for _, item := range note.Cart {
			lines = append(lines, fmt.Sprintf("%d x %s @ %.2f", item.Quantity, item.Name, item.Price))
		}
	}
	lines = append(lines, fmt.Sprintf("Total: %s", total))
	return lines
}

func orderSummary(cart []models.CartItem) string {
	parts := make([]string, 0, len(cart))
	for _, item := range cart {
		parts = append(parts, fmt.Sprintf("%d x %s", item.Quantity, item.Name))
	}
	return strings.Join(parts, ", ")
}

// bookingServiceName strips the cart-widget's "Booking:" prefix from the
// first item.
func bookingServiceName(cart []models.CartItem) string {
	if len(cart) == 0 {
		return "Consultation"
	}
	name := cart[0].Name
	if after := strings.TrimPrefix(name, "Booking:"); after != name {
		return strings.TrimSpace(after)
	}
	return name
}
