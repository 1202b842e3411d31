package notify

import (
	"fmt"
	"net/url"
	"strings"

	"wayfarer/internal/models"
	"wayfarer/internal/settings"
)

// WhatsApp "sending" in this system is link generation only: the
// functions below return wa.me-style deep links for a human to click.
// No network call is ever made.

// BuildWhatsAppLink returns {base}?phone=<digits>&text=<encoded>.
func BuildWhatsAppLink(baseURL, phone, text string) string {
	q := url.Values{}
	q.Set("phone", normalizePhone(phone))
	q.Set("text", text)
	return fmt.Sprintf("%s?%s", strings.TrimRight(baseURL, "/"), q.Encode())
}

// normalizePhone strips everything but digits so "+7 (700) 123-45-67"
// becomes "77001234567".
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// UserConfirmationLink builds the deep link handed back to the customer
// when they chose WhatsApp as contact channel.
func UserConfirmationLink(d *models.BookingDetail, s settings.Settings) string {
	if d.WhatsAppNumber == nil || *d.WhatsAppNumber == "" {
		return ""
	}

	text := fmt.Sprintf(
		"Hello %s! Your booking %s for %s on %s is received and pending confirmation. Total: %.2f.",
		d.CustomerName, bookingLabel(d), d.ProductTitle,
		d.TravelDate.Format("2 Jan 2006"), d.TotalPrice)

	return BuildWhatsAppLink(s.WhatsAppBaseURL, *d.WhatsAppNumber, text)
}

// AdminNotificationLink builds the deep link pointing at the admin's
// WhatsApp number with a booking summary.
func AdminNotificationLink(d *models.BookingDetail, s settings.Settings) string {
	if s.AdminWhatsApp == "" {
		return ""
	}

	text := fmt.Sprintf(
		"New booking %s: %s, %s, party of %d, total %.2f. Customer: %s (%s).",
		bookingLabel(d), d.ProductTitle, d.TravelDate.Format("2 Jan 2006"),
		d.Quantity, d.TotalPrice, d.CustomerName, d.CustomerEmail)

	return BuildWhatsAppLink(s.WhatsAppBaseURL, s.AdminWhatsApp, text)
}
