package notify

import (
	"fmt"
	"strings"

	"wayfarer/internal/booking"
	"wayfarer/internal/models"
	"wayfarer/internal/settings"
)

// Message is a rendered email ready for the mailer.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

func bookingLabel(d *models.BookingDetail) string {
	if d.Reference != nil && *d.Reference != "" {
		return *d.Reference
	}
	return fmt.Sprintf("#%d", d.ID)
}

func bookingSummaryLines(d *models.BookingDetail) []string {
	lines := []string{
		fmt.Sprintf("Booking: %s", bookingLabel(d)),
		fmt.Sprintf("Product: %s", d.ProductTitle),
		fmt.Sprintf("Date: %s", d.TravelDate.Format("2 January 2006")),
		fmt.Sprintf("Party size: %d", d.Quantity),
		fmt.Sprintf("Total: %.2f", d.TotalPrice),
		fmt.Sprintf("Payment method: %s", d.PaymentMethod),
	}
	if d.SpecialRequests != nil && *d.SpecialRequests != "" {
		lines = append(lines, fmt.Sprintf("Special requests: %s", *d.SpecialRequests))
	}
	return lines
}

func wrapHTML(title string, paragraphs ...string) string {
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString("<p>" + p + "</p>\n")
	}
	return fmt.Sprintf(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>%s</title></head>
<body style="font-family:Arial, Helvetica, sans-serif; color:#222;">
<div style="max-width:640px; margin:20px auto; border:1px solid #e6eef6; border-radius:8px; padding:24px;">
<h2>%s</h2>
%s</div>
</body>
</html>`, title, title, body.String())
}

// RenderUserConfirmation is the email sent to the customer right after
// their booking is created.
func RenderUserConfirmation(d *models.BookingDetail, s settings.Settings) Message {
	subject := fmt.Sprintf("Booking request received - %s", d.ProductTitle)
	summary := strings.Join(bookingSummaryLines(d), "\n")

	text := fmt.Sprintf(
		"Hi %s,\n\n"+
			"We have received your booking request and it is now pending review.\n\n"+
			"%s\n\n"+
			"We will let you know as soon as it is confirmed.\n\n"+
			"%s\n%s\n",
		d.CustomerName, summary, s.SiteName, s.FrontendURL)

	html := wrapHTML(subject,
		fmt.Sprintf("Hi %s,", d.CustomerName),
		"We have received your booking request and it is now pending review.",
		strings.ReplaceAll(strings.Join(bookingSummaryLines(d), "<br>"), "\n", "<br>"),
		"We will let you know as soon as it is confirmed.",
		fmt.Sprintf(`<a href="%s">%s</a>`, s.FrontendURL, s.SiteName))

	return Message{Subject: subject, Text: text, HTML: html}
}

// RenderAdminNotification is the email sent to the admin inbox when a
// new booking arrives.
func RenderAdminNotification(d *models.BookingDetail, s settings.Settings) Message {
	subject := fmt.Sprintf("New booking %s - %s", bookingLabel(d), d.ProductTitle)
	summary := bookingSummaryLines(d)
	summary = append(summary,
		fmt.Sprintf("Customer: %s (%s)", d.CustomerName, d.CustomerEmail))

	text := fmt.Sprintf(
		"A new booking is waiting for review.\n\n%s\n\nOpen the admin console: %s\n",
		strings.Join(summary, "\n"), s.AdminBaseURL)

	html := wrapHTML(subject,
		"A new booking is waiting for review.",
		strings.Join(summary, "<br>"),
		fmt.Sprintf(`<a href="%s">Open the admin console</a>`, s.AdminBaseURL))

	return Message{Subject: subject, Text: text, HTML: html}
}

// RenderStatusUpdate is the email sent to the customer after a status
// transition. Subject and copy branch on the new status, and a refund
// note is appended when the cancel cascade refunded the payment.
func RenderStatusUpdate(d *models.BookingDetail, s settings.Settings) Message {
	var headline, action string
	switch d.Status {
	case booking.StatusApproved, booking.StatusConfirmed:
		headline = "Booking Confirmed"
		action = "Your booking is confirmed. We look forward to seeing you!"
	case booking.StatusCancelled:
		headline = "Booking Cancelled"
		action = "Your booking has been cancelled."
	default:
		headline = "Booking Update"
		action = fmt.Sprintf("Your booking status is now %q.", d.Status)
	}

	subject := fmt.Sprintf("%s - %s", headline, d.ProductTitle)

	lines := bookingSummaryLines(d)
	if d.Status == booking.StatusCancelled && d.PaymentStatus == booking.PaymentRefunded {
		action += fmt.Sprintf(" A refund of %.2f has been recorded and will be returned via your original payment method.", d.TotalPrice)
	}

	text := fmt.Sprintf(
		"Hi %s,\n\n%s\n\n%s\n\n%s\n%s\n",
		d.CustomerName, action, strings.Join(lines, "\n"), s.SiteName, s.FrontendURL)

	html := wrapHTML(headline,
		fmt.Sprintf("Hi %s,", d.CustomerName),
		action,
		strings.Join(lines, "<br>"),
		fmt.Sprintf(`<a href="%s">%s</a>`, s.FrontendURL, s.SiteName))

	return Message{Subject: subject, Text: text, HTML: html}
}
