package notify

import (
	"context"
	"log/slog"

	"wayfarer/internal/booking"
	"wayfarer/internal/models"
	"wayfarer/internal/settings"
)

// Links carries the WhatsApp deep links produced for a new booking. The
// user link goes back to the customer in the API response, the admin
// link rides on the published event so operators can reach the customer
// in one click.
type Links struct {
	UserWhatsAppURL  string
	AdminWhatsAppURL string
}

// Dispatcher fans a booking event out to every configured channel.
// Delivery is best effort: a failed email is logged and swallowed, it
// never fails the request that triggered it.
type Dispatcher struct {
	tourMailer       *Mailer
	experienceMailer *Mailer
	settings         settings.Provider
}

func NewDispatcher(tourMailer, experienceMailer *Mailer, settings settings.Provider) *Dispatcher {
	return &Dispatcher{
		tourMailer:       tourMailer,
		experienceMailer: experienceMailer,
		settings:         settings,
	}
}

func (d *Dispatcher) mailerFor(kind booking.Kind) *Mailer {
	if kind == booking.KindExperience {
		return d.experienceMailer
	}
	return d.tourMailer
}

// BookingCreated sends the customer confirmation and the admin alert,
// and returns the WhatsApp links for both sides.
func (d *Dispatcher) BookingCreated(ctx context.Context, detail *models.BookingDetail) Links {
	s := d.settings.Current()
	mailer := d.mailerFor(detail.Kind)

	if detail.CustomerEmail != "" {
		if err := mailer.Send(detail.CustomerEmail, RenderUserConfirmation(detail, s)); err != nil {
			slog.Error("Failed to send booking confirmation email",
				"booking_id", detail.ID, "error", err)
		}
	}

	if s.AdminEmail != "" {
		if err := mailer.Send(s.AdminEmail, RenderAdminNotification(detail, s)); err != nil {
			slog.Error("Failed to send admin booking alert",
				"booking_id", detail.ID, "error", err)
		}
	}

	return Links{
		UserWhatsAppURL:  UserConfirmationLink(detail, s),
		AdminWhatsAppURL: AdminNotificationLink(detail, s),
	}
}

// StatusChanged tells the customer their booking moved to a new status.
func (d *Dispatcher) StatusChanged(ctx context.Context, detail *models.BookingDetail) {
	if detail.CustomerEmail == "" {
		return
	}

	s := d.settings.Current()
	if err := d.mailerFor(detail.Kind).Send(detail.CustomerEmail, RenderStatusUpdate(detail, s)); err != nil {
		slog.Error("Failed to send status update email",
			"booking_id", detail.ID, "status", detail.Status, "error", err)
	}
}
