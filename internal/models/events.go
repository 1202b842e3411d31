package models

import (
	"time"

	"wayfarer/internal/booking"
)

// NATS subjects for booking lifecycle events. Publishing is best-effort
// and happens after the triggering transaction has committed.
const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
	EventBookingCancelled     = "booking.cancelled"
	EventBookingRefunded      = "booking.refunded"
)

// BookingCreatedEvent represents a booking creation event
type BookingCreatedEvent struct {
	BookingID int64          `json:"booking_id"`
	Kind      booking.Kind   `json:"kind"`
	ProductID int64          `json:"product_id"`
	UserID    *int64         `json:"user_id"`
	Reference *string        `json:"booking_reference,omitempty"`
	Total     float64        `json:"total_price"`
	Status    booking.Status `json:"status"`

	// wa.me deep link for notifying the admin; carried on the event so
	// the generated link is surfaced somewhere instead of dropped
	AdminWhatsAppURL string `json:"admin_whatsapp_url,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// BookingStatusChangedEvent represents a status transition
type BookingStatusChangedEvent struct {
	BookingID int64          `json:"booking_id"`
	Kind      booking.Kind   `json:"kind"`
	From      booking.Status `json:"from"`
	To        booking.Status `json:"to"`
	ChangedBy *int64         `json:"changed_by"`
	Timestamp time.Time      `json:"timestamp"`
}

// BookingRefundedEvent is published when the cancel cascade wrote a
// refund ledger row
type BookingRefundedEvent struct {
	BookingID int64     `json:"booking_id"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}
