package models

import (
	"time"

	"wayfarer/internal/booking"
)

// User represents an account in the system
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	Phone        *string   `json:"phone" db:"phone"`
	IsAdmin      bool      `json:"is_admin" db:"is_admin"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Tour represents a bookable tour product
type Tour struct {
	ID            int64    `json:"id" db:"id"`
	Title         string   `json:"title" db:"title"`
	Description   *string  `json:"description" db:"description"`
	Category      *string  `json:"category" db:"category"`
	Location      *string  `json:"location" db:"location"`
	Duration      *string  `json:"duration" db:"duration"`
	Price         float64  `json:"price" db:"price"`
	DiscountPrice *float64 `json:"discount_price" db:"discount_price"`
	IsActive      bool     `json:"is_active" db:"is_active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Filled separately, not from the tours table
	Itinerary []ItineraryItem `json:"itinerary,omitempty"`
	Included  []string        `json:"included_services,omitempty"`
	Excluded  []string        `json:"excluded_services,omitempty"`
}

// ItineraryItem is one day of a tour itinerary
type ItineraryItem struct {
	ID          int64   `json:"id" db:"id"`
	TourID      int64   `json:"tour_id" db:"tour_id"`
	DayNumber   int     `json:"day_number" db:"day_number"`
	Title       string  `json:"title" db:"title"`
	Description *string `json:"description" db:"description"`
}

// Experience represents a bookable experience product
type Experience struct {
	ID            int64     `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Description   *string   `json:"description" db:"description"`
	Category      *string   `json:"category" db:"category"`
	Location      *string   `json:"location" db:"location"`
	Duration      *string   `json:"duration" db:"duration"`
	Price         float64   `json:"price" db:"price"`
	DiscountPrice *float64  `json:"discount_price" db:"discount_price"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Booking is the unified booking aggregate for both product kinds.
// Tour bookings reference an authenticated user; experience bookings may
// instead carry guest contact fields and a human-readable reference.
type Booking struct {
	ID        int64        `json:"id" db:"id"`
	Kind      booking.Kind `json:"kind" db:"product_type"`
	ProductID int64        `json:"product_id" db:"product_id"`
	UserID    *int64       `json:"user_id" db:"user_id"`
	Reference *string      `json:"booking_reference,omitempty" db:"booking_reference"`

	GuestName  *string `json:"guest_name,omitempty" db:"guest_name"`
	GuestEmail *string `json:"guest_email,omitempty" db:"guest_email"`
	GuestPhone *string `json:"guest_phone,omitempty" db:"guest_phone"`

	TravelDate    time.Time             `json:"travel_date" db:"travel_date"`
	Quantity      int                   `json:"quantity" db:"quantity"`
	TotalPrice    float64               `json:"total_price" db:"total_price"`
	PaymentMethod string                `json:"payment_method" db:"payment_method"`
	PaymentStatus booking.PaymentStatus `json:"payment_status" db:"payment_status"`
	Status        booking.Status        `json:"status" db:"status"`

	SpecialRequests *string `json:"special_requests" db:"special_requests"`
	AdminNotes      *string `json:"admin_notes" db:"admin_notes"`
	WhatsAppNumber  *string `json:"whatsapp_number,omitempty" db:"whatsapp_number"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// StatusLogEntry is one append-only audit row for a booking. The latest
// entry's status always equals the booking's current status.
type StatusLogEntry struct {
	ID        int64          `json:"id" db:"id"`
	BookingID int64          `json:"booking_id" db:"booking_id"`
	Status    booking.Status `json:"status" db:"status"`
	ChangedBy *int64         `json:"changed_by" db:"changed_by"`
	Notes     *string        `json:"notes" db:"notes"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// PaymentRecord is an append-only ledger row. Refund rows are written by
// the cancel cascade with amount equal to the booking total.
type PaymentRecord struct {
	ID        int64     `json:"id" db:"id"`
	BookingID int64     `json:"booking_id" db:"booking_id"`
	Type      string    `json:"type" db:"type"`
	Amount    float64   `json:"amount" db:"amount"`
	Notes     *string   `json:"notes" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// BookingDetail is the display-ready record returned by reads: the
// booking row joined with product and customer info, plus the secondary
// collections that degrade to empty on read failure.
type BookingDetail struct {
	Booking

	ProductTitle    string  `json:"product_title"`
	ProductDuration *string `json:"product_duration"`
	ProductLocation *string `json:"product_location"`

	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`

	Itinerary        []ItineraryItem  `json:"itinerary"`
	IncludedServices []string         `json:"included_services"`
	ExcludedServices []string         `json:"excluded_services"`
	StatusHistory    []StatusLogEntry `json:"status_history"`
	Payments         []PaymentRecord  `json:"payment_history"`
}
