package service

import (
	"context"

	"wayfarer/internal/booking"
	"wayfarer/internal/models"
	"wayfarer/internal/notify"
	"wayfarer/internal/repository"
)

// bookingStore is the slice of the repository the booking service needs.
// Tests substitute a stub.
type bookingStore interface {
	Create(ctx context.Context, p repository.CreateBookingParams) (int64, error)
	FindByID(ctx context.Context, id int64) (*models.BookingDetail, error)
	List(ctx context.Context, kind booking.Kind, f models.BookingFilters) (*models.BookingList, error)
	TransitionStatus(ctx context.Context, id int64, to booking.Status, actorID *int64, notes *string, paymentStatus *booking.PaymentStatus) (*models.BookingDetail, bool, error)
	Stats(ctx context.Context) (*models.BookingStats, error)
}

// notifier fans a booking event out to email and WhatsApp link builders.
type notifier interface {
	BookingCreated(ctx context.Context, detail *models.BookingDetail) notify.Links
	StatusChanged(ctx context.Context, detail *models.BookingDetail)
}

// eventPublisher publishes lifecycle events to the message broker.
type eventPublisher interface {
	Publish(subject string, data interface{}) error
}

type Services struct {
	Bookings *BookingService
}

func NewServices(repos *repository.Repositories, dispatcher notifier, publisher eventPublisher) *Services {
	return &Services{
		Bookings: NewBookingService(repos.Bookings, dispatcher, publisher),
	}
}
