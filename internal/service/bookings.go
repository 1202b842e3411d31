package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"wayfarer/internal/apperrors"
	"wayfarer/internal/booking"
	"wayfarer/internal/models"
	"wayfarer/internal/repository"
)

const travelDateLayout = "2006-01-02"

// BookingService owns the booking workflows: creation for both product
// kinds, authorized reads, the status transition paths, and the admin
// overview. Persistence is transactional; notifications and event
// publishing run after commit and never fail the request.
type BookingService struct {
	store     bookingStore
	notifier  notifier
	publisher eventPublisher
}

func NewBookingService(store bookingStore, n notifier, p eventPublisher) *BookingService {
	return &BookingService{store: store, notifier: n, publisher: p}
}

// CreateResult is the creation outcome handed back to the handler. The
// WhatsApp URL is only set when the customer chose WhatsApp contact.
type CreateResult struct {
	Detail      *models.BookingDetail
	WhatsAppURL string
}

// CreateTourBooking books a tour for an authenticated user.
func (s *BookingService) CreateTourBooking(ctx context.Context, userID int64, req models.CreateBookingRequest) (*CreateResult, error) {
	travelDate, err := time.Parse(travelDateLayout, req.TravelDate)
	if err != nil {
		return nil, apperrors.Validation("travel_date must be formatted YYYY-MM-DD")
	}

	if strings.EqualFold(req.PaymentMethod, "whatsapp") && strings.TrimSpace(req.WhatsAppNumber) == "" {
		return nil, apperrors.Validation("whatsapp_number is required when payment_method is whatsapp")
	}

	params := repository.CreateBookingParams{
		Kind:            booking.KindTour,
		ProductID:       req.TourID,
		UserID:          &userID,
		TravelDate:      travelDate,
		Quantity:        req.NumberOfTravelers,
		PaymentMethod:   req.PaymentMethod,
		SpecialRequests: optional(req.SpecialRequests),
		WhatsAppNumber:  optional(req.WhatsAppNumber),
	}

	return s.create(ctx, params)
}

// CreateExperienceBooking books an experience. The caller may be a
// guest: identity comes from the request body, and a logged-in user id
// is attached when present.
func (s *BookingService) CreateExperienceBooking(ctx context.Context, userID *int64, req models.CreateExperienceBookingRequest) (*CreateResult, error) {
	bookingDate, err := time.Parse(travelDateLayout, req.BookingDate)
	if err != nil {
		return nil, apperrors.Validation("booking_date must be formatted YYYY-MM-DD")
	}

	reference := newBookingReference()
	params := repository.CreateBookingParams{
		Kind:            booking.KindExperience,
		ProductID:       req.ExperienceID,
		UserID:          userID,
		Reference:       &reference,
		GuestName:       optional(req.FullName),
		GuestEmail:      optional(req.Email),
		GuestPhone:      optional(req.Phone),
		TravelDate:      bookingDate,
		Quantity:        req.NumberOfGuests,
		PaymentMethod:   "manual",
		SpecialRequests: optional(req.SpecialRequests),
	}

	return s.create(ctx, params)
}

func (s *BookingService) create(ctx context.Context, params repository.CreateBookingParams) (*CreateResult, error) {
	id, err := s.store.Create(ctx, params)
	if errors.Is(err, repository.ErrProductNotFound) {
		resource := "Tour"
		if params.Kind == booking.KindExperience {
			resource = "Experience"
		}
		return nil, apperrors.NotFound(resource)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	detail, err := s.store.FindByID(ctx, id)
	if err != nil || detail == nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to load created booking %d: %w", id, err))
	}

	links := s.notifier.BookingCreated(ctx, detail)

	event := models.BookingCreatedEvent{
		BookingID:        detail.ID,
		Kind:             detail.Kind,
		ProductID:        detail.ProductID,
		UserID:           detail.UserID,
		Reference:        detail.Reference,
		Total:            detail.TotalPrice,
		Status:           detail.Status,
		AdminWhatsAppURL: links.AdminWhatsAppURL,
		Timestamp:        time.Now().UTC(),
	}
	if err := s.publisher.Publish(models.EventBookingCreated, event); err != nil {
		slog.Error("Failed to publish booking created event", "booking_id", detail.ID, "error", err)
	}

	return &CreateResult{Detail: detail, WhatsAppURL: links.UserWhatsAppURL}, nil
}

// Get returns one booking. Non-admin callers may only read their own.
func (s *BookingService) Get(ctx context.Context, id int64, actor *models.User) (*models.BookingDetail, error) {
	detail, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if detail == nil {
		return nil, apperrors.NotFound("Booking")
	}

	if !actor.IsAdmin && !ownedBy(detail, actor.ID) {
		return nil, apperrors.Forbidden("you may only view your own bookings")
	}

	return detail, nil
}

// List returns one page of bookings. Non-admin callers are restricted
// to their own bookings regardless of the filters they sent.
func (s *BookingService) List(ctx context.Context, kind booking.Kind, f models.BookingFilters, actor *models.User) (*models.BookingList, error) {
	if !actor.IsAdmin {
		f.UserID = &actor.ID
	}

	list, err := s.store.List(ctx, kind, f)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return list, nil
}

// Cancel moves a booking to cancelled on behalf of its owner. Admins may
// cancel any booking. The cancel path is a plain transition, so the
// refund cascade and audit log behave exactly as they do for admin
// status updates.
func (s *BookingService) Cancel(ctx context.Context, id int64, actor *models.User) (*models.BookingDetail, error) {
	if !actor.IsAdmin {
		existing, err := s.store.FindByID(ctx, id)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if existing == nil {
			return nil, apperrors.NotFound("Booking")
		}
		if !ownedBy(existing, actor.ID) {
			return nil, apperrors.Forbidden("you may only cancel your own bookings")
		}
	}

	notes := "Cancelled by customer"
	if actor.IsAdmin {
		notes = "Cancelled by admin"
	}

	return s.transition(ctx, id, booking.StatusCancelled, &actor.ID, &notes, nil)
}

// UpdateStatus is the admin transition path. The target status must be
// valid for the booking kind; payment_status may only be set directly on
// experience bookings.
func (s *BookingService) UpdateStatus(ctx context.Context, kind booking.Kind, id int64, req models.UpdateBookingStatusRequest, actorID int64) (*models.BookingDetail, error) {
	target := booking.Status(req.Status)
	if !target.IsValid(kind) {
		return nil, apperrors.Validation(fmt.Sprintf("status must be one of %v", booking.Statuses(kind)))
	}

	var paymentStatus *booking.PaymentStatus
	if req.PaymentStatus != nil {
		if kind != booking.KindExperience {
			return nil, apperrors.Validation("payment_status can only be set on experience bookings")
		}
		p := booking.PaymentStatus(*req.PaymentStatus)
		if !booking.IsValidPaymentStatus(p) {
			return nil, apperrors.Validation(fmt.Sprintf("invalid payment_status %q", p))
		}
		paymentStatus = &p
	}

	var notes *string
	if req.AdminNotes != "" {
		notes = &req.AdminNotes
	}

	return s.transition(ctx, id, target, &actorID, notes, paymentStatus)
}

func (s *BookingService) transition(ctx context.Context, id int64, to booking.Status, actorID *int64, notes *string, paymentStatus *booking.PaymentStatus) (*models.BookingDetail, error) {
	detail, refunded, err := s.store.TransitionStatus(ctx, id, to, actorID, notes, paymentStatus)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return nil, apperrors.NotFound("Booking")
	}
	if errors.Is(err, repository.ErrInvalidTransition) {
		return nil, apperrors.Conflict(strings.TrimPrefix(err.Error(), repository.ErrInvalidTransition.Error()+": "))
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.notifier.StatusChanged(ctx, detail)
	s.publishTransition(detail, to, actorID, refunded)

	return detail, nil
}

func (s *BookingService) publishTransition(detail *models.BookingDetail, to booking.Status, actorID *int64, refunded bool) {
	now := time.Now().UTC()

	changed := models.BookingStatusChangedEvent{
		BookingID: detail.ID,
		Kind:      detail.Kind,
		To:        to,
		ChangedBy: actorID,
		Timestamp: now,
	}
	if err := s.publisher.Publish(models.EventBookingStatusChanged, changed); err != nil {
		slog.Error("Failed to publish status changed event", "booking_id", detail.ID, "error", err)
	}

	if to == booking.StatusCancelled {
		if err := s.publisher.Publish(models.EventBookingCancelled, changed); err != nil {
			slog.Error("Failed to publish booking cancelled event", "booking_id", detail.ID, "error", err)
		}
	}

	if refunded {
		refund := models.BookingRefundedEvent{
			BookingID: detail.ID,
			Amount:    detail.TotalPrice,
			Timestamp: now,
		}
		if err := s.publisher.Publish(models.EventBookingRefunded, refund); err != nil {
			slog.Error("Failed to publish booking refunded event", "booking_id", detail.ID, "error", err)
		}
	}
}

// Stats aggregates counts and revenue for the admin overview endpoint.
func (s *BookingService) Stats(ctx context.Context) (*models.BookingStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return stats, nil
}

func ownedBy(d *models.BookingDetail, userID int64) bool {
	return d.UserID != nil && *d.UserID == userID
}

// newBookingReference builds the human-facing reference for experience
// bookings, e.g. EXP-1756600000000-A1B2C3.
func newBookingReference() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("EXP-%d-%s", time.Now().UnixMilli(), suffix)
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
