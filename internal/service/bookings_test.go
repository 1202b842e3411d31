package service

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfarer/internal/apperrors"
	"wayfarer/internal/booking"
	"wayfarer/internal/models"
	"wayfarer/internal/notify"
	"wayfarer/internal/repository"
)

type stubStore struct {
	createFn     func(ctx context.Context, p repository.CreateBookingParams) (int64, error)
	findFn       func(ctx context.Context, id int64) (*models.BookingDetail, error)
	listFn       func(ctx context.Context, kind booking.Kind, f models.BookingFilters) (*models.BookingList, error)
	transitionFn func(ctx context.Context, id int64, to booking.Status, actorID *int64, notes *string, paymentStatus *booking.PaymentStatus) (*models.BookingDetail, bool, error)
	statsFn      func(ctx context.Context) (*models.BookingStats, error)
}

func (s *stubStore) Create(ctx context.Context, p repository.CreateBookingParams) (int64, error) {
	return s.createFn(ctx, p)
}

func (s *stubStore) FindByID(ctx context.Context, id int64) (*models.BookingDetail, error) {
	return s.findFn(ctx, id)
}

func (s *stubStore) List(ctx context.Context, kind booking.Kind, f models.BookingFilters) (*models.BookingList, error) {
	return s.listFn(ctx, kind, f)
}

func (s *stubStore) TransitionStatus(ctx context.Context, id int64, to booking.Status, actorID *int64, notes *string, paymentStatus *booking.PaymentStatus) (*models.BookingDetail, bool, error) {
	return s.transitionFn(ctx, id, to, actorID, notes, paymentStatus)
}

func (s *stubStore) Stats(ctx context.Context) (*models.BookingStats, error) {
	return s.statsFn(ctx)
}

type stubNotifier struct {
	created       int
	statusChanged int
	links         notify.Links
}

func (n *stubNotifier) BookingCreated(ctx context.Context, d *models.BookingDetail) notify.Links {
	n.created++
	return n.links
}

func (n *stubNotifier) StatusChanged(ctx context.Context, d *models.BookingDetail) {
	n.statusChanged++
}

type stubPublisher struct {
	err      error
	subjects []string
	payloads []interface{}
}

func (p *stubPublisher) Publish(subject string, data interface{}) error {
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return p.err
}

func sampleDetail(id int64, userID *int64) *models.BookingDetail {
	return &models.BookingDetail{
		Booking: models.Booking{
			ID:            id,
			Kind:          booking.KindTour,
			ProductID:     3,
			UserID:        userID,
			TravelDate:    time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			Quantity:      2,
			TotalPrice:    300,
			PaymentMethod: "bank_transfer",
			PaymentStatus: booking.PaymentPending,
			Status:        booking.StatusPending,
		},
		ProductTitle:  "Altai Trek",
		CustomerName:  "Dana",
		CustomerEmail: "dana@example.com",
	}
}

func newTestService(store *stubStore) (*BookingService, *stubNotifier, *stubPublisher) {
	n := &stubNotifier{links: notify.Links{
		UserWhatsAppURL:  "https://wa.me?phone=1&text=user",
		AdminWhatsAppURL: "https://wa.me?phone=2&text=admin",
	}}
	p := &stubPublisher{}
	return NewBookingService(store, n, p), n, p
}

func TestCreateTourBookingValidation(t *testing.T) {
	svc, _, _ := newTestService(&stubStore{})

	_, err := svc.CreateTourBooking(context.Background(), 1, models.CreateBookingRequest{
		TourID: 3, TravelDate: "next tuesday", NumberOfTravelers: 2, PaymentMethod: "cash",
	})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)

	_, err = svc.CreateTourBooking(context.Background(), 1, models.CreateBookingRequest{
		TourID: 3, TravelDate: "2026-10-01", NumberOfTravelers: 2, PaymentMethod: "whatsapp",
	})
	appErr, ok = apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Message, "whatsapp_number")
}

func TestCreateTourBooking(t *testing.T) {
	userID := int64(1)
	var captured repository.CreateBookingParams
	store := &stubStore{
		createFn: func(ctx context.Context, p repository.CreateBookingParams) (int64, error) {
			captured = p
			return 42, nil
		},
		findFn: func(ctx context.Context, id int64) (*models.BookingDetail, error) {
			return sampleDetail(id, &userID), nil
		},
	}
	svc, n, p := newTestService(store)

	res, err := svc.CreateTourBooking(context.Background(), userID, models.CreateBookingRequest{
		TourID:            3,
		TravelDate:        "2026-10-01",
		NumberOfTravelers: 2,
		PaymentMethod:     "whatsapp",
		WhatsAppNumber:    "+7 700 123 45 67",
	})
	require.NoError(t, err)

	assert.Equal(t, booking.KindTour, captured.Kind)
	assert.Equal(t, int64(3), captured.ProductID)
	require.NotNil(t, captured.UserID)
	assert.Equal(t, userID, *captured.UserID)
	assert.Nil(t, captured.Reference)

	assert.Equal(t, int64(42), res.Detail.ID)
	assert.Equal(t, "https://wa.me?phone=1&text=user", res.WhatsAppURL)
	assert.Equal(t, 1, n.created)

	require.Len(t, p.subjects, 1)
	assert.Equal(t, models.EventBookingCreated, p.subjects[0])
	event := p.payloads[0].(models.BookingCreatedEvent)
	assert.Equal(t, int64(42), event.BookingID)
	assert.Equal(t, "https://wa.me?phone=2&text=admin", event.AdminWhatsAppURL)
}

func TestCreatePublishFailureDoesNotFailBooking(t *testing.T) {
	userID := int64(1)
	store := &stubStore{
		createFn: func(ctx context.Context, p repository.CreateBookingParams) (int64, error) { return 9, nil },
		findFn: func(ctx context.Context, id int64) (*models.BookingDetail, error) {
			return sampleDetail(id, &userID), nil
		},
	}
	svc, _, p := newTestService(store)
	p.err = fmt.Errorf("broker down")

	res, err := svc.CreateTourBooking(context.Background(), userID, models.CreateBookingRequest{
		TourID: 3, TravelDate: "2026-10-01", NumberOfTravelers: 1, PaymentMethod: "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), res.Detail.ID)
}

func TestCreateTourBookingUnknownTour(t *testing.T) {
	store := &stubStore{
		createFn: func(ctx context.Context, p repository.CreateBookingParams) (int64, error) {
			return 0, repository.ErrProductNotFound
		},
	}
	svc, _, _ := newTestService(store)

	_, err := svc.CreateTourBooking(context.Background(), 1, models.CreateBookingRequest{
		TourID: 99, TravelDate: "2026-10-01", NumberOfTravelers: 1, PaymentMethod: "cash",
	})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.HTTPStatus)
}

func TestCreateExperienceBookingGeneratesReference(t *testing.T) {
	var captured repository.CreateBookingParams
	store := &stubStore{
		createFn: func(ctx context.Context, p repository.CreateBookingParams) (int64, error) {
			captured = p
			return 5, nil
		},
		findFn: func(ctx context.Context, id int64) (*models.BookingDetail, error) {
			d := sampleDetail(id, nil)
			d.Kind = booking.KindExperience
			return d, nil
		},
	}
	svc, _, _ := newTestService(store)

	_, err := svc.CreateExperienceBooking(context.Background(), nil, models.CreateExperienceBookingRequest{
		ExperienceID:   7,
		FullName:       "Guest Person",
		Email:          "guest@example.com",
		Phone:          "+44 20 7946 0018",
		NumberOfGuests: 4,
		BookingDate:    "2026-11-20",
	})
	require.NoError(t, err)

	assert.Equal(t, booking.KindExperience, captured.Kind)
	assert.Nil(t, captured.UserID)
	require.NotNil(t, captured.Reference)
	assert.Regexp(t, regexp.MustCompile(`^EXP-\d{13}-[0-9A-F]{6}$`), *captured.Reference)
	require.NotNil(t, captured.GuestEmail)
	assert.Equal(t, "guest@example.com", *captured.GuestEmail)
}

func TestGetEnforcesOwnership(t *testing.T) {
	owner := int64(1)
	store := &stubStore{
		findFn: func(ctx context.Context, id int64) (*models.BookingDetail, error) {
			if id == 404 {
				return nil, nil
			}
			return sampleDetail(id, &owner), nil
		},
	}
	svc, _, _ := newTestService(store)

	_, err := svc.Get(context.Background(), 1, &models.User{ID: 2})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, appErr.HTTPStatus)

	d, err := svc.Get(context.Background(), 1, &models.User{ID: owner})
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.ID)

	d, err = svc.Get(context.Background(), 1, &models.User{ID: 2, IsAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.ID)

	_, err = svc.Get(context.Background(), 404, &models.User{ID: owner})
	appErr, ok = apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.HTTPStatus)
}

func TestListForcesOwnUserIDForNonAdmins(t *testing.T) {
	var captured models.BookingFilters
	store := &stubStore{
		listFn: func(ctx context.Context, kind booking.Kind, f models.BookingFilters) (*models.BookingList, error) {
			captured = f
			return &models.BookingList{Records: []models.BookingDetail{}}, nil
		},
	}
	svc, _, _ := newTestService(store)

	other := int64(99)
	_, err := svc.List(context.Background(), booking.KindTour, models.BookingFilters{UserID: &other}, &models.User{ID: 1})
	require.NoError(t, err)
	require.NotNil(t, captured.UserID)
	assert.Equal(t, int64(1), *captured.UserID)

	_, err = svc.List(context.Background(), booking.KindTour, models.BookingFilters{UserID: &other}, &models.User{ID: 1, IsAdmin: true})
	require.NoError(t, err)
	require.NotNil(t, captured.UserID)
	assert.Equal(t, other, *captured.UserID)
}

func TestCancelOwnBooking(t *testing.T) {
	owner := int64(1)
	store := &stubStore{
		findFn: func(ctx context.Context, id int64) (*models.BookingDetail, error) {
			return sampleDetail(id, &owner), nil
		},
		transitionFn: func(ctx context.Context, id int64, to booking.Status, actorID *int64, notes *string, paymentStatus *booking.PaymentStatus) (*models.BookingDetail, bool, error) {
			assert.Equal(t, booking.StatusCancelled, to)
			require.NotNil(t, notes)
			assert.Equal(t, "Cancelled by customer", *notes)
			d := sampleDetail(id, &owner)
			d.Status = booking.StatusCancelled
			return d, false, nil
		},
	}
	svc, n, p := newTestService(store)

	d, err := svc.Cancel(context.Background(), 1, &models.User{ID: owner})
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCancelled, d.Status)
	assert.Equal(t, 1, n.statusChanged)
	assert.Contains(t, p.subjects, models.EventBookingStatusChanged)
	assert.Contains(t, p.subjects, models.EventBookingCancelled)
	assert.NotContains(t, p.subjects, models.EventBookingRefunded)
}

func TestCancelForeignBookingForbidden(t *testing.T) {
	owner := int64(1)
	store := &stubStore{
		findFn: func(ctx context.Context, id int64) (*models.BookingDetail, error) {
			return sampleDetail(id, &owner), nil
		},
	}
	svc, _, _ := newTestService(store)

	_, err := svc.Cancel(context.Background(), 1, &models.User{ID: 2})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, appErr.HTTPStatus)
}

func TestCancelAlreadyCancelledConflicts(t *testing.T) {
	store := &stubStore{
		transitionFn: func(ctx context.Context, id int64, to booking.Status, actorID *int64, notes *string, paymentStatus *booking.PaymentStatus) (*models.BookingDetail, bool, error) {
			return nil, false, fmt.Errorf("%w: cannot change booking status from cancelled to cancelled", repository.ErrInvalidTransition)
		},
	}
	svc, _, _ := newTestService(store)

	_, err := svc.Cancel(context.Background(), 1, &models.User{ID: 1, IsAdmin: true})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestUpdateStatusValidation(t *testing.T) {
	svc, _, _ := newTestService(&stubStore{})
	admin := int64(1)

	// confirmed is the experience name for approved, not a tour status
	_, err := svc.UpdateStatus(context.Background(), booking.KindTour, 1,
		models.UpdateBookingStatusRequest{Status: "confirmed"}, admin)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)

	completed := "completed"
	_, err = svc.UpdateStatus(context.Background(), booking.KindTour, 1,
		models.UpdateBookingStatusRequest{Status: "approved", PaymentStatus: &completed}, admin)
	appErr, ok = apperrors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Message, "experience bookings")

	bogus := "settled"
	_, err = svc.UpdateStatus(context.Background(), booking.KindExperience, 1,
		models.UpdateBookingStatusRequest{Status: "confirmed", PaymentStatus: &bogus}, admin)
	appErr, ok = apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
}

func TestUpdateStatusPublishesRefund(t *testing.T) {
	owner := int64(2)
	store := &stubStore{
		transitionFn: func(ctx context.Context, id int64, to booking.Status, actorID *int64, notes *string, paymentStatus *booking.PaymentStatus) (*models.BookingDetail, bool, error) {
			d := sampleDetail(id, &owner)
			d.Status = booking.StatusCancelled
			d.PaymentStatus = booking.PaymentRefunded
			return d, true, nil
		},
	}
	svc, _, p := newTestService(store)

	d, err := svc.UpdateStatus(context.Background(), booking.KindTour, 1,
		models.UpdateBookingStatusRequest{Status: "cancelled", AdminNotes: "no show"}, 1)
	require.NoError(t, err)
	assert.Equal(t, booking.PaymentRefunded, d.PaymentStatus)

	assert.Contains(t, p.subjects, models.EventBookingRefunded)
	for _, payload := range p.payloads {
		if refund, ok := payload.(models.BookingRefundedEvent); ok {
			assert.Equal(t, float64(300), refund.Amount)
		}
	}
}

func TestStatsPassthrough(t *testing.T) {
	store := &stubStore{
		statsFn: func(ctx context.Context) (*models.BookingStats, error) {
			return &models.BookingStats{Total: 10, Pending: 4}, nil
		},
	}
	svc, _, _ := newTestService(store)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.Total)
}
