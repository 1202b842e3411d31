package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfarer/internal/booking"
	"wayfarer/internal/middleware"
	"wayfarer/internal/models"
	"wayfarer/internal/notify"
	"wayfarer/internal/repository"
	"wayfarer/internal/service"
)

// fakeStore keeps bookings in memory so handler tests run without a
// database.
type fakeStore struct {
	nextID   int64
	bookings map[int64]*models.BookingDetail
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, bookings: map[int64]*models.BookingDetail{}}
}

func (s *fakeStore) Create(ctx context.Context, p repository.CreateBookingParams) (int64, error) {
	if p.ProductID == 404 {
		return 0, repository.ErrProductNotFound
	}

	id := s.nextID
	s.nextID++
	s.bookings[id] = &models.BookingDetail{
		Booking: models.Booking{
			ID:             id,
			Kind:           p.Kind,
			ProductID:      p.ProductID,
			UserID:         p.UserID,
			Reference:      p.Reference,
			GuestName:      p.GuestName,
			GuestEmail:     p.GuestEmail,
			TravelDate:     p.TravelDate,
			Quantity:       p.Quantity,
			TotalPrice:     100 * float64(p.Quantity),
			PaymentMethod:  p.PaymentMethod,
			PaymentStatus:  booking.PaymentPending,
			Status:         booking.StatusPending,
			WhatsAppNumber: p.WhatsAppNumber,
		},
		ProductTitle: "Stub Product",
	}
	return id, nil
}

func (s *fakeStore) FindByID(ctx context.Context, id int64) (*models.BookingDetail, error) {
	return s.bookings[id], nil
}

func (s *fakeStore) List(ctx context.Context, kind booking.Kind, f models.BookingFilters) (*models.BookingList, error) {
	records := []models.BookingDetail{}
	for _, d := range s.bookings {
		if d.Kind != kind {
			continue
		}
		if f.UserID != nil && (d.UserID == nil || *d.UserID != *f.UserID) {
			continue
		}
		records = append(records, *d)
	}
	return &models.BookingList{
		Records:    records,
		Pagination: models.Pagination{Page: 1, Limit: 10, Total: int64(len(records)), TotalPages: 1},
	}, nil
}

func (s *fakeStore) TransitionStatus(ctx context.Context, id int64, to booking.Status, actorID *int64, notes *string, paymentStatus *booking.PaymentStatus) (*models.BookingDetail, bool, error) {
	d, ok := s.bookings[id]
	if !ok {
		return nil, false, repository.ErrBookingNotFound
	}
	if err := booking.Transition(d.Kind, d.Status, to); err != nil {
		return nil, false, repository.ErrInvalidTransition
	}
	d.Status = to
	refunded := booking.RefundsOnEntry(to, d.PaymentStatus)
	if refunded {
		d.PaymentStatus = booking.PaymentRefunded
	}
	return d, refunded, nil
}

func (s *fakeStore) Stats(ctx context.Context) (*models.BookingStats, error) {
	return &models.BookingStats{Total: int64(len(s.bookings))}, nil
}

type noopNotifier struct{}

func (noopNotifier) BookingCreated(ctx context.Context, d *models.BookingDetail) notify.Links {
	return notify.Links{UserWhatsAppURL: "https://wa.me?phone=1&text=hi"}
}

func (noopNotifier) StatusChanged(ctx context.Context, d *models.BookingDetail) {}

type noopPublisher struct{}

func (noopPublisher) Publish(subject string, data interface{}) error { return nil }

// asUser injects an authenticated user the way BasicAuth does.
func asUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user", user)
		c.Next()
	}
}

func setupRouter(store *fakeStore, user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)

	services := &service.Services{
		Bookings: service.NewBookingService(store, noopNotifier{}, noopPublisher{}),
	}
	h := NewHandlers(services, nil)

	r := gin.New()
	api := r.Group("/api")

	experiences := api.Group("/experiences")
	experiences.POST("/bookings", h.CreateExperienceBooking)

	bookings := api.Group("/bookings")
	if user != nil {
		bookings.Use(asUser(user))
	}
	bookings.POST("", h.CreateBooking)
	bookings.GET("", h.ListBookings)
	bookings.GET("/:id", h.GetBooking)
	bookings.DELETE("/:id", h.CancelBooking)
	bookings.PATCH("/:id/status", middleware.RequireAdmin(), h.UpdateBookingStatus)
	bookings.GET("/stats/overview", middleware.RequireAdmin(), h.BookingStats)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func envelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func futureDate() string {
	return time.Now().AddDate(0, 2, 0).Format("2006-01-02")
}

func TestCreateBooking(t *testing.T) {
	store := newFakeStore()
	r := setupRouter(store, &models.User{ID: 1, IsActive: true})

	w := doJSON(t, r, "POST", "/api/bookings", models.CreateBookingRequest{
		TourID:            3,
		TravelDate:        futureDate(),
		NumberOfTravelers: 2,
		PaymentMethod:     "whatsapp",
		WhatsAppNumber:    "+7 700 123 45 67",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	resp := envelope(t, w)
	assert.Equal(t, "success", resp["status"])

	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "https://wa.me?phone=1&text=hi", data["whatsapp_url"])

	created := data["booking"].(map[string]interface{})
	assert.Equal(t, "pending", created["status"])
	assert.Equal(t, float64(200), created["total_price"])
}

func TestCreateBookingRejectsBadBody(t *testing.T) {
	r := setupRouter(newFakeStore(), &models.User{ID: 1})

	w := doJSON(t, r, "POST", "/api/bookings", gin.H{"tour_id": 3})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "fail", envelope(t, w)["status"])
}

func TestCreateBookingUnknownTour(t *testing.T) {
	r := setupRouter(newFakeStore(), &models.User{ID: 1})

	w := doJSON(t, r, "POST", "/api/bookings", models.CreateBookingRequest{
		TourID:            404,
		TravelDate:        futureDate(),
		NumberOfTravelers: 1,
		PaymentMethod:     "cash",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetForeignBookingForbidden(t *testing.T) {
	store := newFakeStore()
	owner := int64(1)
	store.Create(context.Background(), repository.CreateBookingParams{
		Kind: booking.KindTour, ProductID: 3, UserID: &owner, Quantity: 1,
	})

	r := setupRouter(store, &models.User{ID: 2})

	w := doJSON(t, r, "GET", "/api/bookings/1", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	resp := envelope(t, w)
	assert.Equal(t, "fail", resp["status"])
	assert.Equal(t, "FORBIDDEN", resp["code"])
}

func TestCancelBookingTwiceConflicts(t *testing.T) {
	store := newFakeStore()
	owner := int64(1)
	store.Create(context.Background(), repository.CreateBookingParams{
		Kind: booking.KindTour, ProductID: 3, UserID: &owner, Quantity: 1,
	})

	r := setupRouter(store, &models.User{ID: owner})

	w := doJSON(t, r, "DELETE", "/api/bookings/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := envelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "cancelled", data["status"])

	w = doJSON(t, r, "DELETE", "/api/bookings/1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "STATE_CONFLICT", envelope(t, w)["code"])
}

func TestUpdateStatusRequiresAdmin(t *testing.T) {
	r := setupRouter(newFakeStore(), &models.User{ID: 1})

	w := doJSON(t, r, "PATCH", "/api/bookings/1/status", models.UpdateBookingStatusRequest{Status: "approved"})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateStatusAsAdmin(t *testing.T) {
	store := newFakeStore()
	owner := int64(2)
	store.Create(context.Background(), repository.CreateBookingParams{
		Kind: booking.KindTour, ProductID: 3, UserID: &owner, Quantity: 1,
	})

	r := setupRouter(store, &models.User{ID: 1, IsAdmin: true})

	w := doJSON(t, r, "PATCH", "/api/bookings/1/status", models.UpdateBookingStatusRequest{Status: "approved"})

	require.Equal(t, http.StatusOK, w.Code)
	data := envelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "approved", data["status"])
}

func TestCreateExperienceBookingAsGuest(t *testing.T) {
	store := newFakeStore()
	r := setupRouter(store, nil)

	w := doJSON(t, r, "POST", "/api/experiences/bookings", models.CreateExperienceBookingRequest{
		ExperienceID:   7,
		FullName:       "Guest Person",
		Email:          "guest@example.com",
		Phone:          "+44 20 7946 0018",
		NumberOfGuests: 4,
		BookingDate:    futureDate(),
	})

	require.Equal(t, http.StatusCreated, w.Code)
	resp := envelope(t, w)
	assert.Equal(t, "success", resp["status"])

	data := resp["data"].(map[string]interface{})
	ref, ok := data["booking_reference"].(string)
	require.True(t, ok)
	assert.Regexp(t, `^EXP-\d+-[0-9A-F]{6}$`, ref)

	created := store.bookings[1]
	assert.Nil(t, created.UserID)
	require.NotNil(t, created.GuestEmail)
	assert.Equal(t, "guest@example.com", *created.GuestEmail)
}

func TestCreateExperienceBookingRequiresEmail(t *testing.T) {
	r := setupRouter(newFakeStore(), nil)

	w := doJSON(t, r, "POST", "/api/experiences/bookings", gin.H{
		"experience_id": 7, "full_name": "Guest", "phone": "+1", "number_of_guests": 2, "booking_date": futureDate(),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingStats(t *testing.T) {
	store := newFakeStore()
	owner := int64(1)
	store.Create(context.Background(), repository.CreateBookingParams{
		Kind: booking.KindTour, ProductID: 3, UserID: &owner, Quantity: 1,
	})

	r := setupRouter(store, &models.User{ID: 1, IsAdmin: true})

	w := doJSON(t, r, "GET", "/api/bookings/stats/overview", nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := envelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
}
