package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/booking"
	"wayfarer/internal/models"
)

// Tour booking handlers. All of these run behind BasicAuth.

// CreateBooking - POST /api/bookings
func (h *Handlers) CreateBooking(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.services.Bookings.CreateTourBooking(c.Request.Context(), user.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{
		"booking":      result.Detail,
		"whatsapp_url": result.WhatsAppURL,
	})
}

// ListBookings - GET /api/bookings
// Admins see every booking and may filter freely; everyone else only
// sees their own.
func (h *Handlers) ListBookings(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	filters := bookingFiltersFromQuery(c)

	list, err := h.services.Bookings.List(c.Request.Context(), booking.KindTour, filters, user)
	if err != nil {
		respondError(c, err)
		return
	}

	respondPage(c, list.Records, list.Pagination)
}

// GetBooking - GET /api/bookings/:id
func (h *Handlers) GetBooking(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	detail, err := h.services.Bookings.Get(c.Request.Context(), id, user)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, detail)
}

// CancelBooking - DELETE /api/bookings/:id
// Cancellation is a status transition, so the audit log and the refund
// cascade behave exactly as they do for admin updates.
func (h *Handlers) CancelBooking(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	detail, err := h.services.Bookings.Cancel(c.Request.Context(), id, user)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, detail)
}

// UpdateBookingStatus - PATCH /api/bookings/:id/status (admin)
func (h *Handlers) UpdateBookingStatus(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.services.Bookings.UpdateStatus(c.Request.Context(), booking.KindTour, id, req, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, detail)
}

// BookingStats - GET /api/bookings/stats/overview (admin)
func (h *Handlers) BookingStats(c *gin.Context) {
	stats, err := h.services.Bookings.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, stats)
}

func bookingFiltersFromQuery(c *gin.Context) models.BookingFilters {
	filters := models.BookingFilters{
		Status:    c.Query("status"),
		Search:    c.Query("search"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}

	filters.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	if v := c.Query("user_id"); v != "" {
		if userID, err := strconv.ParseInt(v, 10, 64); err == nil {
			filters.UserID = &userID
		}
	}

	return filters
}
