package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/booking"
	"wayfarer/internal/middleware"
	"wayfarer/internal/models"
)

// Experience booking handlers. Creation is public so guests can book;
// a logged-in user is attached when the request carries credentials.

// CreateExperienceBooking - POST /api/experiences/bookings
func (h *Handlers) CreateExperienceBooking(c *gin.Context) {
	var req models.CreateExperienceBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}

	var userID *int64
	if user, ok := middleware.CurrentUser(c); ok {
		userID = &user.ID
	}

	result, err := h.services.Bookings.CreateExperienceBooking(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{
		"booking":           result.Detail,
		"booking_reference": result.Detail.Reference,
	})
}

// ListExperienceBookings - GET /api/experiences/bookings (admin)
func (h *Handlers) ListExperienceBookings(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	filters := bookingFiltersFromQuery(c)

	list, err := h.services.Bookings.List(c.Request.Context(), booking.KindExperience, filters, user)
	if err != nil {
		respondError(c, err)
		return
	}

	respondPage(c, list.Records, list.Pagination)
}

// UpdateExperienceBookingStatus - PATCH /api/experiences/bookings/:id/status (admin)
// Unlike tour bookings, payment_status may be set directly here.
func (h *Handlers) UpdateExperienceBookingStatus(c *gin.Context) {
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

	detail, err := h.services.Bookings.UpdateStatus(c.Request.Context(), booking.KindExperience, id, req, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, detail)
}
