package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/models"
	"wayfarer/internal/repository"
)

// Tour catalog handlers. Reads are public; mutations are admin-only and
// registered behind RequireAdmin.

// ListTours - GET /api/tours
func (h *Handlers) ListTours(c *gin.Context) {
	// Admin console passes all=true to include inactive tours
	activeOnly := c.Query("all") != "true"

	tours, err := h.repos.Tours.List(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, tours)
}

// GetTour - GET /api/tours/:id
func (h *Handlers) GetTour(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	tour, err := h.repos.Tours.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if tour == nil {
		respondFail(c, http.StatusNotFound, "Tour not found")
		return
	}

	respondSuccess(c, http.StatusOK, tour)
}

// CreateTour - POST /api/tours (admin)
func (h *Handlers) CreateTour(c *gin.Context) {
	var req models.CreateTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}

	tour := &models.Tour{
		Title:         req.Title,
		Description:   optionalField(req.Description),
		Category:      optionalField(req.Category),
		Location:      optionalField(req.Location),
		Duration:      optionalField(req.Duration),
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		IsActive:      true,
	}

	if err := h.repos.Tours.Create(c.Request.Context(), tour); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, tour)
}

// UpdateTour - PATCH /api/tours/:id (admin)
func (h *Handlers) UpdateTour(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UpdateTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}

	err := h.repos.Tours.Update(c.Request.Context(), id, &req)
	if errors.Is(err, repository.ErrProductNotFound) {
		respondFail(c, http.StatusNotFound, "Tour not found")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	tour, err := h.repos.Tours.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, tour)
}

// DeleteTour - DELETE /api/tours/:id (admin)
func (h *Handlers) DeleteTour(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	err := h.repos.Tours.Delete(c.Request.Context(), id)
	if errors.Is(err, repository.ErrProductNotFound) {
		respondFail(c, http.StatusNotFound, "Tour not found")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"deleted": id})
}

// ReplaceTourItinerary - PUT /api/tours/:id/itinerary (admin)
func (h *Handlers) ReplaceTourItinerary(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var items []models.ItineraryItem
	if err := c.ShouldBindJSON(&items); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.repos.Tours.ReplaceItinerary(c.Request.Context(), id, items); err != nil {
		respondError(c, err)
		return
	}

	tour, err := h.repos.Tours.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, tour)
}

func optionalField(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
