package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/models"
	"wayfarer/internal/repository"
)

// Experience catalog handlers, mirroring the tour catalog minus the
// itinerary and service inclusions.

// ListExperiences - GET /api/experiences
func (h *Handlers) ListExperiences(c *gin.Context) {
	activeOnly := c.Query("all") != "true"

	experiences, err := h.repos.Experiences.List(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, experiences)
}

// GetExperience - GET /api/experiences/:id
func (h *Handlers) GetExperience(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	exp, err := h.repos.Experiences.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if exp == nil {
		respondFail(c, http.StatusNotFound, "Experience not found")
		return
	}

	respondSuccess(c, http.StatusOK, exp)
}

// CreateExperience - POST /api/experiences (admin)
func (h *Handlers) CreateExperience(c *gin.Context) {
	var req models.CreateTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}

	exp := &models.Experience{
		Title:         req.Title,
		Description:   optionalField(req.Description),
		Category:      optionalField(req.Category),
		Location:      optionalField(req.Location),
		Duration:      optionalField(req.Duration),
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		IsActive:      true,
	}

	if err := h.repos.Experiences.Create(c.Request.Context(), exp); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, exp)
}

// UpdateExperience - PATCH /api/experiences/:id (admin)
func (h *Handlers) UpdateExperience(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UpdateTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}

	err := h.repos.Experiences.Update(c.Request.Context(), id, &req)
	if errors.Is(err, repository.ErrProductNotFound) {
		respondFail(c, http.StatusNotFound, "Experience not found")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	exp, err := h.repos.Experiences.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, exp)
}

// DeleteExperience - DELETE /api/experiences/:id (admin)
func (h *Handlers) DeleteExperience(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	err := h.repos.Experiences.Delete(c.Request.Context(), id)
	if errors.Is(err, repository.ErrProductNotFound) {
		respondFail(c, http.StatusNotFound, "Experience not found")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"deleted": id})
}
