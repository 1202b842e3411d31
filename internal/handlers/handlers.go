package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/apperrors"
	"wayfarer/internal/middleware"
	"wayfarer/internal/models"
	"wayfarer/internal/repository"
	"wayfarer/internal/service"
)

type Handlers struct {
	services *service.Services
	repos    *repository.Repositories
}

func NewHandlers(services *service.Services, repos *repository.Repositories) *Handlers {
	return &Handlers{
		services: services,
		repos:    repos,
	}
}

// Response envelope: {status: success|fail|error, data?, pagination?, message?}.
// "fail" covers client mistakes, "error" server faults.

func respondSuccess(c *gin.Context, httpStatus int, data interface{}) {
	c.JSON(httpStatus, gin.H{"status": "success", "data": data})
}

func respondPage(c *gin.Context, data interface{}, pagination models.Pagination) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": data, "pagination": pagination})
}

func respondFail(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{"status": "fail", "message": message})
}

// respondError translates the error taxonomy into the envelope. Causes
// of internal errors are logged, never sent to the client.
func respondError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}

	if appErr.Code == apperrors.CodeInternal {
		slog.Error("Request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", appErr.Err,
		)
		c.JSON(appErr.HTTPStatus, gin.H{"status": "error", "message": appErr.Message})
		return
	}

	c.JSON(appErr.HTTPStatus, gin.H{"status": "fail", "message": appErr.Message, "code": appErr.Code})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		respondFail(c, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func mustUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondFail(c, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return user, true
}

// HealthCheck - GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
