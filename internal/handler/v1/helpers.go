package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/dialogue"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/reminder"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/timeslot"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/user"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/service"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type PagedResponse[T any] struct {
	Data       []T   `json:"data"`
	TotalCount int64 `json:"total_count"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, APIResponse[any]{Message: message})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: validErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, user.ErrDoctorNotFound),
		errors.Is(err, user.ErrPatientNotFound),
		errors.Is(err, timeslot.ErrSlotNotFound),
		errors.Is(err, appointment.ErrAppointmentNotFound),
		errors.Is(err, appointment.ErrNoInactiveFound),
		errors.Is(err, prescription.ErrPrescriptionNotFound),
		errors.Is(err, reminder.ErrNoInactiveReminders):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case errors.Is(err, user.ErrUsernameTaken),
		errors.Is(err, appointment.ErrAlreadyInactive):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.Is(err, timeslot.ErrSlotUnavailable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "SLOT_UNAVAILABLE"})

	case errors.Is(err, dialogue.ErrSessionBusy):
		c.JSON(http.StatusConflict, ErrorResponse{Error: dialogue.ErrSessionBusy.Error(), Code: "SESSION_BUSY"})

	case errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, timeslot.ErrInvalidSlotRange),
		errors.Is(err, timeslot.ErrSlotDoctorMismatch),
		errors.Is(err, reminder.ErrUnsupportedFrequency),
		errors.Is(err, prescription.ErrNothingToUpdate):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "access denied"})

	case errors.Is(err, service.ErrAccountInactive):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "account is inactive", Code: "ACCOUNT_INACTIVE"})

	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})

	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}
	return true
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + param + ": must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}

func parseQueryInt(c *gin.Context, key string, defaultVal int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return defaultVal
}

// callerClaims returns the claims the auth middleware stored. Routes behind
// RequireAuth always have them.
func callerClaims(c *gin.Context) *domain.Claims {
	v, _ := c.Get(claimsKey)
	claims, _ := v.(*domain.Claims)
	return claims
}
