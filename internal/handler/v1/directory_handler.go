package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain"
)

// DirectoryHandler serves doctor and patient profiles and doctors' open slots.
type DirectoryHandler struct {
	users      UserService
	scheduling SchedulingService
}

func NewDirectoryHandler(users UserService, scheduling SchedulingService) *DirectoryHandler {
	return &DirectoryHandler{users: users, scheduling: scheduling}
}

// ListDoctors filters by ?specialization= when given and otherwise pages
// through every doctor.
func (h *DirectoryHandler) ListDoctors(c *gin.Context) {
	if spec := strings.TrimSpace(c.Query("specialization")); spec != "" {
		doctors, err := h.users.DoctorsBySpecialization(c.Request.Context(), spec)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, toUserResponses(doctors))
		return
	}

	page, err := h.users.ListDoctors(c.Request.Context(), c.Query("search"),
		parseQueryInt(c, "page", 1), parseQueryInt(c, "page_size", 20))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondUserPage(c, page)
}

func (h *DirectoryHandler) GetDoctor(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	doctor, err := h.users.DoctorByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toUserResponse(doctor))
}

// GetPatient lets patients read their own profile; doctors and admins may
// read any.
func (h *DirectoryHandler) GetPatient(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	claims := callerClaims(c)
	if claims.Role == domain.RolePatient && claims.UserID != id {
		respondError(c, http.StatusForbidden, "access denied")
		return
	}

	patient, err := h.users.PatientByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toUserResponse(patient))
}

func (h *DirectoryHandler) DoctorSlots(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	slots, err := h.scheduling.AvailableSlots(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]timeSlotResponse, len(slots))
	for i, s := range slots {
		out[i] = toTimeSlotResponse(s)
	}
	respondOK(c, out)
}
