package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/user"
)

type AdminHandler struct {
	users        UserService
	appointments AppointmentService
}

func NewAdminHandler(users UserService, appointments AppointmentService) *AdminHandler {
	return &AdminHandler{users: users, appointments: appointments}
}

func (h *AdminHandler) Appointments(c *gin.Context) {
	page, err := h.appointments.ListAll(c.Request.Context(),
		parseQueryInt(c, "page", 1), parseQueryInt(c, "page_size", 20))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondAppointmentPage(c, page)
}

func (h *AdminHandler) Doctors(c *gin.Context) {
	page, err := h.users.ListDoctors(c.Request.Context(), c.Query("search"),
		parseQueryInt(c, "page", 1), parseQueryInt(c, "page_size", 20))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondUserPage(c, page)
}

func (h *AdminHandler) Patients(c *gin.Context) {
	page, err := h.users.ListPatients(c.Request.Context(), c.Query("search"),
		parseQueryInt(c, "page", 1), parseQueryInt(c, "page_size", 20))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondUserPage(c, page)
}

func (h *AdminHandler) DeleteDoctor(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.users.DeleteDoctor(c.Request.Context(), callerClaims(c).UserID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondMessage(c, "doctor deleted")
}

func (h *AdminHandler) DeletePatient(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.users.DeletePatient(c.Request.Context(), callerClaims(c).UserID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondMessage(c, "patient deleted")
}

func respondUserPage(c *gin.Context, page *user.PagedUsers) {
	c.JSON(http.StatusOK, PagedResponse[userResponse]{
		Data:       toUserResponses(page.Users),
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	})
}
