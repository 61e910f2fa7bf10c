package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/timeslot"
)

// ClinicHandler covers doctors publishing slots and the appointment
// lifecycle.
type ClinicHandler struct {
	scheduling   SchedulingService
	appointments AppointmentService
}

func NewClinicHandler(scheduling SchedulingService, appointments AppointmentService) *ClinicHandler {
	return &ClinicHandler{scheduling: scheduling, appointments: appointments}
}

func (h *ClinicHandler) CreateTimeSlot(c *gin.Context) {
	var req createTimeSlotRequest
	if !bindJSON(c, &req) {
		return
	}

	slot, err := h.scheduling.CreateSlot(c.Request.Context(), &timeslot.CreateTimeSlotCommand{
		DoctorID:  callerClaims(c).UserID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toTimeSlotResponse(slot))
}

func (h *ClinicHandler) BookAppointment(c *gin.Context) {
	var req bookAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	var date time.Time
	if req.AppointmentDate != "" {
		d, err := time.Parse(time.DateOnly, req.AppointmentDate)
		if err != nil {
			respondError(c, http.StatusBadRequest, "appointment_date must be formatted as YYYY-MM-DD")
			return
		}
		date = d
	}

	a, err := h.appointments.Book(c.Request.Context(), &appointment.BookCommand{
		PatientID:       callerClaims(c).UserID,
		DoctorID:        req.DoctorID,
		TimeSlotID:      req.TimeSlotID,
		AppointmentDate: date,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toAppointmentResponse(a))
}

func (h *ClinicHandler) DoctorAppointments(c *gin.Context) {
	page, err := h.appointments.ListDoctorAppointments(c.Request.Context(), callerClaims(c).UserID,
		parseQueryInt(c, "page", 1), parseQueryInt(c, "page_size", 20))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondAppointmentPage(c, page)
}

func (h *ClinicHandler) MarkAppointmentInactive(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	a, err := h.appointments.MarkInactive(c.Request.Context(), callerClaims(c).UserID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toAppointmentResponse(a))
}

func respondAppointmentPage(c *gin.Context, page *appointment.PagedAppointments) {
	out := make([]appointmentResponse, len(page.Appointments))
	for i, a := range page.Appointments {
		out[i] = toAppointmentResponse(a)
	}
	c.JSON(http.StatusOK, PagedResponse[appointmentResponse]{
		Data:       out,
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	})
}
