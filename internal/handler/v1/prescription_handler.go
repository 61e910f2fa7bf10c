package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/prescription"
)

type PrescriptionHandler struct {
	prescriptions PrescriptionService
	reminders     ReminderService
}

func NewPrescriptionHandler(prescriptions PrescriptionService, reminders ReminderService) *PrescriptionHandler {
	return &PrescriptionHandler{prescriptions: prescriptions, reminders: reminders}
}

func (h *PrescriptionHandler) Create(c *gin.Context) {
	var req createPrescriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.prescriptions.Create(c.Request.Context(), &prescription.CreatePrescriptionCommand{
		PatientID:      req.PatientID,
		DoctorID:       callerClaims(c).UserID,
		MedicationName: req.MedicationName,
		Dosage:         req.Dosage,
		Frequency:      req.Frequency,
		Duration:       req.Duration,
		Instructions:   req.Instructions,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toPrescriptionResponse(p))
}

func (h *PrescriptionHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	p, err := h.prescriptions.Get(c.Request.Context(), callerClaims(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toPrescriptionResponse(p))
}

func (h *PrescriptionHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req updatePrescriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.prescriptions.Update(c.Request.Context(), callerClaims(c).UserID, id, &prescription.UpdatePrescriptionCommand{
		MedicationName: req.MedicationName,
		Dosage:         req.Dosage,
		Instructions:   req.Instructions,
		IsActive:       req.IsActive,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toPrescriptionResponse(p))
}

func (h *PrescriptionHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.prescriptions.Delete(c.Request.Context(), callerClaims(c).UserID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondMessage(c, "prescription deleted")
}

func (h *PrescriptionHandler) ActivateReminders(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	activated, err := h.reminders.ActivateForPatient(c.Request.Context(), callerClaims(c).UserID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toReminderResponses(activated))
}

func (h *PrescriptionHandler) MyReminders(c *gin.Context) {
	rs, err := h.reminders.ListForPatient(c.Request.Context(), callerClaims(c).UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toReminderResponses(rs))
}
