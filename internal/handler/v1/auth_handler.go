package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/user"
)

type AuthHandler struct {
	svc AuthService
	log *zap.Logger
}

func NewAuthHandler(svc AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

func (h *AuthHandler) RegisterPatient(c *gin.Context) {
	var req registerPatientRequest
	if !bindJSON(c, &req) {
		return
	}

	dob, err := time.Parse(time.DateOnly, req.DateOfBirth)
	if err != nil {
		respondError(c, http.StatusBadRequest, "date_of_birth must be formatted as YYYY-MM-DD")
		return
	}

	u, err := h.svc.RegisterPatient(c.Request.Context(), &user.RegisterPatientCommand{
		Username:    req.Username,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		DateOfBirth: dob,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toUserResponse(u))
}

func (h *AuthHandler) RegisterDoctor(c *gin.Context) {
	var req registerDoctorRequest
	if !bindJSON(c, &req) {
		return
	}

	u, err := h.svc.RegisterDoctor(c.Request.Context(), &user.RegisterDoctorCommand{
		Username:       req.Username,
		Password:       req.Password,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		PhoneNumber:    req.PhoneNumber,
		Specialization: req.Specialization,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toUserResponse(u))
}

func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	var req registerAdminRequest
	if !bindJSON(c, &req) {
		return
	}

	u, err := h.svc.RegisterAdmin(c.Request.Context(), &user.RegisterAdminCommand{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toUserResponse(u))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, token)
}
