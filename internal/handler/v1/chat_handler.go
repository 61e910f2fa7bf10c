package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/dialogue"
)

type ChatHandler struct {
	chat  ChatService
	inbox ReminderInbox
	log   *zap.Logger
}

func NewChatHandler(chat ChatService, inbox ReminderInbox, log *zap.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, inbox: inbox, log: log}
}

// chatResponse is not wrapped in APIResponse: chat clients read the reply
// text straight from "response".
type chatResponse struct {
	Response string                `json:"response"`
	Doctors  []dialogue.DoctorInfo `json:"doctors,omitempty"`
}

func (h *ChatHandler) Message(c *gin.Context) {
	var req chatRequest
	if !bindJSON(c, &req) {
		return
	}

	claims := callerClaims(c)
	reply, err := h.chat.Turn(c.Request.Context(), claims.UserID, req.UserMessage)
	if errors.Is(err, dialogue.ErrSessionBusy) {
		respondServiceError(c, err)
		return
	}
	if err != nil {
		h.log.Error("chat turn could not be persisted",
			zap.String("patient_id", claims.UserID.String()),
			zap.Error(err),
		)
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, chatResponse{Response: reply.Response, Doctors: reply.Doctors})
}

func (h *ChatHandler) Reset(c *gin.Context) {
	if err := h.chat.Forget(c.Request.Context(), callerClaims(c).UserID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ChatHandler) Reminders(c *gin.Context) {
	respondOK(c, h.inbox.Drain(callerClaims(c).UserID))
}
