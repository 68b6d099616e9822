package handler

import (
	"net/http"

	"nexum/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AssistantHandler interface {
	Chat(c *gin.Context)
}

type assistantHandler struct {
	assistant service.Assistant
	logger    *zap.Logger
}

func NewAssistantHandler(assistant service.Assistant, logger *zap.Logger) AssistantHandler {
	return &assistantHandler{assistant: assistant, logger: logger}
}

type chatRequest struct {
	Message string `json:"message"`
}

// Chat handles POST /api/chat
func (h *assistantHandler) Chat(c *gin.Context) {
	var req chatRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	text, err := h.assistant.Ask(c.Request.Context(), req.Message)
	if err != nil {
		writeError(c, h.logger, err, "OpenAI request failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}
