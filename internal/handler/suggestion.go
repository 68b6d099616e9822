package handler

import (
	"net/http"

	"nexum/internal/models"
	"nexum/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SuggestionHandler interface {
	Suggest(c *gin.Context)
	ListSuggestions(c *gin.Context)
	ApplyAction(c *gin.Context)
}

type suggestionHandler struct {
	suggestions service.SuggestionService
	logger      *zap.Logger
}

func NewSuggestionHandler(suggestions service.SuggestionService, logger *zap.Logger) SuggestionHandler {
	return &suggestionHandler{suggestions: suggestions, logger: logger}
}

// Suggest handles POST /groups/:groupId/suggest
func (h *suggestionHandler) Suggest(c *gin.Context) {
	var input models.SuggestInput
	if !bindOptionalJSON(c, &input) {
		return
	}

	suggestions, err := h.suggestions.Suggest(c.Request.Context(), c.Param("groupId"), input.Mode)
	if err != nil {
		writeError(c, h.logger, err, "suggest failed")
		return
	}
	if suggestions == nil {
		suggestions = []*models.Suggestion{}
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// ListSuggestions handles GET /groups/:groupId/suggestions
func (h *suggestionHandler) ListSuggestions(c *gin.Context) {
	suggestions, err := h.suggestions.ListSuggestions(c.Request.Context(), c.Param("groupId"))
	if err != nil {
		writeError(c, h.logger, err, "Failed to retrieve suggestions")
		return
	}
	if suggestions == nil {
		suggestions = []*models.Suggestion{}
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// ApplyAction handles POST /suggestions/:id/action
func (h *suggestionHandler) ApplyAction(c *gin.Context) {
	var input models.ActionInput
	if !bindOptionalJSON(c, &input) {
		return
	}

	suggestion, err := h.suggestions.ApplyAction(c.Request.Context(), c.Param("id"), input.Action)
	if err != nil {
		writeError(c, h.logger, err, "action failed")
		return
	}

	c.JSON(http.StatusOK, suggestion)
}
