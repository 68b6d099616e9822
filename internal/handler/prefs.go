package handler

import (
	"net/http"

	"nexum/internal/middleware"
	"nexum/internal/models"
	"nexum/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PrefsHandler interface {
	GetPrefs(c *gin.Context)
	UpdatePrefs(c *gin.Context)
}

type prefsHandler struct {
	prefs  service.PrefsService
	logger *zap.Logger
}

func NewPrefsHandler(prefs service.PrefsService, logger *zap.Logger) PrefsHandler {
	return &prefsHandler{prefs: prefs, logger: logger}
}

// GetPrefs handles GET /groups/:groupId/ai-prefs
func (h *prefsHandler) GetPrefs(c *gin.Context) {
	prefs, err := h.prefs.GetPrefs(c.Request.Context(), c.Param("groupId"))
	if err != nil {
		writeError(c, h.logger, err, "prefs failed")
		return
	}

	c.JSON(http.StatusOK, prefs)
}

// UpdatePrefs handles POST /groups/:groupId/ai-prefs
// Only a group leader may change preferences.
func (h *prefsHandler) UpdatePrefs(c *gin.Context) {
	var input models.UpdateAIPrefsInput
	if !bindOptionalJSON(c, &input) {
		return
	}

	prefs, err := h.prefs.UpdatePrefs(c.Request.Context(), c.Param("groupId"), middleware.ClaimFrom(c), input)
	if err != nil {
		writeError(c, h.logger, err, "prefs failed")
		return
	}

	c.JSON(http.StatusOK, prefs)
}
