package handler

import (
	"net/http"
	"strconv"

	"nexum/internal/models"
	"nexum/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type GroupHandler interface {
	CreateGroup(c *gin.Context)
	GetGroup(c *gin.Context)
	AddMember(c *gin.Context)
	PostMessage(c *gin.Context)
	ListMessages(c *gin.Context)
}

type groupHandler struct {
	groups   service.GroupService
	messages service.MessageService
	logger   *zap.Logger
}

func NewGroupHandler(groups service.GroupService, messages service.MessageService, logger *zap.Logger) GroupHandler {
	return &groupHandler{groups: groups, messages: messages, logger: logger}
}

// CreateGroup handles POST /groups
func (h *groupHandler) CreateGroup(c *gin.Context) {
	var input models.CreateGroupInput
	if !bindJSON(c, &input) {
		return
	}

	group, err := h.groups.CreateGroup(c.Request.Context(), input)
	if err != nil {
		writeError(c, h.logger, err, "Failed to create group")
		return
	}

	c.JSON(http.StatusCreated, group)
}

// GetGroup handles GET /groups/:groupId
func (h *groupHandler) GetGroup(c *gin.Context) {
	group, err := h.groups.GetGroup(c.Request.Context(), c.Param("groupId"))
	if err != nil {
		writeError(c, h.logger, err, "Failed to retrieve group")
		return
	}

	c.JSON(http.StatusOK, group)
}

// AddMember handles POST /groups/:groupId/members
func (h *groupHandler) AddMember(c *gin.Context) {
	var input models.AddMemberInput
	if !bindJSON(c, &input) {
		return
	}

	member, err := h.groups.AddMember(c.Request.Context(), c.Param("groupId"), input)
	if err != nil {
		writeError(c, h.logger, err, "Failed to add member")
		return
	}

	c.JSON(http.StatusCreated, member)
}

// PostMessage handles POST /groups/:groupId/messages
func (h *groupHandler) PostMessage(c *gin.Context) {
	var input models.PostMessageInput
	if !bindJSON(c, &input) {
		return
	}

	msg, err := h.messages.PostMessage(c.Request.Context(), c.Param("groupId"), input)
	if err != nil {
		writeError(c, h.logger, err, "Failed to post message")
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// ListMessages handles GET /groups/:groupId/messages
// Query parameters:
// - limit: maximum number of messages, newest first (optional)
func (h *groupHandler) ListMessages(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	messages, err := h.messages.ListMessages(c.Request.Context(), c.Param("groupId"), limit)
	if err != nil {
		writeError(c, h.logger, err, "Failed to retrieve messages")
		return
	}
	if messages == nil {
		messages = []*models.Message{}
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
