package handler

import (
	"net/http"

	"nexum/internal/models"
	"nexum/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler interface {
	CreateUser(c *gin.Context)
	AddInterest(c *gin.Context)
	AddBucketItem(c *gin.Context)
}

type userHandler struct {
	users  service.UserService
	logger *zap.Logger
}

func NewUserHandler(users service.UserService, logger *zap.Logger) UserHandler {
	return &userHandler{users: users, logger: logger}
}

// CreateUser handles POST /users
func (h *userHandler) CreateUser(c *gin.Context) {
	var input models.CreateUserInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), input)
	if err != nil {
		writeError(c, h.logger, err, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, user)
}

// AddInterest handles POST /users/:userId/interests
func (h *userHandler) AddInterest(c *gin.Context) {
	var input models.CreateInterestInput
	if !bindJSON(c, &input) {
		return
	}

	interest, err := h.users.AddInterest(c.Request.Context(), c.Param("userId"), input)
	if err != nil {
		writeError(c, h.logger, err, "Failed to add interest")
		return
	}

	c.JSON(http.StatusCreated, interest)
}

// AddBucketItem handles POST /users/:userId/bucket-items
func (h *userHandler) AddBucketItem(c *gin.Context) {
	var input models.CreateBucketItemInput
	if !bindJSON(c, &input) {
		return
	}

	item, err := h.users.AddBucketItem(c.Request.Context(), c.Param("userId"), input)
	if err != nil {
		writeError(c, h.logger, err, "Failed to add bucket item")
		return
	}

	c.JSON(http.StatusCreated, item)
}
