package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/outfitai/backend/internal/middleware"
	"github.com/outfitai/backend/internal/services"
	"github.com/outfitai/backend/pkg/models"
)

type UserHandler struct {
	users  services.UserStore
	logger *logrus.Logger
}

func NewUserHandler(users services.UserStore, logger *logrus.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	user.FullName = req.FullName
	user.Gender = req.Gender
	user.AgeRange = req.AgeRange
	if req.BodyType != "" {
		user.BodyType = req.BodyType
	}
	if req.SkinTone != "" {
		user.SkinTone = req.SkinTone
	}
	user.HeightCm = req.HeightCm
	user.WeightKg = req.WeightKg
	user.BodyMeasurements = req.BodyMeasurements

	if err := h.users.UpdateUser(c.Request.Context(), user); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
