package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/outfitai/backend/internal/middleware"
	"github.com/outfitai/backend/internal/services"
	"github.com/outfitai/backend/pkg/models"
)

type OutfitsHandler struct {
	recommender *services.RecommenderService
	logger      *logrus.Logger
}

func NewOutfitsHandler(recommender *services.RecommenderService, logger *logrus.Logger) *OutfitsHandler {
	return &OutfitsHandler{recommender: recommender, logger: logger}
}

func (h *OutfitsHandler) Save(c *gin.Context) {
	var req models.SaveOutfitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	outfit, err := h.recommender.SaveOutfit(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, outfit)
}

func (h *OutfitsHandler) List(c *gin.Context) {
	outfits, err := h.recommender.ListSavedOutfits(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if outfits == nil {
		outfits = []models.SavedOutfit{}
	}
	c.JSON(http.StatusOK, gin.H{"saved_outfits": outfits})
}

func (h *OutfitsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("INVALID_OUTFIT_ID", "Invalid saved outfit ID"))
		return
	}

	outfit, err := h.recommender.GetSavedOutfit(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, outfit)
}

func (h *OutfitsHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("INVALID_OUTFIT_ID", "Invalid saved outfit ID"))
		return
	}

	if err := h.recommender.DeleteSavedOutfit(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
