package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/outfitai/backend/internal/middleware"
	"github.com/outfitai/backend/pkg/models"
)

// WardrobeStore is the wardrobe persistence contract, implemented by
// repository.WardrobeRepository.
type WardrobeStore interface {
	CreateItem(ctx context.Context, item *models.WardrobeItem) error
	GetItem(ctx context.Context, userID, id uuid.UUID) (*models.WardrobeItem, error)
	ListItems(ctx context.Context, userID uuid.UUID) ([]models.WardrobeItem, error)
	UpdateItem(ctx context.Context, item *models.WardrobeItem) error
	DeleteItem(ctx context.Context, userID, id uuid.UUID) error
	MarkWorn(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID, eventContext string) error
}

type WardrobeHandler struct {
	wardrobe WardrobeStore
	logger   *logrus.Logger
}

func NewWardrobeHandler(wardrobe WardrobeStore, logger *logrus.Logger) *WardrobeHandler {
	return &WardrobeHandler{wardrobe: wardrobe, logger: logger}
}

func (h *WardrobeHandler) List(c *gin.Context) {
	items, err := h.wardrobe.ListItems(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if items == nil {
		items = []models.WardrobeItem{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *WardrobeHandler) Create(c *gin.Context) {
	var req models.WardrobeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}
	if !req.Category.Valid() {
		c.JSON(http.StatusBadRequest, errorResponse("INVALID_CATEGORY", "Unknown item category"))
		return
	}

	item := &models.WardrobeItem{
		ID:           uuid.New(),
		UserID:       middleware.UserID(c),
		Name:         req.Name,
		Category:     req.Category,
		Color:        req.Color,
		Material:     req.Material,
		Brand:        req.Brand,
		Size:         req.Size,
		ImageURL:     req.ImageURL,
		Notes:        req.Notes,
		AddedAt:      time.Now().UTC(),
		PurchaseDate: req.PurchaseDate,
	}
	if err := h.wardrobe.CreateItem(c.Request.Context(), item); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *WardrobeHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("INVALID_ITEM_ID", "Invalid wardrobe item ID"))
		return
	}

	var req models.WardrobeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}
	if !req.Category.Valid() {
		c.JSON(http.StatusBadRequest, errorResponse("INVALID_CATEGORY", "Unknown item category"))
		return
	}

	item, err := h.wardrobe.GetItem(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	item.Name = req.Name
	item.Category = req.Category
	item.Color = req.Color
	item.Material = req.Material
	item.Brand = req.Brand
	item.Size = req.Size
	item.ImageURL = req.ImageURL
	item.Notes = req.Notes
	item.PurchaseDate = req.PurchaseDate

	if err := h.wardrobe.UpdateItem(c.Request.Context(), item); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *WardrobeHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("INVALID_ITEM_ID", "Invalid wardrobe item ID"))
		return
	}

	if err := h.wardrobe.DeleteItem(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WardrobeHandler) MarkWorn(c *gin.Context) {
	var req models.MarkWornRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	if err := h.wardrobe.MarkWorn(c.Request.Context(), middleware.UserID(c), req.ItemIDs, req.EventContext); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked_worn": len(req.ItemIDs)})
}
