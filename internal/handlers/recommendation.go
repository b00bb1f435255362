package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/outfitai/backend/internal/middleware"
	"github.com/outfitai/backend/internal/services"
	"github.com/outfitai/backend/pkg/models"
)

const maxInspirationImageBytes = 10 << 20

type RecommendationHandler struct {
	recommender *services.RecommenderService
	users       services.UserStore
	wardrobe    WardrobeStore
	logger      *logrus.Logger
}

func NewRecommendationHandler(
	recommender *services.RecommenderService,
	users services.UserStore,
	wardrobe WardrobeStore,
	logger *logrus.Logger,
) *RecommendationHandler {
	return &RecommendationHandler{
		recommender: recommender,
		users:       users,
		wardrobe:    wardrobe,
		logger:      logger,
	}
}

// Generate runs the recommendation pipeline. The request is either a
// JSON body, or multipart form data with a "request" JSON field and an
// optional "inspiration_image" file taking priority over any image URL.
func (h *RecommendationHandler) Generate(c *gin.Context) {
	reqCtx, imageBytes, imageFilename, ok := h.parseRequest(c)
	if !ok {
		return
	}

	userID := middleware.UserID(c)
	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	wardrobe, err := h.wardrobe.ListItems(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	rec, err := h.recommender.GenerateRecommendation(
		c.Request.Context(), user, wardrobe, reqCtx, imageBytes, imageFilename)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *RecommendationHandler) parseRequest(c *gin.Context) (*models.RecommendationContext, []byte, string, bool) {
	var reqCtx models.RecommendationContext

	contentType := c.ContentType()
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		if err := c.ShouldBindJSON(&reqCtx); err != nil {
			bindingError(c, err)
			return nil, nil, "", false
		}
		return &reqCtx, nil, "", true
	}

	requestJSON := c.PostForm("request")
	if requestJSON == "" {
		c.JSON(http.StatusBadRequest, errorResponse(
			"MISSING_REQUEST_FIELD", "Multipart requests need a 'request' JSON field"))
		return nil, nil, "", false
	}
	if err := json.Unmarshal([]byte(requestJSON), &reqCtx); err != nil {
		bindingError(c, err)
		return nil, nil, "", false
	}
	if reqCtx.EventType == "" {
		c.JSON(http.StatusBadRequest, errorResponse(
			"MISSING_EVENT_TYPE", "event_type is required"))
		return nil, nil, "", false
	}

	fileHeader, err := c.FormFile("inspiration_image")
	if err != nil {
		// No upload attached; URL or profile-picture inspiration may
		// still apply.
		return &reqCtx, nil, "", true
	}
	if fileHeader.Size > maxInspirationImageBytes {
		c.JSON(http.StatusBadRequest, errorResponse(
			"IMAGE_TOO_LARGE", "Inspiration image exceeds the 10MB limit"))
		return nil, nil, "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.WithError(err).Warn("Failed to open uploaded inspiration image")
		c.JSON(http.StatusBadRequest, errorResponse(
			"INVALID_IMAGE", "Could not read the uploaded image"))
		return nil, nil, "", false
	}
	defer file.Close()

	imageBytes, err := io.ReadAll(io.LimitReader(file, maxInspirationImageBytes))
	if err != nil {
		h.logger.WithError(err).Warn("Failed to read uploaded inspiration image")
		c.JSON(http.StatusBadRequest, errorResponse(
			"INVALID_IMAGE", "Could not read the uploaded image"))
		return nil, nil, "", false
	}
	return &reqCtx, imageBytes, fileHeader.Filename, true
}

func (h *RecommendationHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	recs, err := h.recommender.ListRecommendations(c.Request.Context(), middleware.UserID(c), limit, offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if recs == nil {
		recs = []models.GeneratedRecommendation{}
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

func (h *RecommendationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(
			"INVALID_RECOMMENDATION_ID", "Invalid recommendation ID"))
		return
	}

	rec, err := h.recommender.GetRecommendation(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
