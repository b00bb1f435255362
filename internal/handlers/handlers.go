package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/outfitai/backend/internal/services"
)

type Handlers struct {
	Health         *HealthHandler
	Auth           *AuthHandler
	User           *UserHandler
	Wardrobe       *WardrobeHandler
	Recommendation *RecommendationHandler
	Outfits        *OutfitsHandler
}

func errorResponse(code, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// respondError maps service-layer errors onto HTTP statuses. Anything
// unrecognized is a 500 with a generic message; details stay in logs.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var malformed *services.MalformedResponseError
	var upstream *services.UpstreamError

	switch {
	case errors.Is(err, services.ErrServiceUnavailable):
		c.JSON(http.StatusServiceUnavailable, errorResponse(
			"SERVICE_UNAVAILABLE", "Recommendation service is not available"))
	case errors.Is(err, services.ErrUpstreamEmpty):
		c.JSON(http.StatusBadGateway, errorResponse(
			"UPSTREAM_EMPTY", "Generative service returned no content"))
	case errors.As(err, &upstream):
		logger.WithError(err).Error("Upstream generative call failed")
		c.JSON(http.StatusBadGateway, errorResponse(
			"UPSTREAM_FAILURE", "Generative service request failed"))
	case errors.As(err, &malformed):
		logger.WithFields(logrus.Fields{
			"reason":     malformed.Reason,
			"raw_prefix": malformed.RawPrefix,
		}).Error("Malformed generative response")
		c.JSON(http.StatusInternalServerError, errorResponse(
			"MALFORMED_RESPONSE", "Could not interpret the generated recommendation"))
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorResponse(
			"INVALID_CREDENTIALS", "Invalid email or password"))
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse(
			"ALREADY_EXISTS", "The resource already exists"))
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, errorResponse(
			"FORBIDDEN", "You do not have access to this resource"))
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(
			"NOT_FOUND", "The resource was not found"))
	default:
		logger.WithError(err).Error("Unhandled service error")
		c.JSON(http.StatusInternalServerError, errorResponse(
			"INTERNAL_SERVER_ERROR", "Internal server error"))
	}
}

func bindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse("INVALID_REQUEST_BODY", err.Error()))
}
