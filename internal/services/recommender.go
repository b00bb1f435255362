package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/outfitai/backend/internal/config"
	"github.com/outfitai/backend/pkg/models"
)

// RecommendationStore persists and reads generated recommendations.
// Rows are append-only; there is no update path.
type RecommendationStore interface {
	CreateRecommendation(ctx context.Context, rec *models.GeneratedRecommendation) error
	GetRecommendation(ctx context.Context, id uuid.UUID) (*models.GeneratedRecommendation, error)
	ListRecommendations(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.GeneratedRecommendation, error)
}

// SavedOutfitStore persists the save workflow. Implementations surface
// the unique (user, recommendation) violation as ErrConflict.
type SavedOutfitStore interface {
	CreateSavedOutfit(ctx context.Context, outfit *models.SavedOutfit) error
	GetSavedOutfit(ctx context.Context, userID, id uuid.UUID) (*models.SavedOutfit, error)
	ListSavedOutfits(ctx context.Context, userID uuid.UUID) ([]models.SavedOutfit, error)
	DeleteSavedOutfit(ctx context.Context, userID, id uuid.UUID) error
}

// WeatherProvider is the fail-soft weather lookup contract.
type WeatherProvider interface {
	GetContext(ctx context.Context, location, eventDate string) *models.WeatherContext
}

// ImageDescriber is the fail-soft inspiration-image analysis contract.
type ImageDescriber interface {
	AnalyzeBytes(ctx context.Context, imageData []byte) string
	AnalyzeURL(ctx context.Context, imageURL string) string
}

// EventPublisher emits fire-and-forget analytics events.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{})
}

// RecommenderService orchestrates the full recommendation pipeline:
// context formatting, inspiration analysis, generation, parsing,
// product resolution and persistence, plus the save workflow.
type RecommenderService struct {
	generator TextGenerator
	analyzer  ImageDescriber
	weather   WeatherProvider
	resolver  *ProductResolver
	recs      RecommendationStore
	saved     SavedOutfitStore
	events    EventPublisher
	redis     *redis.Client
	cfg       *config.Config
	logger    *logrus.Logger
}

func NewRecommenderService(
	generator TextGenerator,
	analyzer ImageDescriber,
	weather WeatherProvider,
	resolver *ProductResolver,
	recs RecommendationStore,
	saved SavedOutfitStore,
	events EventPublisher,
	redisClient *redis.Client,
	cfg *config.Config,
	logger *logrus.Logger,
) *RecommenderService {
	return &RecommenderService{
		generator: generator,
		analyzer:  analyzer,
		weather:   weather,
		resolver:  resolver,
		recs:      recs,
		saved:     saved,
		events:    events,
		redis:     redisClient,
		cfg:       cfg,
		logger:    logger,
	}
}

// GenerateRecommendation runs one pipeline pass for a user. imageBytes,
// when non-empty, is an uploaded inspiration image and takes priority
// over the URL in reqCtx, which takes priority over the profile-picture
// flag. The returned recommendation is durable before this returns.
func (s *RecommenderService) GenerateRecommendation(
	ctx context.Context,
	user *models.UserProfile,
	wardrobe []models.WardrobeItem,
	reqCtx *models.RecommendationContext,
	imageBytes []byte,
	imageFilename string,
) (*models.GeneratedRecommendation, error) {
	if !s.generator.Available() {
		recommendationRuns.WithLabelValues("unavailable").Inc()
		return nil, ErrServiceUnavailable
	}

	started := time.Now()
	inspirationSource, analyzedDesc, weatherCtx := s.gatherContext(ctx, user, reqCtx, imageBytes, imageFilename)
	recommendationDuration.WithLabelValues("context").Observe(time.Since(started).Seconds())

	prompt := BuildRecommendationPrompt(
		FormatUserProfile(user),
		FormatWardrobe(wardrobe),
		FormatEventContext(reqCtx, analyzedDesc),
		FormatWeather(weatherCtx),
	)

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.Pipeline.GenerationTimeout)
	defer cancel()

	genStart := time.Now()
	raw, err := s.generator.Generate(genCtx, prompt)
	recommendationDuration.WithLabelValues("generation").Observe(time.Since(genStart).Seconds())
	if err != nil {
		recommendationRuns.WithLabelValues("upstream_error").Inc()
		return nil, err
	}

	components, reasoning, err := ParseRecommendation(raw)
	if err != nil {
		recommendationRuns.WithLabelValues("malformed").Inc()
		return nil, err
	}

	resolveStart := time.Now()
	components = s.resolver.Resolve(ctx, components, ResolveOptions{
		Retailers:        s.retailersFor(reqCtx),
		LimitPerRetailer: reqCtx.ProductLimitPerRetailer,
		SortBy:           reqCtx.SortBy,
		MinRating:        reqCtx.MinRating,
	})
	recommendationDuration.WithLabelValues("resolution").Observe(time.Since(resolveStart).Seconds())

	rec := &models.GeneratedRecommendation{
		ID:                   uuid.New(),
		UserID:               user.ID,
		CreatedAt:            time.Now().UTC(),
		EventTypeContext:     reqCtx.EventType,
		StyleGoalContext:     reqCtx.StyleGoal,
		InspirationSource:    inspirationSource,
		AnalyzedImageSummary: analyzedDesc,
		Components:           components,
		OverallReasoning:     reasoning,
	}
	if err := s.recs.CreateRecommendation(ctx, rec); err != nil {
		recommendationRuns.WithLabelValues("persist_error").Inc()
		return nil, fmt.Errorf("failed to persist recommendation: %w", err)
	}

	recommendationRuns.WithLabelValues("success").Inc()
	s.publishEvent(ctx, "recommendation.generated", map[string]interface{}{
		"recommendation_id": rec.ID.String(),
		"user_id":           rec.UserID.String(),
		"event_type":        rec.EventTypeContext,
		"component_count":   len(rec.Components),
		"duration_ms":       time.Since(started).Milliseconds(),
	})

	s.logger.WithFields(logrus.Fields{
		"recommendation_id": rec.ID,
		"user_id":           rec.UserID,
		"components":        len(rec.Components),
		"duration":          time.Since(started),
	}).Info("Recommendation generated")
	return rec, nil
}

// gatherContext runs inspiration-image analysis and the weather lookup
// concurrently. Both are fail-soft; the join never returns an error.
func (s *RecommenderService) gatherContext(
	ctx context.Context,
	user *models.UserProfile,
	reqCtx *models.RecommendationContext,
	imageBytes []byte,
	imageFilename string,
) (inspirationSource, analyzedDesc string, weatherCtx *models.WeatherContext) {
	var wg sync.WaitGroup

	analyze := func(run func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run()
		}()
	}

	switch {
	case len(imageBytes) > 0:
		inspirationSource = fmt.Sprintf("uploaded image: %s", imageFilename)
		analyze(func() { analyzedDesc = s.analyzer.AnalyzeBytes(ctx, imageBytes) })
	case reqCtx.InspirationImageURL != "":
		inspirationSource = fmt.Sprintf("image URL: %s", reqCtx.InspirationImageURL)
		analyze(func() { analyzedDesc = s.analyzer.AnalyzeURL(ctx, reqCtx.InspirationImageURL) })
	case reqCtx.UseProfilePicture && user.ProfilePictureURL != "":
		inspirationSource = "profile picture"
		analyze(func() { analyzedDesc = s.analyzer.AnalyzeURL(ctx, user.ProfilePictureURL) })
	}

	if reqCtx.Location != "" && s.weather != nil {
		analyze(func() { weatherCtx = s.weather.GetContext(ctx, reqCtx.Location, reqCtx.EventDate) })
	}

	wg.Wait()
	return inspirationSource, analyzedDesc, weatherCtx
}

func (s *RecommenderService) retailersFor(reqCtx *models.RecommendationContext) []string {
	if len(reqCtx.Retailers) > 0 {
		return reqCtx.Retailers
	}
	return s.cfg.Scraper.DefaultRetailers
}

// GetRecommendation returns one of the user's recommendations. Results
// are cached in redis; rows are immutable so the cache never needs
// invalidation.
func (s *RecommenderService) GetRecommendation(ctx context.Context, userID, id uuid.UUID) (*models.GeneratedRecommendation, error) {
	if rec := s.cachedRecommendation(ctx, id); rec != nil {
		if rec.UserID != userID {
			return nil, ErrNotFound
		}
		return rec, nil
	}

	rec, err := s.recs.GetRecommendation(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.UserID != userID {
		// Do not leak existence of another user's recommendation.
		return nil, ErrNotFound
	}
	s.cacheRecommendation(ctx, rec)
	return rec, nil
}

func (s *RecommenderService) ListRecommendations(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.GeneratedRecommendation, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.recs.ListRecommendations(ctx, userID, limit, offset)
}

func recommendationCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("recommendation:%s", id)
}

func (s *RecommenderService) cachedRecommendation(ctx context.Context, id uuid.UUID) *models.GeneratedRecommendation {
	if s.redis == nil {
		return nil
	}
	data, err := s.redis.Get(ctx, recommendationCacheKey(id)).Bytes()
	if err != nil {
		return nil
	}
	var rec models.GeneratedRecommendation
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil
	}
	return &rec
}

func (s *RecommenderService) cacheRecommendation(ctx context.Context, rec *models.GeneratedRecommendation) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, recommendationCacheKey(rec.ID), data, s.cfg.Pipeline.RecommendationsTTL).Err(); err != nil {
		s.logger.WithError(err).Debug("Failed to cache recommendation")
	}
}

// SaveOutfit records that a user saved a recommendation. The
// recommendation must exist, must belong to the requester, and must not
// already be saved by them.
func (s *RecommenderService) SaveOutfit(ctx context.Context, userID uuid.UUID, req *models.SaveOutfitRequest) (*models.SavedOutfit, error) {
	rec, err := s.recs.GetRecommendation(ctx, req.RecommendationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			savedOutfitOps.WithLabelValues("save", "not_found").Inc()
		}
		return nil, err
	}
	if rec.UserID != userID {
		savedOutfitOps.WithLabelValues("save", "forbidden").Inc()
		return nil, ErrForbidden
	}

	outfit := &models.SavedOutfit{
		ID:               uuid.New(),
		UserID:           userID,
		RecommendationID: req.RecommendationID,
		SavedAt:          time.Now().UTC(),
		Rating:           req.Rating,
		Notes:            req.Notes,
	}
	if err := s.saved.CreateSavedOutfit(ctx, outfit); err != nil {
		if errors.Is(err, ErrConflict) {
			savedOutfitOps.WithLabelValues("save", "conflict").Inc()
		}
		return nil, err
	}

	savedOutfitOps.WithLabelValues("save", "success").Inc()
	s.publishEvent(ctx, "outfit.saved", map[string]interface{}{
		"saved_outfit_id":   outfit.ID.String(),
		"recommendation_id": outfit.RecommendationID.String(),
		"user_id":           outfit.UserID.String(),
	})

	outfit.Recommendation = rec
	return outfit, nil
}

func (s *RecommenderService) GetSavedOutfit(ctx context.Context, userID, id uuid.UUID) (*models.SavedOutfit, error) {
	outfit, err := s.saved.GetSavedOutfit(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if rec, err := s.recs.GetRecommendation(ctx, outfit.RecommendationID); err == nil {
		outfit.Recommendation = rec
	}
	return outfit, nil
}

func (s *RecommenderService) ListSavedOutfits(ctx context.Context, userID uuid.UUID) ([]models.SavedOutfit, error) {
	return s.saved.ListSavedOutfits(ctx, userID)
}

func (s *RecommenderService) DeleteSavedOutfit(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.saved.DeleteSavedOutfit(ctx, userID, id); err != nil {
		savedOutfitOps.WithLabelValues("delete", "not_found").Inc()
		return err
	}
	savedOutfitOps.WithLabelValues("delete", "success").Inc()
	return nil
}

func (s *RecommenderService) publishEvent(ctx context.Context, eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, eventType, payload)
}
