package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outfitai/backend/internal/config"
	"github.com/outfitai/backend/pkg/models"
)

type fakeGenerator struct {
	available  bool
	response   string
	err        error
	lastPrompt string
}

func (g *fakeGenerator) Available() bool { return g.available }

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.lastPrompt = prompt
	return g.response, g.err
}

func (g *fakeGenerator) GenerateWithImage(context.Context, string, []byte, string) (string, error) {
	return "", ErrServiceUnavailable
}

type fakeAnalyzer struct {
	description string
}

func (a *fakeAnalyzer) AnalyzeBytes(context.Context, []byte) string { return a.description }
func (a *fakeAnalyzer) AnalyzeURL(context.Context, string) string   { return a.description }

type memRecStore struct {
	recs map[uuid.UUID]*models.GeneratedRecommendation
}

func newMemRecStore() *memRecStore {
	return &memRecStore{recs: map[uuid.UUID]*models.GeneratedRecommendation{}}
}

func (s *memRecStore) CreateRecommendation(_ context.Context, rec *models.GeneratedRecommendation) error {
	s.recs[rec.ID] = rec
	return nil
}

func (s *memRecStore) GetRecommendation(_ context.Context, id uuid.UUID) (*models.GeneratedRecommendation, error) {
	rec, ok := s.recs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *memRecStore) ListRecommendations(_ context.Context, userID uuid.UUID, _, _ int) ([]models.GeneratedRecommendation, error) {
	var out []models.GeneratedRecommendation
	for _, rec := range s.recs {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

type memSavedStore struct {
	outfits map[uuid.UUID]*models.SavedOutfit
}

func newMemSavedStore() *memSavedStore {
	return &memSavedStore{outfits: map[uuid.UUID]*models.SavedOutfit{}}
}

func (s *memSavedStore) CreateSavedOutfit(_ context.Context, outfit *models.SavedOutfit) error {
	for _, existing := range s.outfits {
		if existing.UserID == outfit.UserID && existing.RecommendationID == outfit.RecommendationID {
			return ErrConflict
		}
	}
	s.outfits[outfit.ID] = outfit
	return nil
}

func (s *memSavedStore) GetSavedOutfit(_ context.Context, userID, id uuid.UUID) (*models.SavedOutfit, error) {
	outfit, ok := s.outfits[id]
	if !ok || outfit.UserID != userID {
		return nil, ErrNotFound
	}
	return outfit, nil
}

func (s *memSavedStore) ListSavedOutfits(_ context.Context, userID uuid.UUID) ([]models.SavedOutfit, error) {
	var out []models.SavedOutfit
	for _, outfit := range s.outfits {
		if outfit.UserID == userID {
			out = append(out, *outfit)
		}
	}
	return out, nil
}

func (s *memSavedStore) DeleteSavedOutfit(_ context.Context, userID, id uuid.UUID) error {
	outfit, ok := s.outfits[id]
	if !ok || outfit.UserID != userID {
		return ErrNotFound
	}
	delete(s.outfits, id)
	return nil
}

func testPipelineConfig() *config.Config {
	return &config.Config{
		Scraper: config.ScraperConfig{
			DefaultRetailers: []string{"Myntra", "Ajio"},
			LimitPerRetailer: 5,
		},
		Pipeline: config.PipelineConfig{
			GenerationTimeout:  10 * time.Second,
			RecommendationsTTL: 15 * time.Minute,
		},
	}
}

func newTestRecommender(gen *fakeGenerator, recs RecommendationStore, saved SavedOutfitStore) *RecommenderService {
	resolver := NewProductResolver(nil, nil, nil, testLogger())
	return NewRecommenderService(
		gen, &fakeAnalyzer{}, nil, resolver, recs, saved,
		nil, nil, testPipelineConfig(), testLogger())
}

func TestGenerateRecommendation_EmptyWardrobe(t *testing.T) {
	gen := &fakeGenerator{available: true, response: validResponse}
	recs := newMemRecStore()
	svc := newTestRecommender(gen, recs, newMemSavedStore())

	user := &models.UserProfile{ID: uuid.New(), Gender: "Male", AgeRange: "25-34"}
	reqCtx := &models.RecommendationContext{EventType: "Job interview"}

	rec, err := svc.GenerateRecommendation(context.Background(), user, nil, reqCtx, nil, "")
	require.NoError(t, err)

	// The prompt must carry the explicit purchase directive for an
	// empty wardrobe.
	assert.Contains(t, gen.lastPrompt, emptyWardrobeDirective)
	assert.Contains(t, gen.lastPrompt, "Job interview")

	require.Len(t, rec.Components, 3)
	assert.Equal(t, "Job interview", rec.EventTypeContext)
	assert.Equal(t, user.ID, rec.UserID)

	// Persist-then-respond: the row must already be durable.
	stored, err := recs.GetRecommendation(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, stored.ID)

	// No product finder configured: every queried component falls back
	// to a search link.
	for _, comp := range rec.Components {
		assert.Empty(t, comp.ScrapedProducts)
		assert.NotEmpty(t, comp.FallbackSearchURL)
	}
}

func TestGenerateRecommendation_FencedResponseWithTrailingProse(t *testing.T) {
	gen := &fakeGenerator{
		available: true,
		response:  "```json\n" + validResponse + "\n```\nLet me know if you'd like adjustments!",
	}
	svc := newTestRecommender(gen, newMemRecStore(), newMemSavedStore())

	user := &models.UserProfile{ID: uuid.New()}
	reqCtx := &models.RecommendationContext{EventType: "Dinner party"}

	rec, err := svc.GenerateRecommendation(context.Background(), user, nil, reqCtx, nil, "")
	require.NoError(t, err)
	assert.Len(t, rec.Components, 3)
	assert.Equal(t, "A classic interview look.", rec.OverallReasoning)
}

func TestGenerateRecommendation_UnavailableFailsFast(t *testing.T) {
	gen := &fakeGenerator{available: false}
	recs := newMemRecStore()
	svc := newTestRecommender(gen, recs, newMemSavedStore())

	_, err := svc.GenerateRecommendation(context.Background(),
		&models.UserProfile{ID: uuid.New()}, nil,
		&models.RecommendationContext{EventType: "Brunch"}, nil, "")

	require.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Empty(t, gen.lastPrompt, "no prompt should be built when unavailable")
	assert.Empty(t, recs.recs)
}

func TestGenerateRecommendation_MalformedResponseNotPersisted(t *testing.T) {
	gen := &fakeGenerator{available: true, response: "Sorry, I cannot help with that."}
	recs := newMemRecStore()
	svc := newTestRecommender(gen, recs, newMemSavedStore())

	_, err := svc.GenerateRecommendation(context.Background(),
		&models.UserProfile{ID: uuid.New()}, nil,
		&models.RecommendationContext{EventType: "Brunch"}, nil, "")

	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Empty(t, recs.recs)
}

func TestGenerateRecommendation_UpstreamErrorPropagates(t *testing.T) {
	gen := &fakeGenerator{available: true, err: &UpstreamError{Op: "text generation", Err: errors.New("quota exceeded")}}
	svc := newTestRecommender(gen, newMemRecStore(), newMemSavedStore())

	_, err := svc.GenerateRecommendation(context.Background(),
		&models.UserProfile{ID: uuid.New()}, nil,
		&models.RecommendationContext{EventType: "Brunch"}, nil, "")

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
}

func TestSaveOutfit_Workflow(t *testing.T) {
	gen := &fakeGenerator{available: true, response: validResponse}
	recs := newMemRecStore()
	saved := newMemSavedStore()
	svc := newTestRecommender(gen, recs, saved)

	owner := &models.UserProfile{ID: uuid.New()}
	rec, err := svc.GenerateRecommendation(context.Background(), owner, nil,
		&models.RecommendationContext{EventType: "Concert"}, nil, "")
	require.NoError(t, err)

	t.Run("missing recommendation", func(t *testing.T) {
		_, err := svc.SaveOutfit(context.Background(), owner.ID,
			&models.SaveOutfitRequest{RecommendationID: uuid.New()})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("cross-user save forbidden", func(t *testing.T) {
		_, err := svc.SaveOutfit(context.Background(), uuid.New(),
			&models.SaveOutfitRequest{RecommendationID: rec.ID})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("first save succeeds", func(t *testing.T) {
		outfit, err := svc.SaveOutfit(context.Background(), owner.ID,
			&models.SaveOutfitRequest{RecommendationID: rec.ID})
		require.NoError(t, err)
		assert.Equal(t, rec.ID, outfit.RecommendationID)
		require.NotNil(t, outfit.Recommendation)
		assert.Equal(t, rec.ID, outfit.Recommendation.ID)
	})

	t.Run("duplicate save conflicts", func(t *testing.T) {
		_, err := svc.SaveOutfit(context.Background(), owner.ID,
			&models.SaveOutfitRequest{RecommendationID: rec.ID})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("delete then missing", func(t *testing.T) {
		outfits, err := svc.ListSavedOutfits(context.Background(), owner.ID)
		require.NoError(t, err)
		require.Len(t, outfits, 1)

		require.NoError(t, svc.DeleteSavedOutfit(context.Background(), owner.ID, outfits[0].ID))
		assert.ErrorIs(t, svc.DeleteSavedOutfit(context.Background(), owner.ID, outfits[0].ID), ErrNotFound)
	})
}

func TestGetRecommendation_HidesOtherUsersRows(t *testing.T) {
	gen := &fakeGenerator{available: true, response: validResponse}
	recs := newMemRecStore()
	svc := newTestRecommender(gen, recs, newMemSavedStore())

	owner := &models.UserProfile{ID: uuid.New()}
	rec, err := svc.GenerateRecommendation(context.Background(), owner, nil,
		&models.RecommendationContext{EventType: "Picnic"}, nil, "")
	require.NoError(t, err)

	_, err = svc.GetRecommendation(context.Background(), uuid.New(), rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.GetRecommendation(context.Background(), owner.ID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
}
