package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/outfitai/backend/internal/config"
)

// TextGenerator is the single-call contract to the generative backend.
// No retry happens at this layer; a blind retry of a generative call
// burns quota without a backoff policy around it.
type TextGenerator interface {
	Available() bool
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateWithImage(ctx context.Context, prompt string, imageData []byte, format string) (string, error)
}

type GeminiClient struct {
	client *genai.Client
	cfg    *config.GeminiConfig
	logger *logrus.Logger
}

// NewGeminiClient connects to the Gemini API. A missing API key is not
// a startup error: the client is constructed unavailable and every
// call fails fast with ErrServiceUnavailable, so the rest of the
// service keeps working.
func NewGeminiClient(ctx context.Context, cfg *config.GeminiConfig, logger *logrus.Logger) (*GeminiClient, error) {
	gc := &GeminiClient{cfg: cfg, logger: logger}

	if cfg.APIKey == "" {
		logger.Warn("Gemini API key not configured, generative features disabled")
		return gc, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	gc.client = client
	return gc, nil
}

func (gc *GeminiClient) Available() bool {
	return gc.client != nil
}

func (gc *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if gc.client == nil {
		return "", ErrServiceUnavailable
	}

	model := gc.client.GenerativeModel(gc.cfg.TextModel)
	model.SetTemperature(gc.cfg.Temperature)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &UpstreamError{Op: "text generation", Err: err}
	}

	text := collectText(resp)
	if text == "" {
		return "", ErrUpstreamEmpty
	}
	return text, nil
}

func (gc *GeminiClient) GenerateWithImage(ctx context.Context, prompt string, imageData []byte, format string) (string, error) {
	if gc.client == nil {
		return "", ErrServiceUnavailable
	}

	model := gc.client.GenerativeModel(gc.cfg.VisionModel)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt), genai.ImageData(format, imageData))
	if err != nil {
		return "", &UpstreamError{Op: "vision generation", Err: err}
	}

	text := collectText(resp)
	if text == "" {
		return "", ErrUpstreamEmpty
	}
	return text, nil
}

func (gc *GeminiClient) Close() error {
	if gc.client == nil {
		return nil
	}
	return gc.client.Close()
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String())
}
