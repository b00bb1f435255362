package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Sentinel descriptions returned when analysis cannot run. The
// pipeline treats these as ordinary descriptions; inspiration-image
// problems must never abort a recommendation.
const (
	analysisUnavailableMsg = "Image analysis service unavailable."
	analysisFetchFailedMsg = "The inspirational image could not be retrieved."
	analysisFailedMsg      = "An error occurred while analyzing the inspirational image."
	analysisNoResultMsg    = "Could not generate a style analysis for the image."
)

const imageAnalysisPrompt = `You are a fashion analyst. Your task is to deconstruct the outfit in this image into a detailed, descriptive summary that can be used to recreate the look.

Analyze the following, if visible:
1. Overall Vibe: Describe the style (e.g., "Bohemian Chic", "Minimalist Streetwear", "Formal Classic", "Edgy Rocker").
2. Key Garments: Identify the main pieces (e.g., "distressed high-waisted denim jeans", "oversized cashmere sweater", "A-line floral midi dress"). Be specific about cut, fit, and texture.
3. Color Palette: Describe the main colors and any accent colors.
4. Accessories: Note any significant accessories like jewelry, bags, hats, or belts.
5. Occasion: What type of event would this outfit be suitable for?

Provide a concise, single-paragraph summary of your analysis.`

// ImageAnalyzer produces a free-text stylistic description of an
// inspiration image. It is stateless and safe for concurrent use.
type ImageAnalyzer struct {
	generator    TextGenerator
	httpClient   *http.Client
	fetchTimeout time.Duration
	logger       *logrus.Logger
}

func NewImageAnalyzer(generator TextGenerator, fetchTimeout time.Duration, logger *logrus.Logger) *ImageAnalyzer {
	if fetchTimeout <= 0 {
		fetchTimeout = 15 * time.Second
	}
	return &ImageAnalyzer{
		generator:    generator,
		httpClient:   &http.Client{Timeout: fetchTimeout},
		fetchTimeout: fetchTimeout,
		logger:       logger,
	}
}

// AnalyzeBytes analyzes an uploaded image. Always returns a usable
// description string; failures degrade to a sentinel message.
func (a *ImageAnalyzer) AnalyzeBytes(ctx context.Context, imageData []byte) string {
	if len(imageData) == 0 {
		return analysisNoResultMsg
	}
	return a.analyze(ctx, imageData)
}

// AnalyzeURL fetches a remote image (bounded by the configured
// timeout) and analyzes it. Always returns a usable description.
func (a *ImageAnalyzer) AnalyzeURL(ctx context.Context, imageURL string) string {
	if imageURL == "" {
		return analysisNoResultMsg
	}

	fetchCtx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	imageData, err := a.fetchImage(fetchCtx, imageURL)
	if err != nil {
		a.logger.WithError(err).WithField("url", imageURL).Warn("Failed to fetch inspirational image")
		return analysisFetchFailedMsg
	}
	return a.analyze(ctx, imageData)
}

func (a *ImageAnalyzer) analyze(ctx context.Context, imageData []byte) string {
	if !a.generator.Available() {
		return analysisUnavailableMsg
	}

	description, err := a.generator.GenerateWithImage(ctx, imageAnalysisPrompt, imageData, imageFormat(imageData))
	if err != nil {
		a.logger.WithError(err).Error("Inspirational image analysis failed")
		return analysisFailedMsg
	}

	description = strings.TrimSpace(description)
	if description == "" {
		return analysisNoResultMsg
	}

	a.logger.WithField("summary", truncate(description, 150)).Debug("Inspirational image analyzed")
	return description
}

func (a *ImageAnalyzer) fetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching image", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, 10<<20))
}

// imageFormat maps sniffed content to the subtype the generative API
// expects ("jpeg", "png", "webp"). Unknown content defaults to jpeg.
func imageFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	if subtype, ok := strings.CutPrefix(contentType, "image/"); ok {
		return subtype
	}
	return "jpeg"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
