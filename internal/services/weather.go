package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/outfitai/backend/internal/config"
	"github.com/outfitai/backend/pkg/models"
)

// WeatherService resolves a location name into weather context for the
// prompt. Everything here is best-effort: any failure returns nil and
// the formatter renders the explicit "weather unavailable" marker.
type WeatherService struct {
	cfg        *config.WeatherConfig
	redis      *redis.Client
	httpClient *http.Client
	logger     *logrus.Logger
}

type coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

const geocodeCacheTTL = 24 * time.Hour

// forecastHorizonDays mirrors the upstream forecast API limit.
const forecastHorizonDays = 5

func NewWeatherService(cfg *config.WeatherConfig, redisClient *redis.Client, logger *logrus.Logger) *WeatherService {
	return &WeatherService{
		cfg:        cfg,
		redis:      redisClient,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// GetContext returns weather context for a location, or nil when the
// location is empty, the API is not configured, or any lookup fails.
func (s *WeatherService) GetContext(ctx context.Context, location, eventDate string) *models.WeatherContext {
	if location == "" || s.cfg.OpenWeatherAPIKey == "" {
		return nil
	}

	coords, err := s.geocode(ctx, location)
	if err != nil {
		s.logger.WithError(err).WithField("location", location).Warn("Geocoding failed")
		return nil
	}

	var targetDate time.Time
	if eventDate != "" {
		parsed, err := time.Parse("2006-01-02", eventDate)
		if err != nil {
			s.logger.WithField("event_date", eventDate).Warn("Invalid event date, using current weather")
		} else {
			targetDate = parsed
		}
	}

	today := time.Now().Truncate(24 * time.Hour)
	if !targetDate.IsZero() && !targetDate.Before(today) {
		daysAhead := int(targetDate.Sub(today).Hours() / 24)
		if daysAhead < forecastHorizonDays {
			if wc := s.forecast(ctx, coords, targetDate); wc != nil {
				wc.LocationName = titleCase(location)
				wc.EventDate = eventDate
				return wc
			}
			return nil
		}
		// Too far out for a forecast; fall back to current conditions.
	}

	wc := s.currentWeather(ctx, coords)
	if wc != nil {
		wc.LocationName = titleCase(location)
	}
	return wc
}

func (s *WeatherService) geocode(ctx context.Context, location string) (*coordinates, error) {
	cacheKey := fmt.Sprintf("geocode:%s", strings.ToLower(location))
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var coords coordinates
			if json.Unmarshal([]byte(cached), &coords) == nil {
				return &coords, nil
			}
		}
	}

	endpoint := fmt.Sprintf("%s/direct?q=%s&limit=1&appid=%s",
		s.cfg.GeocodeURL, url.QueryEscape(location), s.cfg.OpenWeatherAPIKey)

	var results []coordinates
	if err := s.getJSON(ctx, endpoint, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no coordinates found for %q", location)
	}

	if s.redis != nil {
		if data, err := json.Marshal(results[0]); err == nil {
			if err := s.redis.Set(ctx, cacheKey, data, geocodeCacheTTL).Err(); err != nil {
				s.logger.WithError(err).Debug("Failed to cache geocode result")
			}
		}
	}
	return &results[0], nil
}

type weatherResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

func (s *WeatherService) currentWeather(ctx context.Context, coords *coordinates) *models.WeatherContext {
	endpoint := fmt.Sprintf("%s/weather?lat=%f&lon=%f&units=metric&appid=%s",
		s.cfg.BaseURL, coords.Latitude, coords.Longitude, s.cfg.OpenWeatherAPIKey)

	var resp weatherResponse
	if err := s.getJSON(ctx, endpoint, &resp); err != nil {
		s.logger.WithError(err).Warn("Current weather fetch failed")
		return nil
	}
	if len(resp.Weather) == 0 {
		return nil
	}

	return &models.WeatherContext{
		TemperatureC: resp.Main.Temp,
		Condition:    resp.Weather[0].Main,
		Description:  resp.Weather[0].Description,
	}
}

type forecastResponse struct {
	List []struct {
		weatherResponse
		DtTxt string `json:"dt_txt"`
	} `json:"list"`
}

// forecast picks the forecast entry closest to noon on the event date.
func (s *WeatherService) forecast(ctx context.Context, coords *coordinates, eventDate time.Time) *models.WeatherContext {
	endpoint := fmt.Sprintf("%s/forecast?lat=%f&lon=%f&units=metric&appid=%s",
		s.cfg.BaseURL, coords.Latitude, coords.Longitude, s.cfg.OpenWeatherAPIKey)

	var resp forecastResponse
	if err := s.getJSON(ctx, endpoint, &resp); err != nil {
		s.logger.WithError(err).Warn("Weather forecast fetch failed")
		return nil
	}
	if len(resp.List) == 0 {
		return nil
	}

	target := time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), 12, 0, 0, 0, time.UTC)
	best := resp.List[0]
	bestDiff := math.MaxFloat64
	for _, entry := range resp.List {
		ts, err := time.Parse("2006-01-02 15:04:05", entry.DtTxt)
		if err != nil {
			continue
		}
		if diff := math.Abs(ts.Sub(target).Hours()); diff < bestDiff {
			bestDiff = diff
			best = entry
		}
	}
	if len(best.Weather) == 0 {
		return nil
	}

	return &models.WeatherContext{
		TemperatureC: best.Main.Temp,
		Condition:    best.Weather[0].Main,
		Description:  best.Weather[0].Description,
		IsForecast:   true,
	}
}

func (s *WeatherService) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// titleCase uppercases the first rune of each word in a location name
// for display ("udaipur, india" -> "Udaipur, India").
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
