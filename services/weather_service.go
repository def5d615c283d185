package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultWeatherURL = "https://api.open-meteo.com/v1/forecast"
	weatherCacheTTL   = 10 * time.Minute
)

// WeatherService proxies the Open-Meteo current-weather endpoint for the
// site's weather widget, with a short Redis cache in front so the widget's
// polling never hammers the upstream. Cache is optional (nil client).
type WeatherService struct {
	cache      *redis.Client
	apiURL     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewWeatherService(cache *redis.Client, logger *zap.Logger) *WeatherService {
	return &WeatherService{
		cache:      cache,
		apiURL:     defaultWeatherURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     logger,
	}
}

// CurrentWeather returns the upstream JSON for the given coordinates.
func (s *WeatherService) CurrentWeather(ctx context.Context, lat, lon string) (json.RawMessage, error) {
	cacheKey := fmt.Sprintf("weather:%s,%s", lat, lon)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			return cached, nil
		}
	}

	query := url.Values{}
	query.Set("latitude", lat)
	query.Set("longitude", lon)
	query.Set("current_weather", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather upstream returned %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read weather response: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, body, weatherCacheTTL).Err(); err != nil {
			s.logger.Warn("weather cache write failed", zap.Error(err))
		}
	}
	return body, nil
}
