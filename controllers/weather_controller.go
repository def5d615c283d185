package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jacquesmit/myriad-green/services"
)

// Default coordinates: Pretoria, where most of the customer base is.
const (
	defaultLatitude  = "-25.75"
	defaultLongitude = "28.19"
)

type WeatherController struct {
	Weather *services.WeatherService
	Logger  *zap.Logger
}

// GetWeather handles GET /api/weather — a cached proxy for the site's
// weather widget.
func (wc *WeatherController) GetWeather(c *gin.Context) {
	lat := c.DefaultQuery("lat", defaultLatitude)
	lon := c.DefaultQuery("lon", defaultLongitude)

	body, err := wc.Weather.CurrentWeather(c.Request.Context(), lat, lon)
	if err != nil {
		wc.Logger.Warn("weather proxy failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch weather"})
		return
	}

	c.Data(http.StatusOK, "application/json", body)
}
