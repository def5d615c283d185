package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jacquesmit/myriad-green/controllers"
	"github.com/jacquesmit/myriad-green/middleware"
)

func RegisterRoutes(
	r *gin.Engine,
	checkout *controllers.CheckoutController,
	webhook *controllers.WebhookController,
	orders *controllers.OrderController,
	weather *controllers.WeatherController,
) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/create-checkout-session", middleware.RateLimitMiddleware(), checkout.CreateCheckoutSession)

	// Stripe webhook (raw body, no rate limiting)
	r.POST("/stripe/webhook", webhook.HandleStripeWebhook)

	orderGroup := r.Group("/order")
	orderGroup.GET("/last/list", orders.LastOrders)
	orderGroup.GET("/reconcile", orders.Reconcile)
	orderGroup.GET("/:sessionId", orders.GetOrder)

	r.GET("/api/weather", weather.GetWeather)
}
