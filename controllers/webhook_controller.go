package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jacquesmit/myriad-green/services"
)

type WebhookController struct {
	Webhook *services.WebhookService
	Logger  *zap.Logger
}

// HandleStripeWebhook handles POST /stripe/webhook. The body must stay raw
// for signature verification.
func (wc *WebhookController) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	if err := wc.Webhook.HandleWebhook(c.Request.Context(), payload, sigHeader); err != nil {
		wc.Logger.Warn("webhook rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
