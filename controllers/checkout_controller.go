package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jacquesmit/myriad-green/models"
	"github.com/jacquesmit/myriad-green/payments"
	"github.com/jacquesmit/myriad-green/services"
)

type CheckoutController struct {
	Checkout *services.CheckoutService
	BaseURL  string
	Logger   *zap.Logger
}

type checkoutRequest struct {
	Cart             []models.CartItem `json:"cart"`
	CustomerName     string            `json:"customerName"`
	CustomerPhone    string            `json:"customerPhone"`
	CustomerEmail    string            `json:"customerEmail"`
	CustomerAddress  string            `json:"customerAddress"`
	BookingID        string            `json:"bookingId"`
	BookingDateTime  string            `json:"bookingDateTime"`
	BookingHours     string            `json:"bookingHours"`
	BookingEmergency bool              `json:"bookingEmergency"`
	BookingMessage   string            `json:"bookingMessage"`
}

// CreateCheckoutSession handles POST /create-checkout-session.
func (cc *CheckoutController) CreateCheckoutSession(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	origin := c.GetHeader("Origin")
	if origin == "" {
		origin = cc.BaseURL
	}

	url, err := cc.Checkout.CreateCheckoutSession(c.Request.Context(), services.CheckoutRequest{
		Cart:             req.Cart,
		CustomerName:     req.CustomerName,
		CustomerPhone:    req.CustomerPhone,
		CustomerEmail:    req.CustomerEmail,
		CustomerAddress:  req.CustomerAddress,
		Origin:           origin,
		BookingID:        req.BookingID,
		BookingDateTime:  req.BookingDateTime,
		BookingHours:     req.BookingHours,
		BookingEmergency: req.BookingEmergency,
		BookingMessage:   req.BookingMessage,
	})
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}

		var providerErr *payments.ProviderError
		if errors.As(err, &providerErr) {
			cc.Logger.Error("checkout session creation failed",
				zap.String("type", providerErr.Type),
				zap.String("code", providerErr.Code),
				zap.Error(err),
			)
			// Non-sensitive diagnostic fields only; never provider secrets.
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Checkout failed. Please try again.",
				"message": providerErr.Message,
				"type":    providerErr.Type,
				"code":    providerErr.Code,
				"param":   providerErr.Param,
			})
			return
		}

		cc.Logger.Error("checkout session creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Checkout failed. Please try again.",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
