package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jacquesmit/myriad-green/payments"
	"github.com/jacquesmit/myriad-green/repository"
	"github.com/jacquesmit/myriad-green/services"
)

const maxLastOrders = 100

type OrderController struct {
	Orders     repository.OrderRepository
	Provider   payments.Provider
	Reconciler *services.ReconcileService
	Logger     *zap.Logger
}

// GetOrder handles GET /order/:sessionId.
func (oc *OrderController) GetOrder(c *gin.Context) {
	sessionID := c.Param("sessionId")

	order, err := oc.Orders.FindBySession(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		oc.Logger.Error("order lookup failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// LastOrders handles GET /order/last/list — the most recent stored orders
// plus the provider's latest session, as a quick drift probe.
func (oc *OrderController) LastOrders(c *gin.Context) {
	limit := 10
	if l, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil && l > 0 {
		limit = l
		if limit > maxLastOrders {
			limit = maxLastOrders
		}
	}

	orders, err := oc.Orders.FindRecent(c.Request.Context(), limit)
	if err != nil {
		oc.Logger.Error("failed to fetch last orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch last orders"})
		return
	}

	// non-fatal
	providerLatest, err := oc.Provider.LatestSession(c.Request.Context())
	if err != nil {
		oc.Logger.Warn("failed to fetch latest provider session", zap.Error(err))
		providerLatest = nil
	}

	c.JSON(http.StatusOK, gin.H{
		"count":          len(orders),
		"providerLatest": providerLatest,
		"orders":         orders,
	})
}

// Reconcile handles GET /order/reconcile?days=N.
func (oc *OrderController) Reconcile(c *gin.Context) {
	days := 0
	if d, err := strconv.Atoi(c.DefaultQuery("days", "14")); err == nil {
		days = d
	}

	report, err := oc.Reconciler.Reconcile(c.Request.Context(), days)
	if err != nil {
		oc.Logger.Error("reconciliation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reconcile orders"})
		return
	}

	c.JSON(http.StatusOK, report)
}
