package services

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/jacquesmit/myriad-green/models"
	"github.com/jacquesmit/myriad-green/payments"
	"github.com/jacquesmit/myriad-green/repository"
)

const (
	defaultReconcileDays = 14
	maxReconcileDays     = 90
	maxProviderSessions  = 300

	// Totals are compared in major units; a cent of float slack.
	amountTolerance = 0.01
)

// ReconcileService is the read-only drift detector: it lines up stored orders
// against the provider's session list and reports what only one side has.
type ReconcileService struct {
	provider payments.Provider
	orders   repository.OrderRepository
	logger   *zap.Logger
}

func NewReconcileService(provider payments.Provider, orders repository.OrderRepository, logger *zap.Logger) *ReconcileService {
	return &ReconcileService{provider: provider, orders: orders, logger: logger}
}

// Reconcile builds the report for the given lookback window. Provider
// failures are soft: the report carries the error and whatever partial page
// the provider returned.
func (s *ReconcileService) Reconcile(ctx context.Context, days int) (*models.ReconcileReport, error) {
	if days <= 0 {
		days = defaultReconcileDays
	}
	if days > maxReconcileDays {
		days = maxReconcileDays
	}
	since := time.Now().AddDate(0, 0, -days)

	orders, err := s.orders.FindSince(ctx, since)
	if err != nil {
		return nil, err
	}

	report := &models.ReconcileReport{
		WindowDays:        days,
		Matched:           []models.MatchedPair{},
		MissingInStore:    []models.MissingInStore{},
		MissingInProvider: []models.MissingInProvider{},
	}

	sessions, err := s.provider.ListCheckoutSessions(ctx, since, maxProviderSessions)
	if err != nil {
		s.logger.Warn("provider session list failed", zap.Error(err))
		report.ProviderError = err.Error()
	}

	ordersBySession := make(map[string]models.Order, len(orders))
	for _, o := range orders {
		if o.SessionID != "" {
			ordersBySession[o.SessionID] = o
		}
	}
	sessionByID := make(map[string]models.ProviderSession, len(sessions))
	for _, sess := range sessions {
		sessionByID[sess.ID] = sess
	}

	for _, sess := range sessions {
		order, ok := ordersBySession[sess.ID]
		if !ok {
			report.MissingInStore = append(report.MissingInStore, models.MissingInStore{
				SessionID:       sess.ID,
				ProviderCreated: sess.CreatedISO,
				Status:          sess.Status,
			})
			continue
		}

		storeTotal := models.CartTotalMajorUnits(order.Cart)
		providerAmount := float64(sess.AmountTotal) / 100
		report.Matched = append(report.Matched, models.MatchedPair{
			SessionID:       sess.ID,
			OrderID:         order.ID.String(),
			ProviderCreated: sess.CreatedISO,
			StoreCreated:    order.CreatedAt.UTC().Format(time.RFC3339),
			Status:          sess.Status,
			Totals: models.MatchedTotals{
				StoreTotal:       storeTotal,
				ProviderAmount:   providerAmount,
				ProviderCurrency: sess.Currency,
				AmountMismatch:   math.Abs(storeTotal-providerAmount) > amountTolerance,
			},
		})
	}

	for _, o := range orders {
		if o.SessionID == "" {
			continue
		}
		if _, ok := sessionByID[o.SessionID]; !ok {
			report.MissingInProvider = append(report.MissingInProvider, models.MissingInProvider{
				SessionID:    o.SessionID,
				OrderID:      o.ID.String(),
				StoreCreated: o.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
	}

	report.Totals = models.ReconcileTotals{
		Store:    len(orders),
		Provider: len(sessions),
		Matched:  len(report.Matched),
	}
	return report, nil
}
