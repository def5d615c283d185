package models

// ProviderSession is the slice of a provider checkout session the
// reconciliation reporter cares about.
type ProviderSession struct {
	ID          string `json:"id"`
	CreatedISO  string `json:"created"`
	Status      string `json:"status"`
	AmountTotal int64  `json:"amount_total"` // minor units
	Currency    string `json:"currency"`
}

// MatchedTotals compares the stored cart total against the provider's
// reported amount for one matched session.
type MatchedTotals struct {
	StoreTotal       float64 `json:"storeTotal"`
	ProviderAmount   float64 `json:"providerAmount"`
	ProviderCurrency string  `json:"providerCurrency"`
	AmountMismatch   bool    `json:"amountMismatch"`
}

// MatchedPair is a session seen both in storage and at the provider.
type MatchedPair struct {
	SessionID       string        `json:"sessionId"`
	OrderID         string        `json:"orderId"`
	ProviderCreated string        `json:"providerCreated"`
	StoreCreated    string        `json:"storeCreated"`
	Status          string        `json:"status"`
	Totals          MatchedTotals `json:"totals"`
}

// MissingInStore is a provider session without a stored order.
type MissingInStore struct {
	SessionID       string `json:"sessionId"`
	ProviderCreated string `json:"providerCreated"`
	Status          string `json:"status"`
}

// MissingInProvider is a stored order whose session the provider no longer
// lists inside the window.
type MissingInProvider struct {
	SessionID    string `json:"sessionId"`
	OrderID      string `json:"orderId"`
	StoreCreated string `json:"storeCreated"`
}

// ReconcileTotals summarizes one reconciliation run.
type ReconcileTotals struct {
	Store    int `json:"store"`
	Provider int `json:"provider"`
	Matched  int `json:"matched"`
}

// ReconcileReport is the full reconciliation output.
type ReconcileReport struct {
	WindowDays        int                 `json:"windowDays"`
	Totals            ReconcileTotals     `json:"totals"`
	Matched           []MatchedPair       `json:"matched"`
	MissingInStore    []MissingInStore    `json:"missingInStore"`
	MissingInProvider []MissingInProvider `json:"missingInProvider"`
	ProviderError     string              `json:"providerError,omitempty"`
}
