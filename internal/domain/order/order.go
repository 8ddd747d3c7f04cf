package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/offer-engine/internal/domain/offer"
)

// QuoteRequest holds the input for pricing one order.
type QuoteRequest struct {
	OrderID      string
	CustomerID   string
	Items        []offer.LineItem
	Codes        []string
	TargetSystem string
	Shipping     decimal.Decimal
	// UsesThisOrder counts offer applications already recorded on the order.
	UsesThisOrder map[int64]int
	History       offer.CustomerHistory
	// Attributes and CustomerAttributes are matched by offer order and
	// customer rules.
	Attributes         map[string]string
	CustomerAttributes map[string]string
	// EvaluatedAt defaults to the current time when zero.
	EvaluatedAt time.Time
}

// Quote is a priced order with the offers applied to it.
type Quote struct {
	ID                string
	OrderID           string
	CustomerID        string
	Subtotal          decimal.Decimal
	Discounts         decimal.Decimal
	Shipping          decimal.Decimal
	ShippingDiscounts decimal.Decimal
	Total             decimal.Decimal
	Applied           []offer.AppliedOffer
	Rejected          []offer.Rejection
	ConfigErrors      []*offer.ConfigurationError
	// History is the customer's usage snapshot after this order.
	History     offer.CustomerHistory
	EvaluatedAt time.Time
}
