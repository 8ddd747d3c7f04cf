package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/offer-engine/internal/domain/offer"
)

// ErrEmptyItems is returned when a quote request has no line items.
var ErrEmptyItems = errors.New("items required")

// Evaluator selects the offers that apply to an order.
type Evaluator interface {
	Evaluate(
		ctx context.Context,
		offers []offer.Offer,
		items []offer.LineItem,
		oc offer.OrderContext,
		h offer.CustomerHistory,
	) (*offer.Result, error)
}

// Service prices orders against the offer catalog.
type Service struct {
	offers    offer.Repository
	evaluator Evaluator
	now       func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(offers offer.Repository, evaluator Evaluator) *Service {
	return &Service{
		offers:    offers,
		evaluator: evaluator,
		now:       time.Now,
	}
}

// Quote loads the catalog, evaluates offers for the order and totals it.
// Merchandise discounts are capped at the subtotal and shipping discounts at
// the shipping charge.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	offers, err := s.offers.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list offers")
	}

	evaluatedAt := req.EvaluatedAt
	if evaluatedAt.IsZero() {
		evaluatedAt = s.now()
	}

	res, err := s.evaluator.Evaluate(ctx, offers, req.Items, offer.OrderContext{
		OrderID:       req.OrderID,
		CustomerID:    req.CustomerID,
		EvaluatedAt:   evaluatedAt,
		Codes:         req.Codes,
		TargetSystem:  req.TargetSystem,
		ShippingTotal: req.Shipping,
		UsesThisOrder: req.UsesThisOrder,

		Attributes:         req.Attributes,
		CustomerAttributes: req.CustomerAttributes,
	}, req.History)
	if err != nil {
		return nil, errors.Wrap(err, "evaluate offers")
	}

	subtotal := decimal.Zero
	for _, li := range req.Items {
		subtotal = subtotal.Add(li.Subtotal())
	}

	discounts := decimal.Min(res.Total(offer.TypeOrder).Add(res.Total(offer.TypeItem)), subtotal)
	shippingDiscounts := decimal.Min(res.Total(offer.TypeFulfillmentGroup), req.Shipping)

	// Total = subtotal - discounts + shipping - shipping discounts, floored at
	// zero and rounded to 2 decimal places.
	total := subtotal.Sub(discounts).Add(req.Shipping).Sub(shippingDiscounts)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return &Quote{
		ID:                uuid.New().String(),
		OrderID:           req.OrderID,
		CustomerID:        req.CustomerID,
		Subtotal:          subtotal.Round(2),
		Discounts:         discounts.Round(2),
		Shipping:          req.Shipping.Round(2),
		ShippingDiscounts: shippingDiscounts.Round(2),
		Total:             total.Round(2),
		Applied:           res.Applied,
		Rejected:          res.Rejected,
		ConfigErrors:      res.ConfigErrors,
		History:           res.History,
		EvaluatedAt:       evaluatedAt,
	}, nil
}
