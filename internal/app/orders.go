package app

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/offer-engine/internal/catalog"
	"github.com/xenking/offer-engine/internal/domain/offer"
	"github.com/xenking/offer-engine/internal/domain/order"
)

type orderJSON struct {
	OrderID       string          `json:"order_id"`
	CustomerID    string          `json:"customer_id"`
	EvaluatedAt   time.Time       `json:"evaluated_at"`
	Codes         []string        `json:"codes"`
	TargetSystem  string          `json:"target_system"`
	Shipping      decimal.Decimal `json:"shipping"`
	UsesThisOrder map[int64]int   `json:"uses_this_order"`
	History       map[int64]int   `json:"history"`
	Items         []lineJSON      `json:"items"`

	Attributes         map[string]string `json:"attributes"`
	CustomerAttributes map[string]string `json:"customer_attributes"`
}

type lineJSON struct {
	ID         string            `json:"id"`
	SKU        string            `json:"sku"`
	Category   string            `json:"category"`
	Price      decimal.Decimal   `json:"price"`
	SalePrice  *decimal.Decimal  `json:"sale_price"`
	Quantity   int               `json:"quantity"`
	Attributes map[string]string `json:"attributes"`
}

func (o orderJSON) toRequest() order.QuoteRequest {
	items := make([]offer.LineItem, len(o.Items))
	for i, li := range o.Items {
		items[i] = offer.LineItem{
			ID:         li.ID,
			SKU:        li.SKU,
			Category:   li.Category,
			Price:      li.Price,
			SalePrice:  li.SalePrice,
			Quantity:   li.Quantity,
			Attributes: li.Attributes,
		}
	}

	return order.QuoteRequest{
		OrderID:       o.OrderID,
		CustomerID:    o.CustomerID,
		Items:         items,
		Codes:         o.Codes,
		TargetSystem:  o.TargetSystem,
		Shipping:      o.Shipping,
		UsesThisOrder: o.UsesThisOrder,
		History:       offer.CustomerHistory{CustomerID: o.CustomerID, Uses: o.History},
		EvaluatedAt:   o.EvaluatedAt,

		Attributes:         o.Attributes,
		CustomerAttributes: o.CustomerAttributes,
	}
}

// loadOrders reads the quote requests to process.
func loadOrders(_ context.Context, path string) ([]order.QuoteRequest, error) {
	r, err := catalog.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	var orders []orderJSON
	if err := json.NewDecoder(r).Decode(&orders); err != nil {
		return nil, errors.Wrapf(err, "decode orders %s", path)
	}

	reqs := make([]order.QuoteRequest, len(orders))
	for i, o := range orders {
		reqs[i] = o.toRequest()
	}
	return reqs, nil
}
