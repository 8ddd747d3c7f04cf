package offer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Type tags which part of an order an offer discounts.
type Type string

const (
	// TypeOrder discounts the order subtotal.
	TypeOrder Type = "order"
	// TypeItem discounts individual target line items.
	TypeItem Type = "item"
	// TypeFulfillmentGroup discounts the shipping charge.
	TypeFulfillmentGroup Type = "fulfillment_group"
)

// DiscountType enumerates the supported discount strategies.
type DiscountType string

const (
	// DiscountPercentOff takes a percentage off the discounted base.
	DiscountPercentOff DiscountType = "percent_off"
	// DiscountAmountOff takes a fixed amount off, capped at the base.
	DiscountAmountOff DiscountType = "amount_off"
	// DiscountFixPrice sets the base to a fixed price.
	DiscountFixPrice DiscountType = "fix_price"
)

// RuleType controls how multiple criteria of one set combine.
type RuleType string

const (
	// RuleAll requires every criterion to be satisfied. It is the default.
	RuleAll RuleType = "all"
	// RuleAny requires at least one satisfied criterion.
	RuleAny RuleType = "any"
)

// Offer is a configured promotional discount rule. Offers are loaded
// read-only; evaluation never modifies them.
type Offer struct {
	ID           int64
	Name         string
	Description  string
	Type         Type
	DiscountType DiscountType
	Value        decimal.Decimal
	Priority     int

	StartDate *time.Time
	EndDate   *time.Time

	Combinable         bool
	Totalitarian       bool
	AutomaticallyAdded bool
	// Codes lists the codes that activate a non-automatic offer.
	Codes []string

	// MaxUses caps applications per order, 0 means unlimited.
	MaxUses int
	// MaxUsesPerCustomer caps applications across a customer's orders,
	// 0 means unlimited.
	MaxUsesPerCustomer int

	QualifyingItemSubtotal *decimal.Decimal
	MarketingMessage       string

	QualifierRule      RuleType
	TargetRule         RuleType
	QualifyingCriteria []Criteria
	TargetCriteria     []Criteria

	// OrderRules and CustomerRules gate eligibility before item matching.
	OrderRules    []EligibilityRule
	CustomerRules []EligibilityRule

	// TargetSystem restricts the offer to one sales channel. Empty matches all.
	TargetSystem     string
	ApplyToSalePrice bool
}

// Criteria requires at least Quantity units of line items matching Predicate.
type Criteria struct {
	Quantity  int
	Predicate Predicate
}

// LineItem is one order line as seen by the evaluator.
type LineItem struct {
	ID         string
	SKU        string
	Category   string
	Price      decimal.Decimal
	SalePrice  *decimal.Decimal
	Quantity   int
	Attributes map[string]string
}

// Subtotal returns Price * Quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// OrderContext carries the per-order inputs of one evaluation.
type OrderContext struct {
	OrderID     string
	CustomerID  string
	EvaluatedAt time.Time
	// Codes are the offer codes presented by the customer.
	Codes         []string
	TargetSystem  string
	ShippingTotal decimal.Decimal
	// UsesThisOrder counts applications already recorded on this order,
	// keyed by offer ID.
	UsesThisOrder map[int64]int
	// Attributes and CustomerAttributes feed order and customer rules.
	Attributes         map[string]string
	CustomerAttributes map[string]string
}

// CustomerHistory is a snapshot of a customer's offer usage across orders.
type CustomerHistory struct {
	CustomerID string
	Uses       map[int64]int
}

// UsesOf returns the recorded uses for an offer.
func (h CustomerHistory) UsesOf(id int64) int {
	return h.Uses[id]
}

// With returns a copy of the snapshot with delta uses added per offer.
func (h CustomerHistory) With(delta map[int64]int) CustomerHistory {
	uses := make(map[int64]int, len(h.Uses)+len(delta))
	for id, n := range h.Uses {
		uses[id] = n
	}
	for id, n := range delta {
		uses[id] += n
	}
	return CustomerHistory{CustomerID: h.CustomerID, Uses: uses}
}

// AppliedOffer is an offer selected for an order with its computed effect.
type AppliedOffer struct {
	Offer       Offer
	Uses        int
	Amount      decimal.Decimal
	TargetItems []LineItem
}

// RejectReason explains why an offer was filtered out.
type RejectReason string

const (
	RejectTargetSystem  RejectReason = "target_system"
	RejectCodeRequired  RejectReason = "code_required"
	RejectOrderRules    RejectReason = "order_rules"
	RejectCustomerRules RejectReason = "customer_rules"
	RejectNotStarted    RejectReason = "not_started"
	RejectExpired       RejectReason = "expired"
	RejectNotQualified  RejectReason = "not_qualified"
	RejectSubtotal      RejectReason = "qualifying_subtotal"
	RejectUsageExceeded RejectReason = "usage_exhausted"
	RejectConflict      RejectReason = "not_combinable"
	// RejectNoBenefit marks an offer that would take nothing off the order.
	RejectNoBenefit RejectReason = "no_benefit"
)

// Rejection records an offer that did not make it into the applied set.
type Rejection struct {
	OfferID int64
	Reason  RejectReason
}

// Repository provides the offer catalog for an evaluation.
type Repository interface {
	List(ctx context.Context) ([]Offer, error)
}
