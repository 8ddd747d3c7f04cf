package offer

import (
	"fmt"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func dp(v string) *decimal.Decimal {
	x := d(v)
	return &x
}

func tp(t time.Time) *time.Time {
	return &t
}

func item(id, sku, category, price string, qty int) LineItem {
	return LineItem{ID: id, SKU: sku, Category: category, Price: d(price), Quantity: qty}
}

// autoOffer returns a valid, automatically added order offer.
func autoOffer(id int64, priority int) Offer {
	return Offer{
		ID:                 id,
		Name:               fmt.Sprintf("offer-%d", id),
		Type:               TypeOrder,
		DiscountType:       DiscountPercentOff,
		Value:              d("10"),
		Priority:           priority,
		Combinable:         true,
		AutomaticallyAdded: true,
	}
}

func TestOffer_Validate(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	tests := []struct {
		name    string
		mutate  func(o *Offer)
		wantErr string
	}{
		{
			name:   "valid order offer",
			mutate: func(o *Offer) {},
		},
		{
			name:    "unknown type",
			mutate:  func(o *Offer) { o.Type = "bundle" },
			wantErr: "unknown offer type",
		},
		{
			name:    "unknown discount type",
			mutate:  func(o *Offer) { o.DiscountType = "bogus" },
			wantErr: "unknown discount type",
		},
		{
			name:    "percent above 100",
			mutate:  func(o *Offer) { o.Value = d("100.01") },
			wantErr: "exceeds 100",
		},
		{
			name: "negative amount",
			mutate: func(o *Offer) {
				o.DiscountType = DiscountAmountOff
				o.Value = d("-1")
			},
			wantErr: "negative discount value",
		},
		{
			name: "start after end",
			mutate: func(o *Offer) {
				o.StartDate = tp(end)
				o.EndDate = tp(start)
			},
			wantErr: "after end date",
		},
		{
			name: "start equals end is allowed",
			mutate: func(o *Offer) {
				o.StartDate = tp(start)
				o.EndDate = tp(start)
			},
		},
		{
			name:    "negative max uses",
			mutate:  func(o *Offer) { o.MaxUses = -1 },
			wantErr: "negative usage cap",
		},
		{
			name:    "unknown qualifier rule",
			mutate:  func(o *Offer) { o.QualifierRule = "xor" },
			wantErr: "unknown qualifier rule type",
		},
		{
			name:    "item offer without qualifying criteria",
			mutate:  func(o *Offer) { o.Type = TypeItem },
			wantErr: "requires qualifying criteria",
		},
		{
			name: "criteria with zero quantity",
			mutate: func(o *Offer) {
				o.QualifyingCriteria = []Criteria{{Quantity: 0, Predicate: AnyItem()}}
			},
			wantErr: "quantity must be at least 1",
		},
		{
			name: "sku predicate without values",
			mutate: func(o *Offer) {
				o.TargetCriteria = []Criteria{{Quantity: 1, Predicate: SKUIn()}}
			},
			wantErr: "invalid \"sku\" predicate",
		},
		{
			name: "item offer with criteria",
			mutate: func(o *Offer) {
				o.Type = TypeItem
				o.QualifyingCriteria = []Criteria{{Quantity: 1, Predicate: CategoryIn("pizza")}}
			},
		},
		{
			name: "order and customer rules",
			mutate: func(o *Offer) {
				o.OrderRules = []EligibilityRule{MinOrderSubtotal(d("20")), AttributeRule("channel", "web")}
				o.CustomerRules = []EligibilityRule{Registered(), AttributeRule("segment", "vip")}
			},
		},
		{
			name: "registered is not an order rule",
			mutate: func(o *Offer) {
				o.OrderRules = []EligibilityRule{Registered()}
			},
			wantErr: "order rule #0: unsupported kind \"registered\"",
		},
		{
			name: "min subtotal is not a customer rule",
			mutate: func(o *Offer) {
				o.CustomerRules = []EligibilityRule{MinOrderSubtotal(d("1"))}
			},
			wantErr: "customer rule #0: unsupported kind",
		},
		{
			name: "attribute rule without values",
			mutate: func(o *Offer) {
				o.CustomerRules = []EligibilityRule{AttributeRule("segment")}
			},
			wantErr: "attribute and values required",
		},
		{
			name: "negative order subtotal",
			mutate: func(o *Offer) {
				o.OrderRules = []EligibilityRule{MinOrderSubtotal(d("-5"))}
			},
			wantErr: "negative amount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := autoOffer(7, 1)
			tt.mutate(&o)

			err := o.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, int64(7), cfgErr.OfferID)
		})
	}
}

func TestPredicate_Matches(t *testing.T) {
	li := LineItem{
		ID:         "l1",
		SKU:        "PZ-001",
		Category:   "Pizza",
		Price:      d("12.50"),
		Quantity:   1,
		Attributes: map[string]string{"size": "large"},
	}

	manySKUs := make([]string, 0, 200)
	for i := range 200 {
		manySKUs = append(manySKUs, fmt.Sprintf("SKU-%03d", i))
	}

	tests := []struct {
		name string
		p    Predicate
		want bool
	}{
		{"any", AnyItem(), true},
		{"sku hit", SKUIn("PZ-001", "PZ-002"), true},
		{"sku case-insensitive", SKUIn("pz-001"), true},
		{"sku miss", SKUIn("PZ-002"), false},
		{"category hit", CategoryIn("drinks", "pizza"), true},
		{"category miss", CategoryIn("drinks"), false},
		{"min price equal", MinUnitPrice(d("12.50")), true},
		{"min price above", MinUnitPrice(d("12.51")), false},
		{"attribute hit", AttributeIn("size", "large"), true},
		{"attribute wrong value", AttributeIn("size", "small"), false},
		{"attribute missing key", AttributeIn("crust", "thin"), false},
		{"large set miss", SKUIn(manySKUs...), false},
		{"large set hit", SKUIn(append(manySKUs, "PZ-001")...), true},
		{"literal predicate", Predicate{Kind: PredicateCategory, Values: []string{"PIZZA"}}, true},
		{"unknown kind", Predicate{Kind: "weekday"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Matches(li))
		})
	}
}

func TestCustomerHistory_With(t *testing.T) {
	h := CustomerHistory{CustomerID: "c1", Uses: map[int64]int{1: 2}}

	next := h.With(map[int64]int{1: 1, 2: 3})

	assert.Equal(t, map[int64]int{1: 3, 2: 3}, next.Uses)
	assert.Equal(t, "c1", next.CustomerID)
	assert.Equal(t, map[int64]int{1: 2}, h.Uses, "input snapshot must not change")
}
