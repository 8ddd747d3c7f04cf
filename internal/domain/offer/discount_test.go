package offer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeDiscount(t *testing.T) {
	items := []LineItem{
		item("l1", "PZ-1", "pizza", "10.00", 2),
		item("l2", "PZ-2", "pizza", "14.00", 1),
		item("l3", "DR-1", "drinks", "3.00", 1),
	}
	pizzas := []LineItem{items[0], items[1]}
	sale := items[1]
	sale.SalePrice = dp("12.00")

	tests := []struct {
		name      string
		offer     Offer
		targets   []LineItem
		items     []LineItem
		shipping  string
		remaining int
		wantAmt   string
		wantUses  int
	}{
		{
			name:      "order percent off",
			offer:     Offer{Type: TypeOrder, DiscountType: DiscountPercentOff, Value: d("10")},
			remaining: Unlimited,
			wantAmt:   "3.70",
			wantUses:  1,
		},
		{
			name:      "order amount off",
			offer:     Offer{Type: TypeOrder, DiscountType: DiscountAmountOff, Value: d("5")},
			remaining: Unlimited,
			wantAmt:   "5",
			wantUses:  1,
		},
		{
			name:      "order amount off capped at subtotal",
			offer:     Offer{Type: TypeOrder, DiscountType: DiscountAmountOff, Value: d("100")},
			remaining: 1,
			wantAmt:   "37",
			wantUses:  1,
		},
		{
			name:      "order fix price",
			offer:     Offer{Type: TypeOrder, DiscountType: DiscountFixPrice, Value: d("30")},
			remaining: 1,
			wantAmt:   "7",
			wantUses:  1,
		},
		{
			name:      "order fix price above subtotal saves nothing and uses nothing",
			offer:     Offer{Type: TypeOrder, DiscountType: DiscountFixPrice, Value: d("50")},
			remaining: 1,
			wantAmt:   "0",
			wantUses:  0,
		},
		{
			name:      "fulfillment percent off shipping",
			offer:     Offer{Type: TypeFulfillmentGroup, DiscountType: DiscountPercentOff, Value: d("100")},
			shipping:  "4.99",
			remaining: 1,
			wantAmt:   "4.99",
			wantUses:  1,
		},
		{
			name:      "item percent off every target unit",
			offer:     Offer{Type: TypeItem, DiscountType: DiscountPercentOff, Value: d("50")},
			targets:   pizzas,
			remaining: Unlimited,
			wantAmt:   "17",
			wantUses:  3,
		},
		{
			name:      "item discount limited by remaining uses takes most expensive first",
			offer:     Offer{Type: TypeItem, DiscountType: DiscountAmountOff, Value: d("2")},
			targets:   pizzas,
			remaining: 2,
			wantAmt:   "4",
			wantUses:  2,
		},
		{
			name:      "item fix price per unit",
			offer:     Offer{Type: TypeItem, DiscountType: DiscountFixPrice, Value: d("9")},
			targets:   pizzas,
			remaining: 1,
			wantAmt:   "5",
			wantUses:  1,
		},
		{
			name:      "item amount off capped at unit price",
			offer:     Offer{Type: TypeItem, DiscountType: DiscountAmountOff, Value: d("5")},
			targets:   []LineItem{items[2]},
			remaining: Unlimited,
			wantAmt:   "3",
			wantUses:  1,
		},
		{
			name:      "sale price used when requested",
			offer:     Offer{Type: TypeItem, DiscountType: DiscountPercentOff, Value: d("50"), ApplyToSalePrice: true},
			targets:   []LineItem{sale},
			remaining: Unlimited,
			wantAmt:   "6",
			wantUses:  1,
		},
		{
			name:      "sale price ignored by default",
			offer:     Offer{Type: TypeItem, DiscountType: DiscountPercentOff, Value: d("50")},
			targets:   []LineItem{sale},
			remaining: Unlimited,
			wantAmt:   "7",
			wantUses:  1,
		},
		{
			name:      "percent rounds to 2 dp",
			offer:     Offer{Type: TypeOrder, DiscountType: DiscountPercentOff, Value: d("33.33")},
			items:     []LineItem{item("x", "X", "misc", "10.01", 1)},
			remaining: 1,
			// 10.01 * 33.33 / 100 = 3.336333 -> 3.34
			wantAmt:  "3.34",
			wantUses: 1,
		},
		{
			name:      "item fix price above unit price skips the unit",
			offer:     Offer{Type: TypeItem, DiscountType: DiscountFixPrice, Value: d("12")},
			targets:   pizzas,
			remaining: Unlimited,
			// only the 14.00 unit benefits
			wantAmt:  "2",
			wantUses: 1,
		},
		{
			name:      "fulfillment with free shipping saves nothing",
			offer:     Offer{Type: TypeFulfillmentGroup, DiscountType: DiscountAmountOff, Value: d("5")},
			remaining: 1,
			wantAmt:   "0",
			wantUses:  0,
		},
		{
			name:      "no remaining uses",
			offer:     Offer{Type: TypeOrder, DiscountType: DiscountPercentOff, Value: d("10")},
			remaining: 0,
			wantAmt:   "0",
			wantUses:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderItems := items
			if tt.items != nil {
				orderItems = tt.items
			}
			oc := OrderContext{}
			if tt.shipping != "" {
				oc.ShippingTotal = d(tt.shipping)
			}

			amt, uses := ComputeDiscount(tt.offer, MatchResult{Qualified: true, TargetItems: tt.targets}, orderItems, oc, tt.remaining, nil)

			assert.True(t, d(tt.wantAmt).Equal(amt), "expected amount %s, got %s", tt.wantAmt, amt)
			assert.Equal(t, tt.wantUses, uses)
		})
	}
}

func TestComputeDiscount_LineBudget(t *testing.T) {
	cheap := item("a", "A", "misc", "10.00", 1)
	dear := item("b", "B", "misc", "50.00", 1)
	free := Offer{Type: TypeItem, DiscountType: DiscountPercentOff, Value: d("100")}
	m := MatchResult{Qualified: true, TargetItems: []LineItem{cheap}}

	budget := NewLineBudget([]LineItem{cheap, dear})

	amt, uses := ComputeDiscount(free, m, nil, OrderContext{}, Unlimited, budget)
	assert.True(t, d("10").Equal(amt), "got %s", amt)
	assert.Equal(t, 1, uses)

	amt, uses = ComputeDiscount(free, m, nil, OrderContext{}, Unlimited, budget)
	assert.True(t, amt.IsZero(), "line a is already free, got %s", amt)
	assert.Equal(t, 0, uses)

	assert.True(t, budget["a"].IsZero())
	assert.True(t, d("50").Equal(budget["b"]), "unrelated line untouched")
}

func TestComputeDiscount_LineBudgetPartial(t *testing.T) {
	pizzas := item("p", "PZ", "pizza", "10.00", 3)
	m := MatchResult{Qualified: true, TargetItems: []LineItem{pizzas}}
	budget := LineBudget{"p": d("25")}

	amt, uses := ComputeDiscount(
		Offer{Type: TypeItem, DiscountType: DiscountAmountOff, Value: d("10")},
		m, nil, OrderContext{}, Unlimited, budget,
	)

	assert.True(t, d("25").Equal(amt), "got %s", amt)
	// 2.5 units of benefit round up to 3 uses
	assert.Equal(t, 3, uses)
	assert.True(t, budget["p"].IsZero())
}
