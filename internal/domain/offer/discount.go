package offer

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

// LineBudget tracks how much item discounts may still take off each line,
// keyed by line ID. Stacked item offers draw it down in applied order so a
// line never goes below zero.
type LineBudget map[string]decimal.Decimal

// NewLineBudget returns a budget holding each line's full subtotal.
func NewLineBudget(items []LineItem) LineBudget {
	b := make(LineBudget, len(items))
	for _, li := range items {
		b[li.ID] = li.Subtotal()
	}
	return b
}

// ComputeDiscount calculates the amount an applied offer takes off the order
// and the number of uses the application consumes. Item offers discount one
// target unit per use, most expensive first, up to remaining uses, and draw
// down budget when it is non-nil; order and fulfillment offers consume a
// single use. An application that saves nothing consumes no uses.
func ComputeDiscount(
	o Offer,
	m MatchResult,
	items []LineItem,
	oc OrderContext,
	remaining int,
	budget LineBudget,
) (decimal.Decimal, int) {
	if remaining <= 0 {
		return zero, 0
	}

	var amount decimal.Decimal
	switch o.Type {
	case TypeOrder:
		base := zero
		for _, li := range items {
			base = base.Add(unitBase(o, li).Mul(decimal.NewFromInt(int64(li.Quantity))))
		}
		amount = discountOf(o, base)
	case TypeFulfillmentGroup:
		amount = discountOf(o, oc.ShippingTotal)
	case TypeItem:
		return applyPerUnit(o, m.TargetItems, remaining, budget)
	default:
		return zero, 0
	}
	if amount.IsZero() {
		return zero, 0
	}
	return amount, 1
}

func applyPerUnit(o Offer, targets []LineItem, remaining int, budget LineBudget) (decimal.Decimal, int) {
	sorted := slices.Clone(targets)
	slices.SortStableFunc(sorted, func(a, b LineItem) int {
		if c := unitBase(o, b).Cmp(unitBase(o, a)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	total := zero
	uses := 0
	for _, li := range sorted {
		if uses >= remaining {
			break
		}
		per := discountOf(o, unitBase(o, li))
		if !per.IsPositive() {
			continue
		}
		units := min(li.Quantity, remaining-uses)
		amount := per.Mul(decimal.NewFromInt(int64(units)))

		if budget != nil {
			left, ok := budget[li.ID]
			if !ok {
				left = li.Subtotal()
			}
			if !left.IsPositive() {
				continue
			}
			if amount.GreaterThan(left) {
				amount = left
				units = int(left.Div(per).Ceil().IntPart())
			}
			budget[li.ID] = left.Sub(amount)
		}

		total = total.Add(amount)
		uses += units
	}
	return floorAtZero(total).Round(2), uses
}

// discountOf applies the offer's discount type to a single base amount.
func discountOf(o Offer, base decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch o.DiscountType {
	case DiscountPercentOff:
		amount = base.Mul(o.Value).Div(hundred)
	case DiscountAmountOff:
		amount = decimal.Min(o.Value, base)
	case DiscountFixPrice:
		amount = base.Sub(o.Value)
	default:
		return zero
	}
	return floorAtZero(amount).Round(2)
}

func unitBase(o Offer, li LineItem) decimal.Decimal {
	if o.ApplyToSalePrice && li.SalePrice != nil {
		return *li.SalePrice
	}
	return li.Price
}

// floorAtZero clamps negative values to zero.
func floorAtZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return zero
	}
	return d
}
