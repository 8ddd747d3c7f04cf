package offer

import "math"

// Unlimited is the RemainingUses sentinel for an offer with no usage cap.
const Unlimited = math.MaxInt

// RemainingUses returns how many more times the offer may be applied to the
// order, given per-order uses already recorded and the customer's history.
// The result is never negative.
func RemainingUses(o Offer, oc OrderContext, h CustomerHistory) int {
	remaining := Unlimited

	if o.MaxUses > 0 {
		remaining = min(remaining, o.MaxUses-oc.UsesThisOrder[o.ID])
	}
	if o.MaxUsesPerCustomer > 0 {
		remaining = min(remaining, o.MaxUsesPerCustomer-h.UsesOf(o.ID))
	}

	return max(remaining, 0)
}
