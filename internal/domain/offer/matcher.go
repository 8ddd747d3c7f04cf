package offer

import "github.com/shopspring/decimal"

// MatchResult is the outcome of testing an offer's item criteria against an
// order. A zero MatchResult means the offer does not qualify.
type MatchResult struct {
	Qualified          bool
	QualifyingItems    []LineItem
	TargetItems        []LineItem
	QualifyingSubtotal decimal.Decimal
}

// Match evaluates the offer's qualifying and target criteria against the line
// items. It never modifies items. Offers without qualifying criteria qualify
// on every line; offers without target criteria target their qualifying
// lines.
func Match(o Offer, items []LineItem) MatchResult {
	qualifying := items
	if len(o.QualifyingCriteria) > 0 {
		var ok bool
		qualifying, ok = matchCriteria(o.QualifierRule, o.QualifyingCriteria, items)
		if !ok {
			return MatchResult{}
		}
	}

	targets := qualifying
	if len(o.TargetCriteria) > 0 {
		var ok bool
		targets, ok = matchCriteria(o.TargetRule, o.TargetCriteria, items)
		if !ok {
			return MatchResult{}
		}
	}

	return MatchResult{
		Qualified:          true,
		QualifyingItems:    qualifying,
		TargetItems:        targets,
		QualifyingSubtotal: calcSubtotal(qualifying),
	}
}

// matchCriteria combines criteria per rule and returns the items matched by
// satisfied criteria, in their original order.
func matchCriteria(rule RuleType, criteria []Criteria, items []LineItem) ([]LineItem, bool) {
	matched := make([]bool, len(items))
	satisfied := 0

	for _, c := range criteria {
		units := 0
		hits := make([]int, 0, len(items))
		for i, li := range items {
			if c.Predicate.Matches(li) {
				units += li.Quantity
				hits = append(hits, i)
			}
		}

		if units < c.Quantity || units == 0 {
			if rule != RuleAny {
				return nil, false
			}
			continue
		}

		satisfied++
		for _, i := range hits {
			matched[i] = true
		}
	}

	if satisfied == 0 {
		return nil, false
	}

	out := make([]LineItem, 0, len(items))
	for i, ok := range matched {
		if ok {
			out = append(out, items[i])
		}
	}
	return out, true
}

// calcSubtotal returns the sum of price * quantity across all items.
func calcSubtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, li := range items {
		sum = sum.Add(li.Subtotal())
	}
	return sum
}
