package offer

import (
	"cmp"
	"slices"
)

// SortByPriority orders offers for resolution: totalitarian offers first,
// then priority descending, then ID ascending.
func SortByPriority(offers []Offer) {
	slices.SortStableFunc(offers, func(a, b Offer) int {
		if a.Totalitarian != b.Totalitarian {
			if a.Totalitarian {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Resolve selects a legally combinable subset of candidates. An eligible
// totalitarian offer always wins and is applied alone; otherwise higher
// priority offers win conflicts. The input slice is not modified.
func Resolve(candidates []Offer) []Offer {
	accepted, _ := resolve(candidates)
	return accepted
}

// resolve is Resolve that also returns the rejected offers in walk order.
func resolve(candidates []Offer) (accepted, rejected []Offer) {
	sorted := slices.Clone(candidates)
	SortByPriority(sorted)

	for _, o := range sorted {
		if conflicts(o, accepted) {
			rejected = append(rejected, o)
			continue
		}
		accepted = append(accepted, o)
	}
	return accepted, rejected
}

func conflicts(o Offer, accepted []Offer) bool {
	if o.Totalitarian && len(accepted) > 0 {
		return true
	}
	for _, a := range accepted {
		if a.Totalitarian {
			return true
		}
		if a.Type == o.Type && (!a.Combinable || !o.Combinable) {
			return true
		}
	}
	return false
}
