package offer

import (
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/shopspring/decimal"
)

// PredicateKind selects how a Predicate tests a line item.
type PredicateKind string

const (
	// PredicateAny matches every line item.
	PredicateAny PredicateKind = "any"
	// PredicateSKU matches items whose SKU is in Values.
	PredicateSKU PredicateKind = "sku"
	// PredicateCategory matches items whose category is in Values.
	PredicateCategory PredicateKind = "category"
	// PredicateMinPrice matches items with unit price >= Amount.
	PredicateMinPrice PredicateKind = "min_price"
	// PredicateAttribute matches items whose Attribute equals one of Values.
	PredicateAttribute PredicateKind = "attribute"
)

const (
	// Value sets at least this large get a bloom prefilter.
	bloomThreshold = 64
	bloomFPR       = 0.01
)

// Predicate is a line item test. Build it with the constructor functions so
// that value sets are indexed once, at catalog load time.
type Predicate struct {
	Kind      PredicateKind
	Values    []string
	Attribute string
	Amount    decimal.Decimal

	set *valueSet
}

// AnyItem matches every line item.
func AnyItem() Predicate {
	return Predicate{Kind: PredicateAny}
}

// SKUIn matches items with one of the given SKUs.
func SKUIn(skus ...string) Predicate {
	return Predicate{Kind: PredicateSKU, Values: skus, set: newValueSet(skus)}
}

// CategoryIn matches items in one of the given categories (case-insensitive).
func CategoryIn(categories ...string) Predicate {
	return Predicate{Kind: PredicateCategory, Values: categories, set: newValueSet(categories)}
}

// MinUnitPrice matches items priced at or above amount.
func MinUnitPrice(amount decimal.Decimal) Predicate {
	return Predicate{Kind: PredicateMinPrice, Amount: amount}
}

// AttributeIn matches items whose attribute key holds one of values.
func AttributeIn(key string, values ...string) Predicate {
	return Predicate{Kind: PredicateAttribute, Attribute: key, Values: values, set: newValueSet(values)}
}

// Matches reports whether the line item satisfies the predicate.
func (p Predicate) Matches(li LineItem) bool {
	switch p.Kind {
	case PredicateAny:
		return true
	case PredicateSKU:
		return p.contains(li.SKU)
	case PredicateCategory:
		return p.contains(li.Category)
	case PredicateMinPrice:
		return li.Price.GreaterThanOrEqual(p.Amount)
	case PredicateAttribute:
		v, ok := li.Attributes[p.Attribute]
		return ok && p.contains(v)
	default:
		return false
	}
}

func (p Predicate) valid() bool {
	switch p.Kind {
	case PredicateAny:
		return true
	case PredicateSKU, PredicateCategory:
		return len(p.Values) > 0
	case PredicateMinPrice:
		return !p.Amount.IsNegative()
	case PredicateAttribute:
		return p.Attribute != "" && len(p.Values) > 0
	default:
		return false
	}
}

func (p Predicate) contains(v string) bool {
	if p.set != nil {
		return p.set.contains(v)
	}
	for _, want := range p.Values {
		if strings.EqualFold(want, v) {
			return true
		}
	}
	return false
}

// valueSet is an immutable case-insensitive string set.
type valueSet struct {
	members map[string]struct{}
	filter  *bloom.BloomFilter
}

func newValueSet(values []string) *valueSet {
	s := &valueSet{members: make(map[string]struct{}, len(values))}
	for _, v := range values {
		s.members[strings.ToUpper(v)] = struct{}{}
	}
	if len(s.members) >= bloomThreshold {
		s.filter = bloom.NewWithEstimates(uint(len(s.members)), bloomFPR)
		for v := range s.members {
			s.filter.AddString(v)
		}
	}
	return s
}

func (s *valueSet) contains(v string) bool {
	key := strings.ToUpper(v)
	if s.filter != nil && !s.filter.TestString(key) {
		return false
	}
	_, ok := s.members[key]
	return ok
}
