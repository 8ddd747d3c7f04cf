package offer

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// RuleKind selects what an EligibilityRule checks.
type RuleKind string

const (
	// RuleMinOrderSubtotal requires the order subtotal to be at least Amount.
	// Order rules only.
	RuleMinOrderSubtotal RuleKind = "min_order_subtotal"
	// RuleAttribute requires the Attribute of the order or customer to hold
	// one of Values.
	RuleAttribute RuleKind = "attribute"
	// RuleRegistered requires a known customer. Customer rules only.
	RuleRegistered RuleKind = "registered"
)

// EligibilityRule is an order- or customer-level condition an offer needs
// before its items are considered. All rules of a list must hold.
type EligibilityRule struct {
	Kind      RuleKind
	Attribute string
	Values    []string
	Amount    decimal.Decimal
}

// MinOrderSubtotal requires an order subtotal of at least amount.
func MinOrderSubtotal(amount decimal.Decimal) EligibilityRule {
	return EligibilityRule{Kind: RuleMinOrderSubtotal, Amount: amount}
}

// AttributeRule requires attribute key to hold one of values.
func AttributeRule(key string, values ...string) EligibilityRule {
	return EligibilityRule{Kind: RuleAttribute, Attribute: key, Values: values}
}

// Registered requires the order to belong to a known customer.
func Registered() EligibilityRule {
	return EligibilityRule{Kind: RuleRegistered}
}

func orderRulesHold(rules []EligibilityRule, items []LineItem, oc OrderContext) bool {
	if len(rules) == 0 {
		return true
	}
	subtotal := zero
	for _, li := range items {
		subtotal = subtotal.Add(li.Subtotal())
	}
	for _, r := range rules {
		switch r.Kind {
		case RuleMinOrderSubtotal:
			if subtotal.LessThan(r.Amount) {
				return false
			}
		case RuleAttribute:
			if !r.holds(oc.Attributes) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func customerRulesHold(rules []EligibilityRule, oc OrderContext) bool {
	for _, r := range rules {
		switch r.Kind {
		case RuleRegistered:
			if oc.CustomerID == "" {
				return false
			}
		case RuleAttribute:
			if !r.holds(oc.CustomerAttributes) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func (r EligibilityRule) holds(attrs map[string]string) bool {
	v, ok := attrs[r.Attribute]
	if !ok {
		return false
	}
	for _, want := range r.Values {
		if strings.EqualFold(strings.TrimSpace(v), want) {
			return true
		}
	}
	return false
}

func validateRules(id int64, set string, rules []EligibilityRule, allowed ...RuleKind) error {
	for i, r := range rules {
		if !slices.Contains(allowed, r.Kind) {
			return configErr(id, "%s rule #%d: unsupported kind %q", set, i, r.Kind)
		}
		switch r.Kind {
		case RuleAttribute:
			if r.Attribute == "" || len(r.Values) == 0 {
				return configErr(id, "%s rule #%d: attribute and values required", set, i)
			}
		case RuleMinOrderSubtotal:
			if r.Amount.IsNegative() {
				return configErr(id, "%s rule #%d: negative amount", set, i)
			}
		}
	}
	return nil
}
