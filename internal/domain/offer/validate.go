package offer

// Validate checks the offer's configuration for internal consistency. It
// returns nil or a *ConfigurationError.
func (o Offer) Validate() error {
	switch o.Type {
	case TypeOrder, TypeItem, TypeFulfillmentGroup:
	default:
		return configErr(o.ID, "unknown offer type %q", o.Type)
	}

	switch o.DiscountType {
	case DiscountPercentOff:
		if o.Value.GreaterThan(hundred) {
			return configErr(o.ID, "percent value %s exceeds 100", o.Value)
		}
	case DiscountAmountOff, DiscountFixPrice:
	default:
		return configErr(o.ID, "unknown discount type %q", o.DiscountType)
	}
	if o.Value.IsNegative() {
		return configErr(o.ID, "negative discount value %s", o.Value)
	}

	if o.StartDate != nil && o.EndDate != nil && o.StartDate.After(*o.EndDate) {
		return configErr(o.ID, "start date %s after end date %s", o.StartDate, o.EndDate)
	}
	if o.MaxUses < 0 || o.MaxUsesPerCustomer < 0 {
		return configErr(o.ID, "negative usage cap")
	}
	if o.QualifyingItemSubtotal != nil && o.QualifyingItemSubtotal.IsNegative() {
		return configErr(o.ID, "negative qualifying item subtotal")
	}

	if !o.QualifierRule.valid() {
		return configErr(o.ID, "unknown qualifier rule type %q", o.QualifierRule)
	}
	if !o.TargetRule.valid() {
		return configErr(o.ID, "unknown target rule type %q", o.TargetRule)
	}
	if o.Type == TypeItem && len(o.QualifyingCriteria) == 0 {
		return configErr(o.ID, "item offer requires qualifying criteria")
	}
	if err := validateCriteria(o.ID, "qualifying", o.QualifyingCriteria); err != nil {
		return err
	}
	if err := validateRules(o.ID, "order", o.OrderRules, RuleMinOrderSubtotal, RuleAttribute); err != nil {
		return err
	}
	if err := validateRules(o.ID, "customer", o.CustomerRules, RuleRegistered, RuleAttribute); err != nil {
		return err
	}
	return validateCriteria(o.ID, "target", o.TargetCriteria)
}

func validateCriteria(id int64, set string, criteria []Criteria) error {
	for i, c := range criteria {
		if c.Quantity < 1 {
			return configErr(id, "%s criteria #%d: quantity must be at least 1", set, i)
		}
		if !c.Predicate.valid() {
			return configErr(id, "%s criteria #%d: invalid %q predicate", set, i, c.Predicate.Kind)
		}
	}
	return nil
}

func (r RuleType) valid() bool {
	return r == "" || r == RuleAll || r == RuleAny
}
