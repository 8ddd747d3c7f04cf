package catalog

import (
	"math"
	"strings"

	"github.com/xenking/offer-engine/internal/domain/offer"
)

// deliveryAutomatic is the legacy delivery type of automatically added
// offers. MANUAL and CODE offers require an offer code.
const deliveryAutomatic = "AUTOMATIC"

// Keys of the legacy offer_match_rules map.
const (
	matchRulesOrder    = "ORDER"
	matchRulesCustomer = "CUSTOMER"
)

// maxCap bounds usage caps so they fit an int on 32-bit builds.
const maxCap = math.MaxInt32

// legacyOfferDTO is a catalog entry exported by the old administration
// tooling. Its dual-purpose fields are resolved here so the evaluator only
// sees the modern record.
type legacyOfferDTO struct {
	offerDTO

	// Stackable is the deprecated name of CombinableWithOtherOffers.
	Stackable                 *bool `json:"stackable"`
	CombinableWithOtherOffers *bool `json:"combinable_with_other_offers"`
	// DeliveryType is consulted only when AutomaticallyAdded is null.
	DeliveryType       string `json:"delivery_type" validate:"omitempty,oneof=AUTOMATIC MANUAL CODE automatic manual code"`
	AutomaticallyAdded *bool  `json:"automatically_added"`
	TotalitarianOffer  *bool  `json:"totalitarian_offer"`
	// MaxUsesPerCustomer is nullable in legacy exports; null means unlimited.
	MaxUsesPerCustomer *int64 `json:"max_uses_per_customer" validate:"omitempty,gte=0,lte=2147483647"`
	// OfferMatchRules holds order and customer rules keyed by ORDER and
	// CUSTOMER. They are appended to order_rules and customer_rules.
	OfferMatchRules map[string][]ruleDTO `json:"offer_match_rules" validate:"omitempty,dive,keys,oneof=ORDER CUSTOMER,endkeys,dive"`
	// Uses is the deprecated global usage counter. Usage now lives in
	// customer history, so it is ignored.
	Uses int `json:"uses"`
}

func (dto legacyOfferDTO) toOffer() offer.Offer {
	o := dto.offerDTO.toOffer()

	switch {
	case dto.CombinableWithOtherOffers != nil:
		o.Combinable = *dto.CombinableWithOtherOffers
	case dto.Stackable != nil:
		o.Combinable = *dto.Stackable
	default:
		o.Combinable = false
	}

	switch {
	case dto.AutomaticallyAdded != nil:
		o.AutomaticallyAdded = *dto.AutomaticallyAdded
	default:
		o.AutomaticallyAdded = strings.EqualFold(dto.DeliveryType, deliveryAutomatic)
	}

	o.Totalitarian = dto.TotalitarianOffer != nil && *dto.TotalitarianOffer

	o.MaxUsesPerCustomer = 0
	if dto.MaxUsesPerCustomer != nil {
		o.MaxUsesPerCustomer = int(min(*dto.MaxUsesPerCustomer, maxCap))
	}

	o.OrderRules = append(o.OrderRules, toRules(dto.OfferMatchRules[matchRulesOrder])...)
	o.CustomerRules = append(o.CustomerRules, toRules(dto.OfferMatchRules[matchRulesCustomer])...)

	return o
}
