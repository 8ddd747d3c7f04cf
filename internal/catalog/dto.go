package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/offer-engine/internal/domain/offer"
)

// offerDTO is the on-disk shape of a modern catalog entry.
type offerDTO struct {
	ID                     int64            `json:"id" validate:"required,gt=0"`
	Name                   string           `json:"name" validate:"required,max=255"`
	Description            string           `json:"description"`
	Type                   string           `json:"type" validate:"required,oneof=order item fulfillment_group"`
	DiscountType           string           `json:"discount_type" validate:"required,oneof=percent_off amount_off fix_price"`
	Value                  decimal.Decimal  `json:"value"`
	Priority               int              `json:"priority"`
	StartDate              *time.Time       `json:"start_date"`
	EndDate                *time.Time       `json:"end_date"`
	Combinable             bool             `json:"combinable"`
	Totalitarian           bool             `json:"totalitarian"`
	AutomaticallyAdded     bool             `json:"automatically_added"`
	Codes                  []string         `json:"codes" validate:"dive,required,max=64"`
	MaxUses                int              `json:"max_uses" validate:"gte=0"`
	MaxUsesPerCustomer     int              `json:"max_uses_per_customer" validate:"gte=0"`
	QualifyingItemSubtotal *decimal.Decimal `json:"qualifying_item_subtotal"`
	MarketingMessage       string           `json:"marketing_message"`
	QualifierRule          string           `json:"qualifier_rule" validate:"omitempty,oneof=all any"`
	TargetRule             string           `json:"target_rule" validate:"omitempty,oneof=all any"`
	QualifyingCriteria     []criteriaDTO    `json:"qualifying_criteria" validate:"dive"`
	TargetCriteria         []criteriaDTO    `json:"target_criteria" validate:"dive"`
	OrderRules             []ruleDTO        `json:"order_rules" validate:"dive"`
	CustomerRules          []ruleDTO        `json:"customer_rules" validate:"dive"`
	TargetSystem           string           `json:"target_system"`
	ApplyToSalePrice       bool             `json:"apply_to_sale_price"`
}

type criteriaDTO struct {
	Quantity  int             `json:"quantity" validate:"gte=1"`
	Kind      string          `json:"kind" validate:"required,oneof=any sku category min_price attribute"`
	Values    []string        `json:"values"`
	Attribute string          `json:"attribute" validate:"required_if=Kind attribute"`
	Amount    decimal.Decimal `json:"amount"`
}

type ruleDTO struct {
	Kind      string          `json:"kind" validate:"required,oneof=min_order_subtotal attribute registered"`
	Attribute string          `json:"attribute" validate:"required_if=Kind attribute"`
	Values    []string        `json:"values" validate:"required_if=Kind attribute"`
	Amount    decimal.Decimal `json:"amount"`
}

func (dto offerDTO) toOffer() offer.Offer {
	return offer.Offer{
		ID:                     dto.ID,
		Name:                   dto.Name,
		Description:            dto.Description,
		Type:                   offer.Type(dto.Type),
		DiscountType:           offer.DiscountType(dto.DiscountType),
		Value:                  dto.Value,
		Priority:               dto.Priority,
		StartDate:              dto.StartDate,
		EndDate:                dto.EndDate,
		Combinable:             dto.Combinable,
		Totalitarian:           dto.Totalitarian,
		AutomaticallyAdded:     dto.AutomaticallyAdded,
		Codes:                  dto.Codes,
		MaxUses:                dto.MaxUses,
		MaxUsesPerCustomer:     dto.MaxUsesPerCustomer,
		QualifyingItemSubtotal: dto.QualifyingItemSubtotal,
		MarketingMessage:       dto.MarketingMessage,
		QualifierRule:          offer.RuleType(dto.QualifierRule),
		TargetRule:             offer.RuleType(dto.TargetRule),
		QualifyingCriteria:     toCriteria(dto.QualifyingCriteria),
		TargetCriteria:         toCriteria(dto.TargetCriteria),
		OrderRules:             toRules(dto.OrderRules),
		CustomerRules:          toRules(dto.CustomerRules),
		TargetSystem:           dto.TargetSystem,
		ApplyToSalePrice:       dto.ApplyToSalePrice,
	}
}

func toCriteria(dtos []criteriaDTO) []offer.Criteria {
	if len(dtos) == 0 {
		return nil
	}
	out := make([]offer.Criteria, len(dtos))
	for i, c := range dtos {
		out[i] = offer.Criteria{Quantity: c.Quantity, Predicate: c.predicate()}
	}
	return out
}

func (c criteriaDTO) predicate() offer.Predicate {
	switch offer.PredicateKind(c.Kind) {
	case offer.PredicateAny:
		return offer.AnyItem()
	case offer.PredicateSKU:
		return offer.SKUIn(c.Values...)
	case offer.PredicateCategory:
		return offer.CategoryIn(c.Values...)
	case offer.PredicateMinPrice:
		return offer.MinUnitPrice(c.Amount)
	case offer.PredicateAttribute:
		return offer.AttributeIn(c.Attribute, c.Values...)
	default:
		return offer.Predicate{Kind: offer.PredicateKind(c.Kind)}
	}
}

func toRules(dtos []ruleDTO) []offer.EligibilityRule {
	if len(dtos) == 0 {
		return nil
	}
	out := make([]offer.EligibilityRule, len(dtos))
	for i, r := range dtos {
		out[i] = offer.EligibilityRule{
			Kind:      offer.RuleKind(r.Kind),
			Attribute: r.Attribute,
			Values:    r.Values,
			Amount:    r.Amount,
		}
	}
	return out
}
