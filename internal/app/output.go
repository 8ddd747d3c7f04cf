package app

import (
	"io"
	"slices"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/offer-engine/internal/domain/offer"
	"github.com/xenking/offer-engine/internal/domain/order"
)

// outcome is the result of quoting one order in a batch.
type outcome struct {
	OrderID string
	Quote   *order.Quote
	Err     error
}

func money(e *jx.Encoder, field string, v decimal.Decimal) {
	e.FieldStart(field)
	e.Str(v.StringFixed(2))
}

// encodeOutcome writes one outcome as a JSON object. Money is encoded as
// fixed two-decimal strings.
func encodeOutcome(e *jx.Encoder, o outcome) {
	e.ObjStart()
	e.FieldStart("order_id")
	e.Str(o.OrderID)

	if o.Err != nil {
		e.FieldStart("error")
		e.Str(o.Err.Error())
		e.ObjEnd()
		return
	}

	q := o.Quote
	e.FieldStart("quote_id")
	e.Str(q.ID)
	e.FieldStart("customer_id")
	e.Str(q.CustomerID)
	money(e, "subtotal", q.Subtotal)
	money(e, "discounts", q.Discounts)
	money(e, "shipping", q.Shipping)
	money(e, "shipping_discounts", q.ShippingDiscounts)
	money(e, "total", q.Total)

	e.FieldStart("applied")
	e.ArrStart()
	for _, a := range q.Applied {
		encodeApplied(e, a)
	}
	e.ArrEnd()

	e.FieldStart("rejected")
	e.ArrStart()
	for _, r := range q.Rejected {
		e.ObjStart()
		e.FieldStart("offer_id")
		e.Int64(r.OfferID)
		e.FieldStart("reason")
		e.Str(string(r.Reason))
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("config_errors")
	e.ArrStart()
	for _, ce := range q.ConfigErrors {
		e.Str(ce.Error())
	}
	e.ArrEnd()

	e.FieldStart("history")
	e.ObjStart()
	ids := make([]int64, 0, len(q.History.Uses))
	for id := range q.History.Uses {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		e.FieldStart(strconv.FormatInt(id, 10))
		e.Int(q.History.Uses[id])
	}
	e.ObjEnd()

	e.ObjEnd()
}

func encodeApplied(e *jx.Encoder, a offer.AppliedOffer) {
	e.ObjStart()
	e.FieldStart("offer_id")
	e.Int64(a.Offer.ID)
	e.FieldStart("name")
	e.Str(a.Offer.Name)
	e.FieldStart("type")
	e.Str(string(a.Offer.Type))
	e.FieldStart("uses")
	e.Int(a.Uses)
	money(e, "amount", a.Amount)
	if a.Offer.MarketingMessage != "" {
		e.FieldStart("marketing_message")
		e.Str(a.Offer.MarketingMessage)
	}
	e.FieldStart("target_items")
	e.ArrStart()
	for _, li := range a.TargetItems {
		e.Str(li.ID)
	}
	e.ArrEnd()
	e.ObjEnd()
}

// writeOutcomes writes outcomes as JSON lines in input order.
func writeOutcomes(w io.Writer, outcomes []outcome) error {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	for _, o := range outcomes {
		e.Reset()
		encodeOutcome(e, o)
		if _, err := w.Write(append(e.Bytes(), '\n')); err != nil {
			return errors.Wrapf(err, "write quote for order %s", o.OrderID)
		}
	}
	return nil
}
