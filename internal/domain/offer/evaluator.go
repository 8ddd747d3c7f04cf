package offer

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const instrumentationName = "offers/evaluator"

// Result is the outcome of one evaluation call.
type Result struct {
	// Applied lists the selected offers by priority descending, ID ascending.
	Applied      []AppliedOffer
	Rejected     []Rejection
	ConfigErrors []*ConfigurationError
	// History is the input snapshot plus the uses consumed by Applied.
	History CustomerHistory
}

// Total returns the sum of applied discount amounts for the given offer type.
func (r *Result) Total(t Type) decimal.Decimal {
	sum := zero
	for _, a := range r.Applied {
		if a.Offer.Type == t {
			sum = sum.Add(a.Amount)
		}
	}
	return sum
}

// Evaluator selects the offers that apply to an order. It holds no per-order
// state and is safe for concurrent use.
type Evaluator struct {
	tracer      trace.Tracer
	evaluations metric.Int64Counter
	applied     metric.Int64Counter
	rejected    metric.Int64Counter
	duration    metric.Float64Histogram
	now         func() time.Time
}

type evaluatorOptions struct {
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
}

// Option configures an Evaluator.
type Option func(*evaluatorOptions)

// WithMeterProvider sets the meter provider for evaluator metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *evaluatorOptions) { o.meterProvider = mp }
}

// WithTracerProvider sets the tracer provider for evaluator spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *evaluatorOptions) { o.tracerProvider = tp }
}

// NewEvaluator creates an Evaluator. Telemetry defaults to no-op providers.
func NewEvaluator(opts ...Option) (*Evaluator, error) {
	options := evaluatorOptions{
		meterProvider:  metricnoop.NewMeterProvider(),
		tracerProvider: tracenoop.NewTracerProvider(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	meter := options.meterProvider.Meter(instrumentationName)
	e := &Evaluator{
		tracer: options.tracerProvider.Tracer(instrumentationName),
		now:    time.Now,
	}

	var err error
	if e.evaluations, err = meter.Int64Counter("offers.evaluations",
		metric.WithDescription("Number of order evaluations"),
	); err != nil {
		return nil, errors.Wrap(err, "create evaluations counter")
	}
	if e.applied, err = meter.Int64Counter("offers.applied",
		metric.WithDescription("Number of offers applied to orders"),
	); err != nil {
		return nil, errors.Wrap(err, "create applied counter")
	}
	if e.rejected, err = meter.Int64Counter("offers.rejected",
		metric.WithDescription("Number of offers filtered out, by reason"),
	); err != nil {
		return nil, errors.Wrap(err, "create rejected counter")
	}
	if e.duration, err = meter.Float64Histogram("offers.evaluation.duration",
		metric.WithDescription("Evaluation latency"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, errors.Wrap(err, "create duration histogram")
	}

	return e, nil
}

// candidate is an offer that passed every per-offer filter.
type candidate struct {
	match     MatchResult
	remaining int
}

// Evaluate runs the evaluation pipeline for one order: order and customer
// rules, validity window, item qualification and subtotal gate, usage caps,
// then combinability. Offers that would save nothing are rejected.
// It returns an *InputError for malformed input; misconfigured offers are
// reported in Result.ConfigErrors and skipped. Neither offers nor the
// inputs are modified.
func (e *Evaluator) Evaluate(
	ctx context.Context,
	offers []Offer,
	items []LineItem,
	oc OrderContext,
	h CustomerHistory,
) (_ *Result, rerr error) {
	start := e.now()
	ctx, span := e.tracer.Start(ctx, "offer.Evaluate",
		trace.WithAttributes(
			attribute.String("order.id", oc.OrderID),
			attribute.Int("offers.count", len(offers)),
			attribute.Int("items.count", len(items)),
		),
	)
	defer func() {
		status := "ok"
		if rerr != nil {
			status = "error"
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		e.evaluations.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
		e.duration.Record(ctx, e.now().Sub(start).Seconds())
		span.End()
	}()

	if err := validateInput(items, oc); err != nil {
		return nil, err
	}

	lg := zctx.From(ctx).With(zap.String("order_id", oc.OrderID))
	res := &Result{}
	reject := func(id int64, reason RejectReason) {
		res.Rejected = append(res.Rejected, Rejection{OfferID: id, Reason: reason})
		e.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", string(reason))))
		lg.Debug("Offer rejected", zap.Int64("offer_id", id), zap.String("reason", string(reason)))
	}

	seen := make(map[int64]struct{}, len(offers))
	byID := make(map[int64]candidate, len(offers))
	eligible := make([]Offer, 0, len(offers))

	for _, o := range offers {
		if _, dup := seen[o.ID]; dup {
			res.ConfigErrors = append(res.ConfigErrors, configErr(o.ID, "duplicate offer id"))
			continue
		}
		seen[o.ID] = struct{}{}

		if err := o.Validate(); err != nil {
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				cfgErr = configErr(o.ID, "%s", err)
			}
			res.ConfigErrors = append(res.ConfigErrors, cfgErr)
			lg.Warn("Skipping misconfigured offer", zap.Int64("offer_id", o.ID), zap.Error(cfgErr))
			continue
		}

		c, reason := screen(o, items, oc, h)
		if reason != "" {
			reject(o.ID, reason)
			continue
		}
		byID[o.ID] = c
		eligible = append(eligible, o)
	}

	accepted, conflicting := resolve(eligible)
	for _, o := range conflicting {
		reject(o.ID, RejectConflict)
	}

	budget := NewLineBudget(items)
	delta := make(map[int64]int, len(accepted))
	for _, o := range accepted {
		c := byID[o.ID]
		amount, uses := ComputeDiscount(o, c.match, items, oc, c.remaining, budget)
		if uses == 0 {
			// Lines already fully discounted by earlier item offers.
			reject(o.ID, RejectNoBenefit)
			continue
		}
		res.Applied = append(res.Applied, AppliedOffer{
			Offer:       o,
			Uses:        uses,
			Amount:      amount,
			TargetItems: c.match.TargetItems,
		})
		delta[o.ID] += uses
	}
	e.applied.Add(ctx, int64(len(res.Applied)))

	if h.CustomerID == "" {
		h.CustomerID = oc.CustomerID
	}
	res.History = h.With(delta)

	span.SetAttributes(attribute.Int("offers.applied", len(res.Applied)))
	return res, nil
}

// screen runs the per-offer filters. It returns a non-empty reason when the
// offer is not eligible for the order.
func screen(o Offer, items []LineItem, oc OrderContext, h CustomerHistory) (candidate, RejectReason) {
	if o.TargetSystem != "" && !strings.EqualFold(o.TargetSystem, oc.TargetSystem) {
		return candidate{}, RejectTargetSystem
	}
	if !o.AutomaticallyAdded && !codePresented(o, oc) {
		return candidate{}, RejectCodeRequired
	}
	if !orderRulesHold(o.OrderRules, items, oc) {
		return candidate{}, RejectOrderRules
	}
	if !customerRulesHold(o.CustomerRules, oc) {
		return candidate{}, RejectCustomerRules
	}

	if o.StartDate != nil && oc.EvaluatedAt.Before(*o.StartDate) {
		return candidate{}, RejectNotStarted
	}
	if o.EndDate != nil && oc.EvaluatedAt.After(*o.EndDate) {
		return candidate{}, RejectExpired
	}

	m := Match(o, items)
	if !m.Qualified {
		return candidate{}, RejectNotQualified
	}
	if o.QualifyingItemSubtotal != nil && m.QualifyingSubtotal.LessThan(*o.QualifyingItemSubtotal) {
		return candidate{}, RejectSubtotal
	}

	remaining := RemainingUses(o, oc, h)
	if remaining == 0 {
		return candidate{}, RejectUsageExceeded
	}
	if _, uses := ComputeDiscount(o, m, items, oc, remaining, nil); uses == 0 {
		return candidate{}, RejectNoBenefit
	}

	return candidate{match: m, remaining: remaining}, ""
}

func codePresented(o Offer, oc OrderContext) bool {
	return slices.ContainsFunc(oc.Codes, func(code string) bool {
		return slices.ContainsFunc(o.Codes, func(want string) bool {
			return strings.EqualFold(strings.TrimSpace(code), want)
		})
	})
}

func validateInput(items []LineItem, oc OrderContext) error {
	if oc.EvaluatedAt.IsZero() {
		return &InputError{Err: ErrMissingEvaluationTime}
	}
	if oc.ShippingTotal.IsNegative() {
		return &InputError{Err: errors.New("negative shipping total")}
	}

	ids := make(map[string]struct{}, len(items))
	for _, li := range items {
		switch {
		case li.ID == "":
			return &InputError{Err: errors.Wrap(ErrInvalidLineItem, "missing line id")}
		case li.Quantity <= 0:
			return &InputError{LineID: li.ID, Err: errors.Wrap(ErrInvalidLineItem, "quantity must be greater than 0")}
		case li.Price.IsNegative():
			return &InputError{LineID: li.ID, Err: errors.Wrap(ErrInvalidLineItem, "negative price")}
		case li.SalePrice != nil && li.SalePrice.IsNegative():
			return &InputError{LineID: li.ID, Err: errors.Wrap(ErrInvalidLineItem, "negative sale price")}
		}
		if _, dup := ids[li.ID]; dup {
			return &InputError{LineID: li.ID, Err: ErrDuplicateLineItem}
		}
		ids[li.ID] = struct{}{}
	}
	return nil
}
