package app

import (
	"context"
	"io"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/offer-engine/internal/catalog"
	"github.com/xenking/offer-engine/internal/domain/offer"
	"github.com/xenking/offer-engine/internal/domain/order"
)

// Run loads the catalog, quotes every order in the batch and writes one JSON
// line per order. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("catalog", cfg.Catalog.Path),
		zap.String("orders", cfg.Orders),
	)

	return run(ctx, lg, cfg,
		offer.WithMeterProvider(m.MeterProvider()),
		offer.WithTracerProvider(m.TracerProvider()),
	)
}

func run(ctx context.Context, lg *zap.Logger, cfg *Config, opts ...offer.Option) error {
	cat, err := catalog.Load(ctx, cfg.Catalog.Path, catalog.Format(cfg.Catalog.Format))
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}

	ev, err := offer.NewEvaluator(opts...)
	if err != nil {
		return errors.Wrap(err, "create evaluator")
	}
	svc := order.NewService(cat, ev)

	reqs, err := loadOrders(ctx, cfg.Orders)
	if err != nil {
		return errors.Wrap(err, "load orders")
	}

	outcomes, err := quoteAll(ctx, lg, svc, reqs, cfg.Concurrency)
	if err != nil {
		return err
	}

	w, err := openOutput(cfg.Output)
	if err != nil {
		return err
	}
	return writeAndClose(w, outcomes)
}

// quoteAll prices orders in parallel. A rejected order is reported in its
// outcome and does not stop the batch; only context cancellation does.
func quoteAll(
	ctx context.Context,
	lg *zap.Logger,
	svc *order.Service,
	reqs []order.QuoteRequest,
	concurrency int,
) ([]outcome, error) {
	outcomes := make([]outcome, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			q, err := svc.Quote(gctx, req)
			if err != nil {
				lg.Warn("Order rejected", zap.String("order_id", req.OrderID), zap.Error(err))
			}
			outcomes[i] = outcome{OrderID: req.OrderID, Quote: q, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "quote orders")
	}

	var failed int
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	lg.Info("Batch quoted", zap.Int("orders", len(outcomes)), zap.Int("failed", failed))
	return outcomes, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "create output %s", path)
	}
	return f, nil
}

// writeAndClose writes outcomes and closes w. A failed close means the
// output may be incomplete, so it is reported like a failed write.
func writeAndClose(w io.WriteCloser, outcomes []outcome) error {
	if err := writeOutcomes(w, outcomes); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "close output")
	}
	return nil
}
