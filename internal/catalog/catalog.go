// Package catalog loads offer definitions produced by the administration
// tooling and serves them read-only to the evaluator.
package catalog

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/go-playground/validator/v10"
	pgzip "github.com/klauspost/pgzip"
	"go.uber.org/zap"

	"github.com/xenking/offer-engine/internal/domain/offer"
)

// Format selects the catalog file schema.
type Format string

const (
	// FormatModern is the current catalog schema.
	FormatModern Format = "modern"
	// FormatLegacy is the schema exported by the old administration tooling.
	FormatLegacy Format = "legacy"
)

var _ offer.Repository = (*Catalog)(nil)

// Catalog is an immutable in-memory offer catalog.
type Catalog struct {
	offers []offer.Offer
	// Skipped lists entries that failed schema validation.
	Skipped []*offer.ConfigurationError
}

// New returns a Catalog serving the given offers.
func New(offers []offer.Offer) *Catalog {
	return &Catalog{offers: slices.Clone(offers)}
}

// List returns a copy of the catalog's offers.
func (c *Catalog) List(_ context.Context) ([]offer.Offer, error) {
	return slices.Clone(c.offers), nil
}

// Len returns the number of loaded offers.
func (c *Catalog) Len() int {
	return len(c.offers)
}

// Open opens path for reading, transparently decompressing .gz files.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}

	gz, err := pgzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "create gzip reader for %s", path)
	}
	return &gzipFile{Reader: gz, f: f}, nil
}

type gzipFile struct {
	*pgzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	err := g.Reader.Close()
	if cerr := g.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Load reads a catalog file. Entries failing schema validation are logged
// and reported in Catalog.Skipped; malformed JSON fails the whole load.
func Load(ctx context.Context, path string, format Format) (*Catalog, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	return Decode(ctx, r, format)
}

// Decode reads catalog entries from r.
func Decode(ctx context.Context, r io.Reader, format Format) (*Catalog, error) {
	var entries []interface {
		id() int64
		toOffer() offer.Offer
	}

	switch format {
	case FormatModern, "":
		var dtos []offerDTO
		if err := json.NewDecoder(r).Decode(&dtos); err != nil {
			return nil, errors.Wrap(err, "decode catalog")
		}
		for _, dto := range dtos {
			entries = append(entries, dto)
		}
	case FormatLegacy:
		var dtos []legacyOfferDTO
		if err := json.NewDecoder(r).Decode(&dtos); err != nil {
			return nil, errors.Wrap(err, "decode legacy catalog")
		}
		for _, dto := range dtos {
			entries = append(entries, dto)
		}
	default:
		return nil, errors.Errorf("unsupported catalog format: %q", format)
	}

	lg := zctx.From(ctx)
	validate := validator.New(validator.WithRequiredStructEnabled())
	c := &Catalog{offers: make([]offer.Offer, 0, len(entries))}

	for _, e := range entries {
		if err := validate.Struct(e); err != nil {
			cfgErr := &offer.ConfigurationError{OfferID: e.id(), Reason: err.Error()}
			c.Skipped = append(c.Skipped, cfgErr)
			lg.Warn("Skipping invalid catalog entry", zap.Int64("offer_id", e.id()), zap.Error(err))
			continue
		}
		c.offers = append(c.offers, e.toOffer())
	}

	lg.Info("Catalog loaded",
		zap.String("format", string(format)),
		zap.Int("offers", len(c.offers)),
		zap.Int("skipped", len(c.Skipped)),
	)
	return c, nil
}

func (dto offerDTO) id() int64 { return dto.ID }
