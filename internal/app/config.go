package app

import (
	"os"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/offer-engine/internal/catalog"
)

// Config holds the complete application configuration, loadable from
// environment variables (OFFERS_ prefix), flags, or YAML config files.
type Config struct {
	Catalog     CatalogConfig
	Orders      string `usage:"Path to the orders JSON file, .gz supported (OFFERS_ORDERS)" flag:"orders"`
	Output      string `default:"-" usage:"Quote output path, - for stdout" flag:"output"`
	Concurrency int    `default:"4" usage:"Orders quoted in parallel" flag:"concurrency"`
}

// CatalogConfig controls where offers are loaded from.
type CatalogConfig struct {
	Path   string `usage:"Path to the offer catalog JSON file, .gz supported" flag:"catalog"`
	Format string `default:"modern" usage:"Catalog schema: modern or legacy" flag:"catalog-format"`
}

// LoadConfig loads configuration from environment variables, YAML config files
// and flags.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "OFFERS",
		Files:     []string{"config.yaml", "/etc/offers/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults maps the conventional CATALOG_PATH variable used by the
// administration tooling exports.
func (c *Config) applyDefaults() {
	if c.Catalog.Path == "" {
		if v := os.Getenv("CATALOG_PATH"); v != "" {
			c.Catalog.Path = v
		}
	}
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
}

func (c *Config) validate() error {
	if c.Catalog.Path == "" {
		return errors.New("catalog path is required: set OFFERS_CATALOG_PATH or --catalog")
	}
	if c.Orders == "" {
		return errors.New("orders path is required: set OFFERS_ORDERS or --orders")
	}
	switch catalog.Format(c.Catalog.Format) {
	case catalog.FormatModern, catalog.FormatLegacy:
	default:
		return errors.Errorf("unsupported catalog format: %q", c.Catalog.Format)
	}
	return nil
}
