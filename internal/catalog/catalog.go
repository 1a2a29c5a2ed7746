package catalog

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/funildigital/checkout/internal/config"
)

// Product is a storefront entry as rendered by the checkout page.
type Product struct {
	ID          string  `json:"id" mapstructure:"id"`
	Title       string  `json:"title" mapstructure:"title"`
	Description string  `json:"description,omitempty" mapstructure:"description"`
	PriceCents  int64   `json:"priceCents" mapstructure:"priceCents"`
	OldPrice    int64   `json:"oldPriceCents,omitempty" mapstructure:"oldPriceCents"`
	ImageURL    string  `json:"imageUrl,omitempty" mapstructure:"imageUrl"`
	Rating      float64 `json:"rating,omitempty" mapstructure:"rating"`
}

type ShippingOption struct {
	ID         string `json:"id" mapstructure:"id"`
	Label      string `json:"label" mapstructure:"label"`
	Deadline   string `json:"deadline,omitempty" mapstructure:"deadline"`
	PriceCents int64  `json:"priceCents" mapstructure:"priceCents"`
}

// Catalog is the full storefront snapshot. Snapshots are immutable;
// a reload swaps the whole value.
type Catalog struct {
	Products        []Product        `json:"products" mapstructure:"products"`
	ShippingOptions []ShippingOption `json:"shippingOptions" mapstructure:"shippingOptions"`
}

func DefaultCatalog() Catalog {
	return Catalog{
		Products: []Product{
			{
				ID:         "kit-principal",
				Title:      "Kit Completo",
				PriceCents: 9790,
				OldPrice:   19790,
				Rating:     4.8,
			},
		},
		ShippingOptions: []ShippingOption{
			{ID: "sedex", Label: "SEDEX", Deadline: "2-4 dias úteis", PriceCents: 0},
			{ID: "expresso", Label: "Entrega Expressa", Deadline: "1-2 dias úteis", PriceCents: 1990},
		},
	}
}

// Holder serves the current catalog snapshot and hot-reloads it when the
// backing file changes.
type Holder struct {
	current atomic.Value // holds Catalog
}

func NewHolder(cfg config.Config) (*Holder, error) {
	v := viper.New()

	v.SetConfigName("catalog")
	v.SetConfigType("yml")
	if cfg.CatalogPath != "" {
		v.AddConfigPath(cfg.CatalogPath)
	}
	v.AddConfigPath("/etc/checkout")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CHECKOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultCatalog()
		v.SetDefault("catalog.products", defaults.Products)
		v.SetDefault("catalog.shippingOptions", defaults.ShippingOptions)
	}

	var snapshot Catalog
	if err := v.UnmarshalKey("catalog", &snapshot); err != nil {
		return nil, err
	}
	if err := validateCatalog(snapshot); err != nil {
		return nil, err
	}

	holder := &Holder{}
	holder.current.Store(snapshot)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated Catalog
		if err := v.UnmarshalKey("catalog", &updated); err != nil {
			log.Printf("[catalog] reload failed: %v", err)
			return
		}
		if err := validateCatalog(updated); err != nil {
			log.Printf("[catalog] invalid catalog ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[catalog] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *Holder) Get() Catalog {
	return h.current.Load().(Catalog)
}

func (h *Holder) Products() []Product {
	return h.Get().Products
}

func (h *Holder) ShippingOptions() []ShippingOption {
	return h.Get().ShippingOptions
}

// ShippingByID resolves a shipping option by its stable id.
func (h *Holder) ShippingByID(id string) (ShippingOption, bool) {
	for _, opt := range h.Get().ShippingOptions {
		if opt.ID == id {
			return opt, true
		}
	}
	return ShippingOption{}, false
}

func validateCatalog(c Catalog) error {
	if len(c.Products) == 0 {
		return errors.New("catalog.products cannot be empty")
	}
	if len(c.ShippingOptions) == 0 {
		return errors.New("catalog.shippingOptions cannot be empty")
	}
	return nil
}
