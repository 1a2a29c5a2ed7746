package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/funildigital/checkout/internal/config"
)

func TestNewHolder_Defaults(t *testing.T) {
	holder, err := NewHolder(config.Config{})
	if err != nil {
		t.Fatal(err)
	}

	assert.NotEmpty(t, holder.Products())
	assert.NotEmpty(t, holder.ShippingOptions())
}

func TestShippingByID(t *testing.T) {
	holder, err := NewHolder(config.Config{})
	if err != nil {
		t.Fatal(err)
	}

	option, ok := holder.ShippingByID("expresso")
	assert.True(t, ok)
	assert.Equal(t, int64(1990), option.PriceCents)

	_, ok = holder.ShippingByID("does-not-exist")
	assert.False(t, ok)
}

func TestValidateCatalog(t *testing.T) {
	assert.NoError(t, validateCatalog(DefaultCatalog()))

	assert.Error(t, validateCatalog(Catalog{
		ShippingOptions: DefaultCatalog().ShippingOptions,
	}))
	assert.Error(t, validateCatalog(Catalog{
		Products: DefaultCatalog().Products,
	}))
}
