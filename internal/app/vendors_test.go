package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barcache/internal/provider"
	"barcache/internal/provider/polygon"
	"barcache/internal/provider/yahoo"
	"barcache/internal/slogx"
)

func TestCreateVendor(t *testing.T) {
	cfg := defaultConfig()
	v, err := CreateVendor(cfg, slogx.Discard())
	require.NoError(t, err)
	assert.IsType(t, &yahoo.Client{}, v)
	assert.Equal(t, yahoo.Name, v.Name())

	cfg.Vendor = "POLYGON"
	cfg.PolygonAPIKeys = []string{"k1", "k2"}
	v, err = CreateVendor(cfg, slogx.Discard())
	require.NoError(t, err)
	assert.IsType(t, &polygon.Client{}, v)
	require.NoError(t, v.Close())

	cfg.PolygonAPIKeys = nil
	v, err = CreateVendor(cfg, slogx.Discard())
	var cfgErr *provider.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Nil(t, v)

	cfg.Vendor = "tiingo"
	_, err = CreateVendor(cfg, slogx.Discard())
	assert.ErrorContains(t, err, "unsupported vendor")
}
