package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "19473", cfg.VendorCode)
	assert.Equal(t, "1", cfg.JCCompany)
	assert.Equal(t, "3", cfg.LineTypeCode)
	assert.Equal(t, "amex", cfg.RefPrefix)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.SkipMarkers)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("VENDOR_CODE", "99999")
	t.Setenv("SKIP_MARKERS", "CORPORATE TOTAL,PROGRAM SUMMARY")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "99999", cfg.VendorCode)
	assert.Equal(t, []string{"CORPORATE TOTAL", "PROGRAM SUMMARY"}, cfg.SkipMarkers)
	assert.Equal(t, "debug", cfg.LogLevel)
}
