// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequiredFlags(t *testing.T) {
	cfg, err := Parse([]string{"-p", "8443", "-c", "cert.pem", "-k", "key.pem"})
	require.NoError(t, err)
	assert.EqualValues(t, 8443, cfg.ListenPort)
	assert.Equal(t, "cert.pem", cfg.CertFile)
	assert.Equal(t, "key.pem", cfg.KeyFile)
	assert.False(t, cfg.Transparent)
	assert.Equal(t, defaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, defaultLogLevel, cfg.LogLevel)
	assert.Equal(t, defaultMaxInFlight, cfg.MaxInFlightTransactions)
}

func TestParseMaxInFlightFromEnv(t *testing.T) {
	t.Setenv(envMaxInFlight, "128")

	cfg, err := Parse([]string{"-p", "8443", "-c", "cert.pem", "-k", "key.pem"})
	require.NoError(t, err)
	assert.Equal(t, 128, cfg.MaxInFlightTransactions)
}

func TestParseMaxInFlightIgnoresInvalidEnv(t *testing.T) {
	t.Setenv(envMaxInFlight, "not-a-number")

	cfg, err := Parse([]string{"-p", "8443", "-c", "cert.pem", "-k", "key.pem"})
	require.NoError(t, err)
	assert.Equal(t, defaultMaxInFlight, cfg.MaxInFlightTransactions)
}

func TestParseMissingPortIsConfigError(t *testing.T) {
	_, err := Parse([]string{"-c", "cert.pem", "-k", "key.pem"})
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestParseMissingCertificateIsConfigError(t *testing.T) {
	_, err := Parse([]string{"-p", "8443", "-k", "key.pem"})
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestParseMissingKeyIsConfigError(t *testing.T) {
	_, err := Parse([]string{"-p", "8443", "-c", "cert.pem"})
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestParseOptionalFlags(t *testing.T) {
	cfg, err := Parse([]string{
		"-p", "8443", "-c", "cert.pem", "-k", "key.pem",
		"-b", "backend.internal:9000", "-v", "-h", "-0", "-t",
		"--metrics-addr", ":9100",
	})
	require.NoError(t, err)
	assert.Equal(t, "backend.internal:9000", cfg.Backend)
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.CurlVerbose)
	assert.True(t, cfg.HTTP10)
	assert.True(t, cfg.Transparent)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
}

func TestParseRejectsUnknownFlag(t *testing.T) {
	_, err := Parse([]string{"-p", "8443", "-c", "cert.pem", "-k", "key.pem", "--bogus"})
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}
