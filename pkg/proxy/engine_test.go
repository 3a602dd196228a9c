// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package proxy

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-core-stack/spdy2http/pkg/config"
)

func newTestEngine(cfg config.Config) *Engine {
	return &Engine{cfg: cfg, logger: zerolog.Nop()}
}

func TestResolveTargetNonTransparentRequiresAbsoluteURI(t *testing.T) {
	e := newTestEngine(config.Config{})

	target, err := e.resolveTarget("GET", "http://example.com/widgets?x=1", "https", "")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/widgets?x=1", target)
}

func TestResolveTargetNonTransparentRejectsRelativePath(t *testing.T) {
	e := newTestEngine(config.Config{})

	_, err := e.resolveTarget("GET", "/widgets", "https", "example.com")
	require.Error(t, err)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestResolveTargetTransparentUsesHostHeader(t *testing.T) {
	e := newTestEngine(config.Config{Transparent: true})

	target, err := e.resolveTarget("GET", "/widgets", "", "example.com:8080")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com:8080/widgets", target)
}

func TestResolveTargetTransparentRequiresHost(t *testing.T) {
	e := newTestEngine(config.Config{Transparent: true})

	_, err := e.resolveTarget("GET", "/widgets", "", "")
	require.Error(t, err)
}

func TestResolveTargetBackendOverridesResolvedHost(t *testing.T) {
	e := newTestEngine(config.Config{Backend: "backend.internal:9000"})

	target, err := e.resolveTarget("GET", "http://example.com/widgets", "", "")
	require.NoError(t, err)
	assert.Equal(t, "http://backend.internal:9000/widgets", target)
}

func TestResolveTargetEmptyPathDefaultsToSlash(t *testing.T) {
	e := newTestEngine(config.Config{Transparent: true})

	target, err := e.resolveTarget("GET", "", "", "example.com")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/", target)
}

func TestResolveTargetTransparentRejectsUnparseableHost(t *testing.T) {
	e := newTestEngine(config.Config{Transparent: true})

	_, err := e.resolveTarget("GET", "/widgets", "", "example.com:notaport")
	require.Error(t, err)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}
