// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package spdy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-core-stack/spdy2http/pkg/headers"
)

func TestHeaderBlockRoundTrip(t *testing.T) {
	nv := headers.NewNameValues()
	nv.Add("accept", "a")
	nv.Add("accept", "b")
	nv.Add("x-y", "z")

	enc := newHeaderEncoder()
	block, err := enc.Encode(nv)
	require.NoError(t, err)

	dec := newHeaderDecoder()
	decoded, err := dec.Decode(block)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a", "b"}, decoded.Get("accept"))
	assert.Equal(t, []string{"z"}, decoded.Get("x-y"))
}

func TestHeaderBlockEmpty(t *testing.T) {
	nv := headers.NewNameValues()

	enc := newHeaderEncoder()
	block, err := enc.Encode(nv)
	require.NoError(t, err)

	dec := newHeaderDecoder()
	decoded, err := dec.Decode(block)
	require.NoError(t, err)
	assert.Equal(t, 0, decoded.Len())
}
