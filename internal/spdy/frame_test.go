// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package spdy

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeControlFrame(&buf, typeSynReply, flagFin, []byte("payload")))

	isControl, _, cf, _, err := readFrame(&buf)
	require.NoError(t, err)
	require.True(t, isControl)
	assert.Equal(t, typeSynReply, cf.Type)
	assert.Equal(t, uint8(flagFin), cf.Flags)
	assert.Equal(t, []byte("payload"), cf.Payload)
}

func TestDataFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeDataFrame(&buf, 7, 0, []byte("body bytes")))

	isControl, streamID, _, payload, err := readFrame(&buf)
	require.NoError(t, err)
	require.False(t, isControl)
	assert.Equal(t, uint32(7), streamID)
	assert.Equal(t, []byte("body bytes"), payload)
}

func TestDataFrameEmptyFin(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeDataFrame(&buf, 3, flagFin, nil))

	_, streamID, _, payload, err := readFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), streamID)
	assert.Empty(t, payload)
}
