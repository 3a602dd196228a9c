// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package proxy

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-core-stack/spdy2http/internal/spdy"
)

func TestTransactionPullBodyBlocksUntilDataArrives(t *testing.T) {
	txn := newTransaction(&spdy.Request{}, zerolog.Nop())

	result := make(chan []byte, 1)
	go func() {
		chunk, more, err := txn.pullBody(16)
		require.NoError(t, err)
		assert.True(t, more)
		result <- chunk
	}()

	select {
	case <-result:
		t.Fatal("pullBody returned before any data was appended")
	case <-time.After(20 * time.Millisecond):
	}

	txn.appendBody([]byte("hello"))

	select {
	case chunk := <-result:
		assert.Equal(t, "hello", string(chunk))
	case <-time.After(time.Second):
		t.Fatal("pullBody did not unblock after appendBody")
	}
}

func TestTransactionPullBodyReportsNoMoreAfterOriginDone(t *testing.T) {
	txn := newTransaction(&spdy.Request{}, zerolog.Nop())
	txn.appendBody([]byte("abc"))
	txn.markOriginDone(nil)

	chunk, more, err := txn.pullBody(16)
	require.NoError(t, err)
	assert.False(t, more)
	assert.Equal(t, "abc", string(chunk))
}

func TestTransactionPullBodyChunksToCapacity(t *testing.T) {
	txn := newTransaction(&spdy.Request{}, zerolog.Nop())
	txn.appendBody([]byte("abcdef"))
	txn.markOriginDone(nil)

	first, more, err := txn.pullBody(4)
	require.NoError(t, err)
	assert.True(t, more)
	assert.Equal(t, "abcd", string(first))

	second, more, err := txn.pullBody(4)
	require.NoError(t, err)
	assert.False(t, more)
	assert.Equal(t, "ef", string(second))
}

func TestTransactionPullBodyPropagatesOriginError(t *testing.T) {
	txn := newTransaction(&spdy.Request{}, zerolog.Nop())
	boom := assert.AnError
	txn.markOriginDone(boom)

	_, more, err := txn.pullBody(16)
	assert.False(t, more)
	assert.ErrorIs(t, err, boom)
}
