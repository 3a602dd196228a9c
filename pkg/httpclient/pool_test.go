// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaderLines(t *testing.T) {
	hdr, err := ParseHeaderLines([]string{"Accept: a, b", "X-y: z"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a, b"}, hdr.Values("Accept"))
	assert.Equal(t, []string{"z"}, hdr.Values("X-y"))
}

func TestParseHeaderLinesRejectsMalformed(t *testing.T) {
	_, err := ParseHeaderLines([]string{"not-a-header-line"})
	require.Error(t, err)
}

func TestPoolSubmitStreamsHeadersBodyAndDone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Origin", "yes")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("hello world"))
	}))
	defer server.Close()

	pool := New(5*time.Second, zerolog.Nop())
	txnID := uuid.New()
	pool.Submit(context.Background(), txnID, Request{Method: http.MethodGet, URL: server.URL})

	var sawHeaders, sawDone bool
	var body []byte

	for {
		ev := <-pool.Events()
		require.Equal(t, txnID, ev.TxnID)
		switch ev.Kind {
		case EventHeaders:
			sawHeaders = true
			assert.Equal(t, http.StatusOK, ev.Status)
			assert.Equal(t, []string{"yes"}, ev.Headers.Get("x-origin"))
		case EventBody:
			body = append(body, ev.Chunk...)
		case EventDone:
			sawDone = true
			require.NoError(t, ev.Err)
		}
		if sawDone {
			break
		}
	}

	assert.True(t, sawHeaders)
	assert.Equal(t, "hello world", string(body))
}

func TestPoolSubmitPropagatesDialError(t *testing.T) {
	pool := New(1*time.Second, zerolog.Nop())
	txnID := uuid.New()
	pool.Submit(context.Background(), txnID, Request{Method: http.MethodGet, URL: "http://127.0.0.1:1"})

	ev := <-pool.Events()
	assert.Equal(t, EventDone, ev.Kind)
	assert.Error(t, ev.Err)
}
