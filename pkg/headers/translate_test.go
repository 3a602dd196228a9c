// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package headers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLinesCapitalizeAndJoin(t *testing.T) {
	nv := NewNameValues()
	nv.Add("accept", "a")
	nv.Add("accept", "b")
	nv.Add("x-y", "z")

	lines := RequestLines(nv.Names(), nv.Get)
	require.Len(t, lines, 2)
	assert.Equal(t, "Accept: a, b", lines[0])
	assert.Equal(t, "X-y: z", lines[1])
}

func TestNameValuesRoundTripAsSet(t *testing.T) {
	original := NewNameValues()
	original.Add("accept", "a")
	original.Add("accept", "b")
	original.Add("x-y", "z")

	lines := RequestLines(original.Names(), original.Get)

	rebuilt := NewNameValues()
	for _, line := range lines {
		colon := indexColon(line)
		name := toLowerASCII(line[:colon])
		for _, v := range splitComma(line[colon+2:]) {
			rebuilt.Add(name, v)
		}
	}

	assert.True(t, original.Equal(rebuilt))
}

func TestFromHTTPHeaderStripsHopByHopAndLowercasesNames(t *testing.T) {
	nv := FromHTTPHeader(map[string][]string{
		"Location":   {"/y"},
		"Connection": {"close"},
	})
	assert.Equal(t, []string{"/y"}, nv.Get("location"))
	assert.Empty(t, nv.Get("connection"))
}

func TestFromHTTPHeaderOrdersNamesDeterministically(t *testing.T) {
	src := map[string][]string{
		"X-Zeta":  {"1"},
		"Accept":  {"a"},
		"X-Alpha": {"2"},
	}

	first := FromHTTPHeader(src).Names()
	for i := 0; i < 20; i++ {
		again := FromHTTPHeader(src).Names()
		assert.Equal(t, first, again)
	}
	assert.Equal(t, []string{"accept", "x-alpha", "x-zeta"}, first)
}

// --- small local helpers for the round-trip test only ---

func indexColon(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return i
		}
	}
	return -1
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func splitComma(s string) []string {
	var out []string
	start := 0
	for i := 0; i+1 < len(s); i++ {
		if s[i] == ',' && s[i+1] == ' ' {
			out = append(out, s[start:i])
			start = i + 2
			i++
		}
	}
	out = append(out, s[start:])
	return out
}
