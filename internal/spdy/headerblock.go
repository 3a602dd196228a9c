// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package spdy

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/go-core-stack/spdy2http/pkg/headers"
)

// The real SPDY/2 draft compresses header blocks with a single zlib stream
// per session, seeded by a fixed dictionary of common header names/values,
// so that even the first, small header block on a session compresses well
// and later blocks benefit from the growing window. This package instead
// zlib-compresses each header block as its own independent stream (no
// shared dictionary, no cross-block window) — a deliberate simplification,
// since nothing outside this process decodes these frames, that trades the
// real protocol's compression ratio for a decoder with no session-lifetime
// state to keep in sync with the encoder. Recorded in DESIGN.md.
type headerEncoder struct {
	mu sync.Mutex
}

func newHeaderEncoder() *headerEncoder {
	return &headerEncoder{}
}

// Encode compresses nv into a SPDY/2 name/value header block.
func (e *headerEncoder) Encode(nv *headers.NameValues) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var raw bytes.Buffer
	names := nv.Names()
	if err := binary.Write(&raw, binary.BigEndian, uint16(len(names))); err != nil {
		return nil, err
	}
	for _, name := range names {
		values := nv.Get(name)
		joined := joinNulSeparated(values)
		if err := writeLenPrefixed(&raw, name); err != nil {
			return nil, err
		}
		if err := writeLenPrefixed(&raw, joined); err != nil {
			return nil, err
		}
	}

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(raw.Bytes()); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	return compressed.Bytes(), nil
}

func writeLenPrefixed(w io.Writer, s string) error {
	if err := binary.Write(w, binary.BigEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func joinNulSeparated(values []string) string {
	var b bytes.Buffer
	for i, v := range values {
		if i > 0 {
			b.WriteByte(0)
		}
		b.WriteString(v)
	}
	return b.String()
}

// headerDecoder decompresses SPDY/2 name/value header blocks. Each block is
// its own independent zlib stream (see headerEncoder's doc comment), so
// this type carries no state between calls; it exists to mirror
// headerEncoder and give the session a single named thing to hold.
type headerDecoder struct{}

func newHeaderDecoder() *headerDecoder {
	return &headerDecoder{}
}

// Decode decompresses block into a NameValues multimap, applying the
// duplicate-header rule via NameValues.Add.
func (d *headerDecoder) Decode(block []byte) (*headers.NameValues, error) {
	zr, err := zlib.NewReader(bytes.NewReader(block))
	if err != nil {
		return nil, fmt.Errorf("spdy: decompress header block: %w", err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("spdy: read header block: %w", err)
	}

	return parseHeaderBlock(raw)
}

func parseHeaderBlock(raw []byte) (*headers.NameValues, error) {
	nv := headers.NewNameValues()
	if len(raw) < 2 {
		return nv, nil
	}
	count := binary.BigEndian.Uint16(raw[:2])
	pos := 2

	for i := 0; i < int(count); i++ {
		name, next, err := readLenPrefixed(raw, pos)
		if err != nil {
			return nil, err
		}
		pos = next

		value, next, err := readLenPrefixed(raw, pos)
		if err != nil {
			return nil, err
		}
		pos = next

		for _, v := range splitNul(value) {
			nv.Add(name, v)
		}
	}
	return nv, nil
}

func readLenPrefixed(raw []byte, pos int) (string, int, error) {
	if pos+2 > len(raw) {
		return "", 0, fmt.Errorf("spdy: truncated header block")
	}
	n := int(binary.BigEndian.Uint16(raw[pos : pos+2]))
	pos += 2
	if pos+n > len(raw) {
		return "", 0, fmt.Errorf("spdy: truncated header block")
	}
	return string(raw[pos : pos+n]), pos + n, nil
}

func splitNul(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
