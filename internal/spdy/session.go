// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package spdy

import (
	"encoding/binary"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-core-stack/spdy2http/pkg/headers"
)

// maxDataFrameChunk bounds a single outbound DATA frame's payload. Spec.md
// doesn't name a chunk size; 16 KiB matches the original's curl write
// buffer granularity closely enough to exercise the chunked-delivery
// property in spec.md §8 scenario 5 without being a protocol requirement.
const maxDataFrameChunk = 16 * 1024

// Session is one inbound SPDY/2-over-TLS connection. It owns the frame
// read loop (one goroutine) and serializes all outbound frame writes
// (guarded by writeMu) so concurrently-queued responses on different
// streams never interleave their bytes on the wire.
type Session struct {
	ID uuid.UUID

	conn    net.Conn
	handler RequestHandler
	logger  zerolog.Logger

	encoder *headerEncoder
	decoder *headerDecoder

	writeMu sync.Mutex

	streamsMu sync.Mutex
	streams   map[uint32]*Request
}

func newSession(conn net.Conn, handler RequestHandler, logger zerolog.Logger) *Session {
	id := uuid.New()
	return &Session{
		ID:      id,
		conn:    conn,
		handler: handler,
		logger:  logger.With().Str("session_id", id.String()).Logger(),
		encoder: newHeaderEncoder(),
		decoder: newHeaderDecoder(),
		streams: make(map[uint32]*Request),
	}
}

// serve runs the read loop until the connection closes or a fatal framing
// error occurs. It returns when there is nothing further to read.
func (s *Session) serve() {
	defer s.conn.Close()

	for {
		isControl, dataStreamID, cf, dataPayload, err := readFrame(s.conn)
		if err != nil {
			s.logger.Debug().Err(err).Msg("session closed")
			return
		}

		if !isControl {
			// Request bodies are never relayed to the origin in this
			// revision (spec.md Non-goals); inbound DATA frames are
			// acknowledged by simply being read and discarded above.
			_ = dataStreamID
			_ = dataPayload
			continue
		}

		switch cf.Type {
		case typeSynStream:
			if err := s.handleSynStream(cf.Payload); err != nil {
				s.logger.Warn().Err(err).Msg("malformed SYN_STREAM")
			}
		case typeRstStream:
			s.handleRstStream(cf.Payload)
		case typePing:
			s.handlePing(cf.Payload)
		case typeGoAway:
			s.logger.Debug().Msg("peer sent GOAWAY")
			return
		default:
			s.logger.Debug().Uint16("type", uint16(cf.Type)).Msg("ignoring unsupported control frame")
		}
	}
}

// handleSynStream decodes a SYN_STREAM payload (stream id, associated
// stream id, priority, and a compressed name/value header block containing
// both the SPDY pseudo-headers and the ordinary request headers) and
// invokes the registered RequestHandler.
func (s *Session) handleSynStream(payload []byte) error {
	if len(payload) < 10 {
		return fmt.Errorf("spdy: SYN_STREAM payload too short")
	}
	streamID := binary.BigEndian.Uint32(payload[0:4]) & 0x7FFFFFFF
	block := payload[10:]

	nv, err := s.decoder.Decode(block)
	if err != nil {
		return err
	}

	req := &Request{
		session:  s,
		streamID: streamID,
		Method:   firstValue(nv, ":method"),
		Path:     firstValue(nv, ":path"),
		Version:  firstValue(nv, ":version"),
		Host:     firstValue(nv, ":host"),
		Scheme:   firstValue(nv, ":scheme"),
		Headers:  withoutPseudoHeaders(nv),
	}

	s.streamsMu.Lock()
	s.streams[streamID] = req
	s.streamsMu.Unlock()

	s.handler(req)
	return nil
}

func (s *Session) handleRstStream(payload []byte) {
	if len(payload) < 4 {
		return
	}
	streamID := binary.BigEndian.Uint32(payload[0:4]) & 0x7FFFFFFF
	s.forgetStream(streamID)
}

func (s *Session) handlePing(payload []byte) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = writeControlFrame(s.conn, typePing, 0, payload)
}

func (s *Session) forgetStream(streamID uint32) {
	s.streamsMu.Lock()
	delete(s.streams, streamID)
	s.streamsMu.Unlock()
}

// queueResponse sends the SYN_REPLY for resp and drives its DATA frames to
// completion on a dedicated goroutine, per spec.md §4.4's response-pump
// semantics.
func (s *Session) queueResponse(resp *Response) error {
	nv := headers.NewNameValues()
	nv.Add(":status", fmt.Sprintf("%d %s", resp.Status, resp.StatusText))
	nv.Add(":version", resp.Version)
	for _, name := range resp.Headers.Names() {
		for _, v := range resp.Headers.Get(name) {
			nv.Add(name, v)
		}
	}

	block, err := s.encoder.Encode(nv)
	if err != nil {
		return fmt.Errorf("spdy: encode SYN_REPLY headers: %w", err)
	}

	var payload []byte
	payload = append(payload, make([]byte, 6)...) // stream id (4) + unused (2)
	binary.BigEndian.PutUint32(payload[0:4], resp.request.streamID&0x7FFFFFFF)
	payload = append(payload, block...)

	s.writeMu.Lock()
	err = writeControlFrame(s.conn, typeSynReply, 0, payload)
	s.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("spdy: write SYN_REPLY: %w", err)
	}

	go s.pumpData(resp)
	return nil
}

// pumpData repeatedly pulls from resp's DataSource and writes DATA frames
// until told there is no more, then marks the stream FIN'd and reports
// completion — the Go restatement of the original's outbound data callback
// being driven by the daemon whenever it "can emit more" (spec.md §4.4).
func (s *Session) pumpData(resp *Response) {
	streamID := resp.request.streamID
	success := true
	var pumpErr error

	for {
		data, more, err := resp.source(maxDataFrameChunk)
		if err != nil {
			success = false
			pumpErr = err
			s.sendRstStream(streamID)
			break
		}

		flags := uint8(0)
		if !more {
			flags = flagFin
		}

		s.writeMu.Lock()
		writeErr := writeDataFrame(s.conn, streamID, flags, data)
		s.writeMu.Unlock()
		if writeErr != nil {
			success = false
			pumpErr = fmt.Errorf("spdy: write DATA frame: %w", writeErr)
			break
		}

		if !more {
			break
		}
	}

	s.forgetStream(streamID)
	if resp.done != nil {
		resp.done(success, pumpErr)
	}
}

func (s *Session) sendRstStream(streamID uint32) {
	payload := make([]byte, 8)
	binary.BigEndian.PutUint32(payload[0:4], streamID&0x7FFFFFFF)
	s.writeMu.Lock()
	_ = writeControlFrame(s.conn, typeRstStream, 0, payload)
	s.writeMu.Unlock()
}

func firstValue(nv *headers.NameValues, name string) string {
	values := nv.Get(name)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func withoutPseudoHeaders(nv *headers.NameValues) *headers.NameValues {
	out := headers.NewNameValues()
	for _, name := range nv.Names() {
		if len(name) > 0 && name[0] == ':' {
			continue
		}
		for _, v := range nv.Get(name) {
			out.Add(name, v)
		}
	}
	return out
}
