// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package spdy

import (
	"encoding/binary"
	"fmt"
	"io"
)

// frameType enumerates the SPDY/2 control frame types this package speaks.
// Flow control (WINDOW_UPDATE), priority re-ordering and server push are out
// of scope, per the package doc comment.
type frameType uint16

const (
	typeSynStream frameType = 1
	typeSynReply  frameType = 2
	typeRstStream frameType = 3
	typePing      frameType = 6
	typeGoAway    frameType = 7
)

const (
	spdyVersion = 2

	flagFin = 0x01 // FLAG_FIN on a SYN_STREAM/SYN_REPLY/DATA frame

	controlBit = 0x8000
)

// controlFrame is the decoded form of a SPDY/2 control frame header plus its
// type-specific payload already split out.
type controlFrame struct {
	Type    frameType
	Flags   uint8
	Payload []byte
}

// readFrame reads exactly one frame (control or data) from r.
func readFrame(r io.Reader) (isControl bool, streamID uint32, cf controlFrame, payload []byte, err error) {
	var hdr [8]byte
	if _, err = io.ReadFull(r, hdr[:]); err != nil {
		return false, 0, controlFrame{}, nil, err
	}

	first := binary.BigEndian.Uint32(hdr[0:4])
	length := binary.BigEndian.Uint32(hdr[4:8]) & 0x00FFFFFF
	flags := uint8(hdr[4])

	body := make([]byte, length)
	if length > 0 {
		if _, err = io.ReadFull(r, body); err != nil {
			return false, 0, controlFrame{}, nil, err
		}
	}

	if first&(controlBit<<16) != 0 {
		typ := frameType(first & 0xFFFF)
		return true, 0, controlFrame{Type: typ, Flags: flags, Payload: body}, nil, nil
	}

	streamID = first & 0x7FFFFFFF
	return false, streamID, controlFrame{}, body, nil
}

// writeControlFrame serializes a control frame to w.
func writeControlFrame(w io.Writer, typ frameType, flags uint8, payload []byte) error {
	if len(payload) > 0x00FFFFFF {
		return fmt.Errorf("spdy: control frame payload too large (%d bytes)", len(payload))
	}
	var hdr [8]byte
	binary.BigEndian.PutUint16(hdr[0:2], controlBit|spdyVersion)
	binary.BigEndian.PutUint16(hdr[2:4], uint16(typ))
	hdr[4] = flags
	putUint24(hdr[5:8], uint32(len(payload)))

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// writeDataFrame serializes a DATA frame for streamID to w.
func writeDataFrame(w io.Writer, streamID uint32, flags uint8, payload []byte) error {
	if len(payload) > 0x00FFFFFF {
		return fmt.Errorf("spdy: data frame payload too large (%d bytes)", len(payload))
	}
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[0:4], streamID&0x7FFFFFFF)
	hdr[4] = flags
	putUint24(hdr[5:8], uint32(len(payload)))

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}
