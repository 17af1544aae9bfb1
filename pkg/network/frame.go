//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package network

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// SizeLength is the length of the little endian size header preceding frames and packed messages.
const SizeLength = 4

// MaxFrameSize is the largest payload a size header can describe.
const MaxFrameSize = math.MaxUint32

func sizeHeader(n int) ([]byte, error) {
	if uint64(n) > MaxFrameSize {
		return nil, fmt.Errorf("%w: payload of %d bytes exceeds the maximum frame size", ErrCommunication, n)
	}
	b := make([]byte, SizeLength)
	binary.LittleEndian.PutUint32(b, uint32(n))
	return b, nil
}

// WriteFrame writes data preceded by its size.
func WriteFrame(w io.Writer, data []byte) error {
	header, err := sizeHeader(len(data))
	if err != nil {
		return err
	}
	if _, err := w.Write(append(header, data...)); err != nil {
		return err
	}
	return nil
}

// ReadFrame reads a frame written by WriteFrame.
func ReadFrame(r io.Reader) ([]byte, error) {
	header := make([]byte, SizeLength)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	data := make([]byte, binary.LittleEndian.Uint32(header))
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}

// Pack concatenates messages into one payload, each preceded by its size.
func Pack(messages [][]byte) ([]byte, error) {
	size := 0
	for _, m := range messages {
		size += SizeLength + len(m)
	}
	out := make([]byte, 0, size)
	for _, m := range messages {
		header, err := sizeHeader(len(m))
		if err != nil {
			return nil, err
		}
		out = append(append(out, header...), m...)
	}
	return out, nil
}

// Unpack splits a payload created by Pack into its messages.
func Unpack(payload []byte) ([][]byte, error) {
	var messages [][]byte
	for len(payload) > 0 {
		if len(payload) < SizeLength {
			return nil, fmt.Errorf("%w: truncated size header of %d bytes", ErrCommunication, len(payload))
		}
		size := binary.LittleEndian.Uint32(payload[:SizeLength])
		payload = payload[SizeLength:]
		if uint64(len(payload)) < uint64(size) {
			return nil, fmt.Errorf("%w: message of %d bytes announced but only %d bytes left", ErrCommunication, size, len(payload))
		}
		messages = append(messages, payload[:size:size])
		payload = payload[size:]
	}
	return messages, nil
}
