//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package castor

import (
	"encoding/base64"
	"fmt"
)

// TupleList is a collection of tuples of one type.
type TupleList struct {
	Tuples []Tuple `json:"tuples"`
}

// Tuple holds the shares of the elements of one tuple, e.g. a, b and c of a multiplication triple.
type Tuple struct {
	Shares []Share `json:"shares"`
}

// Share is the base64 encoded share of a value and of its MAC.
type Share struct {
	Value string `json:"value"`
	Mac   string `json:"mac"`
}

// Decode returns the raw value and MAC share.
func (s Share) Decode() (value, mac []byte, err error) {
	value, err = base64.StdEncoding.DecodeString(s.Value)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding share value: %w", err)
	}
	mac, err = base64.StdEncoding.DecodeString(s.Mac)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding share mac: %w", err)
	}
	return value, mac, nil
}

// TupleType describes a type of tuples provided by Castor.
type TupleType struct {
	Name  string
	Arity int
}

var (
	// InputMaskGfp are random values known to one party, used to secret share inputs. The second share carries the
	// value in the clear for the owner.
	InputMaskGfp = TupleType{"INPUT_MASK_GFP", 2}
	// MultiplicationTripleGfp are triples a, b, c with c = ab, used to multiply.
	MultiplicationTripleGfp = TupleType{"MULTIPLICATION_TRIPLE_GFP", 3}
)
