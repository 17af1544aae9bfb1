// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrMalicious is wrapped by every security violation, e.g. a failed MAC check or inconsistent broadcasts.
	ErrMalicious = errors.New("malicious behavior detected")
	// ErrContract is wrapped by programming errors, e.g. reading an unresolved result or evaluating rounds out of order.
	ErrContract = errors.New("contract violation")
)

// MaliciousError reports a security violation detected by a protocol suite.
type MaliciousError struct {
	Reason string
}

// NewMaliciousError returns a MaliciousError with a formatted reason.
func NewMaliciousError(format string, args ...interface{}) *MaliciousError {
	return &MaliciousError{Reason: fmt.Sprintf(format, args...)}
}

func (e *MaliciousError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMalicious, e.Reason)
}

// Unwrap makes errors.Is(err, ErrMalicious) hold.
func (e *MaliciousError) Unwrap() error {
	return ErrMalicious
}
