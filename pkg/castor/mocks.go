//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package castor

import (
	"bytes"
	"errors"
	"io"
	"net/http"
)

// MockedRoundTripper answers requests for ExpectedPath with ReturnJSON and everything else with 404.
type MockedRoundTripper struct {
	ExpectedPath string
	ReturnJSON   []byte
	Requests     []*http.Request
}

// RoundTrip records the request and returns the canned response.
func (m *MockedRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.Requests = append(m.Requests, req)
	statusCode := http.StatusOK
	if req.URL.Path != m.ExpectedPath {
		statusCode = http.StatusNotFound
	}
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBuffer(m.ReturnJSON)),
	}, nil
}

// MockedBrokenRoundTripper fails every request.
type MockedBrokenRoundTripper struct {
}

// RoundTrip returns an error.
func (m *MockedBrokenRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return nil, errors.New("some error")
}
