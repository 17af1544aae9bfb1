//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//

// Package castor is a client for the Castor service which provides the offline phase material (tuples) for SPDZ.
package castor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
)

const tuplesPath = "/intra-vcp/tuples"

// AbstractClient is the interface of the Castor client.
type AbstractClient interface {
	GetTuples(count int, tupleType TupleType, reservationID uuid.UUID) (*TupleList, error)
}

// Client is a client for the Castor tuple storage service.
type Client struct {
	HTTPClient *http.Client
	URL        url.URL
}

// NewClient returns a new Castor client.
func NewClient(u url.URL) (*Client, error) {
	if !govalidator.IsURL(u.String()) {
		return nil, errors.New("invalid castor url")
	}
	return &Client{HTTPClient: &http.Client{}, URL: u}, nil
}

// GetTuples fetches count tuples of the given type reserved under reservationID.
func (c *Client) GetTuples(count int, tupleType TupleType, reservationID uuid.UUID) (*TupleList, error) {
	values := url.Values{}
	values.Add("tupletype", tupleType.Name)
	values.Add("count", strconv.Itoa(count))
	values.Add("reservationId", reservationID.String())
	u := c.URL
	u.Path += tuplesPath
	u.RawQuery = values.Encode()
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	body, err := c.doRequest(req, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("getting tuples failed: %w", err)
	}
	defer body.Close()
	tuples := &TupleList{}
	if err := json.NewDecoder(body).Decode(tuples); err != nil {
		return nil, fmt.Errorf("castor has returned an invalid response body: %w", err)
	}
	if len(tuples.Tuples) != count {
		return nil, fmt.Errorf("castor has returned %d tuples instead of %d", len(tuples.Tuples), count)
	}
	for i, t := range tuples.Tuples {
		if len(t.Shares) != tupleType.Arity {
			return nil, fmt.Errorf("tuple %d of type %s has %d shares instead of %d", i, tupleType.Name, len(t.Shares), tupleType.Arity)
		}
	}
	return tuples, nil
}

// doRequest sends the request and checks the response code.
func (c *Client) doRequest(req *http.Request, expected int) (io.ReadCloser, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("communication with castor failed: %w", err)
	}
	if resp.StatusCode != expected {
		defer resp.Body.Close()
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("server replied with an unexpected response code #%d: %s", resp.StatusCode, string(bodyBytes))
	}
	return resp.Body, nil
}
