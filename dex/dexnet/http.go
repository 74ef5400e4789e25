// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package dexnet has helpers for JSON requests to public HTTP APIs.
package dexnet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultResponseSizeLimit = 1 << 20

type request struct {
	client     *http.Client
	sizeLimit  int64
	headers    [][2]string
	statusFunc func(int)
	errThing   any
}

// RequestOption modifies a request made with Get.
type RequestOption func(*request)

// WithClient sets the client used for the request. A nil client is ignored,
// leaving http.DefaultClient.
func WithClient(c *http.Client) RequestOption {
	return func(r *request) {
		if c != nil {
			r.client = c
		}
	}
}

// WithSizeLimit caps the number of response body bytes decoded.
func WithSizeLimit(limit int64) RequestOption {
	return func(r *request) { r.sizeLimit = limit }
}

// WithRequestHeader adds a header entry to the request.
func WithRequestHeader(k, v string) RequestOption {
	return func(r *request) { r.headers = append(r.headers, [2]string{k, v}) }
}

// WithStatusFunc calls f with the response status code.
func WithStatusFunc(f func(int)) RequestOption {
	return func(r *request) { r.statusFunc = f }
}

// WithErrorParsing decodes the body of a non-200 response into thing.
func WithErrorParsing(thing any) RequestOption {
	return func(r *request) { r.errThing = thing }
}

// Get performs an HTTP GET request. If thing is non-nil, the response body is
// JSON-decoded into it.
func Get(ctx context.Context, uri string, thing any, opts ...RequestOption) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return fmt.Errorf("error constructing request: %w", err)
	}
	return do(req, thing, opts...)
}

func do(req *http.Request, thing any, opts ...RequestOption) error {
	r := &request{
		client:    http.DefaultClient,
		sizeLimit: defaultResponseSizeLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, h := range r.headers {
		req.Header.Add(h[0], h[1])
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close()
	if r.statusFunc != nil {
		r.statusFunc(resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, r.sizeLimit)
	if resp.StatusCode != http.StatusOK {
		if r.errThing != nil {
			if err := json.NewDecoder(body).Decode(r.errThing); err != nil {
				return fmt.Errorf("HTTP error %q, and the error body could not be parsed: %w", resp.Status, err)
			}
		}
		return fmt.Errorf("HTTP error %q fetching %s", resp.Status, req.URL.Host)
	}
	if thing == nil {
		return nil
	}
	if err := json.NewDecoder(body).Decode(thing); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}
