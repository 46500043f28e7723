// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/glimpse-dev/glimpse/internal/search"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// defaultHTTPClient is the package-level HTTP client used by server commands.
// Overridden in tests via httptest.
var defaultHTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// serverClient provides HTTP access to a running glimpse server.
type serverClient struct {
	baseURL string
	http    *http.Client
}

// newServerClient creates a client targeting addr, either host:port or a
// full URL. An empty addr falls back to server.listen.
func newServerClient(addr string) *serverClient {
	if addr == "" {
		addr = viper.GetString("server.listen")
	}
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return &serverClient{
		baseURL: strings.TrimSuffix(addr, "/"),
		http:    defaultHTTPClient,
	}
}

// search calls GET /search.
func (c *serverClient) search(ctx context.Context, query string, k int) ([]search.Result, error) {
	params := url.Values{"query": {query}}
	if k > 0 {
		params.Set("k", strconv.Itoa(k))
	}
	var results []search.Result
	if err := c.getJSON(ctx, "/search?"+params.Encode(), &results); err != nil {
		return nil, err
	}
	return results, nil
}

// getJSON performs a GET request and decodes the JSON response into dest.
func (c *serverClient) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return glimpseerr.Errorf(glimpseerr.CodeCLIInputInvalid, "building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		switch {
		case isDialError(err):
			return glimpseerr.Errorf(glimpseerr.CodeCLIServerNotRunning, "server at %s is not running", c.baseURL)
		case isTimeout(err):
			return glimpseerr.Errorf(glimpseerr.CodeCLIRequestTimeout, "request to %s timed out", c.baseURL)
		}
		return glimpseerr.Errorf(glimpseerr.CodeCLIRequestFailure, "request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return glimpseerr.Errorf(glimpseerr.CodeCLIRequestFailure, "server returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return glimpseerr.Errorf(glimpseerr.CodeCLIResponseInvalid, "invalid response: %w", err)
	}
	return nil
}

// isDialError returns true if err is a net dial error (connection refused, etc.).
func isDialError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
