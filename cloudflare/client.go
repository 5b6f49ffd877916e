/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jpillora/backoff"
	"github.com/lithammer/shortuuid/v3"
	"github.com/sirupsen/logrus"
)

const defaultPerPage = 50

// Client talks to the Cloudflare v4 REST API.
type Client struct {
	logger logrus.FieldLogger

	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
	maxRetries int

	apiToken string
	apiEmail string
	apiKey   string
}

// New constructs a client from the provided parameters.
func New(config *Config) (*Client, error) {
	if !config.hasCredentials() {
		return nil, ErrMissingCredentials
	}

	c := &Client{
		logger: config.Logger,

		baseURL:    config.BaseURL,
		httpClient: config.HTTPClient,
		userAgent:  config.UserAgent,
		maxRetries: config.MaxRetries,

		apiToken: config.APIToken,
		apiEmail: config.APIEmail,
		apiKey:   config.APIKey,
	}

	if c.logger == nil {
		c.logger = logrus.StandardLogger()
	}
	c.logger = c.logger.WithField("scope", "cloudflare")

	if c.baseURL == nil {
		c.baseURL, _ = url.Parse(DefaultBaseURL)
	} else if !strings.HasSuffix(c.baseURL.Path, "/") {
		u := *c.baseURL
		u.Path += "/"
		c.baseURL = &u
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: 60 * time.Second,
		}
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	if c.maxRetries == 0 {
		c.maxRetries = DefaultMaxRetries
	} else if c.maxRetries < 0 {
		c.maxRetries = 0
	}

	return c, nil
}

// endpoint returns the escaped path of segments relative to the base URL.
// Each segment is escaped on its own, so a "/" inside an identifier cannot
// address another resource.
func endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for idx, segment := range segments {
		escaped[idx] = url.PathEscape(segment)
	}
	return strings.Join(escaped, "/")
}

// resolve appends the escaped path to the base URL. ResolveReference is not
// used since it would remove dot segments and decode the path.
func (c *Client) resolve(path string, query url.Values) (*url.URL, error) {
	u := *c.baseURL
	u.RawPath = c.baseURL.EscapedPath() + path
	unescaped, err := url.PathUnescape(u.RawPath)
	if err != nil {
		return nil, fmt.Errorf("invalid request path: %w", err)
	}
	u.Path = unescaped
	u.RawQuery = query.Encode()
	u.Fragment = ""
	return &u, nil
}

func (c *Client) authorize(request *http.Request) {
	if c.apiToken != "" {
		request.Header.Set("Authorization", "Bearer "+c.apiToken)
	} else {
		request.Header.Set("X-Auth-Email", c.apiEmail)
		request.Header.Set("X-Auth-Key", c.apiKey)
	}
}

// do sends a request, decodes the response envelope and unmarshals its
// result into result, if given. Transport errors, 429 and 5xx responses are
// retried with backoff.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, result interface{}) (*ResultInfo, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	u, err := c.resolve(path, query)
	if err != nil {
		return nil, err
	}

	logger := c.logger.WithFields(logrus.Fields{
		"request_id": shortuuid.New(),
		"method":     method,
		"path":       path,
	})

	bo := &backoff.Backoff{
		Min:    500 * time.Millisecond,
		Max:    10 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	for attempt := 0; ; attempt++ {
		envelope, statusCode, err := c.roundTrip(ctx, logger.WithField("attempt", attempt+1), method, u.String(), payload)
		var transportErr *transportError
		if err != nil && !errors.As(err, &transportErr) {
			return nil, err
		}
		if err == nil && !isRetryableStatus(statusCode) {
			return c.decode(method, path, statusCode, envelope, result)
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			if err != nil {
				return nil, err
			}
			return nil, ctxErr
		}
		if attempt >= c.maxRetries {
			if err != nil {
				return nil, err
			}
			return c.decode(method, path, statusCode, envelope, result)
		}

		delay := bo.Duration()
		entry := logger.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"delay":   delay,
		})
		if err != nil {
			entry.WithError(err).Warnln("request failed, retrying")
		} else {
			entry.WithField("status", statusCode).Warnln("retryable response status, retrying")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

type transportError struct {
	err error
}

func (err *transportError) Error() string {
	return "cloudflare request failed: " + err.err.Error()
}

func (err *transportError) Unwrap() error {
	return err.err
}

// roundTrip performs one HTTP exchange. A nil envelope with a nil error means
// the response body was empty.
func (c *Client) roundTrip(ctx context.Context, logger logrus.FieldLogger, method, u string, payload []byte) (*apiResponse, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	withUserAgent(request, c.userAgent)
	c.authorize(request)
	request.Header.Set("Accept", "application/json")
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, 0, &transportError{err: err}
	}
	defer response.Body.Close()

	logger.WithField("status", response.StatusCode).Debugln("cloudflare request")

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, response.StatusCode, &transportError{err: fmt.Errorf("failed to read response: %w", err)}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, response.StatusCode, nil
	}

	envelope := &apiResponse{}
	if decodeErr := json.Unmarshal(data, envelope); decodeErr != nil {
		if response.StatusCode >= http.StatusBadRequest {
			// Proxies in front of the API answer with HTML on errors.
			return &apiResponse{}, response.StatusCode, nil
		}
		return nil, response.StatusCode, fmt.Errorf("%w: failed to parse response: %w", ErrInvalidResponse, decodeErr)
	}

	return envelope, response.StatusCode, nil
}

func (c *Client) decode(method, path string, statusCode int, envelope *apiResponse, result interface{}) (*ResultInfo, error) {
	if statusCode >= http.StatusBadRequest || (envelope != nil && !envelope.Success) {
		apiErr := &APIError{
			StatusCode: statusCode,
			Method:     method,
			Path:       path,
		}
		if envelope != nil {
			apiErr.Errors = envelope.Errors
		}
		return nil, apiErr
	}

	if envelope == nil {
		return nil, nil
	}

	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return nil, fmt.Errorf("%w: failed to parse result of %s %s: %w", ErrInvalidResponse, method, path, err)
		}
	}

	return envelope.ResultInfo, nil
}

// list fetches every page of a paginated collection. The page callback
// receives the raw result of each page.
func (c *Client) list(ctx context.Context, path string, page func(raw json.RawMessage) error) error {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(defaultPerPage))

	for current := 1; ; current++ {
		query.Set("page", strconv.Itoa(current))

		var raw json.RawMessage
		info, err := c.do(ctx, http.MethodGet, path, query, nil, &raw)
		if err != nil {
			return err
		}
		if err = page(raw); err != nil {
			return err
		}

		if info == nil || info.TotalPages <= current || info.Count == 0 {
			return nil
		}
	}
}

func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// requireIdentifiers rejects empty path identifiers and identifiers which
// would be read as dot segments.
func requireIdentifiers(identifiers ...string) error {
	for _, identifier := range identifiers {
		switch strings.TrimSpace(identifier) {
		case "":
			return ErrEmptyIdentifier
		case ".", "..":
			return fmt.Errorf("%w: %q", ErrInvalidIdentifier, identifier)
		}
	}
	return nil
}
