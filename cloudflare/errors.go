/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package cloudflare

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrMissingCredentials = errors.New("cloudflare: api token or api email and key required")
	ErrEmptyIdentifier    = errors.New("cloudflare: identifier must not be empty")
	ErrInvalidIdentifier  = errors.New("cloudflare: invalid identifier")
	ErrInvalidResponse    = errors.New("cloudflare: invalid response")
)

// ResponseInfo is a code/message pair from the errors or messages list of a
// Cloudflare response envelope.
type ResponseInfo struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// APIError is returned when the API answers with an error status or with
// success set to false.
type APIError struct {
	StatusCode int
	Method     string
	Path       string

	Errors []ResponseInfo
}

func (err *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cloudflare: %s %s: %d %s", err.Method, err.Path, err.StatusCode, http.StatusText(err.StatusCode))
	for idx, info := range err.Errors {
		if idx == 0 {
			b.WriteString(":")
		} else {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, " %s (%d)", info.Message, info.Code)
	}
	return b.String()
}

// HasCode reports whether any of the provider error codes is present.
func (err *APIError) HasCode(codes ...int) bool {
	for _, info := range err.Errors {
		for _, code := range codes {
			if info.Code == code {
				return true
			}
		}
	}
	return false
}

// HasMessage reports whether any provider error message contains s, ignoring
// case.
func (err *APIError) HasMessage(s string) bool {
	s = strings.ToLower(s)
	for _, info := range err.Errors {
		if strings.Contains(strings.ToLower(info.Message), s) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsTransportError reports whether err stems from a failed HTTP exchange
// rather than from an API answer.
func IsTransportError(err error) bool {
	var transportErr *transportError
	return errors.As(err, &transportErr)
}
