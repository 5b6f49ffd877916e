/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package cloudflare

import (
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is the Cloudflare v4 API root.
const DefaultBaseURL = "https://api.cloudflare.com/client/v4/"

// DefaultMaxRetries is used when Config.MaxRetries is zero.
const DefaultMaxRetries = 3

// Config bundles client configuration settings.
type Config struct {
	Logger logrus.FieldLogger

	BaseURL *url.URL

	// APIToken is preferred. APIEmail and APIKey select the legacy global
	// key authentication and are only used when APIToken is empty.
	APIToken string
	APIEmail string
	APIKey   string

	HTTPClient *http.Client

	// MaxRetries is the number of retries after the first attempt. Negative
	// values disable retries.
	MaxRetries int

	UserAgent string
}

func (config *Config) hasCredentials() bool {
	return config.APIToken != "" || (config.APIEmail != "" && config.APIKey != "")
}
