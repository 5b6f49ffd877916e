/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package common

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"stash.kopano.io/kgol/cfemailrouting/cloudflare"
	"stash.kopano.io/kgol/cfemailrouting/emailrouting"
)

// Bootstrap bundles what a command needs to run email routing operations.
type Bootstrap struct {
	Logger       logrus.FieldLogger
	EmailRouting *emailrouting.EmailRouting
	Output       string
}

// Configure applies the env file, validates the connection flags and sets up
// logging and the email routing facade.
func Configure(cmd *cobra.Command) (*Bootstrap, error) {
	if err := ApplyFlagsFromEnvFile(cmd, nil); err != nil {
		return nil, StartupError(err)
	}

	logger, err := NewLogger(!DefaultLogTimestamp, DefaultLogLevel)
	if err != nil {
		return nil, StartupError(fmt.Errorf("failed to create logger: %w", err))
	}

	output := strings.ToLower(DefaultOutput)
	switch output {
	case OutputPretty, OutputJSON, OutputYAML:
	default:
		return nil, StartupError(fmt.Errorf("invalid output format: %v", DefaultOutput))
	}

	apiBaseURL, err := url.Parse(DefaultAPIURL)
	if err != nil {
		return nil, StartupError(fmt.Errorf("invalid api-url: %w", err))
	}
	if apiBaseURL.Host == "" {
		return nil, StartupError(fmt.Errorf("api-url must not be empty"))
	}

	util := cloudflare.NewClientUtil(&cloudflare.Config{
		Logger:     logger,
		BaseURL:    apiBaseURL,
		APIToken:   DefaultAPIToken,
		APIEmail:   DefaultAPIEmail,
		APIKey:     DefaultAPIKey,
		MaxRetries: DefaultMaxRetries,
	})

	registrar := emailrouting.NewRegistrar(&emailrouting.Config{
		Logger:   logger,
		Provider: emailrouting.FromClientUtil(util),
	})
	r, err := registrar.Singleton()
	if err != nil {
		return nil, StartupError(fmt.Errorf("failed to create email routing: %w", err))
	}

	logger.WithField("api_url", apiBaseURL.String()).Debugln("email routing configured")

	return &Bootstrap{
		Logger:       logger,
		EmailRouting: r,
		Output:       output,
	}, nil
}

// AccountID returns the configured account id.
func AccountID() (string, error) {
	if strings.TrimSpace(DefaultAccountID) == "" {
		return "", ErrMissingAccountID
	}
	return DefaultAccountID, nil
}

// ZoneID returns the configured zone id.
func ZoneID() (string, error) {
	if strings.TrimSpace(DefaultZoneID) == "" {
		return "", ErrMissingZoneID
	}
	return DefaultZoneID, nil
}
