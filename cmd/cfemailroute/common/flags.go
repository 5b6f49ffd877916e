/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package common

import (
	"os"

	"github.com/spf13/pflag"

	"stash.kopano.io/kgol/cfemailrouting/cloudflare"
)

// Default param values shared by the commands.
var (
	DefaultLogTimestamp = false
	DefaultLogLevel     = "warn"
	DefaultOutput       = OutputPretty

	DefaultAPIToken   = getenv("CLOUDFLARE_API_TOKEN", "CF_API_TOKEN")
	DefaultAPIEmail   = getenv("CLOUDFLARE_API_EMAIL", "CF_API_EMAIL")
	DefaultAPIKey     = getenv("CLOUDFLARE_API_KEY", "CF_API_KEY")
	DefaultAPIURL     = cloudflare.DefaultBaseURL
	DefaultMaxRetries = cloudflare.DefaultMaxRetries

	DefaultAccountID = getenv("CLOUDFLARE_ACCOUNT_ID", "CF_ACCOUNT_ID")
	DefaultZoneID    = getenv("CLOUDFLARE_ZONE_ID", "CF_ZONE_ID")
)

func init() {
	if envDefaultAPIURL := os.Getenv("CFEMAILROUTE_DEFAULT_API_URL"); envDefaultAPIURL != "" {
		DefaultAPIURL = envDefaultAPIURL
	}
}

// getenv returns the value of the first of the named environment variables
// which is set.
func getenv(names ...string) string {
	for _, name := range names {
		if value := os.Getenv(name); value != "" {
			return value
		}
	}
	return ""
}

// AddConnectionFlags registers the flags needed to talk to the API.
func AddConnectionFlags(flags *pflag.FlagSet) {
	flags.BoolVar(&DefaultLogTimestamp, "log-timestamp", DefaultLogTimestamp, "Prefix each log line with timestamp")
	flags.StringVar(&DefaultLogLevel, "log-level", DefaultLogLevel, "Log level (one of panic, fatal, error, warn, info or debug)")
	flags.StringVarP(&DefaultOutput, "output", "o", DefaultOutput, "Output format (one of pretty, json or yaml)")

	flags.StringVar(&DefaultAPIToken, "api-token", DefaultAPIToken, "Cloudflare API token")
	flags.StringVar(&DefaultAPIEmail, "api-email", DefaultAPIEmail, "Cloudflare account email for legacy API key authentication")
	flags.StringVar(&DefaultAPIKey, "api-key", DefaultAPIKey, "Cloudflare legacy global API key")
	flags.StringVar(&DefaultAPIURL, "api-url", DefaultAPIURL, "Base URL of the Cloudflare API")
	flags.IntVar(&DefaultMaxRetries, "max-retries", DefaultMaxRetries, "Retries for rate limited or failed API requests, negative to disable")
}

// AddAccountFlag registers the account id flag.
func AddAccountFlag(flags *pflag.FlagSet) {
	flags.StringVar(&DefaultAccountID, "account-id", DefaultAccountID, "Cloudflare account id")
}

// AddZoneFlag registers the zone id flag.
func AddZoneFlag(flags *pflag.FlagSet) {
	flags.StringVar(&DefaultZoneID, "zone-id", DefaultZoneID, "Cloudflare zone id")
}
