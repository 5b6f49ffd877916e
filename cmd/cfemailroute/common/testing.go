/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package common

// Defaults holds a snapshot of the package defaults.
type Defaults struct {
	envConfigFile string
	logLevel      string
	output        string
	apiToken      string
	apiEmail      string
	apiKey        string
	apiURL        string
	maxRetries    int
	accountID     string
	zoneID        string
}

// SaveDefaults returns a snapshot of the package defaults, for commands run
// repeatedly in one process such as in tests.
func SaveDefaults() *Defaults {
	return &Defaults{
		envConfigFile: DefaultEnvConfigFile,
		logLevel:      DefaultLogLevel,
		output:        DefaultOutput,
		apiToken:      DefaultAPIToken,
		apiEmail:      DefaultAPIEmail,
		apiKey:        DefaultAPIKey,
		apiURL:        DefaultAPIURL,
		maxRetries:    DefaultMaxRetries,
		accountID:     DefaultAccountID,
		zoneID:        DefaultZoneID,
	}
}

// Restore resets the package defaults to the snapshot.
func (d *Defaults) Restore() {
	DefaultEnvConfigFile = d.envConfigFile
	DefaultLogLevel = d.logLevel
	DefaultOutput = d.output
	DefaultAPIToken = d.apiToken
	DefaultAPIEmail = d.apiEmail
	DefaultAPIKey = d.apiKey
	DefaultAPIURL = d.apiURL
	DefaultMaxRetries = d.maxRetries
	DefaultAccountID = d.accountID
	DefaultZoneID = d.zoneID
}
