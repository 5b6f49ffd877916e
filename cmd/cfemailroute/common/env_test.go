/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()

	fn := filepath.Join(t.TempDir(), "cfemailroute.env")
	require.NoError(t, os.WriteFile(fn, []byte(content), 0600))
	return fn
}

func TestApplyFlagsFromEnvFile(t *testing.T) {
	defer func(envConfigFile, apiToken, logLevel, zoneID string, maxRetries int) {
		DefaultEnvConfigFile = envConfigFile
		DefaultAPIToken = apiToken
		DefaultLogLevel = logLevel
		DefaultZoneID = zoneID
		DefaultMaxRetries = maxRetries
	}(DefaultEnvConfigFile, DefaultAPIToken, DefaultLogLevel, DefaultZoneID, DefaultMaxRetries)

	cmd := &cobra.Command{Use: "test"}
	AddConnectionFlags(cmd.Flags())
	AddZoneFlag(cmd.Flags())
	cmd.Flags().String("config", "", "")
	require.NoError(t, cmd.ParseFlags([]string{"--log-level", "info"}))

	DefaultEnvConfigFile = writeEnvFile(t, "api_token=from-file\nlog_level=debug\nmax_retries=7\nconfig=ignored\n") +
		":" + writeEnvFile(t, "zone_id=zone-from-file\n")

	require.NoError(t, ApplyFlagsFromEnvFile(cmd, nil))
	assert.Equal(t, "from-file", DefaultAPIToken)
	assert.Equal(t, "info", DefaultLogLevel)
	assert.Equal(t, 7, DefaultMaxRetries)
	assert.Equal(t, "zone-from-file", DefaultZoneID)
	config, _ := cmd.Flags().GetString("config")
	assert.Empty(t, config)
}

func TestApplyFlagsFromEnvFileMapping(t *testing.T) {
	defer func(envConfigFile, zoneID string) {
		DefaultEnvConfigFile = envConfigFile
		DefaultZoneID = zoneID
	}(DefaultEnvConfigFile, DefaultZoneID)

	cmd := &cobra.Command{Use: "test"}
	AddZoneFlag(cmd.Flags())
	require.NoError(t, cmd.ParseFlags(nil))

	DefaultEnvConfigFile = writeEnvFile(t, "CLOUDFLARE_ZONE_ID=mapped\n")

	require.NoError(t, ApplyFlagsFromEnvFile(cmd, map[string]string{"zone-id": "CLOUDFLARE_ZONE_ID"}))
	assert.Equal(t, "mapped", DefaultZoneID)

	assert.Error(t, ApplyFlagsFromEnvFile(cmd, map[string]string{"unknown": ""}))
}

func TestApplyFlagsFromEnvFileMissingFile(t *testing.T) {
	defer func(envConfigFile string) {
		DefaultEnvConfigFile = envConfigFile
	}(DefaultEnvConfigFile)

	cmd := &cobra.Command{Use: "test"}
	DefaultEnvConfigFile = filepath.Join(t.TempDir(), "missing.env")

	assert.Error(t, ApplyFlagsFromEnvFile(cmd, nil))
}
