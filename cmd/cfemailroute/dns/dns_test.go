/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package dns

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stash.kopano.io/kgol/cfemailrouting/cmd/cfemailroute/common"
	"stash.kopano.io/kgol/cfemailrouting/emailrouting"
	"stash.kopano.io/kgol/cfemailrouting/internal/cftest"
)

func setup(t *testing.T) *cftest.Server {
	t.Helper()

	server := cftest.NewServer()
	server.AddZone("zoneA", "co.com")

	defaults := common.SaveDefaults()
	t.Cleanup(func() {
		defaults.Restore()
		server.Close()
	})

	common.DefaultEnvConfigFile = ""
	common.DefaultLogLevel = "panic"
	common.DefaultOutput = common.OutputJSON
	common.DefaultAPIToken = cftest.Token
	common.DefaultAPIURL = server.BaseURL()
	common.DefaultMaxRetries = -1
	common.DefaultZoneID = "zoneA"

	return server
}

func enable(ctx context.Context, r emailrouting.Manager, zoneID string) *emailrouting.DNSResult {
	return r.SetupEmailRoutingDNS(ctx, zoneID)
}

func TestRunEnable(t *testing.T) {
	server := setup(t)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, run(cmd, "Enabling email routing", enable))
	assert.True(t, server.ZoneEnabled("zoneA"))

	var result emailrouting.DNSResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.True(t, result.Success)
	require.NotNil(t, result.Settings)
	assert.Equal(t, "co.com", result.Settings.Name)

	out.Reset()
	err := run(cmd, "Enabling email routing", enable)
	require.Error(t, err)
	assert.Equal(t, common.ExitCodeUnsuccessful, common.ExitCode(err))

	result = emailrouting.DNSResult{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Equal(t, emailrouting.ReasonAlreadyConfigured, result.Reason)
}

func TestRunRequiresZone(t *testing.T) {
	setup(t)
	common.DefaultZoneID = ""

	err := run(&cobra.Command{}, "Enabling email routing", enable)
	assert.ErrorIs(t, err, common.ErrMissingZoneID)
}

func TestRunInvalidOutput(t *testing.T) {
	setup(t)
	common.DefaultOutput = "xml"

	err := run(&cobra.Command{}, "Enabling email routing", enable)
	require.Error(t, err)
	assert.Equal(t, common.ExitCodeStartupFailed, common.ExitCode(err))
}

func TestRecords(t *testing.T) {
	setup(t)
	common.DefaultOutput = common.OutputYAML

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, records(cmd, nil))
	assert.Contains(t, out.String(), "content: route1.mx.cloudflare.net")
	assert.Contains(t, out.String(), "type: TXT")
}
