/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package rule

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stash.kopano.io/kgol/cfemailrouting/cmd/cfemailroute/common"
	"stash.kopano.io/kgol/cfemailrouting/emailrouting"
	"stash.kopano.io/kgol/cfemailrouting/internal/cftest"
)

func setup(t *testing.T) (*cftest.Server, *cobra.Command, *bytes.Buffer) {
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
	common.DefaultAccountID = "acct1"
	common.DefaultZoneID = "zoneA"

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	return server, cmd, &out
}

func subcommand(t *testing.T, name string) *cobra.Command {
	t.Helper()

	cmd, _, err := CommandRule().Find([]string{name})
	require.NoError(t, err)
	require.Equal(t, name, cmd.Name())
	return cmd
}

func TestAccountFlagOnlyOnCreateWithEmail(t *testing.T) {
	assert.NotNil(t, subcommand(t, "create-with-email").Flags().Lookup("account-id"))

	for _, name := range []string{"create", "remove", "list"} {
		cmd := subcommand(t, name)
		assert.Nil(t, cmd.Flags().Lookup("account-id"), name)
		assert.NotNil(t, cmd.InheritedFlags().Lookup("zone-id"), name)
	}
}

func TestValidateEmails(t *testing.T) {
	assert.NoError(t, validateEmails("info@co.com", "owner@personal.com"))

	for _, email := range []string{"", "bad", "@co.com", "info@"} {
		assert.Error(t, validateEmails("info@co.com", email), email)
	}
}

func TestCreateRejectsInvalidEmailWithoutCalls(t *testing.T) {
	server, cmd, _ := setup(t)

	assert.Error(t, create(cmd, []string{"info@co.com", "bad"}))
	assert.Error(t, createWithEmail(cmd, []string{"bad", "owner@personal.com"}))
	assert.Empty(t, server.Log())
}

func TestCreateListRemove(t *testing.T) {
	server, cmd, out := setup(t)

	require.NoError(t, create(cmd, []string{"info@co.com", "owner@personal.com"}))
	var created emailrouting.Rule
	require.NoError(t, json.Unmarshal(out.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Enabled)
	require.Len(t, created.Matchers, 1)
	assert.Equal(t, "info@co.com", created.Matchers[0].Value)
	require.Len(t, created.Actions, 1)
	assert.Equal(t, []string{"owner@personal.com"}, created.Actions[0].Value)
	assert.Zero(t, server.Calls("POST", "/addresses"))

	out.Reset()
	require.NoError(t, list(cmd, nil))
	var rules []emailrouting.Rule
	require.NoError(t, json.Unmarshal(out.Bytes(), &rules))
	require.Len(t, rules, 1)
	assert.Equal(t, created.ID, rules[0].ID)

	out.Reset()
	require.NoError(t, remove(cmd, []string{created.ID}))

	out.Reset()
	require.NoError(t, list(cmd, nil))
	rules = nil
	require.NoError(t, json.Unmarshal(out.Bytes(), &rules))
	assert.Empty(t, rules)
}

func TestCreateOutsideZoneFails(t *testing.T) {
	_, cmd, out := setup(t)

	assert.Error(t, create(cmd, []string{"info@other.com", "owner@personal.com"}))
	assert.Empty(t, out.String())
}

func TestCreateWithEmail(t *testing.T) {
	server, cmd, out := setup(t)

	require.NoError(t, createWithEmail(cmd, []string{"info@co.com", "owner@personal.com"}))
	var created emailrouting.Rule
	require.NoError(t, json.Unmarshal(out.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1, server.Calls("POST", "/addresses"))

	out.Reset()
	require.NoError(t, createWithEmail(cmd, []string{"sales@co.com", "OWNER@personal.com"}))
	assert.Equal(t, 1, server.Calls("POST", "/addresses"))
}

func TestCreateWithEmailRequiresAccount(t *testing.T) {
	server, cmd, _ := setup(t)
	common.DefaultAccountID = ""

	assert.ErrorIs(t, createWithEmail(cmd, []string{"info@co.com", "owner@personal.com"}), common.ErrMissingAccountID)
	assert.Empty(t, server.Log())

	// The plain create does not need an account.
	require.NoError(t, create(cmd, []string{"info@co.com", "owner@personal.com"}))
}

func TestRequiresZone(t *testing.T) {
	_, cmd, _ := setup(t)
	common.DefaultZoneID = ""

	assert.ErrorIs(t, list(cmd, nil), common.ErrMissingZoneID)
	assert.ErrorIs(t, create(cmd, []string{"info@co.com", "owner@personal.com"}), common.ErrMissingZoneID)
}

func TestOutputRuleWithoutRule(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	err := outputRule(cmd, &common.Bootstrap{Output: common.OutputJSON}, nil)
	assert.Error(t, err)
	assert.Empty(t, out.String())
}

func TestWriteRules(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeRules(&out, nil))
	assert.Equal(t, "no routing rules\n", out.String())

	assert.Equal(t, "all", describeMatcher(emailrouting.Matcher{Type: "all"}))
	assert.Equal(t, "to=info@co.com", describeMatcher(emailrouting.Matcher{Type: "literal", Field: "to", Value: "info@co.com"}))
	assert.Equal(t, "drop", describeAction(emailrouting.Action{Type: "drop"}))
	assert.Equal(t, "forward a@b.com,c@d.com", describeAction(emailrouting.Action{Type: "forward", Value: []string{"a@b.com", "c@d.com"}}))
}
