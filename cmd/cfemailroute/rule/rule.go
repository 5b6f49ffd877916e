/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package rule

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"stash.kopano.io/kgol/cfemailrouting/cloudflare"
	"stash.kopano.io/kgol/cfemailrouting/cmd/cfemailroute/common"
	"stash.kopano.io/kgol/cfemailrouting/emailrouting"
	"stash.kopano.io/kgol/cfemailrouting/utils"
)

func CommandRule() *cobra.Command {
	ruleCmd := &cobra.Command{
		Use:   "rule [...args]",
		Short: "Manage routing rules of a zone",
	}

	common.AddConnectionFlags(ruleCmd.PersistentFlags())
	common.AddZoneFlag(ruleCmd.PersistentFlags())

	ruleCmd.AddCommand(&cobra.Command{
		Use:   "create <custom-email> <destination-email>",
		Short: "Create a rule forwarding a custom address to a destination address",
		Args:  cobra.ExactArgs(2),
		Run:   common.Run(create),
	})

	createWithEmailCmd := &cobra.Command{
		Use:   "create-with-email <custom-email> <destination-email>",
		Short: "Add the destination address if missing, then create the forwarding rule",
		Args:  cobra.ExactArgs(2),
		Run:   common.Run(createWithEmail),
	}
	common.AddAccountFlag(createWithEmailCmd.Flags())
	ruleCmd.AddCommand(createWithEmailCmd)

	ruleCmd.AddCommand(&cobra.Command{
		Use:   "remove <rule-id>",
		Short: "Remove a routing rule",
		Args:  cobra.ExactArgs(1),
		Run:   common.Run(remove),
	})
	ruleCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List routing rules",
		Args:  cobra.NoArgs,
		Run:   common.Run(list),
	})

	return ruleCmd
}

func configure(cmd *cobra.Command) (*common.Bootstrap, string, error) {
	bs, err := common.Configure(cmd)
	if err != nil {
		return nil, "", err
	}
	zoneID, err := common.ZoneID()
	if err != nil {
		return nil, "", err
	}
	return bs, zoneID, nil
}

func validateEmails(emails ...string) error {
	for _, email := range emails {
		if _, err := utils.GetDomainFromEmail(email); err != nil {
			return fmt.Errorf("invalid email address: %w", err)
		}
	}
	return nil
}

func create(cmd *cobra.Command, args []string) error {
	if err := validateEmails(args...); err != nil {
		return err
	}
	bs, zoneID, err := configure(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := common.Context(cmd)
	defer cancel()

	rule, err := bs.EmailRouting.CreateCustomAddress(ctx, zoneID, args[0], args[1])
	if err != nil {
		return err
	}

	return outputRule(cmd, bs, rule)
}

func createWithEmail(cmd *cobra.Command, args []string) error {
	if err := validateEmails(args...); err != nil {
		return err
	}
	bs, zoneID, err := configure(cmd)
	if err != nil {
		return err
	}
	accountID, err := common.AccountID()
	if err != nil {
		return err
	}

	ctx, cancel := common.Context(cmd)
	defer cancel()

	rule, err := bs.EmailRouting.CreateCustomAddressWithEmail(ctx, accountID, zoneID, args[0], args[1])
	if err != nil {
		return err
	}

	return outputRule(cmd, bs, rule)
}

func outputRule(cmd *cobra.Command, bs *common.Bootstrap, rule *emailrouting.Rule) error {
	if rule == nil {
		return fmt.Errorf("provider returned no routing rule")
	}
	return common.Write(cmd.OutOrStdout(), bs.Output, rule, func(w io.Writer) error {
		return writeRules(w, []emailrouting.Rule{*rule})
	})
}

func remove(cmd *cobra.Command, args []string) error {
	bs, zoneID, err := configure(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := common.Context(cmd)
	defer cancel()

	rule, err := bs.EmailRouting.RemoveCustomAddress(ctx, zoneID, args[0])
	if err != nil {
		return err
	}

	return common.Write(cmd.OutOrStdout(), bs.Output, rule, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s %s\n", common.Bold("removed"), args[0])
		return err
	})
}

func list(cmd *cobra.Command, args []string) error {
	bs, zoneID, err := configure(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := common.Context(cmd)
	defer cancel()

	rules, err := bs.EmailRouting.ListRoutingRules(ctx, zoneID)
	if err != nil {
		return err
	}

	return common.Write(cmd.OutOrStdout(), bs.Output, rules, func(w io.Writer) error {
		return writeRules(w, rules)
	})
}

func describeMatcher(m emailrouting.Matcher) string {
	if m.Type == cloudflare.MatcherTypeAll {
		return cloudflare.MatcherTypeAll
	}
	return fmt.Sprintf("%s=%s", m.Field, m.Value)
}

func describeAction(a emailrouting.Action) string {
	if len(a.Value) == 0 {
		return a.Type
	}
	return fmt.Sprintf("%s %s", a.Type, strings.Join(a.Value, ","))
}

func writeRules(w io.Writer, rules []emailrouting.Rule) error {
	if len(rules) == 0 {
		_, err := fmt.Fprintln(w, "no routing rules")
		return err
	}
	for _, rule := range rules {
		state := common.Colored("enabled", common.ColorOK)
		if !rule.Enabled {
			state = common.Colored("disabled", common.ColorNOK)
		}

		matchers := make([]string, 0, len(rule.Matchers))
		for _, m := range rule.Matchers {
			matchers = append(matchers, describeMatcher(m))
		}
		actions := make([]string, 0, len(rule.Actions))
		for _, a := range rule.Actions {
			actions = append(actions, describeAction(a))
		}

		if _, err := fmt.Fprintf(w, "%s %s (%s)\n  %s: %s\n  %s: %s\n",
			common.Bold(rule.ID), rule.Name, state,
			common.Bold("match"), strings.Join(matchers, " "),
			common.Bold("action"), strings.Join(actions, "; "),
		); err != nil {
			return err
		}
	}
	return nil
}
