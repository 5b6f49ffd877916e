/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package dns

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"stash.kopano.io/kgol/cfemailrouting/cmd/cfemailroute/common"
	"stash.kopano.io/kgol/cfemailrouting/emailrouting"
)

func CommandDNS() *cobra.Command {
	dnsCmd := &cobra.Command{
		Use:   "dns [...args]",
		Short: "Manage email routing DNS of a zone",
	}

	common.AddConnectionFlags(dnsCmd.PersistentFlags())
	common.AddZoneFlag(dnsCmd.PersistentFlags())

	dnsCmd.AddCommand(&cobra.Command{
		Use:   "enable",
		Short: "Enable email routing and let the provider add its DNS records",
		Args:  cobra.NoArgs,
		Run: common.Run(func(cmd *cobra.Command, args []string) error {
			return run(cmd, "Enabling email routing", func(ctx context.Context, r emailrouting.Manager, zoneID string) *emailrouting.DNSResult {
				return r.SetupEmailRoutingDNS(ctx, zoneID)
			})
		}),
	})
	dnsCmd.AddCommand(&cobra.Command{
		Use:   "disable",
		Short: "Disable email routing and remove its DNS records",
		Args:  cobra.NoArgs,
		Run: common.Run(func(cmd *cobra.Command, args []string) error {
			return run(cmd, "Disabling email routing", func(ctx context.Context, r emailrouting.Manager, zoneID string) *emailrouting.DNSResult {
				return r.DisableEmailRouting(ctx, zoneID)
			})
		}),
	})
	dnsCmd.AddCommand(&cobra.Command{
		Use:   "provision",
		Short: "Create the required email routing DNS records as zone records",
		Args:  cobra.NoArgs,
		Run: common.Run(func(cmd *cobra.Command, args []string) error {
			return run(cmd, "Provisioning email routing DNS records", func(ctx context.Context, r emailrouting.Manager, zoneID string) *emailrouting.DNSResult {
				return r.ProvisionEmailRoutingDNSRecords(ctx, zoneID)
			})
		}),
	})
	dnsCmd.AddCommand(&cobra.Command{
		Use:   "records",
		Short: "Show the DNS records email routing requires",
		Args:  cobra.NoArgs,
		Run:   common.Run(records),
	})

	return dnsCmd
}

func run(cmd *cobra.Command, title string, op func(ctx context.Context, r emailrouting.Manager, zoneID string) *emailrouting.DNSResult) error {
	bs, err := common.Configure(cmd)
	if err != nil {
		return err
	}
	zoneID, err := common.ZoneID()
	if err != nil {
		return err
	}

	ctx, cancel := common.Context(cmd)
	defer cancel()

	value, err := common.WithProgress(ctx, title, bs.Output, func(ctx context.Context) (interface{}, error) {
		return op(ctx, bs.EmailRouting, zoneID), nil
	})
	if err != nil {
		return err
	}
	result := value.(*emailrouting.DNSResult)

	err = common.Write(cmd.OutOrStdout(), bs.Output, result, func(w io.Writer) error {
		return writeResult(w, result)
	})
	if err != nil {
		return err
	}

	if !result.Success {
		return common.UnsuccessfulError(fmt.Errorf("%s failed (%s): %w", title, result.Reason, result.Err))
	}
	return nil
}

func writeResult(w io.Writer, result *emailrouting.DNSResult) error {
	if !result.Success {
		_, err := fmt.Fprintf(w, "%s: %s\n", common.Colored("failed", common.ColorNOK), result.Reason)
		return err
	}

	if _, err := fmt.Fprintln(w, common.Colored("ok", common.ColorOK)); err != nil {
		return err
	}
	if result.Settings != nil {
		if _, err := fmt.Fprintf(w, "  %s: %s\n  %s: %v\n  %s: %s\n",
			common.Bold("zone"), result.Settings.Name,
			common.Bold("enabled"), result.Settings.Enabled,
			common.Bold("status"), result.Settings.Status,
		); err != nil {
			return err
		}
	}
	if result.Created > 0 || result.Skipped > 0 {
		if _, err := fmt.Fprintf(w, "  %s: %d\n  %s: %d\n",
			common.Bold("created"), result.Created,
			common.Bold("skipped"), result.Skipped,
		); err != nil {
			return err
		}
	}
	return nil
}

func records(cmd *cobra.Command, args []string) error {
	bs, err := common.Configure(cmd)
	if err != nil {
		return err
	}
	zoneID, err := common.ZoneID()
	if err != nil {
		return err
	}

	ctx, cancel := common.Context(cmd)
	defer cancel()

	records, err := bs.EmailRouting.GetRoutingDNSRecords(ctx, zoneID)
	if err != nil {
		return err
	}

	return common.Write(cmd.OutOrStdout(), bs.Output, records, func(w io.Writer) error {
		for _, record := range records {
			priority := ""
			if record.Priority != nil {
				priority = fmt.Sprintf(" %d", *record.Priority)
			}
			if _, err := fmt.Fprintf(w, "%s %s%s %s\n", common.Bold(record.Type), record.Name, priority, record.Content); err != nil {
				return err
			}
		}
		return nil
	})
}
