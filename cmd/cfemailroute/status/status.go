/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package status

import (
	"github.com/spf13/cobra"

	"stash.kopano.io/kgol/cfemailrouting/cmd/cfemailroute/common"
)

func CommandStatus() *cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status [...args]",
		Short: "Show email routing status of a zone",
		Args:  cobra.NoArgs,
		Run:   common.Run(status),
	}

	common.AddConnectionFlags(statusCmd.Flags())
	common.AddZoneFlag(statusCmd.Flags())
	statusCmd.Flags().Bool("with-records", false, "Include the DNS records email routing requires")

	return statusCmd
}

func status(cmd *cobra.Command, args []string) error {
	bs, err := common.Configure(cmd)
	if err != nil {
		return err
	}
	zoneID, err := common.ZoneID()
	if err != nil {
		return err
	}
	withRecords, _ := cmd.Flags().GetBool("with-records")

	return Run(cmd, bs, zoneID, withRecords)
}
