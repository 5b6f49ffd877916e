/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package status

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"stash.kopano.io/kgol/cfemailrouting/cmd/cfemailroute/common"
	"stash.kopano.io/kgol/cfemailrouting/emailrouting"
)

// Status is the email routing state of a zone as shown by the status command.
type Status struct {
	ZoneID   string                   `json:"zone_id" yaml:"zone_id"`
	Settings *emailrouting.Settings   `json:"settings"`
	Records  []emailrouting.DNSRecord `json:"records,omitempty" yaml:"records,omitempty"`
}

func fetch(ctx context.Context, r emailrouting.Manager, zoneID string, withRecords bool) (*Status, error) {
	settings, err := r.GetRoutingSettings(ctx, zoneID)
	if err != nil {
		return nil, err
	}

	status := &Status{
		ZoneID:   zoneID,
		Settings: settings,
	}
	if withRecords {
		status.Records, err = r.GetRoutingDNSRecords(ctx, zoneID)
		if err != nil {
			return nil, err
		}
	}

	return status, nil
}

// Run fetches the status while showing progress and writes it.
func Run(cmd *cobra.Command, bs *common.Bootstrap, zoneID string, withRecords bool) error {
	ctx, cancel := common.Context(cmd)
	defer cancel()

	value, err := common.WithProgress(ctx, "Fetching email routing status", bs.Output, func(ctx context.Context) (interface{}, error) {
		return fetch(ctx, bs.EmailRouting, zoneID, withRecords)
	})
	if err != nil {
		return err
	}
	status := value.(*Status)

	return common.Write(cmd.OutOrStdout(), bs.Output, status, func(w io.Writer) error {
		return outputPretty(w, status)
	})
}
