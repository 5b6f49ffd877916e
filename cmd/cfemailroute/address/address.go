/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package address

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"stash.kopano.io/kgol/cfemailrouting/cmd/cfemailroute/common"
	"stash.kopano.io/kgol/cfemailrouting/emailrouting"
)

func CommandAddress() *cobra.Command {
	addressCmd := &cobra.Command{
		Use:   "address [...args]",
		Short: "Manage destination addresses of an account",
	}

	common.AddConnectionFlags(addressCmd.PersistentFlags())
	common.AddAccountFlag(addressCmd.PersistentFlags())

	addressCmd.AddCommand(&cobra.Command{
		Use:   "add <email>",
		Short: "Add a destination address, the provider sends a verification mail",
		Args:  cobra.ExactArgs(1),
		Run:   common.Run(add),
	})
	addressCmd.AddCommand(&cobra.Command{
		Use:   "remove <address-id>",
		Short: "Remove a destination address",
		Args:  cobra.ExactArgs(1),
		Run:   common.Run(remove),
	})
	addressCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List destination addresses",
		Args:  cobra.NoArgs,
		Run:   common.Run(list),
	})
	addressCmd.AddCommand(&cobra.Command{
		Use:   "lookup <email>",
		Short: "Look up the id of a destination address by email, ignoring case",
		Args:  cobra.ExactArgs(1),
		Run:   common.Run(lookup),
	})

	return addressCmd
}

func configure(cmd *cobra.Command) (*common.Bootstrap, string, error) {
	bs, err := common.Configure(cmd)
	if err != nil {
		return nil, "", err
	}
	accountID, err := common.AccountID()
	if err != nil {
		return nil, "", err
	}
	return bs, accountID, nil
}

func add(cmd *cobra.Command, args []string) error {
	bs, accountID, err := configure(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := common.Context(cmd)
	defer cancel()

	address, err := bs.EmailRouting.AddDestinationAddress(ctx, accountID, args[0])
	if err != nil {
		return err
	}
	if address == nil {
		return fmt.Errorf("provider returned no destination address for %v", args[0])
	}

	return common.Write(cmd.OutOrStdout(), bs.Output, address, func(w io.Writer) error {
		return writeAddresses(w, []emailrouting.DestinationAddress{*address})
	})
}

func remove(cmd *cobra.Command, args []string) error {
	bs, accountID, err := configure(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := common.Context(cmd)
	defer cancel()

	address, err := bs.EmailRouting.RemoveDestinationAddress(ctx, accountID, args[0])
	if err != nil {
		return err
	}

	return common.Write(cmd.OutOrStdout(), bs.Output, address, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s %s\n", common.Bold("removed"), args[0])
		return err
	})
}

func list(cmd *cobra.Command, args []string) error {
	bs, accountID, err := configure(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := common.Context(cmd)
	defer cancel()

	addresses, err := bs.EmailRouting.ListDestinationAddresses(ctx, accountID)
	if err != nil {
		return err
	}

	return common.Write(cmd.OutOrStdout(), bs.Output, addresses, func(w io.Writer) error {
		return writeAddresses(w, addresses)
	})
}

type lookupResult struct {
	Email string `json:"email"`
	ID    string `json:"id,omitempty" yaml:"id,omitempty"`
	Found bool   `json:"found"`
}

func lookup(cmd *cobra.Command, args []string) error {
	bs, accountID, err := configure(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := common.Context(cmd)
	defer cancel()

	id, found, err := bs.EmailRouting.GetDestinationAddressIDByEmail(ctx, accountID, args[0])
	if err != nil {
		return err
	}

	result := &lookupResult{
		Email: args[0],
		ID:    id,
		Found: found,
	}
	err = common.Write(cmd.OutOrStdout(), bs.Output, result, func(w io.Writer) error {
		if !found {
			_, err := fmt.Fprintf(w, "%s: %s\n", args[0], common.Colored("not found", common.ColorNOK))
			return err
		}
		_, err := fmt.Fprintf(w, "%s: %s\n", args[0], id)
		return err
	})
	if err == nil && !found {
		return common.UnsuccessfulError(fmt.Errorf("destination address %v not found", args[0]))
	}
	return err
}

func writeAddresses(w io.Writer, addresses []emailrouting.DestinationAddress) error {
	if len(addresses) == 0 {
		_, err := fmt.Fprintln(w, "no destination addresses")
		return err
	}
	for _, address := range addresses {
		state := common.Colored("pending verification", common.ColorPending)
		if address.Verified != nil {
			state = common.Colored("verified", common.ColorOK)
		}
		if _, err := fmt.Fprintf(w, "%s %s (%s)\n", common.Bold(address.ID), address.Email, state); err != nil {
			return err
		}
	}
	return nil
}
