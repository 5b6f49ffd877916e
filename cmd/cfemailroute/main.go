/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package main

import (
	"fmt"
	"os"

	"stash.kopano.io/kgol/cfemailrouting/cmd"
	"stash.kopano.io/kgol/cfemailrouting/cmd/cfemailroute/address"
	"stash.kopano.io/kgol/cfemailrouting/cmd/cfemailroute/common"
	"stash.kopano.io/kgol/cfemailrouting/cmd/cfemailroute/dns"
	"stash.kopano.io/kgol/cfemailrouting/cmd/cfemailroute/gen"
	"stash.kopano.io/kgol/cfemailrouting/cmd/cfemailroute/rule"
	"stash.kopano.io/kgol/cfemailrouting/cmd/cfemailroute/status"
)

func main() {
	cmd.RootCmd.Use = "cfemailroute"

	cmd.RootCmd.PersistentFlags().StringVarP(&common.DefaultEnvConfigFile, "config", "c", common.DefaultEnvConfigFile, "Full path to config file, multiple separated by :")

	cmd.RootCmd.AddCommand(address.CommandAddress())
	cmd.RootCmd.AddCommand(rule.CommandRule())
	cmd.RootCmd.AddCommand(dns.CommandDNS())
	cmd.RootCmd.AddCommand(status.CommandStatus())
	cmd.RootCmd.AddCommand(gen.CommandGen())

	if err := cmd.RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
