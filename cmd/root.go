/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"stash.kopano.io/kgol/cfemailrouting/version"
)

// RootCmd is the root command all binaries attach their commands to.
var RootCmd = &cobra.Command{
	Use:     "cfemailroute",
	Short:   "Manage Cloudflare Email Routing",
	Version: fmt.Sprintf("%s (built %s)", version.Version, version.BuildDate),

	SilenceUsage: true,
}
