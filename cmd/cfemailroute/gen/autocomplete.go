/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package gen

import (
	"fmt"

	"github.com/spf13/cobra"
)

func CommandAutoComplete() *cobra.Command {
	completionCmd := &cobra.Command{
		Use:   "autocomplete [bash|zsh|fish|powershell]",
		Short: "Generate shell autocompletion script",
		Long: `To load completions:

Bash:

  $ source <(cfemailroute gen autocomplete bash)

Zsh:

  $ cfemailroute gen autocomplete zsh > "${fpath[1]}/_cfemailroute"

fish:

  $ cfemailroute gen autocomplete fish | source
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.ExactValidArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			root.Use = DefaultRootUse
			out := cmd.OutOrStdout()

			switch args[0] {
			case "bash":
				return root.GenBashCompletion(out)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletion(out)
			}
			return fmt.Errorf("unsupported shell: %v", args[0])
		},
	}

	return completionCmd
}
