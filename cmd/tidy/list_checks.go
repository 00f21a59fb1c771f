package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tidy/internal/checks"
	"tidy/internal/config"
)

func newListChecksCmd(reg *checks.Registry) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-checks [path]",
		Short: "List the checks enabled for a path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := cmd.Flags().GetBool("all")
			if err != nil {
				return err
			}
			if all {
				var b strings.Builder
				b.WriteString("Registered checks:\n")
				for _, name := range reg.Names() {
					module, _ := reg.Module(name)
					fmt.Fprintf(&b, "    %-32s %s\n", name, module)
				}
				_, err := fmt.Fprint(cmd.OutOrStdout(), b.String())
				return err
			}
			target := "."
			if len(args) == 1 {
				target = args[0]
			}
			checksFlag, err := cmd.Flags().GetString("checks")
			if err != nil {
				return err
			}
			var overrides config.Options
			if cmd.Flags().Changed("checks") {
				overrides.Checks = config.String(checksFlag)
			}
			return printEnabledChecks(cmd.OutOrStdout(), reg, config.NewProvider(config.Defaults(), overrides), target)
		},
	}
	cmd.Flags().Bool("all", false, "list every registered check with its module")
	cmd.Flags().String("checks", "", "comma-separated check globs appended to the configured list")
	return cmd
}
