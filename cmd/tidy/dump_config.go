package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tidy/internal/config"
)

func newDumpConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump-config [path]",
		Short: "Print the effective configuration for a path as TOML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) == 1 {
				target = args[0]
			}
			dir := target
			if info, err := os.Stat(target); err == nil && !info.IsDir() {
				dir = filepath.Dir(target)
			}
			eff, err := config.NewProvider(config.Defaults(), config.Options{}).ForDir(dir)
			if err != nil {
				return err
			}
			if _, err := eff.Options.Compile(sourceName(eff.Source)); err != nil {
				return err
			}
			text, err := eff.Options.Text()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if eff.Source != "" {
				fmt.Fprintf(out, "# from %s\n", eff.Source)
			} else {
				fmt.Fprintln(out, "# built-in defaults")
			}
			_, err = fmt.Fprint(out, text)
			return err
		},
	}
}
