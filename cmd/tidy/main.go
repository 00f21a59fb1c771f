package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tidy/internal/checks"
	"tidy/internal/fix"
	"tidy/internal/version"
)

const (
	exitFatal     = 1
	exitConflicts = 2
)

// newRegistry builds the registry of every check the binary ships with.
func newRegistry() (*checks.Registry, error) {
	reg := checks.NewRegistry()
	if err := reg.AddModules(checks.Builtin()...); err != nil {
		return nil, err
	}
	return reg, nil
}

func newRootCmd(reg *checks.Registry) *cobra.Command {
	root := &cobra.Command{
		Use:           "tidy",
		Short:         "Text-level linter with safe fix application",
		Long:          `tidy runs checks over source files, filters and deduplicates their findings, and applies the suggested fixes that do not conflict`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	root.AddCommand(newCheckCmd(reg))
	root.AddCommand(newApplyCmd())
	root.AddCommand(newListChecksCmd(reg))
	root.AddCommand(newDumpConfigCmd())
	root.AddCommand(newVersionCmd())

	// Глобальные флаги
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	root.PersistentFlags().Bool("timings", false, "show timing information")
	root.PersistentFlags().Int("jobs", 0, "max parallel workers (0=auto)")
	addTraceFlags(root)
	addProfileFlags(root)

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if _, err := useColor(cmd); err != nil {
			return err
		}
		stopProfiling, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		cleanup, err := setupTracing(cmd)
		if err != nil {
			stopProfiling()
			return err
		}
		traceCleanup = func() {
			cleanup()
			stopProfiling()
		}
		return nil
	}
	return root
}

var traceCleanup = func() {}

// main builds the command tree and maps the command error to the exit
// status: 1 for fatal errors, 2 when fixes conflicted.
func main() {
	reg, err := newRegistry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tidy: %v\n", err)
		os.Exit(exitFatal)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	root := newRootCmd(reg)
	err = root.ExecuteContext(ctx)
	stop()
	code := exitCode(err)
	if code == exitFatal {
		dumpTraceRing(root, err)
	}
	traceCleanup()
	if err != nil && !errors.Is(err, fix.ErrConflictDetected) {
		fmt.Fprintf(os.Stderr, "tidy: %v\n", err)
	}
	os.Exit(code)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, fix.ErrConflictDetected):
		return exitConflicts
	default:
		return exitFatal
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func useColor(cmd *cobra.Command) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		return isTerminal(os.Stdout), nil
	}
	return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
}
