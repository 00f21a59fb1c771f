package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tidy/internal/aggregate"
	"tidy/internal/checks"
	"tidy/internal/config"
	"tidy/internal/diagfmt"
	"tidy/internal/driver"
	"tidy/internal/fix"
	"tidy/internal/observ"
	"tidy/internal/trace"
)

func newCheckCmd(reg *checks.Registry) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] [paths...]",
		Short: "Run checks over files and directories",
		Long: `Run the enabled checks over every file named on the command line or found
under the named directories, and print the diagnostics that survive
suppression comments, check filters, the header filter and the line filter.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, reg)
		},
	}
	cmd.Flags().String("checks", "", "comma-separated check globs appended to the configured list")
	cmd.Flags().String("header-filter", "", "regular expression selecting non-main files whose diagnostics are shown")
	cmd.Flags().String("line-filter", "", `JSON list of {"name":file,"lines":[[first,last],...]} restricting reported lines`)
	cmd.Flags().String("config", "", "inline TOML configuration applied over .tidy.toml files")
	cmd.Flags().Bool("fix", false, "apply suggested fixes")
	cmd.Flags().String("export-fixes", "", "write suggested fixes to a YAML change description")
	cmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	cmd.Flags().Bool("list-checks", false, "list enabled checks and exit")
	cmd.Flags().Bool("stats", false, "print suppression statistics even with --quiet")
	cmd.Flags().Bool("notes", true, "include notes")
	cmd.Flags().Bool("context", true, "show the source line under each message (pretty format)")
	cmd.Flags().Bool("fullpath", false, "print absolute paths")
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	cmd.Flags().Bool("disk-cache", false, "reuse check results of unchanged files")
	cmd.Flags().Bool("clear-cache", false, "drop cached check results before the run (implies --disk-cache)")
	return cmd
}

// checkFlags are the parsed flags of "tidy check".
type checkFlags struct {
	format      string
	fix         bool
	exportFixes string
	listChecks  bool
	stats       bool
	notes       bool
	context     bool
	fullPath    bool
	ui          uiMode
	diskCache   bool
	clearCache  bool
	lineFilter  aggregate.LineFilter
	overrides   config.Options

	color   bool
	quiet   bool
	timings bool
	jobs    int
}

func readCheckFlags(cmd *cobra.Command) (*checkFlags, error) {
	f := &checkFlags{}
	var err error
	flags := cmd.Flags()
	if f.format, err = flags.GetString("format"); err != nil {
		return nil, err
	}
	switch f.format {
	case "pretty", "json", "short":
	default:
		return nil, fmt.Errorf("unsupported format %q (must be pretty, json or short)", f.format)
	}
	if f.fix, err = flags.GetBool("fix"); err != nil {
		return nil, err
	}
	if f.exportFixes, err = flags.GetString("export-fixes"); err != nil {
		return nil, err
	}
	if f.listChecks, err = flags.GetBool("list-checks"); err != nil {
		return nil, err
	}
	if f.stats, err = flags.GetBool("stats"); err != nil {
		return nil, err
	}
	if f.notes, err = flags.GetBool("notes"); err != nil {
		return nil, err
	}
	if f.context, err = flags.GetBool("context"); err != nil {
		return nil, err
	}
	if f.fullPath, err = flags.GetBool("fullpath"); err != nil {
		return nil, err
	}
	if f.diskCache, err = flags.GetBool("disk-cache"); err != nil {
		return nil, err
	}
	if f.clearCache, err = flags.GetBool("clear-cache"); err != nil {
		return nil, err
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return nil, err
	}
	if f.ui, err = readUIMode(uiValue); err != nil {
		return nil, err
	}

	lineFilter, err := flags.GetString("line-filter")
	if err != nil {
		return nil, err
	}
	if f.lineFilter, err = aggregate.ParseLineFilter(lineFilter); err != nil {
		return nil, err
	}

	if f.overrides, err = readOverrides(cmd); err != nil {
		return nil, err
	}

	root := cmd.Root().PersistentFlags()
	if f.quiet, err = root.GetBool("quiet"); err != nil {
		return nil, err
	}
	if f.timings, err = root.GetBool("timings"); err != nil {
		return nil, err
	}
	if f.jobs, err = root.GetInt("jobs"); err != nil {
		return nil, err
	}
	if f.color, err = useColor(cmd); err != nil {
		return nil, err
	}
	return f, nil
}

// readOverrides builds the command-line configuration layer: --config
// first, then the dedicated flags.
func readOverrides(cmd *cobra.Command) (config.Options, error) {
	var opts config.Options
	inline, err := cmd.Flags().GetString("config")
	if err != nil {
		return opts, err
	}
	if strings.TrimSpace(inline) != "" {
		if opts, err = config.Parse("--config", inline); err != nil {
			return opts, err
		}
	}
	var flagLayer config.Options
	if cmd.Flags().Changed("checks") {
		v, _ := cmd.Flags().GetString("checks")
		flagLayer.Checks = config.String(v)
	}
	if cmd.Flags().Changed("header-filter") {
		v, _ := cmd.Flags().GetString("header-filter")
		flagLayer.HeaderFilter = config.String(v)
	}
	return opts.MergeWith(flagLayer), nil
}

func runCheck(cmd *cobra.Command, args []string, reg *checks.Registry) error {
	if len(args) == 0 {
		args = []string{"."}
	}
	flags, err := readCheckFlags(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	provider := config.NewProvider(config.Defaults(), flags.overrides)

	if flags.listChecks {
		return printEnabledChecks(cmd.OutOrStdout(), reg, provider, args[0])
	}

	var timer *observ.Timer
	if flags.timings {
		timer = observ.NewTimer()
	}
	var cache *driver.DiskCache
	if flags.diskCache || flags.clearCache {
		if cache, err = driver.OpenDiskCache("tidy"); err != nil {
			return fmt.Errorf("failed to open disk cache: %w", err)
		}
		if flags.clearCache {
			if err := cache.DropAll(); err != nil {
				return fmt.Errorf("failed to clear disk cache: %w", err)
			}
		}
		trace.Point(trace.FromContext(ctx), trace.ScopeDriver, "disk_cache", cache.Dir(), trace.ParentFrom(ctx))
	}
	baseDir, err := os.Getwd()
	if err != nil {
		return err
	}

	opts := driver.Options{
		Paths:      args,
		BaseDir:    baseDir,
		Registry:   reg,
		Config:     provider,
		LineFilter: flags.lineFilter,
		Jobs:       flags.jobs,
		Cache:      cache,
		Timer:      timer,
	}

	var res *driver.Result
	if flags.format == "pretty" && !flags.quiet && shouldUseTUI(flags.ui) {
		files, expandErr := driver.ExpandPaths(args)
		if expandErr != nil {
			return expandErr
		}
		res, err = runCheckWithUI(ctx, "tidy check", files, opts)
	} else {
		res, err = driver.Check(ctx, opts)
	}
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	for _, le := range res.LoadErrors {
		fmt.Fprintf(stderr, "error: %v\n", &le)
	}

	var plan *fix.Result
	var changes []fix.FileChange
	if flags.fix {
		plan, changes, err = applyFixes(ctx, res, diagfmt.NewReporter(stderr, flags.color), timer, baseDir)
		if err != nil {
			return err
		}
	}
	if flags.exportFixes != "" {
		if err := driver.ExportFixes(flags.exportFixes, res); err != nil {
			return err
		}
	}

	if err := printDiagnostics(cmd.OutOrStdout(), res, plan, flags); err != nil {
		return err
	}

	if !flags.quiet || flags.stats {
		if err := diagfmt.WriteStats(stderr, res.Stats); err != nil {
			return err
		}
	}
	if plan != nil && !flags.quiet {
		printFixSummary(stderr, plan, changes)
	}
	if timer != nil {
		fmt.Fprint(stderr, timer.Summary())
	}

	if len(res.LoadErrors) > 0 {
		return fmt.Errorf("failed to load %d file(s)", len(res.LoadErrors))
	}
	if plan != nil {
		return plan.Err()
	}
	return nil
}

// applyFixes plans and writes the fixes of res. A run without suggested
// fixes is not an error.
func applyFixes(ctx context.Context, res *driver.Result, rep fix.Reporter, timer *observ.Timer, baseDir string) (*fix.Result, []fix.FileChange, error) {
	idx := timer.Begin("fix")
	plan, err := driver.Fix(ctx, res, rep, nil)
	timer.End(idx, "")
	if err != nil && !errors.Is(err, fix.ErrNoFixes) {
		return nil, nil, err
	}
	idx = timer.Begin("write")
	changes, err := plan.Write(ctx, baseDir)
	timer.End(idx, fmt.Sprintf("%d files", len(changes)))
	if err != nil {
		return plan, changes, err
	}
	trace.Point(trace.FromContext(ctx), trace.ScopeDriver, "fixes_written", fmt.Sprintf("%d files", len(changes)), trace.ParentFrom(ctx))
	return plan, changes, nil
}

func printDiagnostics(w io.Writer, res *driver.Result, plan *fix.Result, flags *checkFlags) error {
	pathMode := diagfmt.PathModeAuto
	if flags.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	var status diagfmt.FixStatusFunc
	if plan != nil {
		status = plan.DiagnosticStatus
	}
	switch flags.format {
	case "json":
		stats := res.Stats
		return diagfmt.JSON(w, res.Diagnostics, res.FileSet, &stats, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     flags.notes,
			IncludeFixes:     true,
			IncludePreviews:  true,
			FixStatus:        status,
		})
	case "short":
		return diagfmt.Short(w, res.Diagnostics, res.FileSet, flags.notes)
	default:
		return diagfmt.Pretty(w, res.Diagnostics, res.FileSet, diagfmt.PrettyOpts{
			Color:     flags.color,
			PathMode:  pathMode,
			ShowNotes: flags.notes,
			Context:   flags.context,
			FixStatus: status,
		})
	}
}

func printFixSummary(w io.Writer, plan *fix.Result, changes []fix.FileChange) {
	if plan.Suggested == 0 {
		fmt.Fprintln(w, "No fixes to apply.")
		return
	}
	fmt.Fprintf(w, "applied %d of %d suggested fixes\n", plan.Applied, plan.Attempted)
	if len(changes) == 0 {
		return
	}
	fmt.Fprintf(w, "Applied %d fix(es)\n", countEdits(changes))
	fmt.Fprintln(w, "Updated files:")
	for _, c := range changes {
		fmt.Fprintf(w, "  %s (%d)\n", filepath.FromSlash(c.Path), c.EditCount)
	}
}

func countEdits(changes []fix.FileChange) int {
	n := 0
	for _, c := range changes {
		n += c.EditCount
	}
	return n
}

// printEnabledChecks lists the checks enabled for files under target.
func printEnabledChecks(w io.Writer, reg *checks.Registry, provider *config.Provider, target string) error {
	dir := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		dir = filepath.Dir(target)
	}
	eff, err := provider.ForDir(dir)
	if err != nil {
		return err
	}
	compiled, err := eff.Options.Compile(sourceName(eff.Source))
	if err != nil {
		return err
	}
	var b strings.Builder
	b.WriteString("Enabled checks:\n")
	for _, name := range reg.Enabled(compiled.Checks.IsEnabled) {
		b.WriteString("    " + name + "\n")
	}
	b.WriteString("\n")
	_, err = io.WriteString(w, b.String())
	return err
}

func sourceName(path string) string {
	if path == "" {
		return "command line"
	}
	return path
}
