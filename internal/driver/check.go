package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"tidy/internal/aggregate"
	"tidy/internal/checks"
	"tidy/internal/config"
	"tidy/internal/diag"
	"tidy/internal/observ"
	"tidy/internal/progress"
	"tidy/internal/source"
	"tidy/internal/trace"
)

// Options configure a check run.
type Options struct {
	Paths    []string
	BaseDir  string
	Registry *checks.Registry
	// Config resolves per-file options. Nil uses config.Defaults only.
	Config     *config.Provider
	LineFilter aggregate.LineFilter
	Jobs       int
	Cache      *DiskCache
	Progress   progress.Sink
	Timer      *observ.Timer
}

// LoadError is an input file that could not be read.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string { return fmt.Sprintf("failed to load %s: %v", e.Path, e.Err) }

func (e *LoadError) Unwrap() error { return e.Err }

// UnitResult is the outcome of analyzing one file.
type UnitResult struct {
	Path string
	// ConfigSource is the .tidy.toml used, empty for defaults.
	ConfigSource string
	Checks       []string
	Bag          *diag.Bag
	Cached       bool
	Elapsed      time.Duration
}

// Result is the outcome of a check run.
type Result struct {
	FileSet     *source.FileSet
	Units       []UnitResult
	Diagnostics []diag.Diagnostic
	// Duplicates is the number of diagnostics dropped by the final dedup.
	Duplicates int
	Stats      aggregate.Snapshot
	LoadErrors []LoadError
	// Skipped lists binary files that were not analyzed.
	Skipped []string
}

// Edits returns the edits of every kept diagnostic in report order.
func (r *Result) Edits() []diag.Edit {
	var out []diag.Edit
	for _, d := range r.Diagnostics {
		out = append(out, d.Edits...)
	}
	return out
}

type unit struct {
	path     string
	source   string
	compiled *config.Compiled
	names    []string
	file     *source.File
}

// Check analyzes the files named by opts.Paths. Configuration errors and
// check failures are fatal and returned before any diagnostic is produced;
// unreadable files are reported in Result.LoadErrors.
func Check(ctx context.Context, opts Options) (*Result, error) {
	if opts.Registry == nil {
		return nil, errors.New("driver: no check registry")
	}
	tracer := trace.FromContext(ctx)
	runSpan := trace.Begin(tracer, trace.ScopeDriver, "run", trace.ParentFrom(ctx))
	defer runSpan.End("")
	ctx = trace.WithParent(ctx, runSpan.ID())

	var paths []string
	err := opts.Timer.Measure("expand", func() error {
		var err error
		paths, err = ExpandPaths(opts.Paths)
		return err
	})
	if err != nil {
		return nil, err
	}
	runSpan.WithExtra("files", fmt.Sprint(len(paths)))

	var units []*unit
	err = opts.Timer.Measure("load_config", func() error {
		var err error
		units, err = setupUnits(ctx, opts, paths)
		return err
	})
	if err != nil {
		return nil, err
	}

	baseDir := opts.BaseDir
	if baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			baseDir = wd
		}
	}
	res := &Result{FileSet: source.NewFileSetWithBase(baseDir)}
	loadIdx := opts.Timer.Begin("load")
	units = loadUnits(opts.Progress, res, units)
	opts.Timer.End(loadIdx, fmt.Sprintf("%d files", len(units)))

	checkIdx := opts.Timer.Begin("check")
	stats := &aggregate.Stats{}
	res.Units = make([]UnitResult, len(units))
	err = runUnits(ctx, opts, stats, units, res)
	opts.Timer.End(checkIdx, "")
	if err != nil {
		return nil, err
	}

	mergeIdx := opts.Timer.Begin("merge")
	bags := make([]*diag.Bag, len(res.Units))
	for i := range res.Units {
		bags[i] = res.Units[i].Bag
	}
	res.Diagnostics, res.Duplicates = aggregate.Merge(bags)
	res.Stats = stats.Snapshot()
	opts.Timer.End(mergeIdx, fmt.Sprintf("%d diagnostics", len(res.Diagnostics)))
	return res, nil
}

// setupUnits resolves and compiles the options of every file. Any error
// aborts the run before a unit starts.
func setupUnits(ctx context.Context, opts Options, paths []string) ([]*unit, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "load_config", trace.ParentFrom(ctx))
	defer span.End("")

	provider := opts.Config
	if provider == nil {
		provider = config.NewProvider(config.Defaults(), config.Options{})
	}
	compiled := make(map[string]*config.Compiled)
	units := make([]*unit, 0, len(paths))
	for _, path := range paths {
		eff, err := provider.For(path)
		if err != nil {
			return nil, err
		}
		c, ok := compiled[eff.Source]
		if !ok {
			origin := eff.Source
			if origin == "" {
				origin = "command line"
			}
			c, err = eff.Options.Compile(origin)
			if err != nil {
				return nil, err
			}
			compiled[eff.Source] = c
		}
		units = append(units, &unit{
			path:     path,
			source:   eff.Source,
			compiled: c,
			names:    opts.Registry.Enabled(c.Checks.IsEnabled),
		})
	}
	span.WithExtra("configs", fmt.Sprint(len(compiled)))
	return units, nil
}

func loadUnits(sink progress.Sink, res *Result, units []*unit) []*unit {
	kept := units[:0]
	for _, u := range units {
		id, err := res.FileSet.Load(u.path)
		if err != nil {
			res.LoadErrors = append(res.LoadErrors, LoadError{Path: u.path, Err: err})
			progress.Emit(sink, progress.Event{File: u.path, Stage: progress.StageLoad, Status: progress.StatusError, Err: err})
			continue
		}
		u.file = res.FileSet.Get(id)
		if looksBinary(u.file.Content) {
			res.Skipped = append(res.Skipped, u.path)
			continue
		}
		kept = append(kept, u)
		progress.Emit(sink, progress.Event{File: u.path, Stage: progress.StageCheck, Status: progress.StatusQueued})
	}
	return kept
}

func runUnits(ctx context.Context, opts Options, stats *aggregate.Stats, units []*unit, res *Result) error {
	if len(units) == 0 {
		return nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(units)))
	for i, u := range units {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			out, err := runUnit(gctx, opts, stats, u, res.FileSet)
			if err != nil {
				progress.Emit(opts.Progress, progress.Event{File: u.path, Stage: progress.StageCheck, Status: progress.StatusError, Err: err})
				return err
			}
			res.Units[i] = out
			progress.Emit(opts.Progress, progress.Event{
				File:     u.path,
				Stage:    progress.StageCheck,
				Status:   progress.StatusDone,
				Elapsed:  out.Elapsed,
				Findings: out.Bag.Len(),
				Cached:   out.Cached,
			})
			return nil
		})
	}
	return g.Wait()
}

func runUnit(ctx context.Context, opts Options, stats *aggregate.Stats, u *unit, lines aggregate.LineSource) (UnitResult, error) {
	start := time.Now()
	progress.Emit(opts.Progress, progress.Event{File: u.path, Stage: progress.StageCheck, Status: progress.StatusWorking})
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeUnit, "unit", trace.ParentFrom(ctx)).WithExtra("path", u.path)
	ctx = trace.WithParent(ctx, span.ID())

	bag := diag.NewBag(0)
	agg := aggregate.New(aggregate.Options{
		Unit:         u.path,
		MainFile:     u.file.Path,
		Checks:       u.compiled.Checks,
		HeaderFilter: u.compiled.HeaderFilter,
		LineFilter:   opts.LineFilter,
		Lines:        lines,
	}, stats, bag)
	out := UnitResult{Path: u.path, ConfigSource: u.source, Checks: u.names, Bag: bag}

	var key Digest
	if opts.Cache != nil {
		key = unitKey(u.file.Path, u.file.Hash, u.names, u.compiled.CheckOptions)
		hit, err := replayCached(ctx, opts.Cache, key, u, agg)
		if err != nil {
			span.End(err.Error())
			return out, err
		}
		if hit {
			out.Cached = true
			out.Elapsed = time.Since(start)
			span.End("cached")
			return out, nil
		}
	}

	var consumer aggregate.Consumer = agg
	var rec *aggregate.Recorder
	if opts.Cache != nil {
		rec = &aggregate.Recorder{Next: agg}
		consumer = rec
	}
	for _, c := range opts.Registry.Create(u.compiled.Checks.IsEnabled) {
		if err := checks.Run(ctx, c, u.file, consumer, u.compiled.CheckOptions); err != nil {
			span.End(err.Error())
			return out, fmt.Errorf("%s: %w", u.path, err)
		}
	}
	consumer.Finish()

	if rec != nil {
		payload := &DiskPayload{Path: u.file.Path, ContentHash: u.file.Hash, Checks: u.names, Events: rec.Events}
		if err := opts.Cache.Put(key, payload); err != nil {
			trace.Point(tracer, trace.ScopeUnit, "cache_put_failed", err.Error(), span.ID())
		}
	}
	out.Elapsed = time.Since(start)
	span.End(fmt.Sprintf("%d kept", bag.Len()))
	return out, nil
}

// replayCached feeds a cached stream to agg. A missing or unreadable entry
// is a miss; a stream that breaks the aggregator is an error.
func replayCached(ctx context.Context, cache *DiskCache, key Digest, u *unit, agg *aggregate.Aggregator) (bool, error) {
	tracer := trace.FromContext(ctx)
	var payload DiskPayload
	hit, err := cache.Get(key, &payload)
	if err != nil {
		trace.Point(tracer, trace.ScopeUnit, "cache_get_failed", err.Error(), trace.ParentFrom(ctx))
		return false, nil
	}
	if !hit || payload.Path != u.file.Path || payload.ContentHash != Digest(u.file.Hash) {
		return false, nil
	}
	span := trace.Begin(tracer, trace.ScopeUnit, "replay_cache", trace.ParentFrom(ctx))
	defer span.End(fmt.Sprintf("%d events", len(payload.Events)))
	if err := aggregate.Replay(agg, payload.Events); err != nil {
		return false, fmt.Errorf("%s: cached stream: %w", u.path, err)
	}
	return true, nil
}
