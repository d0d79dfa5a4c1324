package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/regalloc/pkg/buildinfo"
	"github.com/matzehuels/regalloc/pkg/cache"
	"github.com/matzehuels/regalloc/pkg/errors"
	"github.com/matzehuels/regalloc/pkg/observability"
	"github.com/matzehuels/regalloc/pkg/problem"
	"github.com/matzehuels/regalloc/pkg/render"
)

// Runner executes allocation runs.
// Both CLI and API use it so that retries, logging and hooks behave the same.
//
// The Runner holds no per-run state. Multiple goroutines can safely use the
// same Runner with different problems and options, provided its cache is
// safe for concurrent use.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables artifact caching; a nil
// logger means log.Default(). Cache keys are scoped to the build version,
// so artifacts rendered by another release are never served.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  cache.Scoped(c, "regalloc@"+buildinfo.Version+":"),
		Logger: logger,
	}
}

// Run allocates registers for p, spilling one node per failed attempt.
//
// Each attempt builds a fresh instance from the current problem, so the
// input is never modified. Run checks ctx before every attempt. It returns
// a [errors.SpillError] when an attempt fails and no node qualifies for
// spilling, or when the attempt limit is reached.
func (r *Runner) Run(ctx context.Context, p *problem.Problem, opts Options) (res *Result, err error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	runID := uuid.NewString()
	hooks := opts.Hooks
	if hooks == nil {
		hooks = observability.Alloc()
	}
	start := time.Now()
	res = &Result{Result: problem.Result{
		RunID:     runID,
		Heuristic: opts.Heuristic,
		Spilled:   []string{},
	}}
	defer func() {
		hooks.OnRunComplete(ctx, runID, len(res.Attempts), len(res.Spilled), time.Since(start), err)
		if err != nil {
			res = nil
		}
	}()

	current := p
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return res, errors.Wrap(errors.ErrCodeCanceled, err, "run canceled before attempt %d", attempt)
		}

		in, err := current.Build()
		if err != nil {
			return res, err
		}
		g := in.Graph
		g.SetSpillHeuristic(opts.heuristic)
		if opts.Trace {
			g.EnableTrace()
		}
		if attempt == 1 {
			hooks.OnRunStart(ctx, runID, g.Len(), g.EdgeCount())
			logger.Debug("starting allocation",
				"run", runID,
				"nodes", g.Len(),
				"edges", g.EdgeCount(),
				"heuristic", opts.Heuristic)
		}

		attemptStart := time.Now()
		trivial := g.Simplify()
		if !trivial {
			g.OptimisticColor()
		}
		colored := g.Select()
		record := problem.Attempt{
			Nodes:    g.Len(),
			Edges:    g.EdgeCount(),
			Colored:  colored,
			Trivial:  trivial,
			Duration: time.Since(attemptStart),
		}
		hooks.OnAttempt(ctx, runID, attempt, g.Len(), colored, record.Duration)
		if attempt == 1 {
			res.TriviallyColorable = trivial
		}

		if colored {
			res.Attempts = append(res.Attempts, record)
			r.finish(res, in, opts)
			res.Duration = time.Since(start)
			logger.Info("allocated registers",
				"nodes", g.Len(),
				"attempts", attempt,
				"spilled", len(res.Spilled),
				"duration", res.Duration)
			if err := r.renderArtifacts(ctx, res, opts); err != nil {
				return res, err
			}
			return res, nil
		}

		cand, ok := g.BestSpillCandidate()
		if !ok || attempt >= opts.MaxAttempts {
			res.Attempts = append(res.Attempts, record)
			logger.Warn("allocation failed",
				"attempt", attempt,
				"unassigned", len(in.Unassigned()),
				"spill_candidate", ok)
			return res, &errors.SpillError{Attempts: attempt, Remaining: in.Unassigned()}
		}

		name := in.NodeNames[cand]
		record.Spill = name
		res.Attempts = append(res.Attempts, record)
		res.Spilled = append(res.Spilled, name)
		hooks.OnSpill(ctx, runID, name, g.SpillCost(cand))
		logger.Info("spilling",
			"attempt", attempt,
			"node", name,
			"class", in.ClassName(cand),
			"benefit", g.SpillBenefit(cand),
			"cost", g.SpillCost(cand))

		current = current.Without(name)
	}
}

// finish copies the final coloring into the result.
func (r *Runner) finish(res *Result, in *problem.Instance, opts Options) {
	res.Success = true
	res.Instance = in
	res.Assignments = in.Assignments()
	res.HardwareRegs = in.HardwareRegs()
	if opts.Trace {
		res.Trace = in.TraceEvents()
	}
}

func (r *Runner) renderArtifacts(ctx context.Context, res *Result, opts Options) error {
	if len(opts.Formats) == 0 {
		return nil
	}
	res.Artifacts = make(map[string][]byte, len(opts.Formats))
	dot := render.ToDOT(res.Instance, render.Options{Detailed: opts.Detailed, Spilled: res.Spilled})
	if opts.WantsFormat(FormatDOT) {
		res.Artifacts[FormatDOT] = []byte(dot)
	}
	if opts.WantsFormat(FormatSVG) {
		svg, err := r.RenderSVG(ctx, dot, opts.Logger)
		if err != nil {
			return err
		}
		res.Artifacts[FormatSVG] = svg
	}
	return nil
}

// RenderSVG renders dot with Graphviz, consulting the runner's cache first.
// Cache failures are logged and otherwise ignored. If logger is nil the
// runner's logger is used.
func (r *Runner) RenderSVG(ctx context.Context, dot string, logger *log.Logger) ([]byte, error) {
	if logger == nil {
		logger = r.Logger
	}
	key := cache.ArtifactKey(FormatSVG, []byte(dot))
	svg, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("artifact cache read failed", "err", err)
	}
	if hit {
		logger.Debug("svg cache hit", "key", key)
		return svg, nil
	}

	svg, err = render.RenderSVG(ctx, dot)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
	}
	if err := r.Cache.Set(ctx, key, svg, artifactTTL); err != nil {
		logger.Warn("artifact cache write failed", "err", err)
	}
	return svg, nil
}
