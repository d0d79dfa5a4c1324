package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/regalloc/pkg/buildinfo"
	"github.com/matzehuels/regalloc/pkg/cache"
	"github.com/matzehuels/regalloc/pkg/errors"
	"github.com/matzehuels/regalloc/pkg/pipeline"
	"github.com/matzehuels/regalloc/pkg/problem"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "regalloc"

	// stdinPath selects standard input as the problem source.
	stdinPath = "-"
)

// Output formats the CLI can write. dot and svg come from the pipeline; pdf
// and png are converted from svg; json is the allocation result.
const (
	formatJSON = "json"
	formatPDF  = "pdf"
	formatPNG  = "png"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Graph-coloring register allocation with aliased register classes",
		Long: `regalloc colors interference graphs over register files whose classes
overlap, such as GPU register files where a wide register covers several
narrow ones. Colorability is estimated with per-class p/q values rather than
a single register count.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.allocCommand())
	root.AddCommand(c.geometryCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.traceCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Rendered artifacts are
// cached on disk unless noCache is set or the cache directory is unusable.
func (c *CLI) newRunner(noCache bool) *pipeline.Runner {
	return pipeline.NewRunner(c.newCache(noCache), c.Logger)
}

func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("artifact cache disabled", "err", err)
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Debug("artifact cache disabled", "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/regalloc/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Problem Input
// =============================================================================

// loadProblem reads a problem from path, or from the command's input when
// path is "-".
func loadProblem(cmd *cobra.Command, path string) (*problem.Problem, error) {
	if path == stdinPath {
		return problem.Decode(cmd.InOrStdin(), "")
	}
	return problem.Load(path)
}

// =============================================================================
// Options Helpers
// =============================================================================

// runFlags are the allocation flags shared by alloc and trace.
type runFlags struct {
	heuristic   string
	maxAttempts int
	noCache     bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.heuristic, "heuristic", pipeline.DefaultHeuristic, "spill heuristic: first-neighbor, sum-neighbors")
	cmd.Flags().IntVar(&f.maxAttempts, "max-attempts", pipeline.DefaultMaxAttempts, "give up after this many spill attempts")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "do not read or write the artifact cache")
	registerHeuristicCompletion(cmd)
}

// options builds validated pipeline options from the flags. formats are CLI
// formats; pdf and png request the svg they are converted from.
func (f *runFlags) options(logger *log.Logger, trace bool, formats []string) (pipeline.Options, error) {
	opts := pipeline.Options{
		Heuristic:   f.heuristic,
		MaxAttempts: f.maxAttempts,
		Trace:       trace,
		Formats:     pipelineFormats(formats),
		Logger:      logger,
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// parseFormats parses a comma-separated format string into a slice, keeping
// the first occurrence of each format.
func parseFormats(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" && !slices.Contains(formats, f) {
			formats = append(formats, f)
		}
	}
	return formats
}

// validateFormats checks formats against the set a command accepts.
func validateFormats(formats []string, valid ...string) error {
	for _, f := range formats {
		if !slices.Contains(valid, f) {
			return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", f, strings.Join(valid, ", "))
		}
	}
	return nil
}

// pipelineFormats maps CLI formats onto the artifacts the pipeline renders.
func pipelineFormats(formats []string) []string {
	var out []string
	for _, f := range formats {
		switch f {
		case pipeline.FormatDOT:
			out = append(out, pipeline.FormatDOT)
		case pipeline.FormatSVG, formatPDF, formatPNG:
			out = append(out, pipeline.FormatSVG)
		}
	}
	return out
}

// basePath returns the path artifacts are written next to, without an
// extension. An explicit output wins over the input file name.
func basePath(output, input string) string {
	if output != "" {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	if input == stdinPath || input == "" {
		return appName
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}

// artifactPath names the file for one format.
func artifactPath(base, format string) string {
	if format == formatJSON {
		return fmt.Sprintf("%s.result.json", base)
	}
	return fmt.Sprintf("%s.%s", base, format)
}

// writeIndentedJSON writes v as indented JSON.
func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
