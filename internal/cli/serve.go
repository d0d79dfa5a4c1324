package cli

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/regalloc/pkg/api"
	"github.com/matzehuels/regalloc/pkg/cache"
	"github.com/matzehuels/regalloc/pkg/pipeline"
)

const (
	// envAddr overrides the default listen address of serve.
	envAddr = "REGALLOC_ADDR"

	defaultAddr     = ":8080"
	shutdownTimeout = 10 * time.Second
	readTimeout     = 10 * time.Second
)

// defaultServeAddr returns $REGALLOC_ADDR, or ":8080" when unset.
func defaultServeAddr() string {
	if addr := os.Getenv(envAddr); addr != "" {
		return addr
	}
	return defaultAddr
}

// serveCommand creates the serve command, which runs the HTTP API until the
// command's context is cancelled.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the allocation HTTP API",
		Long: `Run the allocation HTTP API.

Endpoints:
  GET  /healthz       liveness probe
  GET  /version       build information
  POST /v1/allocate   allocate a problem, spilling as needed
  POST /v1/geometry   report class p/q values

The listen address defaults to $` + envAddr + ` or ` + defaultAddr + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			return c.serve(cmd.Context(), ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultServeAddr(), "listen address")

	return cmd
}

// serve runs the API on ln and shuts it down gracefully when ctx ends.
func (c *CLI) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           api.NewServer(pipeline.NewRunner(cache.NewMemoryCache(0), c.Logger), c.Logger),
		ReadHeaderTimeout: readTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	c.Logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
