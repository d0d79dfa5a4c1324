// Package api serves register allocation over HTTP.
//
// # Endpoints
//
//	POST /v1/allocate   allocate a problem, spilling as needed
//	POST /v1/geometry   validate a problem and report its class geometry
//	GET  /healthz       liveness probe
//	GET  /version       build information
//
// Requests and responses are JSON. An allocate request wraps a problem in
// the same schema problem files use, plus optional run options:
//
//	{
//	  "problem": {"registers": 2, "classes": [...], "nodes": [...]},
//	  "options": {"heuristic": "sum-neighbors", "formats": ["svg"]}
//	}
//
// Errors are reported as {"code": ..., "message": ...} with a status derived
// from the error code: 400 for malformed problems, 422 when a spill is
// required but impossible.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/regalloc/pkg/cache"
	"github.com/matzehuels/regalloc/pkg/pipeline"
)

const (
	// maxBodyBytes caps request bodies.
	maxBodyBytes = 4 << 20

	// requestTimeout bounds a single request, including all spill attempts.
	requestTimeout = 30 * time.Second
)

// Server handles allocation requests.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// NewServer returns the HTTP handler for the service. If runner is nil a
// runner sharing logger, with an in-memory artifact cache, is created; if
// logger is nil, log.Default() is used.
func NewServer(runner *pipeline.Runner, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(cache.NewMemoryCache(0), logger)
	}
	s := &Server{runner: runner, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/allocate", s.handleAllocate)
		r.Post("/geometry", s.handleGeometry)
	})
	return r
}
