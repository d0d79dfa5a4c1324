// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about allocation runs and served requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the allocator packages
// never import a metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetAllocHooks(&myAllocHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Alloc().OnRunStart(ctx, runID, nodes, edges)
//	// ... allocate ...
//	observability.Alloc().OnRunComplete(ctx, runID, attempts, spilled, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Allocation Hooks
// =============================================================================

// AllocHooks receives events from the allocation pipeline.
type AllocHooks interface {
	// Run events
	OnRunStart(ctx context.Context, runID string, nodes, edges int)
	OnRunComplete(ctx context.Context, runID string, attempts, spilled int, duration time.Duration, err error)

	// Attempt events, one per simplify/select pass
	OnAttempt(ctx context.Context, runID string, attempt, nodes int, colored bool, duration time.Duration)

	// OnSpill records the node chosen for spilling after a failed attempt.
	OnSpill(ctx context.Context, runID, node string, cost float64)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP service.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response sent for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopAllocHooks is a no-op implementation of AllocHooks.
type NoopAllocHooks struct{}

func (NoopAllocHooks) OnRunStart(context.Context, string, int, int) {}
func (NoopAllocHooks) OnRunComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopAllocHooks) OnAttempt(context.Context, string, int, int, bool, time.Duration) {}
func (NoopAllocHooks) OnSpill(context.Context, string, string, float64)                 {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	allocHooks AllocHooks = NoopAllocHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetAllocHooks registers custom allocation hooks.
// This should be called once at application startup before any runs.
func SetAllocHooks(h AllocHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		allocHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before serving.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Alloc returns the registered allocation hooks.
func Alloc() AllocHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return allocHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	allocHooks = NoopAllocHooks{}
	httpHooks = NoopHTTPHooks{}
}
