// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about tree building, layout, comparison, analysis and cache
// operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// [PrometheusHooks] is the bundled backend; it implements every hook
// interface on top of a prometheus registry.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    p := observability.NewPrometheusHooks(prometheus.NewRegistry())
//	    observability.SetPipelineHooks(p)
//	    observability.SetBuilderHooks(p)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnCompareStart(ctx)
//	// ... compare ...
//	observability.Pipeline().OnCompareComplete(ctx, pentagons, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the load, layout, compare and analyze stages.
type PipelineHooks interface {
	// Load events
	OnLoadStart(ctx context.Context, path string)
	OnLoadComplete(ctx context.Context, path string, nodeCount int, duration time.Duration, err error)

	// Layout events
	OnLayoutStart(ctx context.Context, nodeCount int)
	OnLayoutComplete(ctx context.Context, duration time.Duration, err error)

	// Compare events
	OnCompareStart(ctx context.Context)
	OnCompareComplete(ctx context.Context, pentagons int, duration time.Duration, err error)

	// Analyze events
	OnAnalyzeStart(ctx context.Context, mode string)
	OnAnalyzeComplete(ctx context.Context, mode string, groups int, duration time.Duration, err error)
}

// =============================================================================
// Builder Hooks
// =============================================================================

// BuilderHooks receives events from the tree builder.
type BuilderHooks interface {
	// OnNodeInserted records a node message applied to the tree.
	OnNodeInserted(ctx context.Context, status string)

	// OnNodeDelayed records a node message whose parent has not arrived yet.
	OnNodeDelayed(ctx context.Context, threadID int)

	// OnNodeDropped records a node message that could not be applied.
	OnNodeDropped(ctx context.Context, reason string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string) {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int)                           {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, time.Duration, error)       {}
func (NoopPipelineHooks) OnCompareStart(context.Context)                               {}
func (NoopPipelineHooks) OnCompareComplete(context.Context, int, time.Duration, error) {}
func (NoopPipelineHooks) OnAnalyzeStart(context.Context, string)                       {}
func (NoopPipelineHooks) OnAnalyzeComplete(context.Context, string, int, time.Duration, error) {
}

// NoopBuilderHooks is a no-op implementation of BuilderHooks.
type NoopBuilderHooks struct{}

func (NoopBuilderHooks) OnNodeInserted(context.Context, string) {}
func (NoopBuilderHooks) OnNodeDelayed(context.Context, int)     {}
func (NoopBuilderHooks) OnNodeDropped(context.Context, string)  {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	builderHooks  BuilderHooks  = NoopBuilderHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetBuilderHooks registers custom builder hooks.
func SetBuilderHooks(h BuilderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		builderHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Builder returns the registered builder hooks.
func Builder() BuilderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return builderHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	builderHooks = NoopBuilderHooks{}
	cacheHooks = NoopCacheHooks{}
}
