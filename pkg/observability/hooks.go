// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about container lifecycle, rendering, and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, plain logging, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    observability.SetRenderHooks(&myRenderHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Store().OnOpen(ctx, path, mode)
//	// ... use container ...
//	observability.Store().OnClose(ctx, path, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from container lifecycle operations.
type StoreHooks interface {
	// OnOpen records a container open.
	OnOpen(ctx context.Context, path, mode string)

	// OnClose records a container close with the time the container was held open.
	OnClose(ctx context.Context, path string, held time.Duration, err error)

	// OnDetach records a handle being promoted to independent ownership.
	OnDetach(ctx context.Context, path, object string)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from surface rendering.
type RenderHooks interface {
	// OnFlushStart records the start of a surface flush.
	OnFlushStart(ctx context.Context, surface string, children int)

	// OnFlushComplete records the completion of a surface flush.
	OnFlushComplete(ctx context.Context, surface string, duration time.Duration, err error)

	// OnSave records a surface being persisted to a path.
	OnSave(ctx context.Context, surface, path string, size int, err error)

	// OnWaitStart records the start of a blocking wait for a close signal.
	OnWaitStart(ctx context.Context, surface string)

	// OnWaitComplete records the end of a blocking wait.
	OnWaitComplete(ctx context.Context, surface string, waited time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from memoization cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheEvict records an entry evicted by capacity pressure.
	OnCacheEvict(ctx context.Context, keyType string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnOpen(context.Context, string, string)                       {}
func (NoopStoreHooks) OnClose(context.Context, string, time.Duration, error)        {}
func (NoopStoreHooks) OnDetach(context.Context, string, string)                     {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnFlushStart(context.Context, string, int)                          {}
func (NoopRenderHooks) OnFlushComplete(context.Context, string, time.Duration, error)      {}
func (NoopRenderHooks) OnSave(context.Context, string, string, int, error)                 {}
func (NoopRenderHooks) OnWaitStart(context.Context, string)                                {}
func (NoopRenderHooks) OnWaitComplete(context.Context, string, time.Duration, error)       {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)   {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)  {}
func (NoopCacheHooks) OnCacheEvict(context.Context, string) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	storeHooks  StoreHooks  = NoopStoreHooks{}
	renderHooks RenderHooks = NoopRenderHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any container operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetRenderHooks registers custom render hooks.
// This should be called once at application startup before any rendering operations.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
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

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
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
	storeHooks = NoopStoreHooks{}
	renderHooks = NoopRenderHooks{}
	cacheHooks = NoopCacheHooks{}
}
