// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about dataset runs: partitions starting and finishing, units
// being written, and output files that failed to persist.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    // ... run application
//	}
//
// The pipeline calls hooks to emit events:
//
//	observability.Pipeline().OnPartitionStart(ctx, "train", len(samples))
//	// ... emit units ...
//	observability.Pipeline().OnPartitionComplete(ctx, "train", units, duration, err)
//
// Hooks are called from worker goroutines and must be safe for concurrent use.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the dataset pipeline.
type PipelineHooks interface {
	// Run events
	OnRunStart(ctx context.Context, runID string)
	OnRunComplete(ctx context.Context, runID string, duration time.Duration, err error)

	// Partition events
	OnPartitionStart(ctx context.Context, partition string, samples int)
	OnPartitionComplete(ctx context.Context, partition string, units int, duration time.Duration, err error)

	// OnUnitComplete records one augmented unit. persisted is false when at
	// least one of its files failed to write.
	OnUnitComplete(ctx context.Context, partition string, index int, persisted bool)

	// OnPersistError records an output file that could not be written.
	OnPersistError(ctx context.Context, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnRunStart(context.Context, string)                          {}
func (NoopPipelineHooks) OnRunComplete(context.Context, string, time.Duration, error) {}
func (NoopPipelineHooks) OnPartitionStart(context.Context, string, int)               {}
func (NoopPipelineHooks) OnPartitionComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnUnitComplete(context.Context, string, int, bool) {}
func (NoopPipelineHooks) OnPersistError(context.Context, string, error)     {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
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

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
}
