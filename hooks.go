package pager

import "context"

// Starter is called before a pass draws its first key. Implement this
// interface on your source when you need to perform setup work or enrich the
// context before paging starts.
//
// Use Starter for:
//   - Adding values to the context (request IDs, trace spans, logger fields)
//   - Opening a snapshot or read-only transaction the pass should page over
//   - Logging the start of a pass
//
// The context returned by Start is passed to Keys, Fetch and every other hook
// of the same pass.
//
// Example:
//
//	func (s *UserSource) Start(ctx context.Context) context.Context {
//	    slog.InfoContext(ctx, "paging users")
//	    return ctx
//	}
//
// Start is called once per pass, and only after configuration was validated.
type Starter interface {
	// Start is called before the first key is drawn.
	// The returned context is used for the rest of the pass.
	Start(ctx context.Context) context.Context
}

// Stopper is called when a pass ends, regardless of whether it was exhausted,
// failed, or abandoned by the caller. Implement this interface for cleanup,
// final logging, or metrics reporting.
//
// The err parameter is the error the pass delivered to the caller: a source
// error or ctx.Err(). It is nil when the source was exhausted or the caller
// stopped consuming.
//
// Example:
//
//	func (s *UserSource) Stop(ctx context.Context, stats *pager.Stats, err error) {
//	    if err != nil {
//	        slog.ErrorContext(ctx, "paging failed", "error", err, "stats", stats)
//	        return
//	    }
//	    slog.InfoContext(ctx, "paging complete", "stats", stats)
//	}
//
// Stop is called exactly once for every pass that Start was called for.
type Stopper interface {
	Stop(ctx context.Context, stats *Stats, err error)
}

// BatchInfo describes a batch whose step has completed.
type BatchInfo struct {
	// Index is the 0-based position of the batch in the pass.
	Index int

	// Keys is the number of keys in the batch.
	Keys int

	// Records is the number of records yielded from the batch. It is always
	// zero in ModeBatches, where records are fetched by the caller.
	Records int

	// Mode is the mode of the pass.
	Mode Mode
}

// BatchObserver is notified each time a batch step completes: in ModeRecords
// after the caller consumed the batch's records, in ModeBatches after the
// caller received the batch handle.
//
// OnBatch is called before the per-batch Reclaimer. It is not called for a
// batch the caller abandoned or that failed.
//
// Example:
//
//	func (s *UserSource) OnBatch(ctx context.Context, info pager.BatchInfo) {
//	    slog.DebugContext(ctx, "batch done", "index", info.Index, "keys", info.Keys)
//	}
type BatchObserver interface {
	OnBatch(ctx context.Context, info BatchInfo)
}
