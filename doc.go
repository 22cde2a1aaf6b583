// Package pager iterates large query results in fixed-size batches of keys.
//
// A Pager draws distinct keys from a [Source], groups them into batches, and
// looks up each batch's records with a single key-set query. Only one batch of
// keys and one batch of records are held at a time, and the runtime can be
// asked to reclaim memory between batches. Everything is lazy: nothing is
// queried until the returned sequence is ranged over, and every range starts
// a fresh pass.
//
// # Quick Start
//
// Implement the required Source interface:
//
//	type UserSource struct {
//	    db *sql.DB
//	}
//
//	func (s *UserSource) Keys(ctx context.Context) iter.Seq2[int64, error] {
//	    // SELECT DISTINCT id FROM users ORDER BY id
//	}
//
//	func (s *UserSource) Fetch(ctx context.Context, ids []int64) iter.Seq2[User, error] {
//	    // SELECT id, name FROM users WHERE id IN (...)
//	}
//
//	// Page through every user, 1000 at a time
//	for user, err := range pager.New[int64, User](&UserSource{db: db}).WithBatchSize(1000).Records(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    process(user)
//	}
//
// The sqlsource package provides a ready-made Source for database/sql.
//
// # Modes
//
// [Pager.Records] yields records one at a time (ModeRecords). The next batch
// is not fetched until the caller has consumed every record of the current one.
//
// [Pager.Batches] yields a [Batch] per group of keys (ModeBatches). The Pager
// does not iterate the batch; records are fetched only when the caller ranges
// over Batch.Records, which makes it possible to hand batches to other code or
// defer their materialization.
//
// [Pager.Iterate] is the mode-parameterized form both are built on.
//
// # Memory Reclamation
//
// The ReclaimPolicy decides when the [Reclaimer] (runtime.GC by default) runs:
//
//   - ReclaimPerBatch (default): once after every non-empty batch. The call is
//     deferred, so it also runs for a batch the caller abandoned part way.
//   - ReclaimAtEnd: exactly once when the pass ends, even for an empty source.
//   - ReclaimNone: never.
//
// Tests can substitute a counting [ReclaimerFunc] via WithReclaimer.
//
// # Interface-Based Design
//
// Optional interfaces on the source are auto-detected:
//
//	// Set the batch size from the source by implementing BatchSizer
//	func (s *UserSource) BatchSize() int { return 1000 }
//
//	// Observe each completed batch by implementing BatchObserver
//	func (s *UserSource) OnBatch(ctx context.Context, info pager.BatchInfo) {
//	    slog.DebugContext(ctx, "batch", "index", info.Index, "keys", info.Keys)
//	}
//
// Available interfaces:
//   - [BatchSizer]: keys per batch
//   - [ReclaimPolicer]: when to reclaim memory
//   - [Starter] / [Stopper]: pass lifecycle hooks
//   - [BatchObserver]: per-batch notification
//   - [ProgressReporter]: periodic progress with [Stats]
//
// # Configuration Priority
//
// Settings are resolved in order of precedence:
//
//  1. Builder methods (WithBatchSize, WithReclaimPolicy, ...) and WithConfig
//  2. Interface implementations on the source
//  3. Default constants (DefaultBatchSize = 500, DefaultReclaimPolicy)
//
// A [Config] can be read from YAML with [LoadConfig].
//
// # Errors
//
// An invalid batch size (below 1), reclaim policy or mode is reported as the
// first element of the pass, wrapping [ErrInvalidArgument], before any key is
// drawn. Errors from the source are passed through unchanged and end the pass.
// When the key sequence fails, keys it already returned are still delivered as
// a final short batch before the error.
// The Pager never retries and never logs errors.
//
// # Concurrency
//
// A pass is synchronous: the caller controls pacing, and keys and records are
// requested strictly on demand. Separate passes share no state and may run
// concurrently if the source allows it.
package pager
