package pager

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
)

// Pager walks a Source in fixed-size batches of keys.
type Pager[K comparable, R any] struct {
	source Source[K, R]

	// Configuration overrides (nil means use interface value or default)
	batchSize      *int
	reclaimPolicy  *ReclaimPolicy
	reportInterval *int
	reclaimer      Reclaimer
	logger         *slog.Logger

	// Optional capabilities (detected from source interfaces)
	batchSizer          BatchSizer
	reclaimPolicer      ReclaimPolicer
	starter             Starter
	stopper             Stopper
	observer            BatchObserver
	progress            ProgressReporter
	reportIntervalIface ReportInterval
}

// New creates a Pager for the given source. Optional interfaces implemented
// by the source are auto-detected. Panics if source is nil.
//
// New does not validate configuration. Invalid settings are reported as the
// first element of a pass, before any key is drawn.
func New[K comparable, R any](source Source[K, R]) *Pager[K, R] {
	if source == nil {
		panic("pager: nil source")
	}

	p := &Pager[K, R]{
		source: source,
	}

	// Auto-detect optional interfaces
	if b, ok := any(source).(BatchSizer); ok {
		p.batchSizer = b
	}
	if r, ok := any(source).(ReclaimPolicer); ok {
		p.reclaimPolicer = r
	}
	if s, ok := any(source).(Starter); ok {
		p.starter = s
	}
	if s, ok := any(source).(Stopper); ok {
		p.stopper = s
	}
	if o, ok := any(source).(BatchObserver); ok {
		p.observer = o
	}
	if r, ok := any(source).(ProgressReporter); ok {
		p.progress = r
	}
	if r, ok := any(source).(ReportInterval); ok {
		p.reportIntervalIface = r
	}

	return p
}

// WithBatchSize overrides the number of keys fetched per batch.
// Priority: this method > BatchSizer interface > DefaultBatchSize.
// Values less than 1 are kept and fail the pass with ErrInvalidBatchSize.
func (p *Pager[K, R]) WithBatchSize(n int) *Pager[K, R] {
	p.batchSize = &n
	return p
}

// WithReclaimPolicy overrides when memory is reclaimed.
// Priority: this method > ReclaimPolicer interface > DefaultReclaimPolicy.
// The zero policy leaves the setting unchanged.
func (p *Pager[K, R]) WithReclaimPolicy(policy ReclaimPolicy) *Pager[K, R] {
	if policy != 0 {
		p.reclaimPolicy = &policy
	}
	return p
}

// WithReclaimer replaces the reclamation action, GC by default.
// A nil Reclaimer restores the default.
func (p *Pager[K, R]) WithReclaimer(r Reclaimer) *Pager[K, R] {
	p.reclaimer = r
	return p
}

// WithReportInterval overrides how often to report progress (in records).
// Priority: this method > ReportInterval interface > DefaultReportInterval.
// Values less than 1 are ignored.
func (p *Pager[K, R]) WithReportInterval(n int) *Pager[K, R] {
	if n >= 1 {
		p.reportInterval = &n
	}
	return p
}

// WithLogger enables debug logging of pass and batch boundaries.
// Errors are never logged; they are returned to the caller.
func (p *Pager[K, R]) WithLogger(logger *slog.Logger) *Pager[K, R] {
	p.logger = logger
	return p
}

// WithConfig applies the non-zero fields of cfg as overrides.
func (p *Pager[K, R]) WithConfig(cfg Config) *Pager[K, R] {
	if cfg.BatchSize != 0 {
		p.WithBatchSize(int(cfg.BatchSize))
	}
	return p.WithReclaimPolicy(cfg.ReclaimPolicy)
}

// Validate reports whether the effective configuration is usable. A pass
// performs the same check lazily; Validate lets callers fail early.
func (p *Pager[K, R]) Validate() error {
	return validate(p.resolveBatchSize(), p.resolveReclaimPolicy(), ModeRecords)
}

// Records returns a lazy sequence of every record in the source. Keys are
// drawn in batches and each batch's records are fetched only after the
// previous batch was consumed.
//
// Each call starts a new, independent pass. A configuration error is yielded
// as the first element; a source error or context cancellation is yielded as
// is and ends the pass.
//
// Example:
//
//	for user, err := range pager.New[int64, User](src).WithBatchSize(1000).Records(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    process(user)
//	}
func (p *Pager[K, R]) Records(ctx context.Context) iter.Seq2[R, error] {
	return func(yield func(R, error) bool) {
		for item, err := range p.Iterate(ctx, ModeRecords) {
			if !yield(item.Record, err) {
				return
			}
		}
	}
}

// Batches returns a lazy sequence of batches. No record is fetched by the
// Pager; callers iterate Batch.Records themselves, or defer and transform it.
//
// Each call starts a new, independent pass with the same error behavior as
// Records.
//
// Example:
//
//	for batch, err := range pager.New[int64, User](src).Batches(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    users, err := batch.Collect()
//	    if err != nil {
//	        return err
//	    }
//	    bulkIndex(users)
//	}
func (p *Pager[K, R]) Batches(ctx context.Context) iter.Seq2[*Batch[K, R], error] {
	return func(yield func(*Batch[K, R], error) bool) {
		for item, err := range p.Iterate(ctx, ModeBatches) {
			if !yield(item.Batch, err) {
				return
			}
		}
	}
}

// Iterate returns a lazy sequence of items for the given mode. Records and
// Batches are typed views of Iterate.
func (p *Pager[K, R]) Iterate(ctx context.Context, mode Mode) iter.Seq2[Item[K, R], error] {
	return func(yield func(Item[K, R], error) bool) {
		p.paginate(ctx, mode, yield)
	}
}

// paginate runs one pass. It is the only place keys are drawn.
func (p *Pager[K, R]) paginate(ctx context.Context, mode Mode, yield func(Item[K, R], error) bool) {
	size := p.resolveBatchSize()
	policy := p.resolveReclaimPolicy()
	if err := validate(size, policy, mode); err != nil {
		yield(Item[K, R]{}, err)
		return
	}

	if p.starter != nil {
		ctx = p.starter.Start(ctx)
	}

	stats := &Stats{}
	var passErr error
	defer func() {
		p.finish(ctx, policy, stats, passErr)
	}()

	p.debug(ctx, "pass started", "mode", mode, "batch_size", size, "reclaim_policy", policy)

	every := int64(p.resolveReportInterval())
	index := 0

	for keys, err := range Chunk(p.source.Keys(ctx), size) {
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			passErr = err
			yield(Item[K, R]{}, err)
			return
		}

		batch := p.newBatch(ctx, index, keys, stats, every)
		more, err := p.step(ctx, mode, policy, batch, stats, yield)
		if err != nil {
			passErr = err
			return
		}
		if !more {
			return
		}
		index++
	}
}

// step hands one batch to the caller. The per-batch reclaim is deferred so it
// runs on every exit path, including a caller that stops mid-batch.
// It returns false when the pass must end.
func (p *Pager[K, R]) step(
	ctx context.Context,
	mode Mode,
	policy ReclaimPolicy,
	batch *Batch[K, R],
	stats *Stats,
	yield func(Item[K, R], error) bool,
) (bool, error) {
	stats.incBatches(1)
	stats.incKeys(int64(batch.Len()))

	if policy == ReclaimPerBatch {
		defer p.reclaim(ctx, stats)
	}

	p.debug(ctx, "batch drawn", "index", batch.Index, "keys", batch.Len())

	info := BatchInfo{Index: batch.Index, Keys: batch.Len(), Mode: mode}

	switch mode {
	case ModeBatches:
		if !yield(Item[K, R]{Batch: batch}, nil) {
			return false, nil
		}

	case ModeRecords:
		for record, err := range batch.Records() {
			if err != nil {
				yield(Item[K, R]{}, err)
				return false, err
			}
			info.Records++
			if !yield(Item[K, R]{Record: record, Batch: batch}, nil) {
				return false, nil
			}
		}

	default:
		panic("pager: unknown mode")
	}

	if p.observer != nil {
		p.observer.OnBatch(ctx, info)
	}
	return true, nil
}

// newBatch builds the lazy record handle for keys. Fetch is not called until
// the handle is iterated.
func (p *Pager[K, R]) newBatch(ctx context.Context, index int, keys []K, stats *Stats, every int64) *Batch[K, R] {
	return &Batch[K, R]{
		Index: index,
		Keys:  keys,
		records: func(yield func(R, error) bool) {
			for record, err := range p.source.Fetch(ctx, keys) {
				if err != nil {
					var zero R
					yield(zero, err)
					return
				}
				p.countRecord(ctx, stats, every)
				if !yield(record, nil) {
					return
				}
			}
		},
	}
}

// finish runs the end-of-pass reclaim and the Stopper.
func (p *Pager[K, R]) finish(ctx context.Context, policy ReclaimPolicy, stats *Stats, err error) {
	if policy == ReclaimAtEnd {
		p.reclaim(ctx, stats)
	}

	p.debug(ctx, "pass finished", "stats", stats)

	if p.stopper != nil {
		p.stopper.Stop(ctx, stats, err)
	}
}

func (p *Pager[K, R]) reclaim(ctx context.Context, stats *Stats) {
	p.resolveReclaimer().Reclaim()
	n := stats.incReclaims(1)
	p.debug(ctx, "memory reclaimed", "reclaims", n)
}

func (p *Pager[K, R]) debug(ctx context.Context, msg string, args ...any) {
	if p.logger != nil {
		p.logger.DebugContext(ctx, msg, args...)
	}
}

func validate(size int, policy ReclaimPolicy, mode Mode) error {
	if size < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidBatchSize, size)
	}
	if !policy.valid() {
		return fmt.Errorf("%w: %d", ErrInvalidReclaimPolicy, int(policy))
	}
	if !mode.valid() {
		return fmt.Errorf("%w: %d", ErrInvalidMode, int(mode))
	}
	return nil
}
