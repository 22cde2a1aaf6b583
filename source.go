package pager

import (
	"context"
	"iter"
)

// Source is the queryable collection a Pager walks. This is the only required
// interface to implement.
//
// The type parameters are:
//   - K: key type identifying one record (usually the primary key)
//   - R: record type returned by lookups
//
// Both methods return lazy, single-pass sequences. The Pager calls Keys once
// per pass and Fetch once per batch, and never holds more than one batch of
// keys and records at a time. Sources should not be mutated while a pass is
// running; if they are, records may be duplicated or missed. Paging keys from
// a stable snapshot avoids this.
//
// Example:
//
//	func (s *UserSource) Keys(ctx context.Context) iter.Seq2[int64, error] {
//	    return func(yield func(int64, error) bool) {
//	        rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT id FROM users ORDER BY id")
//	        if err != nil {
//	            yield(0, err)
//	            return
//	        }
//	        defer rows.Close()
//	        for rows.Next() {
//	            var id int64
//	            if err := rows.Scan(&id); err != nil {
//	                yield(0, err)
//	                return
//	            }
//	            if !yield(id, nil) {
//	                return
//	            }
//	        }
//	        if err := rows.Err(); err != nil {
//	            yield(0, err)
//	        }
//	    }
//	}
//
// For database/sql backed tables, see the sqlsource package.
type Source[K comparable, R any] interface {
	// Keys yields every distinct key in the source, in source order.
	// The sequence must be finite and must not repeat a key.
	Keys(ctx context.Context) iter.Seq2[K, error]

	// Fetch yields the records matching keys, in any order. Keys that no
	// longer match a record are simply absent from the result.
	Fetch(ctx context.Context, keys []K) iter.Seq2[R, error]
}

// SourceFuncs adapts a pair of plain functions to the [Source] interface.
//
// Example:
//
//	src := pager.SourceFuncs[int, User]{
//	    KeysFunc:  func(ctx context.Context) iter.Seq2[int, error] { ... },
//	    FetchFunc: func(ctx context.Context, ids []int) iter.Seq2[User, error] { ... },
//	}
type SourceFuncs[K comparable, R any] struct {
	KeysFunc  func(ctx context.Context) iter.Seq2[K, error]
	FetchFunc func(ctx context.Context, keys []K) iter.Seq2[R, error]
}

func (s SourceFuncs[K, R]) Keys(ctx context.Context) iter.Seq2[K, error] {
	return s.KeysFunc(ctx)
}

func (s SourceFuncs[K, R]) Fetch(ctx context.Context, keys []K) iter.Seq2[R, error] {
	return s.FetchFunc(ctx, keys)
}

// Mode selects what a pass yields.
type Mode int

const (
	// ModeRecords yields each record individually, fetching one batch at a time.
	ModeRecords Mode = iota

	// ModeBatches yields one unconsumed [Batch] per group of keys. Records are
	// fetched only when the caller iterates Batch.Records.
	ModeBatches
)

// String returns the text form used in configuration and flags.
func (m Mode) String() string {
	switch m {
	case ModeRecords:
		return "records"
	case ModeBatches:
		return "batches"
	default:
		return "unknown"
	}
}

func (m Mode) valid() bool {
	return m == ModeRecords || m == ModeBatches
}

// Item is one element of a pass returned by [Pager.Iterate].
//
// In ModeRecords, Record holds the yielded record and Batch the batch it was
// fetched with. In ModeBatches, only Batch is set.
type Item[K comparable, R any] struct {
	Record R
	Batch  *Batch[K, R]
}
