package pager

import (
	"fmt"
	"iter"
)

// maxPrealloc caps the capacity reserved up front for a key buffer so that a
// very large batch size does not allocate before keys arrive.
const maxPrealloc = 4096

// Batch is one group of keys drawn from a source, together with the lazy
// lookup of their records.
//
// Keys holds at most the configured batch size; only the last batch of a pass
// may be shorter. Records does not touch the source until it is iterated, and
// every iteration issues a fresh Fetch.
type Batch[K comparable, R any] struct {
	// Index is the 0-based position of the batch in the pass.
	Index int

	// Keys are the keys of the batch in the order the source yielded them.
	Keys []K

	records iter.Seq2[R, error]
}

// Len returns the number of keys in the batch.
func (b *Batch[K, R]) Len() int {
	return len(b.Keys)
}

// Records returns the lazy record sequence for the batch's keys. Records come
// back in the order the source produces them, which need not match Keys.
func (b *Batch[K, R]) Records() iter.Seq2[R, error] {
	return b.records
}

// Collect fetches and returns every record of the batch. It stops at the
// first error.
func (b *Batch[K, R]) Collect() ([]R, error) {
	records := make([]R, 0, len(b.Keys))
	for r, err := range b.records {
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// Chunk groups a key sequence into buffers of at most size keys. Keys are
// drawn on demand: a full buffer is yielded before the next key is requested,
// and the final buffer may be shorter. An empty buffer is never yielded.
//
// A size below 1 yields ErrInvalidBatchSize without touching seq. An error
// from seq ends the sequence: keys already buffered are yielded as a final
// short chunk, then the error is yielded as is.
//
// Example:
//
//	for keys, err := range pager.Chunk(src.Keys(ctx), 100) {
//	    if err != nil {
//	        return err
//	    }
//	    // len(keys) <= 100
//	}
func Chunk[K any](seq iter.Seq2[K, error], size int) iter.Seq2[[]K, error] {
	return func(yield func([]K, error) bool) {
		if size < 1 {
			yield(nil, fmt.Errorf("%w: %d", ErrInvalidBatchSize, size))
			return
		}

		buf := make([]K, 0, min(size, maxPrealloc))
		for key, err := range seq {
			if err != nil {
				if len(buf) > 0 && !yield(buf, nil) {
					return
				}
				yield(nil, err)
				return
			}

			buf = append(buf, key)
			if len(buf) < size {
				continue
			}

			if !yield(buf, nil) {
				return
			}
			buf = make([]K, 0, min(size, maxPrealloc))
		}

		if len(buf) > 0 {
			yield(buf, nil)
		}
	}
}
