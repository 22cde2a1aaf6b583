package pager_test

import (
	"errors"
	"iter"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bjaus/pager"
)

// keysOf returns a sequence over keys that counts how many were drawn.
func keysOf(keys []string, drawn *int) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, k := range keys {
			*drawn++
			if !yield(k, nil) {
				return
			}
		}
	}
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		keys     []string
		expected [][]string
	}{
		{
			name:     "empty keys",
			size:     3,
			keys:     []string{},
			expected: nil,
		},
		{
			name:     "keys fit in one chunk",
			size:     5,
			keys:     []string{"a", "b", "c"},
			expected: [][]string{{"a", "b", "c"}},
		},
		{
			name:     "keys require multiple chunks",
			size:     2,
			keys:     []string{"a", "b", "c", "d", "e"},
			expected: [][]string{{"a", "b"}, {"c", "d"}, {"e"}},
		},
		{
			name:     "exact chunk size",
			size:     3,
			keys:     []string{"a", "b", "c", "d", "e", "f"},
			expected: [][]string{{"a", "b", "c"}, {"d", "e", "f"}},
		},
		{
			name:     "chunk of one",
			size:     1,
			keys:     []string{"a", "b"},
			expected: [][]string{{"a"}, {"b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var drawn int
			var result [][]string
			for chunk, err := range pager.Chunk(keysOf(tt.keys, &drawn), tt.size) {
				require.NoError(t, err)
				result = append(result, chunk)
			}
			require.Equal(t, tt.expected, result)
			require.Equal(t, len(tt.keys), drawn)
		})
	}
}

func TestChunk_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1, -100} {
		var drawn int
		var errs []error
		for chunk, err := range pager.Chunk(keysOf([]string{"a"}, &drawn), size) {
			require.Nil(t, chunk)
			errs = append(errs, err)
		}
		require.Len(t, errs, 1)
		require.ErrorIs(t, errs[0], pager.ErrInvalidBatchSize)
		require.Zero(t, drawn)
	}
}

func TestChunk_DrawsOnDemand(t *testing.T) {
	var drawn int
	keys := []string{"a", "b", "c", "d", "e", "f", "g"}

	for chunk, err := range pager.Chunk(keysOf(keys, &drawn), 3) {
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b", "c"}, chunk)
		require.Equal(t, 3, drawn, "the next key is not drawn before the chunk is handed out")
		break
	}
	require.Equal(t, 3, drawn)
}

func TestChunk_ChunksAreIndependent(t *testing.T) {
	var drawn int
	var chunks [][]string
	for chunk, err := range pager.Chunk(keysOf([]string{"a", "b", "c", "d"}, &drawn), 2) {
		require.NoError(t, err)
		chunks = append(chunks, chunk)
	}

	chunks[0][0] = "z"
	require.Equal(t, [][]string{{"z", "b"}, {"c", "d"}}, chunks)
}

func TestChunk_Error(t *testing.T) {
	boom := errors.New("boom")
	var seq iter.Seq2[string, error] = func(yield func(string, error) bool) {
		for _, k := range []string{"a", "b", "c"} {
			if !yield(k, nil) {
				return
			}
		}
		yield("", boom)
	}

	var chunks [][]string
	var errs []error
	for chunk, err := range pager.Chunk(seq, 2) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		chunks = append(chunks, chunk)
	}

	require.Equal(t, [][]string{{"a", "b"}, {"c"}}, chunks, "buffered keys are flushed before the error")
	require.Equal(t, []error{boom}, errs)
}

func TestChunk_Error_StopOnFlushedChunk(t *testing.T) {
	boom := errors.New("boom")
	var seq iter.Seq2[string, error] = func(yield func(string, error) bool) {
		if !yield("a", nil) {
			return
		}
		yield("", boom)
	}

	var chunks [][]string
	for chunk, err := range pager.Chunk(seq, 5) {
		require.NoError(t, err)
		chunks = append(chunks, chunk)
		break
	}
	require.Equal(t, [][]string{{"a"}}, chunks)
}

func TestChunk_Error_EmptyBuffer(t *testing.T) {
	boom := errors.New("boom")
	var seq iter.Seq2[string, error] = func(yield func(string, error) bool) {
		for _, k := range []string{"a", "b"} {
			if !yield(k, nil) {
				return
			}
		}
		yield("", boom)
	}

	var chunks [][]string
	var errs []error
	for chunk, err := range pager.Chunk(seq, 2) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		chunks = append(chunks, chunk)
	}

	require.Equal(t, [][]string{{"a", "b"}}, chunks, "no empty chunk precedes the error")
	require.Equal(t, []error{boom}, errs)
}

func TestChunk_LargeSize(t *testing.T) {
	var drawn int
	keys := []string{"a", "b"}
	var chunks [][]string
	for chunk, err := range pager.Chunk(keysOf(keys, &drawn), 1<<30) {
		require.NoError(t, err)
		chunks = append(chunks, chunk)
	}
	require.Equal(t, [][]string{keys}, chunks)
}

func TestBatch_Collect(t *testing.T) {
	src := &testSource{records: makeRecords(1, 6, 1)}

	for batch, err := range pager.New[int, testRecord](src).WithBatchSize(3).Batches(t.Context()) {
		require.NoError(t, err)

		records, err := batch.Collect()
		require.NoError(t, err)

		pks := make([]int, 0, len(records))
		for _, r := range records {
			pks = append(pks, r.PK)
		}
		require.True(t, slices.Equal(batch.Keys, pks))
	}
}
