package pager

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"
)

// Stats counts the work done by one pass. The Pager owns the counters while the
// pass runs; Stopper and ProgressReporter receive the live value and may read
// it from any goroutine.
type Stats struct {
	keys     atomic.Int64
	batches  atomic.Int64
	records  atomic.Int64
	reclaims atomic.Int64
}

// StatsSnapshot is a plain copy of the counters at one instant. It is also the
// JSON form of Stats.
type StatsSnapshot struct {
	Keys     int64 `json:"keys"`
	Batches  int64 `json:"batches"`
	Records  int64 `json:"records"`
	Reclaims int64 `json:"reclaims"`
}

// NewStats returns Stats preloaded from snap, e.g. to drive a hook in a test.
func NewStats(snap StatsSnapshot) *Stats {
	s := &Stats{}
	s.restore(snap)
	return s
}

// Keys is the number of keys drawn so far.
func (s *Stats) Keys() int64 { return s.keys.Load() }

// Batches is the number of non-empty batches drawn so far.
func (s *Stats) Batches() int64 { return s.batches.Load() }

// Records is the number of records fetched so far.
func (s *Stats) Records() int64 { return s.records.Load() }

// Reclaims is the number of Reclaimer calls so far.
func (s *Stats) Reclaims() int64 { return s.reclaims.Load() }

// Snapshot copies the counters. Each counter is read atomically; the set as a
// whole is not, so a snapshot taken mid-pass may straddle a batch boundary.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Keys:     s.Keys(),
		Batches:  s.Batches(),
		Records:  s.Records(),
		Reclaims: s.Reclaims(),
	}
}

// LogValue groups the counters under the attribute key, as in
// logger.Info("pass finished", "stats", stats).
func (s *Stats) LogValue() slog.Value {
	snap := s.Snapshot()
	return slog.GroupValue(
		slog.Int64("keys", snap.Keys),
		slog.Int64("batches", snap.Batches),
		slog.Int64("records", snap.Records),
		slog.Int64("reclaims", snap.Reclaims),
	)
}

func (s *Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

func (s *Stats) UnmarshalJSON(data []byte) error {
	var snap StatsSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	s.restore(snap)
	return nil
}

func (s *Stats) restore(snap StatsSnapshot) {
	s.keys.Store(snap.Keys)
	s.batches.Store(snap.Batches)
	s.records.Store(snap.Records)
	s.reclaims.Store(snap.Reclaims)
}

func (s *Stats) incKeys(n int64) int64     { return s.keys.Add(n) }
func (s *Stats) incBatches(n int64) int64  { return s.batches.Add(n) }
func (s *Stats) incRecords(n int64) int64  { return s.records.Add(n) }
func (s *Stats) incReclaims(n int64) int64 { return s.reclaims.Add(n) }
