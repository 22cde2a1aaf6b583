package pager

import "context"

// DefaultReportInterval is the default number of records between progress
// reports.
const DefaultReportInterval = 10000

// ReportInterval controls how often progress is reported, measured in records
// yielded. This interface can be implemented independently of
// ProgressReporter when you want to set the interval via the source rather
// than the builder.
//
// The value can be overridden at runtime via WithReportInterval, which takes
// precedence over this interface. If neither is set, DefaultReportInterval
// (10,000 records) is used.
//
// Example:
//
//	func (s *UserSource) ReportInterval() int { return 5000 }
type ReportInterval interface {
	// ReportInterval returns how often to call OnProgress (in records yielded).
	ReportInterval() int
}

// ProgressReporter receives periodic progress updates during a pass.
// Implement this interface when you want to log throughput or emit metrics
// while a long table scan is running.
//
// OnProgress is called each time the cumulative record count crosses a
// ReportInterval boundary. In ModeRecords records are counted as they are
// yielded; in ModeBatches they are counted as the caller iterates each
// Batch.Records handle.
//
// Example:
//
//	func (s *UserSource) ReportInterval() int { return 10000 }
//
//	func (s *UserSource) OnProgress(ctx context.Context, stats *pager.Stats) {
//	    slog.InfoContext(ctx, "progress",
//	        "batches", stats.Batches(),
//	        "records", stats.Records(),
//	    )
//	}
type ProgressReporter interface {
	ReportInterval

	// OnProgress is called periodically during a pass.
	OnProgress(ctx context.Context, stats *Stats)
}

// countRecord records one yielded record and reports progress when the count
// crosses a report interval boundary.
func (p *Pager[K, R]) countRecord(ctx context.Context, stats *Stats, every int64) {
	n := stats.incRecords(1)
	if p.progress != nil && n%every == 0 {
		p.progress.OnProgress(ctx, stats)
	}
}
