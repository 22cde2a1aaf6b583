package pager

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultBatchSize     = 500
	DefaultReclaimPolicy = ReclaimPerBatch
)

// BatchSizer controls how many keys are fetched together. Implement this
// interface to set the batch size from the source rather than the pager
// builder.
//
// The value can be overridden at runtime via WithBatchSize, which takes
// precedence. If neither is set, DefaultBatchSize (500) is used.
//
// Tuning guidance:
//   - Larger batches mean fewer round-trips but more records held in memory
//   - Stay within the database's bind variable limit for IN lists
//     (e.g. 1000 expressions for Oracle, 65535 parameters for PostgreSQL)
//
// Example:
//
//	func (s *UserSource) BatchSize() int { return 1000 }
type BatchSizer interface {
	// BatchSize returns the number of keys fetched per batch.
	BatchSize() int
}

// ReclaimPolicer controls when memory is reclaimed. Implement this interface
// to set the policy from the source rather than the pager builder.
//
// The value can be overridden at runtime via WithReclaimPolicy, which takes
// precedence. If neither is set, DefaultReclaimPolicy (ReclaimPerBatch) is
// used.
//
// Example:
//
//	func (s *UserSource) ReclaimPolicy() pager.ReclaimPolicy { return pager.ReclaimAtEnd }
type ReclaimPolicer interface {
	ReclaimPolicy() ReclaimPolicy
}

// Config holds pager settings loaded from a file. Zero fields are left unset
// so that source interfaces and defaults still apply.
//
// Example YAML:
//
//	batch_size: 1000
//	reclaim_policy: at_end
type Config struct {
	BatchSize     BatchSize     `yaml:"batch_size,omitempty"`
	ReclaimPolicy ReclaimPolicy `yaml:"reclaim_policy,omitempty"`
}

// LoadConfig decodes a YAML Config from r. Unknown keys are rejected. An empty
// document yields the zero Config.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("pager: decode config: %w", err)
	}

	return cfg, nil
}

// BatchSize is a batch size that only decodes from a positive YAML integer.
// Any YAML integer spelling works (1000, 1_000, 0x3e8). Floats such as 1.5,
// strings and values below 1 fail with ErrInvalidBatchSize.
type BatchSize int

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *BatchSize) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode || node.ShortTag() != "!!int" {
		return fmt.Errorf("%w: line %d: got %q", ErrInvalidBatchSize, node.Line, node.Value)
	}

	var n int
	if err := node.Decode(&n); err != nil {
		return fmt.Errorf("%w: line %d: %v", ErrInvalidBatchSize, node.Line, err)
	}
	if n < 1 {
		return fmt.Errorf("%w: line %d: %d", ErrInvalidBatchSize, node.Line, n)
	}

	*b = BatchSize(n)
	return nil
}

// ParseBatchSize parses a batch size from text, such as a flag or environment
// variable. Only positive base-10 integers are accepted.
func ParseBatchSize(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBatchSize, s)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidBatchSize, n)
	}
	return n, nil
}

// ParseMode parses the text form of a mode: "records" or "batches".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "records":
		return ModeRecords, nil
	case "batches":
		return ModeBatches, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// resolveBatchSize returns the effective batch size.
// Priority: WithBatchSize > BatchSizer interface > DefaultBatchSize.
func (p *Pager[K, R]) resolveBatchSize() int {
	if p.batchSize != nil {
		return *p.batchSize
	}
	if p.batchSizer != nil {
		return p.batchSizer.BatchSize()
	}
	return DefaultBatchSize
}

// resolveReclaimPolicy returns the effective reclaim policy. A zero policy at
// any level falls through to the next one.
// Priority: WithReclaimPolicy > ReclaimPolicer interface > DefaultReclaimPolicy.
func (p *Pager[K, R]) resolveReclaimPolicy() ReclaimPolicy {
	if p.reclaimPolicy != nil && *p.reclaimPolicy != 0 {
		return *p.reclaimPolicy
	}
	if p.reclaimPolicer != nil {
		if policy := p.reclaimPolicer.ReclaimPolicy(); policy != 0 {
			return policy
		}
	}
	return DefaultReclaimPolicy
}

// resolveReportInterval returns the effective progress report interval.
// Priority: WithReportInterval > ReportInterval interface > DefaultReportInterval.
func (p *Pager[K, R]) resolveReportInterval() int {
	if p.reportInterval != nil {
		return *p.reportInterval
	}
	if p.reportIntervalIface != nil {
		if n := p.reportIntervalIface.ReportInterval(); n >= 1 {
			return n
		}
	}
	return DefaultReportInterval
}

// resolveReclaimer returns the effective reclaimer.
func (p *Pager[K, R]) resolveReclaimer() Reclaimer {
	if p.reclaimer != nil {
		return p.reclaimer
	}
	return GC
}
