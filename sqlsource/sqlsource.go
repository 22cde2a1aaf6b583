// Package sqlsource provides a pager.Source over a database/sql table.
//
// Keys are read with SELECT DISTINCT on the key column and records are looked
// up with one IN query per batch:
//
//	SELECT DISTINCT id FROM users WHERE (active = :1) ORDER BY id
//	SELECT id, name FROM users WHERE (active = :1) AND id IN (:2, :3, :4)
//
// The source works with any driver. Pick the Placeholder style the driver
// expects; godror uses Colon.
package sqlsource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/bjaus/pager"
)

// Querier is the subset of *sql.DB, *sql.Tx and *sql.Conn used by Source.
// Passing a *sql.Tx pages over the transaction's snapshot.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ScanFunc converts the current row into a record.
type ScanFunc[R any] func(rows *sql.Rows) (R, error)

// Placeholder is a bind variable style.
type Placeholder int

const (
	// Question renders ?, as used by MySQL and SQLite.
	Question Placeholder = iota
	// Dollar renders $1, $2, ..., as used by PostgreSQL.
	Dollar
	// Colon renders :1, :2, ..., as used by Oracle.
	Colon
)

func (p Placeholder) format(n int) string {
	switch p {
	case Dollar:
		return "$" + strconv.Itoa(n)
	case Colon:
		return ":" + strconv.Itoa(n)
	default:
		return "?"
	}
}

// Option configures a Source.
type Option func(*options)

type options struct {
	columns     []string
	where       string
	args        []any
	placeholder Placeholder
	batchSize   int
}

// WithColumns sets the columns selected by Fetch. Defaults to "*".
func WithColumns(columns ...string) Option {
	return func(o *options) {
		o.columns = columns
	}
}

// WithWhere restricts both the key scan and the lookups with an extra
// condition. Numbered placeholders in clause start at 1; key placeholders are
// numbered after args.
func WithWhere(clause string, args ...any) Option {
	return func(o *options) {
		o.where = clause
		o.args = args
	}
}

// WithPlaceholder sets the bind variable style. Defaults to Question.
func WithPlaceholder(p Placeholder) Option {
	return func(o *options) {
		o.placeholder = p
	}
}

// WithBatchSize makes the source report n through pager.BatchSizer, e.g. to
// stay under a driver's bind variable limit. Values less than 1 are ignored.
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.batchSize = n
		}
	}
}

// Source pages over one table keyed by a single column.
type Source[K comparable, R any] struct {
	db        Querier
	table     string
	keyColumn string
	scan      ScanFunc[R]
	opts      options
}

var (
	_ pager.Source[int64, map[string]any] = (*Source[int64, map[string]any])(nil)
	_ pager.BatchSizer                    = (*Source[int64, map[string]any])(nil)
)

// New creates a Source reading table through db. keyColumn must identify rows
// uniquely, and scan converts each fetched row into a record.
//
// table and column names are written into the SQL verbatim; never build them
// from untrusted input.
func New[K comparable, R any](db Querier, table, keyColumn string, scan ScanFunc[R], opts ...Option) *Source[K, R] {
	s := &Source[K, R]{
		db:        db,
		table:     table,
		keyColumn: keyColumn,
		scan:      scan,
	}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

// BatchSize implements pager.BatchSizer. It returns pager.DefaultBatchSize
// unless WithBatchSize was given.
func (s *Source[K, R]) BatchSize() int {
	if s.opts.batchSize > 0 {
		return s.opts.batchSize
	}
	return pager.DefaultBatchSize
}

// KeysQuery returns the statement used by Keys.
func (s *Source[K, R]) KeysQuery() string {
	var b strings.Builder
	b.WriteString("SELECT DISTINCT ")
	b.WriteString(s.keyColumn)
	b.WriteString(" FROM ")
	b.WriteString(s.table)
	if s.opts.where != "" {
		b.WriteString(" WHERE (")
		b.WriteString(s.opts.where)
		b.WriteString(")")
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(s.keyColumn)
	return b.String()
}

// FetchQuery returns the statement used by Fetch for n keys.
func (s *Source[K, R]) FetchQuery(n int) string {
	columns := "*"
	if len(s.opts.columns) > 0 {
		columns = strings.Join(s.opts.columns, ", ")
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(columns)
	b.WriteString(" FROM ")
	b.WriteString(s.table)
	b.WriteString(" WHERE ")
	if s.opts.where != "" {
		b.WriteString("(")
		b.WriteString(s.opts.where)
		b.WriteString(") AND ")
	}
	b.WriteString(s.keyColumn)
	b.WriteString(" IN (")
	offset := len(s.opts.args)
	for i := range n {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s.opts.placeholder.format(offset + i + 1))
	}
	b.WriteString(")")
	return b.String()
}

// Keys implements pager.Source. Rows are streamed and closed as soon as the
// consumer stops.
func (s *Source[K, R]) Keys(ctx context.Context) iter.Seq2[K, error] {
	return func(yield func(K, error) bool) {
		var zero K

		rows, err := s.db.QueryContext(ctx, s.KeysQuery(), s.opts.args...)
		if err != nil {
			yield(zero, fmt.Errorf("sqlsource: query keys of %s: %w", s.table, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var key K
			if err := rows.Scan(&key); err != nil {
				yield(zero, fmt.Errorf("sqlsource: scan key of %s: %w", s.table, err))
				return
			}
			if !yield(key, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(zero, fmt.Errorf("sqlsource: read keys of %s: %w", s.table, err))
		}
	}
}

// Fetch implements pager.Source. An empty key set yields nothing without a
// round-trip.
func (s *Source[K, R]) Fetch(ctx context.Context, keys []K) iter.Seq2[R, error] {
	return func(yield func(R, error) bool) {
		var zero R
		if len(keys) == 0 {
			return
		}

		args := make([]any, 0, len(s.opts.args)+len(keys))
		args = append(args, s.opts.args...)
		for _, k := range keys {
			args = append(args, k)
		}

		rows, err := s.db.QueryContext(ctx, s.FetchQuery(len(keys)), args...)
		if err != nil {
			yield(zero, fmt.Errorf("sqlsource: fetch %d rows of %s: %w", len(keys), s.table, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			record, err := s.scan(rows)
			if err != nil {
				yield(zero, fmt.Errorf("sqlsource: scan row of %s: %w", s.table, err))
				return
			}
			if !yield(record, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(zero, fmt.Errorf("sqlsource: read rows of %s: %w", s.table, err))
		}
	}
}

// ErrNoColumns is returned by ScanMap when the result has no columns.
var ErrNoColumns = errors.New("sqlsource: no columns")

// ScanMap is a ScanFunc that returns each row as a column name to value map.
// []byte values are copied, so the map stays valid after the next row.
func ScanMap(rows *sql.Rows) (map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	record := make(map[string]any, len(columns))
	for i, name := range columns {
		if b, ok := values[i].([]byte); ok {
			values[i] = append([]byte(nil), b...)
		}
		record[name] = values[i]
	}
	return record, nil
}
