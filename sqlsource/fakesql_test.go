package sqlsource_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
)

// queryFunc answers one query with columns and rows.
type queryFunc func(query string, args []driver.Value) (columns []string, rows [][]driver.Value, err error)

type fakeQuery struct {
	Query string
	Args  []driver.Value
}

// fakeConnector is an in-memory driver.Connector that answers queries with fn
// and records every query it receives.
type fakeConnector struct {
	fn queryFunc

	// rowsErr is returned by Next after rowsErrAt rows of every result.
	rowsErr   error
	rowsErrAt int

	mu      sync.Mutex
	queries []fakeQuery
	opened  int
	closed  int
}

func openFake(fn queryFunc) (*sql.DB, *fakeConnector) {
	c := &fakeConnector{fn: fn}
	return sql.OpenDB(c), c
}

func (c *fakeConnector) Connect(context.Context) (driver.Conn, error) { return &fakeConn{c: c}, nil }

func (c *fakeConnector) Driver() driver.Driver { return fakeDriver{} }

func (c *fakeConnector) Queries() []fakeQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.queries)
}

func (c *fakeConnector) OpenRows() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opened - c.closed
}

type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("fakesql: open through a connector")
}

type fakeConn struct {
	c *fakeConnector
}

var _ driver.QueryerContext = (*fakeConn)(nil)

func (*fakeConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("fakesql: prepare not supported")
}

func (*fakeConn) Close() error { return nil }

func (*fakeConn) Begin() (driver.Tx, error) {
	return nil, errors.New("fakesql: transactions not supported")
}

func (fc *fakeConn) QueryContext(_ context.Context, query string, named []driver.NamedValue) (driver.Rows, error) {
	args := make([]driver.Value, len(named))
	for i, nv := range named {
		args[i] = nv.Value
	}

	fc.c.mu.Lock()
	fc.c.queries = append(fc.c.queries, fakeQuery{Query: query, Args: args})
	fc.c.mu.Unlock()

	columns, rows, err := fc.c.fn(query, args)
	if err != nil {
		return nil, err
	}

	fc.c.mu.Lock()
	fc.c.opened++
	fc.c.mu.Unlock()

	return &fakeRows{c: fc.c, columns: columns, rows: rows}, nil
}

type fakeRows struct {
	c       *fakeConnector
	columns []string
	rows    [][]driver.Value
	pos     int
	closed  bool
}

func (r *fakeRows) Columns() []string { return r.columns }

func (r *fakeRows) Close() error {
	if !r.closed {
		r.closed = true
		r.c.mu.Lock()
		r.c.closed++
		r.c.mu.Unlock()
	}
	return nil
}

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.c.rowsErr != nil && r.pos == r.c.rowsErrAt {
		return r.c.rowsErr
	}
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}

// userRow is a row of the fake users table.
type userRow struct {
	ID   int64
	Name string
}

// usersTable answers the key scan and IN lookups of a users table. The first
// skip arguments of a lookup belong to a WHERE clause and are ignored.
func usersTable(rows []userRow, skip int) queryFunc {
	return func(query string, args []driver.Value) ([]string, [][]driver.Value, error) {
		if strings.HasPrefix(query, "SELECT DISTINCT") {
			seen := make(map[int64]bool, len(rows))
			var keys [][]driver.Value
			for _, r := range rows {
				if seen[r.ID] {
					continue
				}
				seen[r.ID] = true
				keys = append(keys, []driver.Value{r.ID})
			}
			return []string{"id"}, keys, nil
		}

		want := make(map[int64]bool, len(args))
		for _, a := range args[skip:] {
			if id, ok := a.(int64); ok {
				want[id] = true
			}
		}

		var out [][]driver.Value
		for _, r := range rows {
			if want[r.ID] {
				out = append(out, []driver.Value{r.ID, r.Name})
			}
		}
		return []string{"id", "name"}, out, nil
	}
}
