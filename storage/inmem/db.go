package inmemdb

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/trezcool/lophoc/core"
)

// Operations, as passed to DB.Fail
const (
	OpSelect = "select"
	OpInsert = "insert"
	OpUpdate = "update"
)

type table struct {
	rows  []core.Row // insertion order
	pkSeq int
}

// DB is a goroutine-safe in-memory core.TableService.
// Rows without an "id" get a sequential one and every row is stamped with "created_at".
type DB struct {
	mutex    sync.RWMutex
	tables   map[string]*table
	failures map[string]error // {table.op: err}
}

var _ core.TableService = (*DB)(nil)

func NewDB() *DB {
	db := &DB{
		tables:   make(map[string]*table, len(core.Tables)),
		failures: make(map[string]error),
	}
	for _, name := range core.Tables {
		db.tables[name] = new(table)
	}
	return db
}

// Fail makes every `op` on `tbl` fail with err until cleared with a nil err.
func (db *DB) Fail(tbl, op string, err error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	key := tbl + "." + op
	if err == nil {
		delete(db.failures, key)
		return
	}
	db.failures[key] = err
}

// Seed inserts rows, panicking on failure. Meant for tests and demo data.
func (db *DB) Seed(tbl string, rows ...core.Row) {
	for _, row := range rows {
		if err := db.Insert(context.Background(), tbl, row); err != nil {
			panic(err)
		}
	}
}

// Rows returns a copy of every row of tbl, in insertion order.
func (db *DB) Rows(tbl string) []core.Row {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	t, ok := db.tables[tbl]
	if !ok {
		return nil
	}
	rows := make([]core.Row, 0, len(t.rows))
	for _, row := range t.rows {
		rows = append(rows, row.Copy())
	}
	return rows
}

func (db *DB) check(tbl, op string) (*table, error) {
	if err, ok := db.failures[tbl+"."+op]; ok {
		return nil, core.NewRemoteError(tbl, op, err)
	}
	t, ok := db.tables[tbl]
	if !ok {
		return nil, core.NewRemoteError(tbl, op, errors.Errorf("relation %q does not exist", tbl))
	}
	return t, nil
}

func (db *DB) Select(_ context.Context, q core.Query) ([]core.Row, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	t, err := db.check(q.Table, OpSelect)
	if err != nil {
		return nil, err
	}

	rows := make([]core.Row, 0)
	for _, row := range t.rows {
		if matches(row, q.Filters) {
			rows = append(rows, row)
		}
	}

	if len(q.Order) > 0 {
		sort.SliceStable(rows, func(i, j int) bool {
			for _, ord := range q.Order {
				a, b := rows[i][ord.Field], rows[j][ord.Field]
				// nulls sort last in both directions
				if (a == nil) != (b == nil) {
					return b == nil
				}
				c := compare(a, b)
				if c == 0 {
					continue
				}
				if ord.Ascending {
					return c < 0
				}
				return c > 0
			}
			return false
		})
	}

	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}

	res := make([]core.Row, 0, len(rows))
	for _, row := range rows {
		res = append(res, project(row, q.Columns))
	}
	return res, nil
}

func (db *DB) SelectOne(ctx context.Context, q core.Query) (core.Row, error) {
	q.Limit = 0
	rows, err := db.Select(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(rows) != 1 {
		return nil, core.ErrNotFound
	}
	return rows[0], nil
}

func (db *DB) Insert(_ context.Context, tbl string, row core.Row) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	t, err := db.check(tbl, OpInsert)
	if err != nil {
		return err
	}

	row = row.Copy()
	t.pkSeq++
	if !row.Has("id") {
		row["id"] = t.pkSeq
	} else {
		for _, existing := range t.rows {
			if fmt.Sprint(existing["id"]) == fmt.Sprint(row["id"]) {
				return core.NewRemoteError(tbl, OpInsert, errors.Errorf("duplicate key value id=%v", row["id"]))
			}
		}
	}
	if !row.Has("created_at") {
		row["created_at"] = core.NowFunc().UTC()
	}
	t.rows = append(t.rows, row)
	return nil
}

func (db *DB) Update(_ context.Context, tbl string, values core.Row, filters ...core.Filter) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	t, err := db.check(tbl, OpUpdate)
	if err != nil {
		return err
	}
	for _, row := range t.rows {
		if !matches(row, filters) {
			continue
		}
		for col, val := range values {
			row[col] = val
		}
	}
	return nil
}

func matches(row core.Row, filters []core.Filter) bool {
	for _, f := range filters {
		val, ok := row[f.Column]
		if !ok || val == nil || f.Value == nil {
			return false
		}
		if fmt.Sprint(val) != fmt.Sprint(f.Value) {
			return false
		}
	}
	return true
}

func project(row core.Row, columns []string) core.Row {
	if len(columns) == 0 {
		return row.Copy()
	}
	res := make(core.Row, len(columns))
	for _, col := range columns {
		if val, ok := row[col]; ok {
			res[col] = val
		}
	}
	return res
}

// compare orders numbers numerically, times chronologically and everything else as text.
// Text holding digits is still text: "10" < "9".
func compare(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	if isNumber(a) && isNumber(b) {
		af, bf := cast.ToFloat64(a), cast.ToFloat64(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func isNumber(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}
