package database

import (
	"context"
	"regexp"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/lophoc/core"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store runs table queries as SQL statements.
type Store struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
}

var _ core.TableService = (*Store)(nil)

func NewStore(db *sqlx.DB) *Store {
	var format sq.PlaceholderFormat = sq.Dollar
	if engineOf(db) == EngineSQLite {
		format = sq.Question
	}
	return &Store{db: db, builder: sq.StatementBuilder.PlaceholderFormat(format)}
}

func quote(ident string) (string, error) {
	if !identRe.MatchString(ident) {
		return "", errors.Errorf("invalid identifier %q", ident)
	}
	return `"` + ident + `"`, nil
}

func where(filters []core.Filter) (sq.Eq, error) {
	eq := make(sq.Eq, len(filters))
	for _, f := range filters {
		col, err := quote(f.Column)
		if err != nil {
			return nil, err
		}
		eq[col] = f.Value
	}
	return eq, nil
}

func setMap(row core.Row) (map[string]interface{}, error) {
	clauses := make(map[string]interface{}, len(row))
	for k, v := range row {
		col, err := quote(k)
		if err != nil {
			return nil, err
		}
		clauses[col] = v
	}
	return clauses, nil
}

func (s *Store) selectBuilder(q core.Query) (sq.SelectBuilder, error) {
	table, err := quote(q.Table)
	if err != nil {
		return sq.SelectBuilder{}, err
	}

	cols := []string{"*"}
	if len(q.Columns) > 0 {
		cols = make([]string, 0, len(q.Columns))
		for _, c := range q.Columns {
			col, err := quote(c)
			if err != nil {
				return sq.SelectBuilder{}, err
			}
			cols = append(cols, col)
		}
	}

	eq, err := where(q.Filters)
	if err != nil {
		return sq.SelectBuilder{}, err
	}
	b := s.builder.Select(cols...).From(table)
	if len(eq) > 0 {
		b = b.Where(eq)
	}

	for _, ord := range q.Order {
		field, err := quote(ord.Field)
		if err != nil {
			return sq.SelectBuilder{}, err
		}
		// nulls sort last in both directions
		b = b.OrderBy(field+" IS NULL", core.DBOrdering{Field: field, Ascending: ord.Ascending}.String())
	}
	if q.Limit > 0 {
		b = b.Limit(uint64(q.Limit))
	}
	return b, nil
}

func (s *Store) Select(ctx context.Context, q core.Query) ([]core.Row, error) {
	b, err := s.selectBuilder(q)
	if err != nil {
		return nil, core.NewRemoteError(q.Table, "select", err)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, core.NewRemoteError(q.Table, "select", errors.Wrap(err, "building query"))
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, core.NewRemoteError(q.Table, "select", err)
	}
	defer func() { _ = rows.Close() }()

	res := make([]core.Row, 0)
	for rows.Next() {
		row := make(core.Row)
		if err = rows.MapScan(row); err != nil {
			return nil, core.NewRemoteError(q.Table, "select", errors.Wrap(err, "scanning row"))
		}
		res = append(res, row)
	}
	if err = rows.Err(); err != nil {
		return nil, core.NewRemoteError(q.Table, "select", err)
	}
	return res, nil
}

func (s *Store) SelectOne(ctx context.Context, q core.Query) (core.Row, error) {
	q.Limit = 2
	rows, err := s.Select(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(rows) != 1 {
		return nil, core.ErrNotFound
	}
	return rows[0], nil
}

func (s *Store) Insert(ctx context.Context, table string, row core.Row) error {
	tbl, err := quote(table)
	if err != nil {
		return core.NewRemoteError(table, "insert", err)
	}
	clauses, err := setMap(row)
	if err != nil {
		return core.NewRemoteError(table, "insert", err)
	}
	query, args, err := s.builder.Insert(tbl).SetMap(clauses).ToSql()
	if err != nil {
		return core.NewRemoteError(table, "insert", errors.Wrap(err, "building query"))
	}
	if _, err = s.db.ExecContext(ctx, query, args...); err != nil {
		return core.NewRemoteError(table, "insert", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, table string, values core.Row, filters ...core.Filter) error {
	tbl, err := quote(table)
	if err != nil {
		return core.NewRemoteError(table, "update", err)
	}
	clauses, err := setMap(values)
	if err != nil {
		return core.NewRemoteError(table, "update", err)
	}
	eq, err := where(filters)
	if err != nil {
		return core.NewRemoteError(table, "update", err)
	}
	b := s.builder.Update(tbl).SetMap(clauses)
	if len(eq) > 0 {
		b = b.Where(eq)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return core.NewRemoteError(table, "update", errors.Wrap(err, "building query"))
	}
	if _, err = s.db.ExecContext(ctx, query, args...); err != nil {
		return core.NewRemoteError(table, "update", err)
	}
	return nil
}
