// Package localstore keeps the client-side state (sessions, week start dates) in a local SQLite file.
package localstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lophoc/core"
	"github.com/trezcool/lophoc/core/calendar"
	"github.com/trezcool/lophoc/core/user"
	"github.com/trezcool/lophoc/storage/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL,
    email      TEXT,
    name       TEXT,
    role       TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS week_dates (
    week       INTEGER PRIMARY KEY,
    start_date TEXT NOT NULL
);
`

type Store struct {
	db *sqlx.DB
}

var (
	_ user.SessionStore  = (*Store)(nil)
	_ calendar.WeekStore = (*Store)(nil)
)

// Open opens the store file at path, creating it when needed.
func Open(path string) (*Store, error) {
	db, err := database.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	if _, err = db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "applying local schema")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type sessionRow struct {
	ID        string      `db:"id"`
	UserID    string      `db:"user_id"`
	Email     null.String `db:"email"`
	Name      null.String `db:"name"`
	Role      string      `db:"role"`
	CreatedAt string      `db:"created_at"`
}

func (s *Store) SaveSession(ctx context.Context, sess user.Session) error {
	row := sessionRow{
		ID:        sess.ID,
		UserID:    sess.User.ID,
		Email:     null.NewString(sess.User.Email, sess.User.Email != ""),
		Name:      null.NewString(sess.User.Name, sess.User.Name != ""),
		Role:      sess.User.Role,
		CreatedAt: sess.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	const q = `
		INSERT INTO sessions (id, user_id, email, name, role, created_at)
		VALUES (:id, :user_id, :email, :name, :role, :created_at)
		ON CONFLICT (id) DO UPDATE SET
			user_id = excluded.user_id,
			email = excluded.email,
			name = excluded.name,
			role = excluded.role,
			created_at = excluded.created_at`
	if _, err := s.db.NamedExecContext(ctx, q, row); err != nil {
		return errors.Wrap(err, "saving session")
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (user.Session, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM sessions WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return user.Session{}, core.ErrNotFound
	}
	if err != nil {
		return user.Session{}, errors.Wrap(err, "getting session")
	}

	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return user.Session{}, errors.Wrapf(err, "parsing session %q creation time", id)
	}
	return user.Session{
		ID: row.ID,
		User: user.User{
			ID:    row.UserID,
			Email: row.Email.String,
			Name:  row.Name.String,
			Role:  row.Role,
		},
		CreatedAt: createdAt,
	}, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return nil
}

func (s *Store) SetWeekStart(ctx context.Context, week int, start string) error {
	const q = `
		INSERT INTO week_dates (week, start_date) VALUES (?, ?)
		ON CONFLICT (week) DO UPDATE SET start_date = excluded.start_date`
	if _, err := s.db.ExecContext(ctx, q, week, start); err != nil {
		return errors.Wrapf(err, "saving week %d start", week)
	}
	return nil
}

func (s *Store) DeleteWeekStart(ctx context.Context, week int) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM week_dates WHERE week = ?", week); err != nil {
		return errors.Wrapf(err, "deleting week %d start", week)
	}
	return nil
}

func (s *Store) WeekStarts(ctx context.Context) (map[int]string, error) {
	var rows []struct {
		Week  int    `db:"week"`
		Start string `db:"start_date"`
	}
	if err := s.db.SelectContext(ctx, &rows, "SELECT week, start_date FROM week_dates"); err != nil {
		return nil, errors.Wrap(err, "listing week starts")
	}
	starts := make(map[int]string, len(rows))
	for _, r := range rows {
		starts[r.Week] = r.Start
	}
	return starts, nil
}
