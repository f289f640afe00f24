package localstore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lophoc/core"
	"github.com/trezcool/lophoc/core/calendar"
	"github.com/trezcool/lophoc/core/user"
	localstore "github.com/trezcool/lophoc/storage/local"
)

func openStore(t *testing.T, path string) *localstore.Store {
	t.Helper()
	store, err := localstore.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_Sessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.db")
	store := openStore(t, path)
	ctx := context.Background()

	_, err := store.GetSession(ctx, "missing")
	assert.True(t, core.IsNotFound(err), "got %v", err)

	created := time.Date(2024, 9, 5, 7, 30, 0, 123456789, time.UTC)
	teacher := user.Session{
		ID:        "s-1",
		User:      user.User{ID: "u-teacher", Email: "gv.lan@lophoc.test", Name: "Cô Lan", Role: user.RoleTeacher},
		CreatedAt: created,
	}
	student := user.Session{
		ID:        "s-2",
		User:      user.User{ID: "HS001", Role: user.RoleStudent},
		CreatedAt: created,
	}
	require.NoError(t, store.SaveSession(ctx, teacher))
	require.NoError(t, store.SaveSession(ctx, student))

	got, err := store.GetSession(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, teacher, got)

	got, err = store.GetSession(ctx, "s-2")
	require.NoError(t, err)
	assert.Equal(t, student, got)
	assert.True(t, got.IsAuthenticated())

	teacher.User.Name = "Cô Lan Anh"
	require.NoError(t, store.SaveSession(ctx, teacher))

	// sessions outlive the process
	require.NoError(t, store.Close())
	store = openStore(t, path)

	got, err = store.GetSession(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Cô Lan Anh", got.User.Name)

	require.NoError(t, store.DeleteSession(ctx, "s-1"))
	require.NoError(t, store.DeleteSession(ctx, "s-1"))
	_, err = store.GetSession(ctx, "s-1")
	assert.True(t, core.IsNotFound(err))
}

func TestStore_WeekStarts(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "local.db"))
	ctx := context.Background()

	starts, err := store.WeekStarts(ctx)
	require.NoError(t, err)
	assert.Empty(t, starts)

	require.NoError(t, store.SetWeekStart(ctx, 1, "2024-09-02"))
	require.NoError(t, store.SetWeekStart(ctx, 2, "2024-09-09"))
	require.NoError(t, store.SetWeekStart(ctx, 1, "2024-09-03"))
	require.NoError(t, store.DeleteWeekStart(ctx, 2))

	starts, err = store.WeekStarts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "2024-09-03"}, starts)
}

func TestStore_Calendar(t *testing.T) {
	svc := calendar.NewService(openStore(t, filepath.Join(t.TempDir(), "local.db")))
	ctx := context.Background()

	_, err := svc.SetStart(ctx, 3, "2024-09-16")
	require.NoError(t, err)

	got, err := svc.Week(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, calendar.WeekRange{Week: 3, Start: "2024-09-16", End: "2024-09-21", StartDisplay: "16/9/2024", EndDisplay: "21/9/2024"}, got)
}
