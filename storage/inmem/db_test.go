package inmemdb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lophoc/core"
	inmemdb "github.com/trezcool/lophoc/storage/inmem"
)

func selectIDs(t *testing.T, db *inmemdb.DB, q core.Query) []string {
	t.Helper()
	rows, err := db.Select(context.Background(), q)
	require.NoError(t, err)
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.String("id"))
	}
	return ids
}

func TestDB_Select_Order(t *testing.T) {
	db := inmemdb.NewDB()
	db.Seed(core.TableStudents,
		core.Row{"id": "9", "full_name": "C", "total_score": 12},
		core.Row{"id": "10", "full_name": "A", "total_score": 9.5},
		core.Row{"id": "HS001", "full_name": "B"},
	)

	tests := []struct {
		name  string
		order []core.DBOrdering
		want  []string
	}{
		{name: "text ids are ordered as text", order: []core.DBOrdering{core.Asc("id")}, want: []string{"10", "9", "HS001"}},
		{name: "text ids desc", order: []core.DBOrdering{core.Desc("id")}, want: []string{"HS001", "9", "10"}},
		{name: "numbers asc, nulls last", order: []core.DBOrdering{core.Asc("total_score")}, want: []string{"10", "9", "HS001"}},
		{name: "numbers desc, nulls last", order: []core.DBOrdering{core.Desc("total_score")}, want: []string{"9", "10", "HS001"}},
		{name: "no order keeps insertion order", want: []string{"9", "10", "HS001"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := core.From(core.TableStudents).OrderBy(tt.order...)
			assert.Equal(t, tt.want, selectIDs(t, db, q))
		})
	}
}

func TestDB_Insert(t *testing.T) {
	db := inmemdb.NewDB()
	ctx := context.Background()

	require.NoError(t, db.Insert(ctx, core.TableScores, core.Row{"student_id": "HS001", "points": 2}))
	require.NoError(t, db.Insert(ctx, core.TableScores, core.Row{"student_id": "HS001", "points": 3}))
	assert.Equal(t, []string{"1", "2"}, selectIDs(t, db, core.From(core.TableScores).OrderBy(core.Asc("id"))))

	db.Seed(core.TableStudents, core.Row{"id": "HS001"})
	err := db.Insert(ctx, core.TableStudents, core.Row{"id": "HS001"})
	var remoteErr *core.RemoteError
	assert.ErrorAs(t, err, &remoteErr)

	_, err = db.Select(ctx, core.From("nope"))
	assert.ErrorAs(t, err, &remoteErr)
}
