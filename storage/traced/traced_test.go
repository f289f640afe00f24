package traced_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/trezcool/lophoc/core"
	inmemdb "github.com/trezcool/lophoc/storage/inmem"
	"github.com/trezcool/lophoc/storage/traced"
)

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestTables(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	db := inmemdb.NewDB()
	tables := traced.New(db, tp)
	ctx := context.Background()

	require.NoError(t, tables.Insert(ctx, core.TableStudents, core.Row{"id": "HS001", "full_name": "Nguyễn Văn An"}))
	rows, err := tables.Select(ctx, core.From(core.TableStudents).Where("id", "HS001"))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	_, err = tables.SelectOne(ctx, core.From(core.TableStudents).Where("id", "HS404"))
	assert.True(t, core.IsNotFound(err))

	boom := errors.New("connection reset")
	db.Fail(core.TableStudents, inmemdb.OpUpdate, boom)
	err = tables.Update(ctx, core.TableStudents, core.Row{"notes": "x"}, core.Eq("id", "HS001"))
	assert.True(t, errors.Is(err, boom), "got %v", err)

	spans := rec.Ended()
	require.Len(t, spans, 4)

	names := make([]string, 0, len(spans))
	for _, s := range spans {
		names = append(names, s.Name())
		assert.Equal(t, core.TableStudents, attrs(s)["db.collection.name"].AsString())
	}
	assert.Equal(t, []string{"table.insert", "table.select", "table.select_one", "table.update"}, names)

	assert.Equal(t, int64(1), attrs(spans[1])["db.response.returned_rows"].AsInt64())
	assert.Equal(t, codes.Unset, spans[2].Status().Code, "not found is not an error")
	assert.Equal(t, codes.Error, spans[3].Status().Code)
	assert.Equal(t, int64(1), attrs(spans[3])["db.query.filters"].AsInt64())
}
