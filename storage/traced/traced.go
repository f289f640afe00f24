// Package traced wraps a core.TableService with OpenTelemetry spans.
package traced

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/trezcool/lophoc/core"
)

const instrumentationName = "github.com/trezcool/lophoc/storage/traced"

type Tables struct {
	next   core.TableService
	tracer trace.Tracer
}

var _ core.TableService = (*Tables)(nil)

// New uses the global tracer provider when tp is nil.
func New(next core.TableService, tp trace.TracerProvider) *Tables {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tables{next: next, tracer: tp.Tracer(instrumentationName)}
}

func (t *Tables) start(ctx context.Context, op, table string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("db.collection.name", table), attribute.String("db.operation.name", op))
	return t.tracer.Start(ctx, "table."+op, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

// end records err on span. A not-found lookup is not an error.
func end(span trace.Span, err error) {
	if err != nil && !core.IsNotFound(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (t *Tables) Select(ctx context.Context, q core.Query) (rows []core.Row, err error) {
	ctx, span := t.start(ctx, "select", q.Table, attribute.Int("db.query.filters", len(q.Filters)))
	defer func() { end(span, err) }()

	rows, err = t.next.Select(ctx, q)
	span.SetAttributes(attribute.Int("db.response.returned_rows", len(rows)))
	return rows, err
}

func (t *Tables) SelectOne(ctx context.Context, q core.Query) (row core.Row, err error) {
	ctx, span := t.start(ctx, "select_one", q.Table, attribute.Int("db.query.filters", len(q.Filters)))
	defer func() { end(span, err) }()
	return t.next.SelectOne(ctx, q)
}

func (t *Tables) Insert(ctx context.Context, table string, row core.Row) (err error) {
	ctx, span := t.start(ctx, "insert", table)
	defer func() { end(span, err) }()
	return t.next.Insert(ctx, table, row)
}

func (t *Tables) Update(ctx context.Context, table string, values core.Row, filters ...core.Filter) (err error) {
	ctx, span := t.start(ctx, "update", table, attribute.Int("db.query.filters", len(filters)))
	defer func() { end(span, err) }()
	return t.next.Update(ctx, table, values, filters...)
}
