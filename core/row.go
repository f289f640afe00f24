package core

import (
	"time"

	"github.com/spf13/cast"
)

// Row is a raw record as returned by a TableService, keyed by column name.
// Accessors are lenient: absent, null or unconvertible values give the zero value.
type Row map[string]interface{}

func (r Row) value(col string) interface{} {
	v, ok := r[col]
	if !ok || v == nil {
		return nil
	}
	if b, ok := v.([]byte); ok { // drivers may hand back numeric/text columns as bytes
		return string(b)
	}
	return v
}

func (r Row) Has(col string) bool {
	return r.value(col) != nil
}

func (r Row) String(col string) string {
	switch v := r.value(col).(type) {
	case nil:
		return ""
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return cast.ToString(v)
	}
}

func (r Row) Float(col string) float64 {
	return cast.ToFloat64(r.value(col))
}

func (r Row) Int(col string) int {
	v := r.value(col)
	if s, ok := v.(string); ok { // "3.0" from numeric columns
		return int(cast.ToFloat64(s))
	}
	return cast.ToInt(v)
}

func (r Row) Time(col string) time.Time {
	v := r.value(col)
	if v == nil {
		return time.Time{}
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Copy returns a shallow copy of the row.
func (r Row) Copy() Row {
	cp := make(Row, len(r))
	for k, v := range r {
		cp[k] = v
	}
	return cp
}
