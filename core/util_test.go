package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFoldString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  Nguyễn Văn An ", want: "nguyen van an"},
		{in: "Đỗ Đức Minh", want: "do duc minh"},
		{in: "HS001", want: "hs001"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FoldString(tt.in))
		})
	}
}

func TestDates(t *testing.T) {
	tests := []struct {
		raw         string
		wantDisplay string
		wantISO     string
	}{
		{raw: "2024-09-05", wantDisplay: "5/9/2024", wantISO: "2024-09-05"},
		{raw: "2010-05-03T00:00:00Z", wantDisplay: "3/5/2010", wantISO: "2010-05-03"},
		{raw: "2024-12-31 08:15:00", wantDisplay: "31/12/2024", wantISO: "2024-12-31"},
		{raw: "next week", wantDisplay: "next week", wantISO: ""},
		{raw: "", wantDisplay: "", wantISO: ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.wantDisplay, FormatDisplayDate(tt.raw))
			assert.Equal(t, tt.wantISO, ISODate(tt.raw))
		})
	}
}

func TestRow(t *testing.T) {
	ts := time.Date(2024, 9, 5, 7, 30, 0, 0, time.UTC)
	r := Row{
		"id":         int64(7),
		"name":       []byte("Trần Thị Bình"),
		"score":      "4.50",
		"week":       "3.0",
		"created_at": ts,
		"day":        "2024-09-05",
		"notes":      nil,
	}

	assert.True(t, r.Has("id"))
	assert.False(t, r.Has("notes"))
	assert.False(t, r.Has("missing"))

	assert.Equal(t, "7", r.String("id"))
	assert.Equal(t, "Trần Thị Bình", r.String("name"))
	assert.Equal(t, "", r.String("notes"))
	assert.Equal(t, "2024-09-05T07:30:00Z", r.String("created_at"))

	assert.Equal(t, 4.5, r.Float("score"))
	assert.Equal(t, 0.0, r.Float("missing"))
	assert.Equal(t, 3, r.Int("week"))
	assert.Equal(t, 7, r.Int("id"))

	assert.Equal(t, ts, r.Time("created_at"))
	assert.Equal(t, 2024, r.Time("day").Year())
	assert.True(t, r.Time("notes").IsZero())
	assert.True(t, r.Time("name").IsZero())

	cp := r.Copy()
	cp["id"] = 8
	assert.Equal(t, 7, r.Int("id"))
}
