package calendar_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/lophoc/core"
	"github.com/trezcool/lophoc/core/calendar"
	inmemdb "github.com/trezcool/lophoc/storage/inmem"
)

func TestService_SetStart(t *testing.T) {
	svc := calendar.NewService(inmemdb.NewWeekStore())
	ctx := context.Background()

	tests := []struct {
		name    string
		week    int
		date    string
		want    calendar.WeekRange
		wantErr error
	}{
		{name: "week 0", week: 0, date: "2024-09-02", wantErr: calendar.ErrInvalidWeek},
		{name: "week 36", week: 36, date: "2024-09-02", wantErr: calendar.ErrInvalidWeek},
		{name: "bad date", week: 1, date: "02/09/2024", wantErr: errors.New("start date must be formatted as YYYY-MM-DD")},
		{
			name: "first week", week: 1, date: "2024-09-02",
			want: calendar.WeekRange{Week: 1, Start: "2024-09-02", End: "2024-09-07", StartDisplay: "2/9/2024", EndDisplay: "7/9/2024"},
		},
		{
			name: "across a month", week: 35, date: " 2025-05-26 ",
			want: calendar.WeekRange{Week: 35, Start: "2025-05-26", End: "2025-05-31", StartDisplay: "26/5/2025", EndDisplay: "31/5/2025"},
		},
		{
			name: "across a year", week: 17, date: "2024-12-30",
			want: calendar.WeekRange{Week: 17, Start: "2024-12-30", End: "2025-01-04", StartDisplay: "30/12/2024", EndDisplay: "4/1/2025"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.SetStart(ctx, tt.week, tt.date)
			if tt.wantErr != nil {
				verr, ok := errors.Cause(err).(*core.ValidationError)
				if !ok {
					t.Fatalf("SetStart() error = %v, want ValidationError", err)
				}
				assert.Equal(t, tt.wantErr.Error(), verr.Error())
				return
			}
			if err != nil {
				t.Fatalf("SetStart() error = %v", err)
			}
			assert.Equal(t, tt.want, got)

			week, err := svc.Week(ctx, tt.week)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, week)
		})
	}
}

func TestService_Weeks(t *testing.T) {
	svc := calendar.NewService(inmemdb.NewWeekStore())
	ctx := context.Background()

	// unset weeks are zero ranges, not errors
	w, err := svc.Week(ctx, 4)
	assert.NoError(t, err)
	assert.Equal(t, calendar.WeekRange{Week: 4}, w)
	assert.False(t, w.IsSet())

	for week, date := range map[int]string{10: "2024-11-11", 2: "2024-09-09", 7: "2024-10-21"} {
		if _, err := svc.SetStart(ctx, week, date); err != nil {
			t.Fatalf("SetStart() error = %v", err)
		}
	}

	weeks, err := svc.Weeks(ctx)
	if err != nil {
		t.Fatalf("Weeks() error = %v", err)
	}
	var got []int
	for _, r := range weeks {
		got = append(got, r.Week)
	}
	assert.Equal(t, []int{2, 7, 10}, got)

	// clearing
	cleared, err := svc.SetStart(ctx, 7, "")
	assert.NoError(t, err)
	assert.False(t, cleared.IsSet())
	weeks, _ = svc.Weeks(ctx)
	assert.Len(t, weeks, 2)
}
