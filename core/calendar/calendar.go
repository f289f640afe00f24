package calendar

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/lophoc/core"
)

const (
	FirstWeek = 1
	LastWeek  = 35

	// a school week runs Monday to Saturday
	weekSpan = 5 * 24 * time.Hour
)

var ErrInvalidWeek = errors.Errorf("week must be between %d and %d", FirstWeek, LastWeek)

type (
	// WeekStore keeps the start date chosen for each week. Entries never expire.
	WeekStore interface {
		SetWeekStart(ctx context.Context, week int, start string) error
		DeleteWeekStart(ctx context.Context, week int) error
		// WeekStarts returns {week: YYYY-MM-DD}.
		WeekStarts(ctx context.Context) (map[int]string, error)
	}

	// WeekRange is the zero range (empty dates) when the week has no start date.
	WeekRange struct {
		Week         int    `json:"week"`
		Start        string `json:"start_date"` // YYYY-MM-DD
		End          string `json:"end_date"`   // YYYY-MM-DD
		StartDisplay string `json:"start_display"`
		EndDisplay   string `json:"end_display"`
	}

	ServiceInterface interface {
		SetStart(ctx context.Context, week int, date string) (WeekRange, error)
		Week(ctx context.Context, week int) (WeekRange, error)
		Weeks(ctx context.Context) ([]WeekRange, error)
	}

	Service struct {
		store WeekStore
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(store WeekStore) *Service {
	return &Service{store: store}
}

func (r WeekRange) IsSet() bool { return r.Start != "" }

func newWeekRange(week int, start time.Time) WeekRange {
	end := start.Add(weekSpan)
	return WeekRange{
		Week:         week,
		Start:        start.Format(core.DateLayout),
		End:          end.Format(core.DateLayout),
		StartDisplay: start.Format(core.DisplayDateLayout),
		EndDisplay:   end.Format(core.DisplayDateLayout),
	}
}

func checkWeek(week int) error {
	if week < FirstWeek || week > LastWeek {
		return core.NewValidationError(ErrInvalidWeek, core.FieldError{Field: "week", Error: ErrInvalidWeek.Error()})
	}
	return nil
}

// SetStart records the first day of week. An empty date clears it.
func (svc *Service) SetStart(ctx context.Context, week int, date string) (WeekRange, error) {
	if err := checkWeek(week); err != nil {
		return WeekRange{}, err
	}

	date = core.CleanString(date)
	if date == "" {
		if err := svc.store.DeleteWeekStart(ctx, week); err != nil {
			return WeekRange{}, errors.Wrap(err, "clearing week start")
		}
		return WeekRange{Week: week}, nil
	}

	start, err := time.Parse(core.DateLayout, date)
	if err != nil {
		msg := "start date must be formatted as YYYY-MM-DD"
		return WeekRange{}, core.NewValidationError(errors.New(msg), core.FieldError{Field: "start_date", Error: msg})
	}
	if err = svc.store.SetWeekStart(ctx, week, start.Format(core.DateLayout)); err != nil {
		return WeekRange{}, errors.Wrap(err, "saving week start")
	}
	return newWeekRange(week, start), nil
}

func (svc *Service) Week(ctx context.Context, week int) (WeekRange, error) {
	if err := checkWeek(week); err != nil {
		return WeekRange{}, err
	}
	starts, err := svc.store.WeekStarts(ctx)
	if err != nil {
		return WeekRange{}, errors.Wrap(err, "getting week starts")
	}
	return rangeOf(week, starts[week]), nil
}

// Weeks lists the weeks having a start date, in week order.
func (svc *Service) Weeks(ctx context.Context) ([]WeekRange, error) {
	starts, err := svc.store.WeekStarts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "getting week starts")
	}

	weeks := make([]int, 0, len(starts))
	for w := range starts {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)

	res := make([]WeekRange, 0, len(weeks))
	for _, w := range weeks {
		if r := rangeOf(w, starts[w]); r.IsSet() {
			res = append(res, r)
		}
	}
	return res, nil
}

func rangeOf(week int, start string) WeekRange {
	t, err := time.Parse(core.DateLayout, start)
	if err != nil {
		return WeekRange{Week: week}
	}
	return newWeekRange(week, t)
}
