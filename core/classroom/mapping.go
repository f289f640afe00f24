package classroom

import (
	"time"

	"github.com/trezcool/lophoc/core"
)

func mapStudent(r core.Row) Student {
	dob := r.String("date_of_birth")
	if iso := core.ISODate(dob); iso != "" {
		dob = iso
	}
	return Student{
		ID:                 r.String("id"),
		FullName:           r.String("full_name"),
		DateOfBirth:        dob,
		Gender:             r.String("gender"),
		Email:              r.String("email"),
		Phone:              r.String("phone"),
		Address:            r.String("address"),
		TotalScore:         r.Float("total_score"),
		Status:             r.String("status"),
		Notes:              r.String("notes"),
		TotalStars:         r.Int("total_stars"),
		AvgQualityScore:    r.Float("avg_quality_score"),
		AvgCompetencyScore: r.Float("avg_competency_score"),
		ParentEmail:        r.String("parent_email"),
		ParentPhone:        r.String("parent_phone"),
	}
}

func mapScore(r core.Row) ScoreHistory {
	return ScoreHistory{
		Date:   core.FormatDisplayDate(r.String("score_date")),
		Type:   r.String("score_type"),
		Points: r.Float("points"),
		Reason: r.String("notes"),
	}
}

func mapStar(r core.Row) StarHistory {
	return StarHistory{
		Date:   core.FormatDisplayDate(r.String("award_date")),
		Type:   r.String("star_type"),
		Reason: r.String("reason"),
	}
}

func mapNotification(r core.Row) Notification {
	return Notification{
		ID:          r.String("id"),
		Title:       r.String("title"),
		Content:     r.String("content"),
		Type:        r.String("type"),
		CreatedDate: core.FormatDisplayDate(r.String("created_date")),
		CreatedTime: clock(r, "created_time"),
		CreatedBy:   r.String("created_by"),
		Status:      r.String("status"),
	}
}

func mapWeeklyPlan(r core.Row) WeeklyPlan {
	return WeeklyPlan{
		ID:                r.String("id"),
		Week:              r.Int("week_number"),
		DayOfWeek:         r.String("day_of_week"),
		Content:           r.String("content"),
		TimeSlot:          r.String("time_slot"),
		Location:          r.String("location"),
		ResponsiblePerson: r.String("responsible_person"),
		Status:            r.String("status"),
	}
}

func mapRows[T any](rows []core.Row, fn func(core.Row) T) []T {
	res := make([]T, 0, len(rows))
	for _, r := range rows {
		res = append(res, fn(r))
	}
	return res
}

// clock renders a time-of-day column; some drivers hand those back as time.Time.
func clock(r core.Row, col string) string {
	if t, ok := r[col].(time.Time); ok {
		return t.Format(core.TimeLayout)
	}
	return r.String(col)
}
