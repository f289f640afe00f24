package core

import "context"

// Table names
const (
	TableUsers                 = "users"
	TableStudents              = "students"
	TableScores                = "scores"
	TableQualityAssessments    = "quality_assessments"
	TableCompetencyAssessments = "competency_assessments"
	TableStarAwards            = "star_awards"
	TableWeeklyPlans           = "weekly_plans"
	TableNotifications         = "notifications"
)

var Tables = []string{
	TableUsers,
	TableStudents,
	TableScores,
	TableQualityAssessments,
	TableCompetencyAssessments,
	TableStarAwards,
	TableWeeklyPlans,
	TableNotifications,
}

type (
	// TableService is a generic query API over named tables.
	// It is the only thing the data access layer talks to.
	TableService interface {
		Select(ctx context.Context, q Query) ([]Row, error)
		// SelectOne fails with ErrNotFound unless exactly one row matches.
		SelectOne(ctx context.Context, q Query) (Row, error)
		Insert(ctx context.Context, table string, row Row) error
		Update(ctx context.Context, table string, values Row, filters ...Filter) error
	}

	Query struct {
		Table   string
		Columns []string // empty means all
		Filters []Filter
		Order   []DBOrdering
		Limit   int // 0 means no limit
	}

	// Filter is an equality predicate.
	Filter struct {
		Column string
		Value  interface{}
	}

	DBOrdering struct {
		Field     string
		Ascending bool
	}
)

func Eq(column string, value interface{}) Filter {
	return Filter{Column: column, Value: value}
}

func Asc(field string) DBOrdering  { return DBOrdering{Field: field, Ascending: true} }
func Desc(field string) DBOrdering { return DBOrdering{Field: field} }

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// From starts a query on table.
func From(table string) Query {
	return Query{Table: table}
}

func (q Query) Select(columns ...string) Query {
	q.Columns = append([]string(nil), columns...)
	return q
}

func (q Query) Where(column string, value interface{}) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Eq(column, value))
	return q
}

func (q Query) OrderBy(ord ...DBOrdering) Query {
	q.Order = append(append([]DBOrdering(nil), q.Order...), ord...)
	return q
}

func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}
