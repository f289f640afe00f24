package classroom

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/lophoc/core"
)

type ServiceInterface interface {
	Dashboard(ctx context.Context) (DashboardData, error)
	Students(ctx context.Context, filter StudentFilter) ([]Student, error)
	StudentDetail(ctx context.Context, id string) (StudentDetail, error)
	SaveScore(ctx context.Context, ns NewScore) error
	SaveAssessment(ctx context.Context, na NewAssessment) error
	SaveStar(ctx context.Context, ns NewStar) error
	WeeklyPlans(ctx context.Context, filter PlanFilter) ([]WeeklyPlan, error)
	SaveWeeklyPlan(ctx context.Context, np NewWeeklyPlan) error
	Notifications(ctx context.Context) ([]Notification, error)
	SaveNotification(ctx context.Context, nn NewNotification) error
}

// Service maps classroom intents onto table queries. It does no retries: every failure is logged then returned.
type Service struct {
	tables  core.TableService
	mailSvc core.EmailService // optional
	appName string
	loc     *time.Location
	logger  core.Logger
}

var _ ServiceInterface = (*Service)(nil)

func NewService(tables core.TableService, mailSvc core.EmailService, conf *core.Config, logger core.Logger) *Service {
	return &Service{
		tables:  tables,
		mailSvc: mailSvc,
		appName: conf.AppName,
		loc:     conf.Location(),
		logger:  logger,
	}
}

func (svc *Service) fail(err error, msg string) error {
	err = errors.Wrap(err, msg)
	if core.IsNotFound(err) {
		svc.logger.Debug(err.Error())
	} else {
		svc.logger.Error(err.Error(), err)
	}
	return err
}

// today is the submission date in the configured time zone.
func (svc *Service) today() string {
	return core.NowFunc().In(svc.loc).Format(core.DateLayout)
}

func actor(name string) string {
	if name = core.CleanString(name); name != "" {
		return name
	}
	return DefaultActor
}

// Dashboard runs its three reads concurrently. Any failure fails the whole snapshot;
// the reads are not consistent with each other.
func (svc *Service) Dashboard(ctx context.Context) (DashboardData, error) {
	var (
		students []core.Row
		notifs   []core.Row
		plans    []core.Row
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		students, err = svc.tables.Select(gctx, core.From(core.TableStudents).Select("status", "avg_quality_score"))
		return errors.Wrap(err, "selecting students")
	})
	g.Go(func() (err error) {
		notifs, err = svc.tables.Select(gctx, core.From(core.TableNotifications).
			OrderBy(core.Desc("created_at"), core.Desc("id")).
			Take(5))
		return errors.Wrap(err, "selecting notifications")
	})
	g.Go(func() (err error) {
		plans, err = svc.tables.Select(gctx, core.From(core.TableWeeklyPlans).
			Where("status", StatusActive).
			OrderBy(core.Asc("week_number"), core.Asc("id")).
			Take(5))
		return errors.Wrap(err, "selecting weekly plans")
	})
	if err := g.Wait(); err != nil {
		return DashboardData{}, svc.fail(err, "getting dashboard data")
	}

	var stats DashboardStats
	stats.TotalStudents = len(students)
	for _, s := range students {
		if s.String("status") == StudentStatusActive {
			stats.ActiveStudents++
		}
		if s.Has("avg_quality_score") && s.Float("avg_quality_score") >= HighPerformerThreshold {
			stats.HighPerformers++
		}
	}

	return DashboardData{
		Stats:               stats,
		RecentNotifications: mapRows(notifs, mapNotification),
		UpcomingPlans:       mapRows(plans, mapWeeklyPlan),
	}, nil
}

// Students lists the roster by ID. Search matches the name or the ID, ignoring case and diacritics.
func (svc *Service) Students(ctx context.Context, filter StudentFilter) ([]Student, error) {
	rows, err := svc.tables.Select(ctx, core.From(core.TableStudents).OrderBy(core.Asc("id")))
	if err != nil {
		return nil, svc.fail(err, "getting students")
	}

	students := mapRows(rows, mapStudent)
	term := core.FoldString(filter.Search)
	if term == "" {
		return students, nil
	}

	res := make([]Student, 0, len(students))
	for _, s := range students {
		if strings.Contains(core.FoldString(s.FullName), term) || strings.Contains(core.FoldString(s.ID), term) {
			res = append(res, s)
		}
	}
	return res, nil
}

// StudentDetail fails with core.ErrNotFound when the student does not exist.
func (svc *Service) StudentDetail(ctx context.Context, id string) (StudentDetail, error) {
	id = core.CleanString(id)
	row, err := svc.tables.SelectOne(ctx, core.From(core.TableStudents).Where("id", id))
	if err != nil {
		return StudentDetail{}, svc.fail(err, fmt.Sprintf("getting student %q", id))
	}

	scores, err := svc.tables.Select(ctx, core.From(core.TableScores).
		Where("student_id", id).
		OrderBy(core.Desc("score_date"), core.Desc("id")))
	if err != nil {
		return StudentDetail{}, svc.fail(err, "getting score history")
	}

	stars, err := svc.tables.Select(ctx, core.From(core.TableStarAwards).
		Where("student_id", id).
		OrderBy(core.Desc("award_date"), core.Desc("id")))
	if err != nil {
		return StudentDetail{}, svc.fail(err, "getting star history")
	}

	return StudentDetail{
		Student:      mapStudent(row),
		ScoreHistory: mapRows(scores, mapScore),
		StarHistory:  mapRows(stars, mapStar),
	}, nil
}

// SaveScore appends a score event dated today. Submitting twice creates two records.
func (svc *Service) SaveScore(ctx context.Context, ns NewScore) error {
	row := core.Row{
		"student_id":  core.CleanString(ns.StudentID),
		"score_date":  svc.today(),
		"score_type":  ns.Type,
		"points":      ns.Points,
		"notes":       ns.Notes,
		"status":      StatusActive,
		"graded_by":   actor(ns.GradedBy),
		"graded_time": core.NowFunc().UTC().Format(time.RFC3339),
	}
	if err := svc.tables.Insert(ctx, core.TableScores, row); err != nil {
		return svc.fail(err, "saving score")
	}
	return nil
}

// SaveAssessment stores the assessment in the table matching its kind.
func (svc *Service) SaveAssessment(ctx context.Context, na NewAssessment) error {
	if na.Kind == nil {
		return svc.fail(ErrUnknownAssessmentKind, "saving assessment")
	}

	table, column := na.Kind.target()
	row := core.Row{
		"student_id":      core.CleanString(na.StudentID),
		"assessment_date": svc.today(),
		column:            na.Kind.Category(),
		"score":           na.Score,
		"notes":           na.Notes,
		"status":          StatusActive,
		"assessed_by":     actor(na.AssessedBy),
		"assessed_time":   core.NowFunc().UTC().Format(time.RFC3339),
	}
	if err := svc.tables.Insert(ctx, table, row); err != nil {
		return svc.fail(err, fmt.Sprintf("saving %s assessment", na.Kind.Kind()))
	}
	return nil
}

func (svc *Service) SaveStar(ctx context.Context, ns NewStar) error {
	row := core.Row{
		"student_id":   core.CleanString(ns.StudentID),
		"award_date":   svc.today(),
		"star_type":    ns.Type,
		"reason":       ns.Reason,
		"week_number":  nil,
		"status":       StatusActive,
		"awarded_by":   actor(ns.AwardedBy),
		"awarded_time": core.NowFunc().UTC().Format(time.RFC3339),
	}
	if ns.Week > 0 {
		row["week_number"] = ns.Week
	}
	if err := svc.tables.Insert(ctx, core.TableStarAwards, row); err != nil {
		return svc.fail(err, "saving star")
	}
	return nil
}

// WeeklyPlans are ordered by week, then by insertion.
func (svc *Service) WeeklyPlans(ctx context.Context, filter PlanFilter) ([]WeeklyPlan, error) {
	q := core.From(core.TableWeeklyPlans).OrderBy(core.Asc("week_number"), core.Asc("id"))
	if filter.Week > 0 {
		q = q.Where("week_number", filter.Week)
	}
	rows, err := svc.tables.Select(ctx, q)
	if err != nil {
		return nil, svc.fail(err, "getting weekly plans")
	}
	return mapRows(rows, mapWeeklyPlan), nil
}

// SaveWeeklyPlan inserts the plan as given; there is no duplicate detection.
func (svc *Service) SaveWeeklyPlan(ctx context.Context, np NewWeeklyPlan) error {
	status := core.CleanString(np.Status)
	if status == "" {
		status = StatusActive
	}
	row := core.Row{
		"week_number":        np.Week,
		"day_of_week":        np.DayOfWeek,
		"content":            np.Content,
		"time_slot":          np.TimeSlot,
		"location":           np.Location,
		"responsible_person": np.ResponsiblePerson,
		"status":             status,
	}
	if err := svc.tables.Insert(ctx, core.TableWeeklyPlans, row); err != nil {
		return svc.fail(err, "saving weekly plan")
	}
	return nil
}

// Notifications are listed newest first.
func (svc *Service) Notifications(ctx context.Context) ([]Notification, error) {
	rows, err := svc.tables.Select(ctx, core.From(core.TableNotifications).
		OrderBy(core.Desc("created_at"), core.Desc("id")))
	if err != nil {
		return nil, svc.fail(err, "getting notifications")
	}
	return mapRows(rows, mapNotification), nil
}

// SaveNotification inserts the notification. Urgent ones are also mailed to the parents;
// mailing problems are logged and never fail the save.
func (svc *Service) SaveNotification(ctx context.Context, nn NewNotification) error {
	now := core.NowFunc().In(svc.loc)
	status := core.CleanString(nn.Status)
	if status == "" {
		status = StatusActive
	}
	n := Notification{
		Title:       nn.Title,
		Content:     nn.Content,
		Type:        core.CleanString(nn.Type, true /* lower */),
		CreatedDate: now.Format(core.DateLayout),
		CreatedTime: now.Format(core.TimeLayout),
		CreatedBy:   actor(nn.CreatedBy),
		Status:      status,
	}
	row := core.Row{
		"title":        n.Title,
		"content":      n.Content,
		"type":         n.Type,
		"created_date": n.CreatedDate,
		"created_time": n.CreatedTime,
		"created_by":   n.CreatedBy,
		"status":       n.Status,
	}
	if err := svc.tables.Insert(ctx, core.TableNotifications, row); err != nil {
		return svc.fail(err, "saving notification")
	}

	if n.IsUrgent() && svc.mailSvc != nil {
		n.CreatedDate = now.Format(core.DisplayDateLayout)
		svc.mailParents(ctx, n)
	}
	return nil
}
