package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/lophoc/apps/api/echo"
	"github.com/trezcool/lophoc/core"
	"github.com/trezcool/lophoc/core/classroom"
	emailsvc "github.com/trezcool/lophoc/services/email"
	inmemdb "github.com/trezcool/lophoc/storage/inmem"
	"github.com/trezcool/lophoc/tests"
)

func seedRoster(a app) {
	testutil.SeedStudents(a.db,
		core.Row{"id": "HS002", "full_name": "Trần Thị Bình", "status": classroom.StudentStatusActive, "avg_quality_score": 4.6},
		core.Row{"id": "HS003", "full_name": "Lê Minh Châu", "status": "Nghỉ học", "avg_quality_score": 3.1},
	)
}

func Test_classroomApi_read(t *testing.T) {
	a := setup(t)
	seedRoster(a)
	teacherToken := login(t, a, testutil.TeacherEmail, testutil.TeacherPassword)
	studentToken := login(t, a, testutil.StudentID, testutil.StudentDOB)

	t.Run("dashboard", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard", studentToken)
		a.ServeHTTP(rec, req)
		if !assert.Equal(t, http.StatusOK, rec.Code) {
			return
		}
		var data classroom.DashboardData
		if assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data)) {
			assert.Equal(t, classroom.DashboardStats{TotalStudents: 3, ActiveStudents: 2, HighPerformers: 1}, data.Stats)
			assert.Empty(t, data.RecentNotifications)
			assert.Empty(t, data.UpcomingPlans)
		}
	})

	listIDs := func(t *testing.T, path, token string) []string {
		req, rec := newAuthRequest(http.MethodGet, path, token)
		a.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		var students []classroom.Student
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &students))
		ids := make([]string, 0, len(students))
		for _, s := range students {
			ids = append(ids, s.ID)
		}
		return ids
	}

	t.Run("students", func(t *testing.T) {
		assert.Equal(t, []string{"HS001", "HS002", "HS003"}, listIDs(t, "/v1/students", teacherToken))
		assert.Equal(t, []string{"HS002"}, listIDs(t, "/v1/students?search=tran", teacherToken))
		assert.Equal(t, []string{"HS001"}, listIDs(t, "/v1/students", studentToken), "students only see themselves")
		assert.Equal(t, []string{}, listIDs(t, "/v1/students?search=binh", studentToken))
	})

	run(t, a, []httpTest{
		{name: "detail without token", method: http.MethodGet, path: "/v1/students/HS001", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "own detail", method: http.MethodGet, path: "/v1/students/HS001", token: studentToken, wantCode: http.StatusOK},
		{name: "someone else's detail", method: http.MethodGet, path: "/v1/students/HS002", token: studentToken, wantCode: http.StatusNotFound, wantData: marshalObj(t, errNotFound)},
		{name: "detail as teacher", method: http.MethodGet, path: "/v1/students/HS002", token: teacherToken, wantCode: http.StatusOK},
		{name: "unknown student", method: http.MethodGet, path: "/v1/students/HS404", token: teacherToken, wantCode: http.StatusNotFound, wantData: marshalObj(t, errNotFound)},
		{name: "plans", method: http.MethodGet, path: "/v1/plans?week=2", token: studentToken, wantCode: http.StatusOK, wantData: []byte(`[]`)},
		{name: "plans bad week", method: http.MethodGet, path: "/v1/plans?week=abc", token: studentToken, wantCode: http.StatusBadRequest},
		{name: "notifications", method: http.MethodGet, path: "/v1/notifications", token: studentToken, wantCode: http.StatusOK, wantData: []byte(`[]`)},
	})

	a.db.Fail(core.TableStudents, inmemdb.OpSelect, errors.New("timeout"))
	run(t, a, []httpTest{
		{name: "backend down", method: http.MethodGet, path: "/v1/students", token: teacherToken, wantCode: http.StatusInternalServerError, wantData: marshalObj(t, errServer)},
	})
}

func Test_classroomApi_write(t *testing.T) {
	a := setup(t)
	seedRoster(a)
	teacherToken := login(t, a, testutil.TeacherEmail, testutil.TeacherPassword)
	studentToken := login(t, a, testutil.StudentEmail, testutil.StudentPassword)

	score := marshalObj(t, classroom.NewScore{StudentID: "HS002", Type: "Điểm cộng", Points: 2})
	star := marshalObj(t, classroom.NewStar{StudentID: "HS002", Type: "Sao vàng", Week: 3, AwardedBy: "Thầy Hùng"})
	assessment := marshalObj(t, AssessmentRequest{StudentID: "HS002", Kind: "competency", Category: "Tự học", Score: 4})
	plan := marshalObj(t, classroom.NewWeeklyPlan{Week: 3, DayOfWeek: "Thứ 2", Content: "Chào cờ"})
	notif := marshalObj(t, classroom.NewNotification{Title: "Nghỉ học", Content: "Bão", Type: "URGENT", CreatedBy: "someone else", Status: "Hoàn thành"})

	run(t, a, []httpTest{
		{name: "student cannot score", method: http.MethodPost, path: "/v1/scores", body: score, token: studentToken, wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden)},
		{
			name: "score missing fields", method: http.MethodPost, path: "/v1/scores", body: []byte(`{"points": 1}`), token: teacherToken,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"student_id": "this field is required", "score_type": "this field is required"}`),
		},
		{name: "score", method: http.MethodPost, path: "/v1/scores", body: score, token: teacherToken, wantCode: http.StatusCreated},
		{name: "star", method: http.MethodPost, path: "/v1/stars", body: star, token: teacherToken, wantCode: http.StatusCreated},
		{
			name: "assessment unknown kind", method: http.MethodPost, path: "/v1/assessments", token: teacherToken,
			body:     marshalObj(t, AssessmentRequest{StudentID: "HS002", Kind: "behaviour", Category: "x"}),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"kind": "kind must be one of [quality competency]"}`),
		},
		{name: "assessment", method: http.MethodPost, path: "/v1/assessments", body: assessment, token: teacherToken, wantCode: http.StatusCreated},
		{name: "plan", method: http.MethodPost, path: "/v1/plans", body: plan, token: teacherToken, wantCode: http.StatusCreated},
		{name: "urgent notification", method: http.MethodPost, path: "/v1/notifications", body: notif, token: teacherToken, wantCode: http.StatusCreated},
	})

	scores := a.db.Rows(core.TableScores)
	if assert.Len(t, scores, 1) {
		assert.Equal(t, "Cô Lan", scores[0].String("graded_by"), "defaults to the session user")
	}
	stars := a.db.Rows(core.TableStarAwards)
	if assert.Len(t, stars, 1) {
		assert.Equal(t, "Thầy Hùng", stars[0].String("awarded_by"))
		assert.Equal(t, 3, stars[0].Int("week_number"))
	}
	competencies := a.db.Rows(core.TableCompetencyAssessments)
	if assert.Len(t, competencies, 1) {
		assert.Equal(t, "Tự học", competencies[0].String("competency_type"))
	}
	assert.Empty(t, a.db.Rows(core.TableQualityAssessments))
	assert.Len(t, a.db.Rows(core.TableWeeklyPlans), 1)

	notifs := a.db.Rows(core.TableNotifications)
	if assert.Len(t, notifs, 1) {
		assert.Equal(t, "Cô Lan", notifs[0].String("created_by"))
		assert.Equal(t, classroom.StatusActive, notifs[0].String("status"))
		assert.Equal(t, classroom.NotificationUrgent, notifs[0].String("type"))
	}
	sent := emailsvc.GetSentMessages()
	if assert.Len(t, sent, 1) {
		assert.Equal(t, "phuhuynh.an@lophoc.test", sent[0].To[0].Address)
	}
}
