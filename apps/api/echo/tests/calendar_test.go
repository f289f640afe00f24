package tests

import (
	"net/http"
	"testing"

	. "github.com/trezcool/lophoc/apps/api/echo"
	"github.com/trezcool/lophoc/core/calendar"
	"github.com/trezcool/lophoc/core/classroom"
	"github.com/trezcool/lophoc/tests"
)

func Test_calendarApi(t *testing.T) {
	a := setup(t)
	teacherToken := login(t, a, testutil.TeacherEmail, testutil.TeacherPassword)
	studentToken := login(t, a, testutil.StudentID, testutil.StudentDOB)

	week3 := calendar.WeekRange{Week: 3, Start: "2024-09-16", End: "2024-09-21", StartDisplay: "16/9/2024", EndDisplay: "21/9/2024"}

	run(t, a, []httpTest{
		{name: "no weeks yet", method: http.MethodGet, path: "/v1/calendar/weeks", token: studentToken, wantCode: http.StatusOK, wantData: []byte(`[]`)},
		{
			name: "student cannot set", method: http.MethodPut, path: "/v1/calendar/weeks/3", token: studentToken,
			body: marshalObj(t, WeekStartRequest{StartDate: "2024-09-16"}), wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden),
		},
		{
			name: "bad date", method: http.MethodPut, path: "/v1/calendar/weeks/3", token: teacherToken,
			body:     marshalObj(t, WeekStartRequest{StartDate: "16/09/2024"}),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"start_date": "start_date must be a date formatted as YYYY-MM-DD"}`),
		},
		{
			name: "week out of range", method: http.MethodPut, path: "/v1/calendar/weeks/36", token: teacherToken,
			body: marshalObj(t, WeekStartRequest{StartDate: "2024-09-16"}), wantCode: http.StatusBadRequest,
		},
		{
			name: "week not a number", method: http.MethodGet, path: "/v1/calendar/weeks/three", token: teacherToken,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"week": "week must be a number"}`),
		},
		{
			name: "set", method: http.MethodPut, path: "/v1/calendar/weeks/3", token: teacherToken,
			body: marshalObj(t, WeekStartRequest{StartDate: "2024-09-16"}), wantCode: http.StatusOK, wantData: marshalObj(t, week3),
		},
		{name: "get", method: http.MethodGet, path: "/v1/calendar/weeks/3", token: studentToken, wantCode: http.StatusOK, wantData: marshalObj(t, week3)},
		{name: "list", method: http.MethodGet, path: "/v1/calendar/weeks", token: studentToken, wantCode: http.StatusOK, wantData: marshalObj(t, []calendar.WeekRange{week3})},
		{
			name: "clear", method: http.MethodPut, path: "/v1/calendar/weeks/3", token: teacherToken,
			body: []byte(`{"start_date": ""}`), wantCode: http.StatusOK, wantData: marshalObj(t, calendar.WeekRange{Week: 3}),
		},
		{name: "list after clear", method: http.MethodGet, path: "/v1/calendar/weeks", token: studentToken, wantCode: http.StatusOK, wantData: []byte(`[]`)},
	})
}

func Test_systemApi(t *testing.T) {
	a := setup(t)
	teacherToken := login(t, a, testutil.TeacherEmail, testutil.TeacherPassword)
	studentToken := login(t, a, testutil.StudentID, testutil.StudentDOB)

	info := SystemInfo{
		AppName:    "Lop Hoc",
		Env:        "TEST",
		Backend:    "inmem",
		BackendURL: "memory",
		Timezone:   "Asia/Ho_Chi_Minh",
		FirstWeek:  1,
		LastWeek:   35,
		Vocabulary: classroom.FormVocabulary(),
	}
	run(t, a, []httpTest{
		{name: "student", method: http.MethodGet, path: "/v1/system", token: studentToken, wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden)},
		{name: "teacher", method: http.MethodGet, path: "/v1/system", token: teacherToken, wantCode: http.StatusOK, wantData: marshalObj(t, info)},
	})
}
