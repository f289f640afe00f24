package postgrest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/lophoc/core"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   map[string]interface{}
}

// fakePostgREST replies with status/body and records the last request.
func fakePostgREST(t *testing.T, status int, body string) (*Client, *recordedRequest) {
	t.Helper()
	rec := new(recordedRequest)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.Method = r.Method
		rec.Path = r.URL.Path
		rec.Query = r.URL.Query()
		rec.Header = r.Header.Clone()
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &rec.Body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	conf := core.SupabaseConfig{URL: srv.URL + "/", AnonKey: "anon-key", Schema: "public"}
	return NewClientWithHTTP(conf, srv.Client()), rec
}

func TestClient_Select(t *testing.T) {
	client, rec := fakePostgREST(t, http.StatusOK, `[{"id":"HS001","avg_quality_score":4.5,"status":"Đang học"}]`)

	q := core.From(core.TableWeeklyPlans).
		Where("status", "Hoạt động").
		Where("week_number", 3).
		OrderBy(core.Asc("week_number"), core.Desc("id")).
		Take(5)
	rows, err := client.Select(context.Background(), q)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	assert.Equal(t, http.MethodGet, rec.Method)
	assert.Equal(t, "/rest/v1/weekly_plans", rec.Path)
	assert.Equal(t, "*", rec.Query.Get("select"))
	assert.Equal(t, "eq.Hoạt động", rec.Query.Get("status"))
	assert.Equal(t, "eq.3", rec.Query.Get("week_number"))
	assert.Equal(t, "week_number.asc,id.desc", rec.Query.Get("order"))
	assert.Equal(t, "5", rec.Query.Get("limit"))
	assert.Equal(t, "anon-key", rec.Header.Get("apikey"))
	assert.Equal(t, "Bearer anon-key", rec.Header.Get("Authorization"))
	assert.Equal(t, "public", rec.Header.Get("Accept-Profile"))

	if assert.Len(t, rows, 1) {
		assert.Equal(t, "HS001", rows[0].String("id"))
		assert.Equal(t, 4.5, rows[0].Float("avg_quality_score"))
	}
}

func TestClient_Select_Columns(t *testing.T) {
	client, rec := fakePostgREST(t, http.StatusOK, `[]`)

	rows, err := client.Select(context.Background(), core.From(core.TableStudents).Select("status", "avg_quality_score"))
	assert.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.Equal(t, "status,avg_quality_score", rec.Query.Get("select"))
	assert.Equal(t, "", rec.Query.Get("limit"))
}

func TestClient_SelectOne(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantID       string
		wantNotFound bool
		wantRemote   bool
	}{
		{name: "one row", status: http.StatusOK, body: `{"id":"HS001","full_name":"Nguyễn Văn An"}`, wantID: "HS001"},
		{
			name: "no rows", status: http.StatusNotAcceptable, wantNotFound: true,
			body: `{"code":"PGRST116","details":"The result contains 0 rows","hint":null,"message":"JSON object requested, multiple (or no) rows returned"}`,
		},
		{name: "406 without body", status: http.StatusNotAcceptable, body: ``, wantNotFound: true},
		{
			name: "bad column", status: http.StatusBadRequest, wantRemote: true,
			body: `{"code":"42703","details":null,"hint":null,"message":"column students.nope does not exist"}`,
		},
		{name: "server error", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, wantRemote: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, rec := fakePostgREST(t, tt.status, tt.body)

			row, err := client.SelectOne(context.Background(), core.From(core.TableStudents).Where("id", "HS001"))
			assert.Equal(t, singleObjectMediaType, rec.Header.Get("Accept"))
			assert.Equal(t, "eq.HS001", rec.Query.Get("id"))

			switch {
			case tt.wantNotFound:
				assert.True(t, core.IsNotFound(err), "got %v", err)
			case tt.wantRemote:
				var remoteErr *core.RemoteError
				if assert.True(t, errors.As(err, &remoteErr), "got %v", err) {
					assert.Equal(t, core.TableStudents, remoteErr.Table)
					assert.Equal(t, "select", remoteErr.Op)
				}
				assert.False(t, core.IsNotFound(err))
			default:
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, row.String("id"))
			}
		})
	}
}

func TestClient_Select_ErrorMessage(t *testing.T) {
	client, _ := fakePostgREST(t, http.StatusUnauthorized, `{"code":"PGRST301","message":"JWT expired"}`)

	_, err := client.Select(context.Background(), core.From(core.TableNotifications))
	assert.EqualError(t, err, "select notifications: PGRST301: JWT expired")
}

func TestClient_Insert(t *testing.T) {
	client, rec := fakePostgREST(t, http.StatusCreated, ``)

	err := client.Insert(context.Background(), core.TableScores, core.Row{
		"student_id": "HS001",
		"points":     8,
		"score_type": "Điểm cộng",
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, "/rest/v1/scores", rec.Path)
	assert.Equal(t, "return=minimal", rec.Header.Get("Prefer"))
	assert.Equal(t, "application/json", rec.Header.Get("Content-Type"))
	assert.Equal(t, "public", rec.Header.Get("Content-Profile"))
	assert.Equal(t, map[string]interface{}{"student_id": "HS001", "points": 8.0, "score_type": "Điểm cộng"}, rec.Body)
}

func TestClient_Insert_Conflict(t *testing.T) {
	client, _ := fakePostgREST(t, http.StatusConflict,
		`{"code":"23503","details":"Key (student_id)=(HS404) is not present in table \"students\".","message":"insert or update on table \"scores\" violates foreign key constraint"}`)

	err := client.Insert(context.Background(), core.TableScores, core.Row{"student_id": "HS404"})
	var remoteErr *core.RemoteError
	if assert.True(t, errors.As(err, &remoteErr)) {
		assert.Contains(t, remoteErr.Error(), "violates foreign key constraint")
		assert.Contains(t, remoteErr.Error(), "HS404")
	}
}

func TestClient_Update(t *testing.T) {
	client, rec := fakePostgREST(t, http.StatusNoContent, ``)

	err := client.Update(context.Background(), core.TableUsers,
		core.Row{"last_login": "2024-09-05T07:30:00Z"},
		core.Eq("id", 42))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	assert.Equal(t, http.MethodPatch, rec.Method)
	assert.Equal(t, "/rest/v1/users", rec.Path)
	assert.Equal(t, "eq.42", rec.Query.Get("id"))
	assert.Equal(t, "", rec.Query.Get("select"))
	assert.Equal(t, map[string]interface{}{"last_login": "2024-09-05T07:30:00Z"}, rec.Body)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClientWithHTTP(core.SupabaseConfig{URL: srv.URL, AnonKey: "k"}, http.DefaultClient)

	_, err := client.Select(context.Background(), core.From(core.TableStudents))
	var remoteErr *core.RemoteError
	assert.True(t, errors.As(err, &remoteErr), "got %v", err)
}

func TestClient_CanceledContext(t *testing.T) {
	client, rec := fakePostgREST(t, http.StatusOK, `[]`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Select(ctx, core.From(core.TableStudents))
	var remoteErr *core.RemoteError
	if assert.True(t, errors.As(err, &remoteErr), "got %v", err) {
		assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	}
	assert.Empty(t, rec.Method, "the request must not reach the server")
}
