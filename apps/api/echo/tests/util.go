package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	. "github.com/trezcool/lophoc/apps/api/echo"
	"github.com/trezcool/lophoc/core"
	"github.com/trezcool/lophoc/core/calendar"
	"github.com/trezcool/lophoc/core/classroom"
	"github.com/trezcool/lophoc/core/user"
	emailsvc "github.com/trezcool/lophoc/services/email"
	inmemdb "github.com/trezcool/lophoc/storage/inmem"
	"github.com/trezcool/lophoc/tests"
)

var (
	conf = &core.Config{
		AppName:            "Lop Hoc",
		Env:                "TEST",
		TestMode:           true,
		SecretKey:          "test-secret",
		JWTExpirationDelta: time.Hour,
		Timezone:           "Asia/Ho_Chi_Minh",
		Backend:            core.BackendInMemory,
		DefaultFromEmail:   "noreply@lophoc.test",
	}

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errInvalidToken = httpErr{Error: "invalid or expired jwt"}
	errNotAuthed    = httpErr{Error: "user not authenticated"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
	errServer       = httpErr{Error: "Internal Server Error"}
)

type app struct {
	*Server
	db     *inmemdb.DB
	logger *testutil.Logger
}

// setup returns a server on a fresh in-memory backend seeded with the fixture accounts.
func setup(t *testing.T) app {
	t.Helper()

	db := inmemdb.NewDB()
	testutil.SeedAccounts(db)
	logger := new(testutil.Logger)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	core.ParseEmailTemplates(logger)
	emailsvc.ResetSentMessages()
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)

	server := NewServer(ServerDeps{
		Conf:         conf,
		Logger:       logger,
		UserSvc:      user.NewService(db, inmemdb.NewSessionStore(), validate, logger),
		ClassroomSvc: classroom.NewService(db, mailSvc, conf, logger),
		CalendarSvc:  calendar.NewService(inmemdb.NewWeekStore()),
		Validate:     validate,
		Translator:   translator,
	})
	return app{Server: server, db: db, logger: logger}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// login goes through the API and returns the issued token.
func login(t *testing.T, a app, identifier, credential string) string {
	t.Helper()
	req, rec := newRequest(http.MethodPost, "/v1/auth/login",
		marshalObj(t, LoginRequest{Identifier: identifier, Credential: credential}))
	a.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login(%q) code = %v; body %s", identifier, rec.Code, rec.Body.String())
	}
	var res LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("login(%q): %v", identifier, err)
	}
	return res.Token
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func run(t *testing.T, a app, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			a.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

// checkCodeAndData skips the body comparison when wantData is nil.
func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
