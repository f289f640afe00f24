package testutil

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/trezcool/lophoc/core"
	inmemdb "github.com/trezcool/lophoc/storage/inmem"
)

// Logger is a core.Logger keeping messages in memory.
type Logger struct {
	mu       sync.Mutex
	Messages []string // "LEVEL: msg"
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, fmt.Sprintf("%s: %s", level, msg))
}

func (l *Logger) Debug(msg string, _ ...interface{}) { l.log("DEBUG", msg) }
func (l *Logger) Info(msg string, _ ...interface{})  { l.log("INFO", msg) }
func (l *Logger) Warn(msg string, _ ...interface{})  { l.log("WARN", msg) }
func (l *Logger) Error(msg string, _ ...interface{}) { l.log("ERROR", msg) }
func (l *Logger) Fatal(msg string, _ ...interface{}) { l.log("FATAL", msg) }

// Count returns how many messages were logged at level.
func (l *Logger) Count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	var n int
	for _, m := range l.Messages {
		if len(m) > len(level) && m[:len(level)+1] == level+":" {
			n++
		}
	}
	return n
}

// FreezeTime makes core.NowFunc return now until the test ends.
func FreezeTime(t *testing.T, now time.Time) {
	t.Helper()
	core.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { core.NowFunc = time.Now })
}

// Fixture accounts
const (
	TeacherEmail    = "gv.lan@lophoc.test"
	TeacherPassword = "teacher-pwd"
	AdminEmail      = "admin@lophoc.test"
	AdminPassword   = "admin-pwd"
	StudentEmail    = "an.nguyen@lophoc.test"
	StudentPassword = "student-pwd"
	StudentID       = "HS001"
	StudentDOB      = "2012-03-09"
)

// SeedAccounts adds a teacher, an admin and a student account plus their roster entry.
func SeedAccounts(db *inmemdb.DB) {
	db.Seed(core.TableUsers,
		core.Row{"id": "u-teacher", "email": TeacherEmail, "password": TeacherPassword, "name": "Cô Lan", "role": "teacher"},
		core.Row{"id": "u-admin", "email": AdminEmail, "password": AdminPassword, "name": "Quản trị", "role": "admin"},
		core.Row{"id": "u-student", "email": StudentEmail, "password": StudentPassword, "name": "Nguyễn Văn An", "role": "student"},
	)
	db.Seed(core.TableStudents, core.Row{
		"id":            StudentID,
		"full_name":     "Nguyễn Văn An",
		"date_of_birth": StudentDOB,
		"email":         StudentEmail,
		"status":        "Đang học",
		"parent_email":  "phuhuynh.an@lophoc.test",
	})
}

// SeedStudents adds plain roster entries: {id, full_name, status, avg_quality_score}.
func SeedStudents(db *inmemdb.DB, rows ...core.Row) {
	db.Seed(core.TableStudents, rows...)
}
