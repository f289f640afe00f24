package logsvc

import (
	"fmt"
	"log"
	"os"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/lophoc/core"
	"github.com/trezcool/lophoc/core/user"
)

// RollbarLogger reports to Rollbar and echoes everything to a std logger.
// Debug messages are only echoed when debug is on.
type RollbarLogger struct {
	std   *log.Logger
	debug bool
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetCustom(map[string]interface{}{"backend": conf.Backend})
	return &RollbarLogger{std: std, debug: conf.Debug}
}

// New returns a logger writing to stdout with `prefix`, reporting to Rollbar outside debug mode.
func New(prefix string, conf *core.Config) *RollbarLogger {
	std := log.New(os.Stdout, fmt.Sprintf("%-6s: ", prefix), log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	l := NewRollbarLogger(std, conf)
	l.Enable(!conf.Debug && conf.RollbarToken != "")
	return l
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// Flush waits for queued Rollbar items to be sent.
func (l RollbarLogger) Flush() {
	rollbar.Wait()
}

// expected fmt: msg | error, map[string]interface{}, user.User or user.Session
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var usrSet bool
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		switch a := arg.(type) {
		case user.Session:
			usrSet = l.setPerson(a.User, usrSet)
		case user.User:
			usrSet = l.setPerson(a, usrSet)
		default:
			newArgs = append(newArgs, arg)
		}
	}
	if !usrSet {
		rollbar.ClearPerson()
	}
	return newArgs
}

// setPerson only sets the first user found.
func (l RollbarLogger) setPerson(usr user.User, alreadySet bool) bool {
	if !alreadySet {
		rollbar.SetPerson(usr.ID, usr.Name, usr.Email)
	}
	return true
}

func (l RollbarLogger) print(level, msg string, args []interface{}) {
	_ = l.std.Output(3, level+" "+msg)
	for _, arg := range args {
		switch arg.(type) {
		case user.User, user.Session:
			continue
		}
		_ = l.std.Output(3, fmt.Sprintf("%+v", arg))
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	if !l.debug {
		return
	}
	rollbar.Debug(l.prepare(msg, args)...)
	l.print("DEBUG", msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.print("INFO", msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.print("WARN", msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.print("ERROR", msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	l.print("FATAL", msg, args)
	rollbar.Wait()
	os.Exit(1)
}
