package logsvc

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/KaushalKalal/TrainingManagement-Dashboard/core"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/user"
)

// RollbarLogger writes one line per entry to a std logger and reports the entry to Rollbar when enabled.
//
// Besides the message, entries accept an error, a map[string]interface{} of fields
// and the acting user (user.User or user.Public) as args.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l *RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

type entry struct {
	msg    string
	err    error
	fields map[string]interface{}
	actor  *user.Public
	extra  []interface{}
}

func newEntry(msg string, args []interface{}) entry {
	e := entry{msg: msg}
	for _, arg := range args {
		switch a := arg.(type) {
		case error:
			if e.err == nil {
				e.err = a
			} else {
				e.extra = append(e.extra, a)
			}
		case map[string]interface{}:
			if e.fields == nil {
				e.fields = make(map[string]interface{}, len(a))
			}
			for k, v := range a {
				e.fields[k] = v
			}
		case user.User:
			e.setActor(a.Public())
		case user.Public:
			e.setActor(a)
		default:
			e.extra = append(e.extra, a)
		}
	}
	return e
}

// setActor keeps the first identified user.
func (e *entry) setActor(pub user.Public) {
	if e.actor == nil && pub.ID != "" {
		e.actor = &pub
	}
}

// prepare sets the Rollbar person and returns the args to report.
func (l *RollbarLogger) prepare(e entry) []interface{} {
	if e.actor != nil {
		rollbar.SetPerson(e.actor.ID, e.actor.Name, e.actor.Email)
	} else {
		rollbar.ClearPerson()
	}

	args := []interface{}{e.msg}
	if e.err != nil {
		args = append(args, e.err)
	}
	if e.fields != nil {
		args = append(args, e.fields)
	}
	return append(args, e.extra...)
}

func (l *RollbarLogger) format(e entry) string {
	var b strings.Builder
	b.WriteString(e.msg)
	if e.err != nil {
		fmt.Fprintf(&b, " | error=%q", e.err.Error())
	}
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.fields[k])
	}
	for _, x := range e.extra {
		fmt.Fprintf(&b, " %+v", x)
	}
	if e.actor != nil {
		fmt.Fprintf(&b, " | user=%s <%s>", e.actor.ID, e.actor.Email)
	}
	return b.String()
}

func (l *RollbarLogger) log(level, msg string, args []interface{}) entry {
	e := newEntry(msg, args)
	rollbar.Log(level, l.prepare(e)...)
	l.std.Println(l.format(e))
	return e
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) { l.log(rollbar.DEBUG, msg, args) }
func (l *RollbarLogger) Info(msg string, args ...interface{})  { l.log(rollbar.INFO, msg, args) }
func (l *RollbarLogger) Warn(msg string, args ...interface{})  { l.log(rollbar.WARN, msg, args) }
func (l *RollbarLogger) Error(msg string, args ...interface{}) { l.log(rollbar.ERR, msg, args) }

// Fatal flushes pending Rollbar reports before exiting.
func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(rollbar.CRIT, msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}
