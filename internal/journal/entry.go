package journal

import (
	"strconv"
	"strings"
	"time"
)

// Header is the first row of every journal file.
var Header = []string{"Unique_ID", "@Handle", "Motion", "API", "Date", "Time", "API_answer"}

// Motion describes how the user triggered an event.
type Motion string

const (
	MotionTyping Motion = "Keyboard typing"
	MotionButton Motion = "Button press"
	MotionAPI    Motion = "API call"
)

// Entry is one journaled event. Entries are never updated.
type Entry struct {
	UserID  int64
	Handle  string
	Motion  Motion
	Action  string
	At      time.Time
	Outcome string
}

func (e Entry) record(loc *time.Location) []string {
	handle := strings.TrimPrefix(strings.TrimSpace(e.Handle), "@")
	if handle != "" {
		handle = "@" + handle
	}
	at := e.At.In(loc)
	return []string{
		strconv.FormatInt(e.UserID, 10),
		handle,
		string(e.Motion),
		e.Action,
		at.Format(time.DateOnly),
		at.Format(time.TimeOnly),
		e.Outcome,
	}
}
