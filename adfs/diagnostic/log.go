// Package diagnostic implements the structured diagnostic log built up
// while an ADFS image is parsed: an ordered list of (severity, message)
// entries, queryable and pretty-printable without aborting the parse that
// produced them.
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Severity classifies a diagnostic entry.
type Severity int

const (
	Inform Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Inform:
		return "INFO"
	case Warning:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "?"
	}
}

// Entry is one recorded diagnostic.
type Entry struct {
	Severity Severity
	Message  string
}

// Log accumulates diagnostics during parsing. A nil *Log silently discards
// every Append, so callers can pass one unconditionally and only build a
// real Log when the verify flag is set.
type Log struct {
	entries []Entry
	defects int
	emit    *logrus.Logger // optional streaming sink, mirrors each Append
}

// New returns an empty Log. When emit is non-nil, every appended entry is
// also logged through it as it's recorded (the way a long-running service
// streams its log instead of only buffering it).
func New(emit *logrus.Logger) *Log {
	return &Log{emit: emit}
}

// Append records a diagnostic entry. Safe to call on a nil *Log.
func (l *Log) Append(severity Severity, format string, args ...interface{}) {
	if l == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.entries = append(l.entries, Entry{Severity: severity, Message: msg})

	if l.emit != nil {
		switch severity {
		case Error:
			l.emit.Error(msg)
		case Warning:
			l.emit.Warn(msg)
		default:
			l.emit.Info(msg)
		}
	}
}

// RecordDefect is Append specialised for a mapped-out bad sector (fragment
// map file number 1): it appends the message as a Warning and counts toward
// DefectCount, so the summary line in Pretty reflects actual decoded
// defects rather than anything pattern-matched out of log text.
func (l *Log) RecordDefect(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.Append(Warning, format, args...)
	l.defects++
}

// Entries returns the recorded entries. When verbose is false, Inform
// entries are omitted.
func (l *Log) Entries(verbose bool) []Entry {
	if l == nil {
		return nil
	}
	if verbose {
		out := make([]Entry, len(l.entries))
		copy(out, l.entries)
		return out
	}

	var out []Entry
	for _, e := range l.entries {
		if e.Severity != Inform {
			out = append(out, e)
		}
	}
	return out
}

// DefectCount returns how many mapped-out bad sectors (fragment map file
// number 1) were recorded via RecordDefect.
func (l *Log) DefectCount() int {
	if l == nil {
		return 0
	}
	return l.defects
}

// Pretty renders the log for display: warnings and errors always, Inform
// entries only when verbose is set, and a pluralised defect summary line.
func (l *Log) Pretty(verbose bool) string {
	entries := l.Entries(verbose)

	if len(entries) == 0 {
		return "No problems found."
	}

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "[%s] %s\n", e.Severity, e.Message)
	}

	if n := l.DefectCount(); n > 0 {
		b.WriteString(pluralDefects(n))
		b.WriteByte('\n')
	}

	return strings.TrimRight(b.String(), "\n")
}

func pluralDefects(n int) string {
	if n == 1 {
		return "1 defect found on disc"
	}
	return fmt.Sprintf("%d defects found on disc", n)
}
