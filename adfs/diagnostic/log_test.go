package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendIsNilSafe(t *testing.T) {
	var log *Log
	assert.NotPanics(t, func() {
		log.Append(Warning, "ignored")
	})
	assert.Equal(t, 0, log.DefectCount())
	assert.Nil(t, log.Entries(true))
}

func TestEntriesFiltersInformByDefault(t *testing.T) {
	log := New(nil)
	log.Append(Inform, "starting parse")
	log.Append(Warning, "broken directory")

	assert.Len(t, log.Entries(false), 1)
	assert.Len(t, log.Entries(true), 2)
}

func TestPrettyReportsNoProblemsWhenEmpty(t *testing.T) {
	log := New(nil)
	assert.Equal(t, "No problems found.", log.Pretty(false))
}

func TestPrettyPluralisesDefectCount(t *testing.T) {
	log := New(nil)
	log.RecordDefect("bad sector mapped out at zone 2")
	log.RecordDefect("bad sector mapped out at zone 5")

	out := log.Pretty(false)
	assert.Contains(t, out, "2 defects found on disc")
}

func TestPrettySingularDefect(t *testing.T) {
	log := New(nil)
	log.RecordDefect("bad sector mapped out at zone 2")

	out := log.Pretty(false)
	assert.Contains(t, out, "1 defect found on disc")
}

func TestRecordDefectIsNilSafe(t *testing.T) {
	var log *Log
	assert.NotPanics(t, func() {
		log.RecordDefect("ignored")
	})
	assert.Equal(t, 0, log.DefectCount())
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "INFO", Inform.String())
	assert.Equal(t, "WARN", Warning.String())
	assert.Equal(t, "ERROR", Error.String())
}
