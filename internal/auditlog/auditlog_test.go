package auditlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 6, 2, 14, 5, 0, 0, time.UTC)

func testEntry(runID string) Entry {
	return Entry{
		Timestamp: testTime,
		RunID:     runID,
		Command:   "delete-account",
		Action:    ActionDeleted,
		Account:   "Manutenção - DC",
		Company:   "DM-CASA",
		Details:   "gl=0, je=0, pe=0",
	}
}

func TestAppendAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "audit.csv")
	run := NewRunID()

	require.NoError(t, Append(path, []Entry{testEntry(run)}))

	second := testEntry(run)
	second.Action = ActionDeleteFailed
	second.Details = "FOREIGN KEY constraint failed, retry later"
	require.NoError(t, Append(path, []Entry{second}))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, testEntry(run), entries[0])
	assert.Equal(t, second, entries[1])

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(raw), "timestamp,run_id"), "header written once")
}

func TestAppend_Nothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	require.NoError(t, Append(path, nil))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRead_Missing(t *testing.T) {
	entries, err := Read(filepath.Join(t.TempDir(), "none.csv"))
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_BadRunID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	content := "timestamp,run_id,command,action,account,company,details\n" +
		"2025-06-02T14:05:00Z,not-a-uuid,delete-account,deleted,A,DM-CASA,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestNewRunID_Unique(t *testing.T) {
	assert.NotEqual(t, NewRunID(), NewRunID())
}
