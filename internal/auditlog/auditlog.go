// Package auditlog keeps a CSV trail of every account created or deleted by
// the tools, one row per action, grouped by run.
package auditlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Actions written by the commands.
const (
	ActionDeleted      = "deleted"
	ActionDeleteFailed = "delete_failed"
	ActionImported     = "imported"
	ActionImportFailed = "import_failed"
	ActionReset        = "reset"
)

// Entry is one audit row.
type Entry struct {
	Timestamp time.Time
	RunID     string
	Command   string
	Action    string
	Account   string
	Company   string
	Details   string
}

var header = []string{"timestamp", "run_id", "command", "action", "account", "company", "details"}

const (
	colTimestamp = iota
	colRunID
	colCommand
	colAction
	colAccount
	colCompany
	colDetails
	numFields
)

// NewRunID returns an identifier shared by all entries of one invocation.
func NewRunID() string {
	return uuid.NewString()
}

func marshal(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colCommand] = e.Command
	row[colAction] = e.Action
	row[colAccount] = e.Account
	row[colCompany] = e.Company
	row[colDetails] = e.Details
	return row
}

func unmarshal(rec []string) (Entry, error) {
	ts, err := time.Parse(time.RFC3339, rec[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", rec[colTimestamp], err)
	}
	if _, err := uuid.Parse(rec[colRunID]); err != nil {
		return Entry{}, fmt.Errorf("parsing run id %q: %w", rec[colRunID], err)
	}
	return Entry{
		Timestamp: ts,
		RunID:     rec[colRunID],
		Command:   rec[colCommand],
		Action:    rec[colAction],
		Account:   rec[colAccount],
		Company:   rec[colCompany],
		Details:   rec[colDetails],
	}, nil
}

// Append adds entries to the log at path, creating it (and its directory)
// with a header row on first use.
func Append(path string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating audit log dir: %w", err)
	}

	_, statErr := os.Stat(path)
	fresh := errors.Is(statErr, fs.ErrNotExist)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if fresh {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(marshal(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing audit log: %w", err)
	}
	return f.Close()
}

// Read returns every entry in the log at path, or nil if it does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	return read(f)
}

func read(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	entries := make([]Entry, 0, len(records)-1)
	for i, rec := range records[1:] {
		e, err := unmarshal(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
