package chart

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ReadRows reads CSV chart rows from r, which must already be UTF-8. Rows
// without an account name are kept; the importer decides what to do with
// them.
func ReadRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading chart header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading chart CSV: %w", err)
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, cols.row(line, rec))
	}
	return rows, nil
}

// WriteRows writes rows as CSV with the standard header.
func WriteRows(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range rows {
		if err := cw.Write([]string{r.AccountName, r.ParentAccount, r.AccountType, r.AccountNumber, r.RootType}); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
