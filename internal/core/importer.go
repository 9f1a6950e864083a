package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Required CSV columns, matched case-insensitively in any order
var requiredColumns = []string{"username", "password", "service"}

// ParseResult holds the candidate records of a CSV payload
type ParseResult struct {
	Candidates []Record
	Skipped    int // Rows without service or password, or malformed
}

// ImportReport summarizes merging a CSV payload into a vault
type ImportReport struct {
	Imported  int
	Updated   int
	Unchanged int
	Skipped   int
}

// ParseCSV reads a comma-delimited payload with a mandatory header row.
// A missing header or required column fails the whole parse; bad data rows
// are skipped and counted. Candidates are stamped with now.
func ParseCSV(r io.Reader, now time.Time) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingHeader
		}
		return nil, fmt.Errorf("%w: %v", ErrMissingHeader, err)
	}

	columns, err := headerColumns(header)
	if err != nil {
		return nil, err
	}

	res := &ParseResult{Candidates: make([]Record, 0)}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				res.Skipped++
				continue
			}
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		service := strings.TrimSpace(field(row, columns["service"]))
		password := field(row, columns["password"])
		if service == "" || password == "" {
			res.Skipped++
			continue
		}

		res.Candidates = append(res.Candidates, Record{
			Service:   service,
			Username:  strings.TrimSpace(field(row, columns["username"])),
			Password:  password,
			UpdatedAt: now,
		})
	}

	return res, nil
}

// headerColumns maps required column names to their position
func headerColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int)
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}

	switch {
	case len(missing) == len(requiredColumns):
		return nil, ErrMissingHeader
	case len(missing) > 0:
		return nil, fmt.Errorf("%w: %s", ErrMissingRequiredColumn, strings.Join(missing, ", "))
	}
	return columns, nil
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

// Import merges parsed candidates into v. Later rows win for the same
// service and username, and re-importing the same payload changes nothing.
func Import(v *Vault, res *ParseResult) ImportReport {
	report := ImportReport{Skipped: res.Skipped}
	for _, c := range res.Candidates {
		result, err := v.Upsert(c)
		if err != nil {
			report.Skipped++
			continue
		}
		switch result {
		case Inserted:
			report.Imported++
		case Updated:
			report.Updated++
		default:
			report.Unchanged++
		}
	}
	return report
}

// ImportCSV parses r and merges it into the vault. Nothing is written when
// the payload has no valid header.
func (s *Store) ImportCSV(ctx context.Context, password []byte, r io.Reader) (*ImportReport, error) {
	res, err := ParseCSV(r, s.now())
	if err != nil {
		return nil, err
	}

	var report ImportReport
	err = s.Update(ctx, password, func(v *Vault) error {
		report = Import(v, res)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("csv import finished",
		"imported", report.Imported, "updated", report.Updated,
		"unchanged", report.Unchanged, "skipped", report.Skipped)
	return &report, nil
}
