package dataset

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"collegeview/internal/domain"
)

// DecodeJSON reads a JSON array of records in the upstream camelCase shape.
func DecodeJSON(r io.Reader) ([]domain.Record, error) {
	return withIDs(decodeJSON(r))
}

// DecodeYAML reads a YAML sequence of records with snake_case keys.
func DecodeYAML(r io.Reader) ([]domain.Record, error) {
	return withIDs(decodeYAML(r))
}

// DecodeCSV reads a CSV file whose first row names the columns. Columns
// are matched case-insensitively against Columns; unknown ones are ignored
// and missing ones stay empty. A leading byte order mark is dropped.
func DecodeCSV(r io.Reader) ([]domain.Record, error) {
	return withIDs(decodeCSV(r))
}

func withIDs(records []domain.Record, err error) ([]domain.Record, error) {
	if err != nil {
		return nil, err
	}
	ensureIDs(records)
	return records, nil
}

func decodeJSON(r io.Reader) ([]domain.Record, error) {
	var raw []rawRecord
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.Record{}, nil
		}
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return convert(raw), nil
}

func decodeYAML(r io.Reader) ([]domain.Record, error) {
	var raw []rawRecord
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.Record{}, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return convert(raw), nil
}

func decodeCSV(r io.Reader) ([]domain.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []domain.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	records := []domain.Record{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read row %d: %w", len(records)+2, err)
		}
		var rec domain.Record
		for i, value := range row {
			if i >= len(header) {
				break
			}
			if dst := field(&rec, header[i]); dst != nil {
				*dst = value
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// EncodeCSV writes records with a header row, the inverse of DecodeCSV.
func EncodeCSV(w io.Writer, records []domain.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	row := make([]string, len(Columns))
	for i := range records {
		for j, col := range Columns {
			row[j] = *field(&records[i], col)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func convert(raw []rawRecord) []domain.Record {
	records := make([]domain.Record, len(raw))
	for i, r := range raw {
		records[i] = r.record()
	}
	return records
}
