package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"collegeview/internal/domain"
)

var (
	// ErrUnsupportedFormat is returned for files with an unknown extension.
	ErrUnsupportedFormat = errors.New("dataset: unsupported file format")
	// ErrNoDatasetFiles is returned when no path resolves to a readable file.
	ErrNoDatasetFiles = errors.New("dataset: no .json, .yaml, .yml or .csv files found")
)

func supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml", ".csv":
		return true
	}
	return false
}

// LoadFiles expands each path as a glob and concatenates the records of
// every supported file, in the order matched. Files with other extensions
// are skipped. Missing ids are filled after concatenation, so they stay
// unique across files.
func LoadFiles(paths []string) ([]domain.Record, error) {
	var (
		records []domain.Record
		files   int
	)
	for _, p := range paths {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("dataset: bad pattern %q: %w", p, err)
		}
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if !supported(m) {
				continue
			}
			recs, err := readFile(m)
			if err != nil {
				return nil, err
			}
			files++
			records = append(records, recs...)
		}
	}
	if files == 0 {
		return nil, ErrNoDatasetFiles
	}
	ensureIDs(records)
	return records, nil
}

// LoadFile decodes one dataset file, choosing the format by extension.
func LoadFile(path string) ([]domain.Record, error) {
	return withIDs(readFile(path))
}

func readFile(path string) ([]domain.Record, error) {
	if !supported(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()

	var recs []domain.Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		recs, err = decodeJSON(f)
	case ".yaml", ".yml":
		recs, err = decodeYAML(f)
	case ".csv":
		recs, err = decodeCSV(f)
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	return recs, nil
}
