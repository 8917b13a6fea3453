package dataset

import (
	"bytes"
	_ "embed"
	"fmt"

	"collegeview/internal/domain"
)

//go:embed colleges.json
var collegesJSON []byte

// Embedded decodes the college listing compiled into the binary.
func Embedded() ([]domain.Record, error) {
	recs, err := DecodeJSON(bytes.NewReader(collegesJSON))
	if err != nil {
		return nil, fmt.Errorf("dataset: embedded: %w", err)
	}
	return recs, nil
}
