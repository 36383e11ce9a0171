package dataset

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/soilsense/pkg/errors"
)

// Field positions in the measurement table. The rows are shifted one column
// left of the header: field 3 holds the water added (as % of the 100 g
// sample, i.e. mL) and field 4 the sensor reading.
const (
	inputField  = 3
	targetField = 4
)

//go:embed data/soil.csv
var soilCSV []byte

// Default returns the eleven measurements taken for the 100 g soil sample.
func Default() (*Dataset, error) {
	return ReadCSV(bytes.NewReader(soilCSV))
}

// ReadCSV parses a measurement table with a header row. Any malformed row
// aborts the read with a DataError naming its 1-based data row.
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		if err == io.EOF {
			return nil, errors.NewDataError("dataset.ReadCSV", 0, "empty input")
		}
		return nil, errors.NewDataError("dataset.ReadCSV", 0, err.Error())
	}

	var obs []Observation
	for row := 1; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewDataError("dataset.ReadCSV", row, err.Error())
		}
		if len(record) <= targetField {
			return nil, errors.NewDataError("dataset.ReadCSV", row,
				fmt.Sprintf("expected at least %d fields, got %d", targetField+1, len(record)))
		}

		input, err := parsePercent(record[inputField])
		if err != nil {
			return nil, errors.NewDataError("dataset.ReadCSV", row, fmt.Sprintf("input %q: %v", record[inputField], err))
		}
		target, err := parsePercent(record[targetField])
		if err != nil {
			return nil, errors.NewDataError("dataset.ReadCSV", row, fmt.Sprintf("target %q: %v", record[targetField], err))
		}
		obs = append(obs, Observation{Input: input, Target: target})
	}

	if len(obs) == 0 {
		return nil, errors.NewDataError("dataset.ReadCSV", 0, "no data rows")
	}
	return New(obs)
}

// parsePercent reads a number such as "48.40%" or " 10 ".
func parsePercent(field string) (float64, error) {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(field), "%"))
	if s == "" {
		return 0, errors.New("empty field")
	}
	return strconv.ParseFloat(s, 64)
}
