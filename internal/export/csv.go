// Package export writes simulation runs as CSV, JSON, plot images and
// metadata+samples directory bundles.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/odedash/internal/dynamo"
)

// WriteCSV writes a header row "time,<variables...>" followed by one row per
// sample. Values keep full float64 precision.
func WriteCSV(w io.Writer, tr *dynamo.Trajectory) error {
	cw := csv.NewWriter(w)

	header := append([]string{"time"}, tr.Names...)
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i, t := range tr.Times {
		row[0] = strconv.FormatFloat(t, 'g', -1, 64)
		for j, series := range tr.Values {
			row[j+1] = strconv.FormatFloat(series[i], 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the output of WriteCSV. The result carries no stats and is
// marked complete.
func ReadCSV(r io.Reader) (*dynamo.Trajectory, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || len(records[0]) < 2 || records[0][0] != "time" {
		return nil, fmt.Errorf("csv: missing time header")
	}

	tr := dynamo.NewTrajectory(records[0][1:], len(records)-1)
	x := make(dynamo.State, len(records[0])-1)
	for i, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", i+2, err)
		}
		for j := range x {
			if x[j], err = strconv.ParseFloat(record[j+1], 64); err != nil {
				return nil, fmt.Errorf("csv row %d: %w", i+2, err)
			}
		}
		tr.Append(t, x)
	}
	tr.Complete = true
	return tr, nil
}
