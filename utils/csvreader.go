package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

func ParseCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ParseCSVRecords reads a CSV with a header row into one map per line, keyed
// by the lower-cased, trimmed header names.
func ParseCSVRecords(r io.Reader) ([]map[string]string, error) {
	rows, err := ParseCSV(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv has no header row")
	}

	header := Map(rows[0], func(h string) string { return strings.ToLower(strings.TrimSpace(h)) })
	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(row) {
				rec[name] = strings.TrimSpace(row[i])
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
