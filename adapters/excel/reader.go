// Package excel reads observation streams from spreadsheet exports.
// Expected layout: first row is the header (first column a timestamp, the
// rest variable keys), every later row one observation. Blank cells are
// missing values; the engine's pair-wise alignment handles the gaps.
package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"causemap/domain/causal"
	"causemap/domain/core"
)

// timestampLayouts are tried in order when parsing the first column.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ObservationReader handles reading Excel and CSV observation files.
type ObservationReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewObservationReader creates a reader for the given file, inferring the
// format from the extension.
func NewObservationReader(filePath string) *ObservationReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &ObservationReader{filePath: filePath, fileType: fileType}
}

// Read loads the file into observations plus the variable keys found in the
// header, in column order.
func (r *ObservationReader) Read() ([]causal.CausalObservation, []core.VariableKey, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("observation file not found: %s", r.filePath)
	}
	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, nil, err
	}
	return parseRows(rows)
}

func (r *ObservationReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file has no sheets: %s", r.filePath)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func (r *ObservationReader) readCSVRows() ([][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

// parseRows converts header+data rows into observations. Rows whose
// timestamp fails to parse are skipped; unparseable numeric cells count as
// missing for that variable only.
func parseRows(rows [][]string) ([]causal.CausalObservation, []core.VariableKey, error) {
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("observation file is empty")
	}
	header := rows[0]
	if len(header) < 2 {
		return nil, nil, fmt.Errorf("header needs a timestamp column plus at least one variable")
	}
	keys := make([]core.VariableKey, 0, len(header)-1)
	for _, name := range header[1:] {
		key, err := core.ParseVariableKey(strings.TrimSpace(name))
		if err != nil {
			return nil, nil, fmt.Errorf("bad header column %q: %w", name, err)
		}
		keys = append(keys, key)
	}

	observations := make([]causal.CausalObservation, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		ts, ok := parseTimestamp(strings.TrimSpace(row[0]))
		if !ok {
			continue
		}
		values := make(map[core.VariableKey]float64)
		for i, key := range keys {
			col := i + 1
			if col >= len(row) {
				break
			}
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue
			}
			if v, err := strconv.ParseFloat(cell, 64); err == nil {
				values[key] = v
			}
		}
		if len(values) == 0 {
			continue
		}
		observations = append(observations, causal.CausalObservation{
			Timestamp: core.NewTimestamp(ts),
			Values:    values,
		})
	}
	return observations, keys, nil
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	// Excel serial date numbers show up in unformatted exports.
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		if ts, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
