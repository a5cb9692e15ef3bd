// Package roster parses uploaded student rosters. Files are read straight
// from the multipart stream; nothing touches disk.
package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column names expected in the header row, lowercased.
const (
	ColFirstName = "firstname"
	ColLastName  = "lastname"
	ColEmail     = "email"
	ColLSUID     = "lsu_id"
	ColTeamName  = "teamname"
)

// StudentColumns is the required header set for a plain roster upload;
// TeamColumns additionally requires the team assignment column.
var (
	StudentColumns = []string{ColFirstName, ColLastName, ColEmail, ColLSUID}
	TeamColumns    = []string{ColFirstName, ColLastName, ColEmail, ColLSUID, ColTeamName}
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// MissingColumnsError reports required header columns absent from the upload.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("file missing columns: %s", strings.Join(e.Columns, ", "))
}

// Row is one parsed roster line. Team is empty unless the team column was
// requested.
type Row struct {
	FirstName string
	LastName  string
	Email     string
	LSUID     string
	Team      string
}

// AllowedFile reports whether the upload extension is accepted.
func AllowedFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx", ".xls":
		return true
	}
	return false
}

// Parse reads the upload and returns one Row per non-blank data line. The
// header row must contain every column in required; otherwise a
// MissingColumnsError lists the absent ones and no rows are returned.
func Parse(r io.Reader, filename string, required []string) ([]Row, error) {
	var records [][]string
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		records, err = readCSV(r)
	case ".xlsx", ".xls":
		records, err = readExcel(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("file has no header row")
	}

	index, err := headerIndex(records[0], required)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for _, record := range records[1:] {
		row := Row{
			FirstName: field(record, index, ColFirstName),
			LastName:  field(record, index, ColLastName),
			Email:     strings.ToLower(field(record, index, ColEmail)),
			LSUID:     field(record, index, ColLSUID),
			Team:      field(record, index, ColTeamName),
		}
		if row.FirstName == "" && row.LastName == "" && row.Email == "" && row.LSUID == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}

func readExcel(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("spreadsheet has no sheets")
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return records, nil
}

func headerIndex(header []string, required []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, name := range required {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}
	return index, nil
}

func field(record []string, index map[string]int, column string) string {
	i, ok := index[column]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
