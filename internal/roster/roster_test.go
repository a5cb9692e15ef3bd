package roster

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	csvData := "firstname,lastname,email,lsu_id\nJo,Lee,JO@x.edu,123\nAmy,Tran,amy@x.edu,456\n"
	rows, err := Parse(strings.NewReader(csvData), "roster.csv", StudentColumns)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Email != "jo@x.edu" {
		t.Fatalf("expected lowercased email, got %s", rows[0].Email)
	}
	if rows[0].FirstName != "Jo" || rows[0].LastName != "Lee" || rows[0].LSUID != "123" {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
}

func TestParseCSVHeaderCaseAndBlankRows(t *testing.T) {
	csvData := "FirstName, LastName ,Email,LSU_ID\nJo,Lee,jo@x.edu,123\n,,,\n"
	rows, err := Parse(strings.NewReader(csvData), "roster.csv", StudentColumns)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected blank row skipped, got %d rows", len(rows))
	}
}

func TestParseMissingColumns(t *testing.T) {
	csvData := "firstname,email\nJo,jo@x.edu\n"
	_, err := Parse(strings.NewReader(csvData), "roster.csv", StudentColumns)
	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
	if len(missing.Columns) != 2 {
		t.Fatalf("expected 2 missing columns, got %v", missing.Columns)
	}
	if missing.Columns[0] != "lastname" || missing.Columns[1] != "lsu_id" {
		t.Fatalf("unexpected missing columns: %v", missing.Columns)
	}
}

func TestParseTeamColumns(t *testing.T) {
	csvData := "firstname,lastname,email,lsu_id,teamname\nJo,Lee,jo@x.edu,123,Alpha\n"
	rows, err := Parse(strings.NewReader(csvData), "teams.csv", TeamColumns)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if rows[0].Team != "Alpha" {
		t.Fatalf("expected team Alpha, got %s", rows[0].Team)
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	cells := [][]interface{}{
		{"firstname", "lastname", "email", "lsu_id"},
		{"Jo", "Lee", "jo@x.edu", "123"},
	}
	for i, row := range cells {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	rows, err := Parse(&buf, "roster.xlsx", StudentColumns)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].LSUID != "123" {
		t.Fatalf("expected lsu_id 123, got %s", rows[0].LSUID)
	}
}

func TestParseUnsupportedFormat(t *testing.T) {
	if _, err := Parse(strings.NewReader("x"), "roster.pdf", StudentColumns); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestAllowedFile(t *testing.T) {
	for _, name := range []string{"a.csv", "b.XLSX", "c.xls"} {
		if !AllowedFile(name) {
			t.Fatalf("expected %s to be allowed", name)
		}
	}
	if AllowedFile("roster.pdf") {
		t.Fatalf("expected pdf to be rejected")
	}
}
