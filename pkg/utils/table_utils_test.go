package utils

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestFindColumn(t *testing.T) {
	headers := []string{"Qty", " Product Number ", "SKU"}
	if got := FindColumn(headers, []string{"SKU", "Product Number"}); got != 1 {
		t.Fatalf("FindColumn = %d, want first matching header 1", got)
	}
	if got := FindColumn(headers, []string{"qty"}); got != -1 {
		t.Fatalf("matching must be case-sensitive, got %d", got)
	}
}

func TestCell(t *testing.T) {
	row := []string{" a ", "b"}
	if Cell(row, 0) != "a" || Cell(row, 5) != "" || Cell(row, -1) != "" {
		t.Fatalf("unexpected Cell results")
	}
}

func TestReadTableCSV(t *testing.T) {
	data := "\ufeffProduct Number,Qty\n\nA,1\n,,\nB,\"2,5\"\nC\n"
	table, err := ReadTable("count.CSV", strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if len(table.Headers) != 2 || table.Headers[0] != "Product Number" {
		t.Fatalf("headers = %q", table.Headers)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("rows = %q", table.Rows)
	}
	if table.Rows[1][1] != "2,5" || len(table.Rows[2]) != 1 {
		t.Fatalf("rows = %q", table.Rows)
	}
}

func TestReadTableRejectsUnknownExtension(t *testing.T) {
	_, err := ReadTable("count.txt", strings.NewReader("a,b"))
	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Fatalf("expected ErrUnsupportedFileType, got %v", err)
	}
	if IsSupportedUpload("x.xls") || !IsSupportedUpload("x.XLSX") {
		t.Fatalf("IsSupportedUpload extension check wrong")
	}
}

func TestXLSXRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	headers := []string{"Product Number", "Quantity"}
	rows := [][]string{{"00123", "4"}, {"B", "2.5"}}
	if err := WriteXLSX(&buf, "Inventory", headers, rows); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	table, err := ReadTable("export.xlsx", &buf)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if strings.Join(table.Headers, "|") != "Product Number|Quantity" {
		t.Fatalf("headers = %q", table.Headers)
	}
	if len(table.Rows) != 2 || table.Rows[0][0] != "00123" || table.Rows[1][1] != "2.5" {
		t.Fatalf("rows = %q", table.Rows)
	}
}

func TestWriteCSVQuotes(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []string{"a", "b"}, [][]string{{"x,y", `say "hi"`}}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "a,b\n\"x,y\",\"say \"\"hi\"\"\"\n"
	if buf.String() != want {
		t.Fatalf("csv = %q, want %q", buf.String(), want)
	}
}

func TestIsBlankCell(t *testing.T) {
	for _, s := range []string{"", " ", "-", "_", "N/A", "na", "NaN"} {
		if !IsBlankCell(s) {
			t.Fatalf("expected %q to be blank", s)
		}
	}
	if IsBlankCell("0") {
		t.Fatalf("0 is a value")
	}
}
