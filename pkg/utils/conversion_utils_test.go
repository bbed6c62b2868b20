package utils

import "testing"

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"12", 12},
		{" 2.5 ", 2.5},
		{"1,200", 1200},
		{"", 0},
		{"-", 0},
		{"_", 0},
		{"N/A", 0},
		{"n/a", 0},
		{"NA", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"abc", 0},
		{"-3", -3},
	}
	for _, tc := range cases {
		if got := ParseQuantity(tc.in); got != tc.want {
			t.Fatalf("ParseQuantity(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseCasePack(t *testing.T) {
	cases := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"6/4LB", 6, true},
		{" 12 /1EA", 12, true},
		{"1/10LB/BAG", 1, true},
		{"25LB", 0, false},
		{"", 0, false},
		{"/4LB", 0, false},
		{"0/4LB", 0, false},
		{"-2/4LB", 0, false},
		{"six/4LB", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseCasePack(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Fatalf("ParseCasePack(%q) = %d, %v; want %d, %v", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	if !IsValidDate("2025-03-01") {
		t.Fatalf("expected 2025-03-01 to be valid")
	}
	for _, bad := range []string{"", "2025-3-1", "03/01/2025", "2025-02-30"} {
		if IsValidDate(bad) {
			t.Fatalf("expected %q to be invalid", bad)
		}
	}
}

func TestFormatQuantity(t *testing.T) {
	if got := FormatQuantity(12); got != "12" {
		t.Fatalf("FormatQuantity(12) = %q", got)
	}
	if got := FormatQuantity(2.5); got != "2.5" {
		t.Fatalf("FormatQuantity(2.5) = %q", got)
	}
}
