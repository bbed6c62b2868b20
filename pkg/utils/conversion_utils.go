package utils

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the ISO layout used for every ledger date key.
const DateLayout = "2006-01-02"

// ParseQuantity converts a spreadsheet cell to a quantity. Blank and dash-like cells
// ("", "-", "_", "N/A", "NA", "NaN") and anything non-numeric become 0.
// Thousands separators are tolerated.
func ParseQuantity(cell string) float64 {
	if IsBlankCell(cell) {
		return 0
	}
	s := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	num, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return 0
	}
	return num
}

// ParseCasePack returns the leading integer before the first "/" of a package size
// such as "6/4LB". ok is false when there is no "/" or the prefix is not a positive integer.
func ParseCasePack(packageSize string) (int, bool) {
	idx := strings.Index(packageSize, "/")
	if idx < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(packageSize[:idx]))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// IsValidDate reports whether s is a YYYY-MM-DD date.
func IsValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// FormatQuantity renders a quantity without trailing zeros ("12", "2.5").
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
