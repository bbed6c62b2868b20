package utils

import "strings"

var blankCells = map[string]bool{
	"":    true,
	"-":   true,
	"_":   true,
	"n/a": true,
	"na":  true,
	"nan": true,
}

// IsBlankCell reports whether a cell carries no value.
func IsBlankCell(s string) bool {
	return blankCells[strings.ToLower(strings.TrimSpace(s))]
}

// FindColumn returns the index of the first header whose trimmed text equals any of the
// aliases, or -1. Comparison is case-sensitive.
func FindColumn(headers []string, aliases []string) int {
	for i, h := range headers {
		h = strings.TrimSpace(h)
		for _, alias := range aliases {
			if h == alias {
				return i
			}
		}
	}
	return -1
}

// Cell returns row[idx] trimmed, or "" when idx is out of range.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
