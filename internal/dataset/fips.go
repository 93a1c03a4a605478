package dataset

import (
	"strconv"
	"strings"
)

// NormalizeFIPS reduces a county identifier to the form used as the join key:
// the trailing five characters with leading zeros stripped. It accepts bare
// codes ("01001", "1001") and census GEO_IDs ("0500000US01001").
// Returns "" for blank or all-zero input.
func NormalizeFIPS(raw string) string {
	code := strings.TrimSpace(raw)
	// Spreadsheet exports sometimes carry numeric codes as floats.
	if f, err := strconv.ParseFloat(code, 64); err == nil && strings.Contains(code, ".") && f == float64(int64(f)) {
		code = strconv.FormatInt(int64(f), 10)
	}
	if len(code) > 5 {
		code = code[len(code)-5:]
	}
	return strings.TrimLeft(code, "0")
}

// PadFIPS formats a normalized code as a 5-digit zero-padded string.
func PadFIPS(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	for len(code) < 5 {
		code = "0" + code
	}
	return code
}
