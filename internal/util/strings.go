package util

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
)

// ToValidUTF8 ensures a string is valid UTF-8.
// Spreadsheet exports are often Latin-1; invalid input is decoded as
// ISO-8859-1 so names like "Müller" survive instead of turning into U+FFFD.
func ToValidUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	// Every byte is valid ISO-8859-1, so decoding cannot fail.
	decoded, _ := charmap.ISO8859_1.NewDecoder().String(s)
	return decoded
}

// StartCase turns an identifier like "project_name" or "totalMinutes" into
// "Project Name" / "Total Minutes".
func StartCase(s string) string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	prev := rune(0)
	for _, r := range s {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return cases.Title(language.English, cases.NoLower).String(strings.Join(words, " "))
}

// PadOrTruncate pads or truncates s to exactly width display cells.
func PadOrTruncate(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		return Truncate(s, width)
	}
	return s + strings.Repeat(" ", width-n)
}

// Truncate shortens a string to fit width, adding "..." if needed.
func Truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width > 3 {
		return string(runes[:width-3]) + "..."
	}
	if width < 0 {
		width = 0
	}
	return string(runes[:width])
}
