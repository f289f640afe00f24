package core

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Date layouts
const (
	DateLayout        = "2006-01-02" // as stored
	TimeLayout        = "15:04:05"   // as stored
	DisplayDateLayout = "2/1/2006"   // d/m/yyyy
)

var NowFunc = time.Now // mockable

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// FoldString lowers `s` and strips its diacritics: "Nguyễn Đức" -> "nguyen duc".
func FoldString(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(func(r rune) rune {
			switch r {
			case 'đ', 'Đ':
				return 'd'
			}
			return unicode.ToLower(r)
		}),
		norm.NFC,
	)
	folded, _, err := transform.String(t, CleanString(s))
	if err != nil {
		return CleanString(s, true)
	}
	return folded
}

// FormatDisplayDate renders a stored date (or timestamp) as d/m/yyyy. Unparsable values are returned as is.
func FormatDisplayDate(raw string) string {
	raw = CleanString(raw)
	if raw == "" {
		return ""
	}
	if t, err := ParseDate(raw); err == nil {
		return t.Format(DisplayDateLayout)
	}
	return raw
}

// ParseDate accepts a plain date or an RFC 3339 timestamp.
func ParseDate(raw string) (time.Time, error) {
	raw = CleanString(raw)
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", raw)
}

// ISODate returns the date part of a stored date/timestamp value, eg: "2010-05-03T00:00:00Z" -> "2010-05-03".
func ISODate(raw string) string {
	t, err := ParseDate(raw)
	if err != nil {
		return ""
	}
	return t.UTC().Format(DateLayout)
}
