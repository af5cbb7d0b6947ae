package rcs

import "strings"

// NormalizeDate prefixes two-digit-year RCS dates ("YY.mm.dd.HH.MM.SS",
// 17 characters) with "19" so that pre- and post-2000 dates compare
// correctly as plain strings.
func NormalizeDate(date string) string {
	if len(date) == 17 {
		return "19" + date
	}
	return date
}

// CompareDates compares two raw RCS date strings, normalising two-digit
// years first, and returns -1, 0, or 1 as the first compares less than,
// equal to, or greater than the second.
func CompareDates(a, b string) int {
	na, nb := NormalizeDate(a), NormalizeDate(b)
	switch {
	case na < nb:
		return -1
	case na > nb:
		return 1
	default:
		return 0
	}
}

// ISODate converts a raw RCS date string into the ISO-8601 form
// "YYYY-MM-DDThh:mm:ssZ", normalising a two-digit year first.
func ISODate(date string) (string, error) {
	norm := NormalizeDate(date)
	parts := strings.Split(norm, ".")
	if len(parts) != 6 {
		return "", &MalformedInput{Message: "invalid RCS date: " + date}
	}
	return strings.Join(parts[:3], "-") + "T" + strings.Join(parts[3:], ":") + "Z", nil
}
