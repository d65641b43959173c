package color

import (
	"regexp"
)

var (
	reDigits  = regexp.MustCompile(`^[0-9]+$`)
	reLongHex = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
	rePrefHex = regexp.MustCompile(`^0x[0-9a-fA-F]{8,}$`)
	reDate    = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

// LooksLikeAttribute reports whether a label reads like a literal value:
// a number, a long hex string or hash, a 0x-prefixed address, or anything
// containing a YYYY-MM-DD date. Such nodes are styled as attributes even
// without schema information.
func LooksLikeAttribute(label string) bool {
	if label == "" {
		return false
	}
	return reDigits.MatchString(label) ||
		reLongHex.MatchString(label) ||
		rePrefHex.MatchString(label) ||
		reDate.MatchString(label)
}
