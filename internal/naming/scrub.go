package naming

import (
	"regexp"
	"strings"
)

var (
	illegalPathRun = regexp.MustCompile(`[:*?"<>| ]+`)
	trailingYear   = regexp.MustCompile(`^(.*\S)\s+(\d{4})$`)
)

// Scrub collapses every run of path-illegal characters (and spaces) into a
// single space and trims surrounding whitespace. Scrub(Scrub(s)) == Scrub(s).
func Scrub(dirty string) string {
	return strings.TrimSpace(illegalPathRun.ReplaceAllString(dirty, " "))
}

// FixYear wraps a trailing four-digit year in parentheses, so
// "Show Name 1995" becomes "Show Name (1995)". Other values are returned
// unchanged.
func FixYear(name string) string {
	trimmed := strings.TrimSpace(name)
	if !trailingYear.MatchString(trimmed) {
		return name
	}
	return trailingYear.ReplaceAllString(trimmed, "$1 ($2)")
}
