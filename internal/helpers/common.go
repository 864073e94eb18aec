// Package helpers holds small formatting helpers shared by the web pages
// and the CLI.
package helpers

import (
	"github.com/dustin/go-humanize"
)

// FormatCount renders n with thousands separators, e.g. 111652 -> "111,652".
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// FormatCNY renders a yuan amount the way the result panel shows it.
func FormatCNY(n int64) string {
	return "¥" + humanize.Comma(n)
}

// FormatPercent renders an integer percentage.
func FormatPercent(n int64) string {
	return humanize.Comma(n) + "%"
}

// FormatScore renders a score out of 100.
func FormatScore(n int64) string {
	return humanize.Comma(n) + "/100"
}
