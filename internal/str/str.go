package str

import "strings"

// QuoteString adds single quotes around a string and escapes
// any single quotes.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
