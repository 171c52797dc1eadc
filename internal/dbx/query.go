package dbx

import (
	"strconv"
	"strings"
)

// OrderKeyword maps a listing order to its SQL keyword. Anything other
// than "asc" sorts descending, so the result is always safe to splice.
func OrderKeyword(order string) string {
	if strings.EqualFold(order, "asc") {
		return "ASC"
	}
	return "DESC"
}

// Placeholders returns n comma-separated positional parameters starting
// at $start, e.g. Placeholders(2, 3) == "$2, $3, $4".
func Placeholders(start, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(start + i))
	}
	return b.String()
}
