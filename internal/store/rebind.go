package store

import (
	"strconv"
	"strings"
)

// rebind rewrites "?" placeholders to "$1", "$2", ... for Postgres.
// Queries in this repository never contain a literal "?" inside strings.
func rebind(d Driver, query string) string {
	if d != DriverPostgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			b.WriteByte(query[i])
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}
