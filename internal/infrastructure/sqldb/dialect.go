package sqldb

import (
	"strconv"
	"strings"
)

// Dialect covers the SQL differences between the supported engines.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// System is the OpenTelemetry db.system value.
func (d Dialect) System() string {
	if d == SQLite {
		return "sqlite"
	}
	return "postgresql"
}

// Rebind rewrites '?' placeholders into the dialect's form.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
