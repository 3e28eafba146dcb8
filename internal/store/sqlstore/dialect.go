package sqlstore

import (
	"strconv"
	"strings"
)

const (
	// DriverSQLite selects the pure Go SQLite driver.
	DriverSQLite = "sqlite"
	// DriverPostgres selects PostgreSQL through pgx.
	DriverPostgres = "postgres"
)

type dialect struct {
	name     string
	numbered bool // $1, $2 ... instead of ?
}

var (
	sqliteDialect   = dialect{name: DriverSQLite}
	postgresDialect = dialect{name: DriverPostgres, numbered: true}
)

// rebind rewrites ? placeholders for dialects that number their parameters.
// Queries in this package never contain a literal '?'.
func (d dialect) rebind(query string) string {
	if !d.numbered || !strings.Contains(query, "?") {
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
