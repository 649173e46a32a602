package sqlstore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mmynk/hearthledger/internal/models"
)

// Dialect captures what differs between the supported SQL backends.
type Dialect struct {
	// Name is the dialect name used in configuration ("sqlite" or "postgres").
	Name string

	// Driver is the database/sql driver name.
	Driver string

	schema    string
	numbered  bool
	lockReads bool
}

var (
	// SQLite stores money as TEXT to keep exact decimals. Writers are
	// serialised through a single connection.
	SQLite = Dialect{Name: "sqlite", Driver: "sqlite", schema: sqliteSchema}

	// Postgres uses NUMERIC money columns and row locks on reads that precede
	// a write.
	Postgres = Dialect{Name: "postgres", Driver: "postgres", schema: postgresSchema, numbered: true, lockReads: true}
)

// DialectFor returns the dialect with the given name.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case SQLite.Name, "sqlite3":
		return SQLite, nil
	case Postgres.Name, "postgresql":
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("unsupported database driver: %s", name)
}

// rebind rewrites ? placeholders into the dialect's form.
func (d Dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// forUpdate appends a row lock clause where the dialect supports one.
func (d Dialect) forUpdate(query string) string {
	if d.lockReads {
		return query + " FOR UPDATE"
	}
	return query
}

// activeClause filters a table (optionally aliased) to active rows. Every read
// goes through it.
func activeClause(alias string) string {
	if alias != "" {
		alias += "."
	}
	return fmt.Sprintf("%sstate = '%s'", alias, models.StateActive)
}
