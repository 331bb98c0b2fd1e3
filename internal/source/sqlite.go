package source

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ohler55/ojg/oj"
	_ "modernc.org/sqlite"
)

// DefaultTable is the record table read by StreamSQLite.
const DefaultTable = "records"

// StreamSQLite iterates over the (id, record) rows of table, calling fn with
// each record decoded from JSON. Only one parsed record is alive at a time.
func StreamSQLite(dbPath, table string, fn func(id string, record any) error) error {
	if table == "" {
		table = DefaultTable
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	rows, err := db.Query("SELECT id, record FROM " + quoteIdent(table) + " ORDER BY id")
	if err != nil {
		return fmt.Errorf("query %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		parsed, err := oj.ParseString(raw)
		if err != nil {
			return fmt.Errorf("parse record %s: %w", id, err)
		}
		if err := fn(id, parsed); err != nil {
			return err
		}
	}
	return rows.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
