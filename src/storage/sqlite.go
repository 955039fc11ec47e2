// sqlite.go
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	_ "modernc.org/sqlite"
)

// SQLiteSink replaces the contents of one table in a SQLite database.
type SQLiteSink struct {
	Path  string
	Table string
}

func (s *SQLiteSink) Name() string { return "sqlite" }

func (s *SQLiteSink) Write(ctx context.Context, df dataframe.DataFrame) (int, error) {
	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return 0, fmt.Errorf("opening database %s: %w", s.Path, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, createTableSQL(s.Table, df)); err != nil {
		return 0, fmt.Errorf("creating %s table: %w", s.Table, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+quoteIdent(s.Table)); err != nil {
		return 0, fmt.Errorf("truncate %s: %w", s.Table, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(s.Table, df.Names()))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	cols := columns(df)
	args := make([]interface{}, len(cols))
	rows := df.Nrow()
	for i := 0; i < rows; i++ {
		for j, col := range cols {
			v := cellValue(col.Elem(i))
			if b, ok := v.(bool); ok {
				v = boolToInt(b)
			}
			args[j] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return rows, nil
}

func createTableSQL(table string, df dataframe.DataFrame) string {
	names := df.Names()
	types := df.Types()
	defs := make([]string, len(names))
	for i, name := range names {
		defs[i] = quoteIdent(name) + " " + sqliteType(types[i])
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", quoteIdent(table), strings.Join(defs, ",\n\t"))
}

func insertSQL(table string, names []string) string {
	quoted := make([]string, len(names))
	marks := make([]string, len(names))
	for i, name := range names {
		quoted[i] = quoteIdent(name)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
}

func sqliteType(t series.Type) string {
	switch t {
	case series.Float:
		return "REAL"
	case series.Int, series.Bool:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
