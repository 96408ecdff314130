// Package sqlstore loads table function results into an in-memory SQLite
// database so they can be joined, filtered and aggregated with SQL.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"regexp"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/Guliveer/sysstats/internal/tablefunc"
)

// QueryName is the Function name given to query results.
const QueryName = "query"

// Store is an in-memory SQLite database holding one table per loaded function.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open creates an empty in-memory database.
func Open(ctx context.Context, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database not responding: %w", err)
	}
	logger.Debug("In-memory sqlite database opened")
	return &Store{db: db, logger: logger}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load (re)creates the table named after res.Function and inserts its rows.
func (s *Store) Load(ctx context.Context, res *tablefunc.Result) error {
	table := quoteIdent(res.Function)

	cols := make([]string, len(res.Columns))
	marks := make([]string, len(res.Columns))
	for i, c := range res.Columns {
		cols[i] = quoteIdent(c.Name) + " " + c.Type.String()
		marks[i] = "?"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load of %s: %w", res.Function, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("drop %s: %w", res.Function, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(cols, ", "))); err != nil {
		return fmt.Errorf("create %s: %w", res.Function, err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("prepare insert into %s: %w", res.Function, err)
	}
	defer stmt.Close()

	for _, row := range res.Rows {
		args := make([]interface{}, len(row))
		for i, v := range row {
			args[i] = bindValue(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert into %s: %w", res.Function, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load of %s: %w", res.Function, err)
	}
	s.logger.Debug("Loaded table", zap.String("table", res.Function), zap.Int("rows", len(res.Rows)))
	return nil
}

// Query runs a read query and returns its columns and rows. Records holds
// one map per row keyed by column name.
func (s *Store) Query(ctx context.Context, query string) (*tablefunc.Result, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("query column types: %w", err)
	}

	res := &tablefunc.Result{Function: QueryName, Columns: make([]tablefunc.Column, len(names))}
	for i, name := range names {
		res.Columns[i] = tablefunc.Column{Name: name, Type: columnType(types[i].DatabaseTypeName())}
	}

	records := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(names))
		ptrs := make([]interface{}, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		record := make(map[string]interface{}, len(names))
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
			record[names[i]] = values[i]
		}
		res.Rows = append(res.Rows, values)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	res.Records = records
	return res, nil
}

func columnType(dbType string) tablefunc.ColumnType {
	switch strings.ToUpper(dbType) {
	case "INTEGER", "INT", "BIGINT":
		return tablefunc.Integer
	default:
		return tablefunc.Text
	}
}

// bindValue clamps unsigned values that do not fit SQLite's signed 64-bit
// integers.
func bindValue(v interface{}) interface{} {
	if u, ok := v.(uint64); ok {
		if u > math.MaxInt64 {
			return int64(math.MaxInt64)
		}
		return int64(u)
	}
	return v
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Referenced returns the names that appear as identifiers in query, in the
// order given.
func Referenced(query string, names []string) []string {
	var out []string
	for _, name := range names {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
		if re.MatchString(query) {
			out = append(out, name)
		}
	}
	return out
}
