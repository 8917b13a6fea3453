package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"collegeview/internal/domain"
)

// DefaultTable is the table read and written when none is configured.
const DefaultTable = "colleges"

// ErrInvalidTable is returned for table names that are not plain identifiers.
var ErrInvalidTable = errors.New("dataset: invalid table name")

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Dialect selects the SQL driver and its placeholder syntax.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "postgres"
)

func (d Dialect) placeholder(n int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// SQLStore keeps a dataset in a single SQL table. Rows carry a position
// column so that reads return them in insertion order.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	table   string
}

// OpenSQLite opens (or creates) a SQLite database file and ensures the
// table exists.
func OpenSQLite(ctx context.Context, path, table string) (*SQLStore, error) {
	db, err := sql.Open(string(SQLite), path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	return newSQLStore(ctx, db, SQLite, table, 1)
}

// OpenPostgres connects to PostgreSQL, retrying the initial ping while the
// server comes up, and ensures the table exists.
func OpenPostgres(ctx context.Context, dsn, table string) (*SQLStore, error) {
	db, err := sql.Open(string(Postgres), dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	return newSQLStore(ctx, db, Postgres, table, 5)
}

func newSQLStore(ctx context.Context, db *sql.DB, dialect Dialect, table string, attempts int) (*SQLStore, error) {
	if table == "" {
		table = DefaultTable
	}
	if !identRe.MatchString(table) {
		db.Close()
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				db.Close()
				return nil, ctx.Err()
			case <-time.After(time.Second):
			}
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping: %w", dialect, err)
	}

	s := &SQLStore{db: db, dialect: dialect, table: table}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: migrate: %w", dialect, err)
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	cols := make([]string, 0, len(Columns)+1)
	cols = append(cols, "position INTEGER NOT NULL")
	for _, c := range Columns {
		cols = append(cols, c+" TEXT NOT NULL DEFAULT ''")
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", s.table, strings.Join(cols, ",\n\t")))
	return err
}

// Write replaces the table contents with records inside one transaction.
func (s *SQLStore) Write(ctx context.Context, records []domain.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", s.dialect, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+s.table); err != nil {
		return fmt.Errorf("%s: clear: %w", s.dialect, err)
	}

	const batchSize = 50
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := s.insertBatch(ctx, tx, i, records[i:end]); err != nil {
			return fmt.Errorf("%s: insert: %w", s.dialect, err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) insertBatch(ctx context.Context, tx *sql.Tx, offset int, batch []domain.Record) error {
	width := len(Columns) + 1
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*width)

	for idx := range batch {
		ph := make([]string, width)
		for j := range ph {
			ph[j] = s.dialect.placeholder(idx*width + j + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs, offset+idx)
		for _, col := range Columns {
			valueArgs = append(valueArgs, *field(&batch[idx], col))
		}
	}

	query := fmt.Sprintf("INSERT INTO %s (position, %s) VALUES %s",
		s.table, strings.Join(Columns, ", "), strings.Join(valueStrings, ","))
	_, err := tx.ExecContext(ctx, query, valueArgs...)
	return err
}

// Load reads every row in position order.
func (s *SQLStore) Load(ctx context.Context) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY position", strings.Join(Columns, ", "), s.table))
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", s.dialect, err)
	}
	defer rows.Close()

	records := []domain.Record{}
	for rows.Next() {
		var rec domain.Record
		cells := make([]sql.NullString, len(Columns))
		dest := make([]any, len(Columns))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", s.dialect, err)
		}
		for i, col := range Columns {
			*field(&rec, col) = cells[i].String
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", s.dialect, err)
	}
	ensureIDs(records)
	return records, nil
}

func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
