package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// tableColumns whitelists the writable columns per table. The id column is
// always present and assigned here on insert.
var tableColumns = map[Table][]string{
	Courses:    {"code", "name", "instructor"},
	Students:   {"roll_number", "name", "email", "course_id"},
	Attendance: {"student_id", "course_id", "date", "status", "notes"},
}

// Postgres implements Client directly against a Postgres database for
// self-hosted deployments, using pgx through database/sql.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection with sane pool defaults and ensures the schema.
func NewPostgres(connString string) (*Postgres, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Postgres{db: db}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS courses (
		id         TEXT PRIMARY KEY,
		code       TEXT NOT NULL,
		name       TEXT NOT NULL,
		instructor TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS students (
		id          TEXT PRIMARY KEY,
		roll_number TEXT NOT NULL,
		name        TEXT NOT NULL,
		email       TEXT NOT NULL DEFAULT '',
		course_id   TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS attendance_records (
		id         TEXT PRIMARY KEY,
		student_id TEXT NOT NULL,
		course_id  TEXT NOT NULL,
		date       TEXT NOT NULL,
		status     TEXT NOT NULL,
		notes      TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_triple
		ON attendance_records (student_id, course_id, date);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying connection pool.
func (p *Postgres) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

// Select fetches all rows of a table, optionally ordered by a whitelisted column.
func (p *Postgres) Select(ctx context.Context, table Table, orderBy string) ([]Row, error) {
	cols, ok := tableColumns[table]
	if !ok {
		return nil, fmt.Errorf("store: unknown table %q", table)
	}
	query := fmt.Sprintf("SELECT id, %s FROM %s", strings.Join(cols, ", "), table)
	if orderBy != "" {
		if !contains(cols, orderBy) {
			return nil, fmt.Errorf("store: cannot order %s by %q", table, orderBy)
		}
		query += " ORDER BY " + orderBy
	}

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Row
	vals := make([]string, len(cols)+1)
	ptrs := make([]any, len(cols)+1)
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := Row{"id": vals[0]}
		for i, col := range cols {
			row[col] = vals[i+1]
		}
		res = append(res, row)
	}
	return res, rows.Err()
}

// Insert writes a row with a fresh uuid and returns it, id included.
func (p *Postgres) Insert(ctx context.Context, table Table, row Row) (Row, error) {
	cols, ok := tableColumns[table]
	if !ok {
		return nil, fmt.Errorf("store: unknown table %q", table)
	}
	id := uuid.NewString()
	names := []string{"id"}
	marks := []string{"$1"}
	args := []any{id}
	for _, col := range cols {
		if _, present := row[col]; !present {
			continue
		}
		names = append(names, col)
		marks = append(marks, fmt.Sprintf("$%d", len(args)+1))
		args = append(args, row.Str(col))
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(names, ", "), strings.Join(marks, ", "))
	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}

	inserted := Row{"id": id}
	for k, v := range row {
		inserted[k] = v
	}
	return inserted, nil
}

// Update patches whitelisted columns of the row with the given id.
func (p *Postgres) Update(ctx context.Context, table Table, id string, patch Row) error {
	cols, ok := tableColumns[table]
	if !ok {
		return fmt.Errorf("store: unknown table %q", table)
	}
	var sets []string
	var args []any
	for _, col := range cols {
		if _, present := patch[col]; !present {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)+1))
		args = append(args, patch.Str(col))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(sets, ", "), len(args))
	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the row with the given id.
func (p *Postgres) Delete(ctx context.Context, table Table, id string) error {
	if _, ok := tableColumns[table]; !ok {
		return fmt.Errorf("store: unknown table %q", table)
	}
	res, err := p.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func contains(cols []string, col string) bool {
	for _, c := range cols {
		if c == col {
			return true
		}
	}
	return false
}
