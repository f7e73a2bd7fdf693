package advocatedb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/meghashyamc/advocates/config"
	"github.com/meghashyamc/advocates/logger"
	_ "modernc.org/sqlite"
)

const inMemoryDSN = ":memory:"

// bm25 column weights, in advocates_fts column order.
const (
	weightFirstName   = 2.0
	weightLastName    = 2.0
	weightCity        = 1.0
	weightDegree      = 1.0
	weightSpecialties = 3.0
)

const advocateColumns = `a.id AS id, a.first_name AS first_name, a.last_name AS last_name, a.city AS city,
	a.degree AS degree, a.specialties AS specialties, a.years_of_experience AS years_of_experience,
	a.phone_number AS phone_number, a.created_at AS created_at`

var rankExpression = fmt.Sprintf("bm25(advocates_fts, %.1f, %.1f, %.1f, %.1f, %.1f)",
	weightFirstName, weightLastName, weightCity, weightDegree, weightSpecialties)

type SQLiteDB struct {
	db     *sql.DB
	logger logger.Logger
}

var _ DB = (*SQLiteDB)(nil)

func New(logger logger.Logger, cfg *config.Config) (*SQLiteDB, error) {
	return Open(logger, cfg.GetSQLitePath())
}

// Open opens (or creates) the advocates database at path and makes sure the
// schema exists. Pass ":memory:" for an in-memory database.
func Open(logger logger.Logger, path string) (*SQLiteDB, error) {
	if path != inMemoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			logger.Error("failed to create database directory", "err", err.Error(), "path", path)
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Error("failed to open database", "err", err.Error(), "path", path)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		logger.Error("failed to initialize schema", "err", err.Error())
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteDB{db: db, logger: logger}, nil
}

func (s *SQLiteDB) FetchPage(ctx context.Context, predicate Predicate, order Order, limit int, offset int) ([]RawRow, error) {
	from, where, args := sqlFilter(predicate)

	columns := advocateColumns
	orderBy := " ORDER BY a.id ASC"
	switch order {
	case OrderByID:
	case OrderByRelevance:
		if !predicate.HasText() {
			return nil, &InvalidOrderError{Order: order, Reason: "relevance order requires a text query"}
		}
		columns += ", " + rankExpression + " AS rank"
		orderBy = " ORDER BY rank ASC, a.id ASC"
	default:
		return nil, &InvalidOrderError{Order: order, Reason: "unsupported order"}
	}

	query := "SELECT " + columns + " FROM " + from + where + orderBy + " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to fetch advocates", "order", order.String(), "err", err.Error())
		return nil, fmt.Errorf("failed to fetch advocates: %w", err)
	}
	defer rows.Close()

	return scanRawRows(rows)
}

func (s *SQLiteDB) FetchCount(ctx context.Context, predicate Predicate) (int64, error) {
	from, where, args := sqlFilter(predicate)

	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+from+where, args...).Scan(&count); err != nil {
		s.logger.Error("failed to count advocates", "err", err.Error())
		return 0, fmt.Errorf("failed to count advocates: %w", err)
	}

	return count, nil
}

func (s *SQLiteDB) Specialties(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT CAST(tag.value AS TEXT)
		FROM advocates a, json_each(a.specialties) AS tag
		WHERE tag.type = 'text'
		ORDER BY 1`)
	if err != nil {
		s.logger.Error("failed to list specialties", "err", err.Error())
		return nil, fmt.Errorf("failed to list specialties: %w", err)
	}
	defer rows.Close()

	specialties := make([]string, 0)
	for rows.Next() {
		var specialty string
		if err := rows.Scan(&specialty); err != nil {
			return nil, fmt.Errorf("failed to scan specialty: %w", err)
		}
		specialties = append(specialties, specialty)
	}

	return specialties, rows.Err()
}

// Insert stores advocates in one transaction. A zero ID lets the database
// assign one.
func (s *SQLiteDB) Insert(ctx context.Context, advocates []Advocate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin insert transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO advocates (id, first_name, last_name, city, degree, specialties, years_of_experience, phone_number, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, advocate := range advocates {
		if advocate.YearsOfExperience < 0 {
			return &InvalidAdvocateError{ID: advocate.ID, Reason: "years of experience cannot be negative"}
		}

		specialties := advocate.Specialties
		if specialties == nil {
			specialties = []string{}
		}
		specialtiesJSON, err := json.Marshal(specialties)
		if err != nil {
			return fmt.Errorf("failed to marshal specialties for advocate %d: %w", advocate.ID, err)
		}

		createdAt := advocate.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}

		id := sql.NullInt64{Int64: advocate.ID, Valid: advocate.ID != 0}
		if _, err := stmt.ExecContext(ctx, id, advocate.FirstName, advocate.LastName, advocate.City, advocate.Degree,
			string(specialtiesJSON), advocate.YearsOfExperience, advocate.PhoneNumber,
			createdAt.UTC().Format(time.RFC3339Nano)); err != nil {
			s.logger.Error("failed to insert advocate", "id", advocate.ID, "err", err.Error())
			return fmt.Errorf("failed to insert advocate %d: %w", advocate.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteDB) Close() error {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("could not close advocates database", "err", err.Error())
			return err
		}
	}
	return nil
}

// sqlFilter is the single place the predicate becomes SQL, so the page and
// count queries always filter identically. Tags are bound, never inlined.
func sqlFilter(predicate Predicate) (from string, where string, args []any) {
	from = "advocates a"
	var conditions []string

	if predicate.HasText() {
		from = "advocates_fts JOIN advocates a ON a.id = advocates_fts.rowid"
		conditions = append(conditions, "advocates_fts MATCH ?")
		args = append(args, predicate.Text().FTS5())
	}

	if tags := predicate.Tags(); len(tags) > 0 {
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM json_each(a.specialties) AS tag WHERE tag.value IN (?"+strings.Repeat(", ?", len(tags)-1)+"))")
		for _, tag := range tags {
			args = append(args, tag)
		}
	}

	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	return from, where, args
}

func scanRawRows(rows *sql.Rows) ([]RawRow, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	result := make([]RawRow, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(RawRow, len(columns))
		for i, column := range columns {
			row[column] = values[i]
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return result, nil
}
