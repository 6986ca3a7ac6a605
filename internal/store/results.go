package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"PsyAssist/internal/assessment"
)

// SaveResult inserts a finalized test result and returns its id
func (s *Store) SaveResult(ctx context.Context, r *assessment.Result) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO test_results (test_type, verdict, turn_count, details, created_at) VALUES (?, ?, ?, ?, ?)",
		string(r.TestType), r.Verdict, r.TurnCount, r.Details, r.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save result: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return id, nil
}

// ResultByID returns a single result, or nil when not found
func (s *Store) ResultByID(ctx context.Context, id int64) (*assessment.Result, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, test_type, verdict, turn_count, details, created_at FROM test_results WHERE id = ?", id)

	r, err := scanResult(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// AllResults returns every saved result, newest first
func (s *Store) AllResults(ctx context.Context) ([]*assessment.Result, error) {
	return s.queryResults(ctx,
		"SELECT id, test_type, verdict, turn_count, details, created_at FROM test_results ORDER BY created_at DESC")
}

// ResultsByType returns every result of one test type, newest first
func (s *Store) ResultsByType(ctx context.Context, t assessment.TestType) ([]*assessment.Result, error) {
	return s.queryResults(ctx,
		"SELECT id, test_type, verdict, turn_count, details, created_at FROM test_results WHERE test_type = ? ORDER BY created_at DESC",
		string(t))
}

// ResultsByTypeSince returns results of one type created at or after since,
// oldest first. Used for progression charts.
func (s *Store) ResultsByTypeSince(ctx context.Context, t assessment.TestType, since time.Time) ([]*assessment.Result, error) {
	return s.queryResults(ctx,
		"SELECT id, test_type, verdict, turn_count, details, created_at FROM test_results WHERE test_type = ? AND created_at >= ? ORDER BY created_at ASC",
		string(t), since.UnixMilli())
}

// DeleteResult removes one result
func (s *Store) DeleteResult(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM test_results WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete result %d: %w", id, err)
	}
	return nil
}

// DeleteAllResults removes every saved result
func (s *Store) DeleteAllResults(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM test_results"); err != nil {
		return fmt.Errorf("failed to delete results: %w", err)
	}
	return nil
}

// CountByType returns the number of completed tests per type
func (s *Store) CountByType(ctx context.Context) (map[assessment.TestType]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT test_type, COUNT(*) FROM test_results GROUP BY test_type")
	if err != nil {
		return nil, fmt.Errorf("failed to count results by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[assessment.TestType]int)
	for rows.Next() {
		var testType string
		var count int
		if err := rows.Scan(&testType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[assessment.TestType(testType)] = count
	}
	return counts, rows.Err()
}

// TotalCount returns the total number of completed tests
func (s *Store) TotalCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM test_results").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return count, nil
}

// CountSince returns the number of tests completed at or after since
func (s *Store) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM test_results WHERE created_at >= ?", since.UnixMilli()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent results: %w", err)
	}
	return count, nil
}

func (s *Store) queryResults(ctx context.Context, query string, args ...interface{}) ([]*assessment.Result, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	results := []*assessment.Result{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanResult(row scannable) (*assessment.Result, error) {
	var r assessment.Result
	var testType string
	var details sql.NullString
	var createdAt int64

	err := row.Scan(&r.ID, &testType, &r.Verdict, &r.TurnCount, &details, &createdAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan result row: %w", err)
	}

	r.TestType = assessment.TestType(testType)
	r.Details = details.String
	r.CreatedAt = time.UnixMilli(createdAt)
	return &r, nil
}
