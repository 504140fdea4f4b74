package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/pi-elearning/chatbot-go/internal/catalog"
)

// SaveCourses replaces the snapshot with the given course list in one
// transaction. The snapshot is overwritten whole, never partially updated.
func (db *DB) SaveCourses(ctx context.Context, courses []catalog.Course) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM courses`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO courses (id, title, description, module_id, category_id, position, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().Unix()
	for i, course := range courses {
		if course.ID == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx,
			course.ID, course.Title, course.Description,
			course.ModuleID, course.CategoryID, i, now,
		); err != nil {
			return fmt.Errorf("insert course %s: %w", course.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// LoadCourses returns the snapshot in original catalog order.
func (db *DB) LoadCourses(ctx context.Context) ([]catalog.Course, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, title, description, module_id, category_id
		FROM courses ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var courses []catalog.Course
	for rows.Next() {
		var course catalog.Course
		if err := rows.Scan(&course.ID, &course.Title, &course.Description,
			&course.ModuleID, &course.CategoryID); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return courses, nil
}

// CountCourses returns the number of snapshot rows. Used by readiness.
func (db *DB) CountCourses(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count snapshot courses: %w", err)
	}
	return count, nil
}
