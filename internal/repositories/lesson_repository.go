package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/learnhub/backend/internal/models"
)

type lessonRepository struct {
	db *sql.DB
}

// NewLessonRepository creates a new lesson repository
func NewLessonRepository(db *sql.DB) *lessonRepository {
	return &lessonRepository{
		db: db,
	}
}

// Create inserts a new independent lesson record
func (r *lessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	query := `
		INSERT INTO lessons (id, course_id, title, video_url, notes, duration, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		lesson.ID,
		lesson.CourseID,
		lesson.Title,
		lesson.VideoURL,
		lesson.Notes,
		lesson.Duration,
		lesson.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}

	return nil
}

// ListByCourse retrieves the lesson records of a course in creation order
func (r *lessonRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Lesson, error) {
	query := `
		SELECT id, course_id, title, video_url, notes, duration, created_at
		FROM lessons
		WHERE course_id = ?
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	lessons := make([]models.Lesson, 0)
	for rows.Next() {
		var lesson models.Lesson
		if err := rows.Scan(
			&lesson.ID,
			&lesson.CourseID,
			&lesson.Title,
			&lesson.VideoURL,
			&lesson.Notes,
			&lesson.Duration,
			&lesson.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lessons: %w", err)
	}

	return lessons, nil
}

// DeleteByCourse removes every lesson record of a course
func (r *lessonRepository) DeleteByCourse(ctx context.Context, courseID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM lessons WHERE course_id = ?`, courseID); err != nil {
		return fmt.Errorf("failed to delete lessons: %w", err)
	}
	return nil
}
