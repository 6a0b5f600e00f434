package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/learnhub/backend/internal/models"
)

type quizAttemptRepository struct {
	db *sql.DB
}

// NewQuizAttemptRepository creates a new quiz attempt repository
func NewQuizAttemptRepository(db *sql.DB) *quizAttemptRepository {
	return &quizAttemptRepository{
		db: db,
	}
}

// Create inserts a graded quiz attempt
func (r *quizAttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	query := `
		INSERT INTO quiz_attempts (id, student_id, course_id, score, correct_count, question_count, passed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		attempt.ID,
		attempt.StudentID,
		attempt.CourseID,
		attempt.Score,
		attempt.CorrectCount,
		attempt.QuestionCount,
		attempt.Passed,
		attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz attempt: %w", err)
	}

	return nil
}

// ListByStudent retrieves all quiz attempts of a student, newest first
func (r *quizAttemptRepository) ListByStudent(ctx context.Context, studentID string) ([]models.QuizAttempt, error) {
	query := `
		SELECT id, student_id, course_id, score, correct_count, question_count, passed, created_at
		FROM quiz_attempts
		WHERE student_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz attempts: %w", err)
	}
	defer rows.Close()

	attempts := make([]models.QuizAttempt, 0)
	for rows.Next() {
		var attempt models.QuizAttempt
		if err := rows.Scan(
			&attempt.ID,
			&attempt.StudentID,
			&attempt.CourseID,
			&attempt.Score,
			&attempt.CorrectCount,
			&attempt.QuestionCount,
			&attempt.Passed,
			&attempt.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quiz attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quiz attempts: %w", err)
	}

	return attempts, nil
}
