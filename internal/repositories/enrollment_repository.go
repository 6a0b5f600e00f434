package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/learnhub/backend/internal/apperrors"
	"github.com/learnhub/backend/internal/models"
)

// mysqlDuplicateEntry is the server error number of a unique key violation
const mysqlDuplicateEntry = 1062

const enrollmentColumns = `id, student_id, student_name, course_id, completed_lessons, state, pending_lesson_id, quiz_passed, quiz_score, course_completed, certificate_issued, enrolled_at, updated_at`

type enrollmentRepository struct {
	db *sql.DB
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *sql.DB) *enrollmentRepository {
	return &enrollmentRepository{
		db: db,
	}
}

// Create inserts a new enrollment, relying on the unique (student_id, course_id) key
func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	completed := enrollment.CompletedLessons
	if completed == nil {
		completed = []string{}
	}
	completedJSON, err := json.Marshal(completed)
	if err != nil {
		return fmt.Errorf("failed to encode completed lessons: %w", err)
	}

	query := `INSERT INTO enrollments (` + enrollmentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		enrollment.ID,
		enrollment.StudentID,
		enrollment.StudentName,
		enrollment.CourseID,
		completedJSON,
		enrollment.State,
		enrollment.PendingLessonID,
		enrollment.QuizPassed,
		enrollment.QuizScore,
		enrollment.CourseCompleted,
		enrollment.CertificateIssued,
		enrollment.EnrolledAt,
		enrollment.UpdatedAt,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return apperrors.ErrDuplicateEnrollment
		}
		return fmt.Errorf("failed to create enrollment: %w", err)
	}

	return nil
}

// GetByStudentAndCourse retrieves the enrollment of a student in a course
func (r *enrollmentRepository) GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE student_id = ? AND course_id = ? LIMIT 1`

	enrollment, err := scanEnrollment(r.db.QueryRowContext(ctx, query, studentID, courseID))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("enrollment")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	return enrollment, nil
}

// ListByStudent retrieves all enrollments of a student, newest first
func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE student_id = ? ORDER BY enrolled_at DESC`
	return r.list(ctx, query, studentID)
}

// ListByCourse retrieves all enrollments in a course, oldest first
func (r *enrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE course_id = ? ORDER BY enrolled_at ASC`
	return r.list(ctx, query, courseID)
}

func (r *enrollmentRepository) list(ctx context.Context, query string, arg string) ([]models.Enrollment, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := make([]models.Enrollment, 0)
	for rows.Next() {
		enrollment, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		enrollments = append(enrollments, *enrollment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enrollments: %w", err)
	}

	return enrollments, nil
}

// AddCompletedLessons appends the lesson IDs that are not yet in the completed set.
// Each append is guarded in SQL so concurrent completions never duplicate an ID.
func (r *enrollmentRepository) AddCompletedLessons(ctx context.Context, id string, lessonIDs []string) error {
	if len(lessonIDs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE enrollments
		SET completed_lessons = JSON_ARRAY_APPEND(completed_lessons, '$', ?), updated_at = CURRENT_TIMESTAMP(3)
		WHERE id = ? AND NOT JSON_CONTAINS(completed_lessons, JSON_QUOTE(?))
	`

	for _, lessonID := range lessonIDs {
		if _, err := tx.ExecContext(ctx, query, lessonID, id, lessonID); err != nil {
			return fmt.Errorf("failed to add completed lesson %s: %w", lessonID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateProgress writes the workflow fields of an enrollment
func (r *enrollmentRepository) UpdateProgress(ctx context.Context, enrollment *models.Enrollment) error {
	query := `
		UPDATE enrollments
		SET state = ?, pending_lesson_id = ?, quiz_passed = ?, quiz_score = ?,
			course_completed = ?, certificate_issued = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		enrollment.State,
		enrollment.PendingLessonID,
		enrollment.QuizPassed,
		enrollment.QuizScore,
		enrollment.CourseCompleted,
		enrollment.CertificateIssued,
		enrollment.UpdatedAt,
		enrollment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update enrollment progress: %w", err)
	}

	return nil
}

// Delete removes the enrollment of a student in a course
func (r *enrollmentRepository) Delete(ctx context.Context, studentID, courseID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE student_id = ? AND course_id = ?`, studentID, courseID)
	if err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("enrollment")
	}

	return nil
}

func scanEnrollment(row rowScanner) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	var completed []byte
	var state, pending sql.NullString

	err := row.Scan(
		&enrollment.ID,
		&enrollment.StudentID,
		&enrollment.StudentName,
		&enrollment.CourseID,
		&completed,
		&state,
		&pending,
		&enrollment.QuizPassed,
		&enrollment.QuizScore,
		&enrollment.CourseCompleted,
		&enrollment.CertificateIssued,
		&enrollment.EnrolledAt,
		&enrollment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	enrollment.State = models.EnrollmentState(state.String)
	enrollment.PendingLessonID = pending.String

	enrollment.CompletedLessons = []string{}
	if len(completed) > 0 {
		if err := json.Unmarshal(completed, &enrollment.CompletedLessons); err != nil {
			return nil, fmt.Errorf("failed to decode completed lessons: %w", err)
		}
	}

	return &enrollment, nil
}
