package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/learnhub/backend/internal/apperrors"
	"github.com/learnhub/backend/internal/models"
)

const courseColumns = `id, title, description, subject, category, teacher_id, teacher_name, published, lessons, quiz_questions, thumbnail, created_at, updated_at`

type courseRepository struct {
	db *sql.DB
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *sql.DB) *courseRepository {
	return &courseRepository{
		db: db,
	}
}

// Create inserts a new course with its embedded lessons and quiz stored as JSON
func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	lessons, quiz, err := marshalCourseDocument(course)
	if err != nil {
		return err
	}

	query := `INSERT INTO courses (` + courseColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		course.ID,
		course.Title,
		course.Description,
		course.Subject,
		course.Category,
		course.TeacherID,
		course.TeacherName,
		course.Published,
		lessons,
		quiz,
		course.Thumbnail,
		course.CreatedAt,
		course.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	return nil
}

// GetByID retrieves a course by its ID
func (r *courseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = ? LIMIT 1`

	course, err := scanCourse(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("course")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course by id: %w", err)
	}

	return course, nil
}

// List retrieves courses matching the filter, newest first
func (r *courseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	var whereClauses []string
	var args []any

	if filter.Category != nil {
		whereClauses = append(whereClauses, "category = ?")
		args = append(args, *filter.Category)
	}

	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		whereClauses = append(whereClauses, "(title LIKE ? OR description LIKE ?)")
		args = append(args, pattern, pattern)
	}

	if filter.TeacherID != "" {
		whereClauses = append(whereClauses, "teacher_id = ?")
		args = append(args, filter.TeacherID)
	}

	whereClause := ""
	if len(whereClauses) > 0 {
		whereClause = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s FROM courses %s ORDER BY created_at DESC`, courseColumns, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	courses := make([]models.Course, 0)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, *course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating courses: %w", err)
	}

	return courses, nil
}

// Update replaces the mutable fields of a course
func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	lessons, quiz, err := marshalCourseDocument(course)
	if err != nil {
		return err
	}

	query := `
		UPDATE courses
		SET title = ?, description = ?, subject = ?, category = ?, teacher_name = ?, published = ?,
			lessons = ?, quiz_questions = ?, thumbnail = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		course.Title,
		course.Description,
		course.Subject,
		course.Category,
		course.TeacherName,
		course.Published,
		lessons,
		quiz,
		course.Thumbnail,
		course.UpdatedAt,
		course.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("course")
	}

	return nil
}

// Delete removes a course by its ID
func (r *courseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("course")
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (*models.Course, error) {
	var course models.Course
	var lessons, quiz []byte
	var thumbnail sql.NullString

	err := row.Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.Subject,
		&course.Category,
		&course.TeacherID,
		&course.TeacherName,
		&course.Published,
		&lessons,
		&quiz,
		&thumbnail,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	course.Thumbnail = thumbnail.String

	course.Lessons = []models.Lesson{}
	if len(lessons) > 0 {
		if err := json.Unmarshal(lessons, &course.Lessons); err != nil {
			return nil, fmt.Errorf("failed to decode lessons: %w", err)
		}
	}
	course.QuizQuestions = []models.QuizQuestion{}
	if len(quiz) > 0 {
		if err := json.Unmarshal(quiz, &course.QuizQuestions); err != nil {
			return nil, fmt.Errorf("failed to decode quiz questions: %w", err)
		}
	}

	return &course, nil
}

func marshalCourseDocument(course *models.Course) ([]byte, []byte, error) {
	lessons := course.Lessons
	if lessons == nil {
		lessons = []models.Lesson{}
	}
	lessonsJSON, err := json.Marshal(lessons)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode lessons: %w", err)
	}

	quiz := course.QuizQuestions
	if quiz == nil {
		quiz = []models.QuizQuestion{}
	}
	quizJSON, err := json.Marshal(quiz)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode quiz questions: %w", err)
	}

	return lessonsJSON, quizJSON, nil
}

// escapeLike escapes the LIKE wildcards of a user supplied search term
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
