package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/learnhub/backend/internal/apperrors"
	"github.com/learnhub/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var student = models.Principal{UserID: "s1", Role: models.RoleStudent, Name: "Ada Student"}

func setupLedger(courses []*models.Course, enrollments ...*models.Enrollment) (*enrollmentLedger, *mockEnrollmentRepository, *mockCourseRepository, *mockLessonRepository) {
	courseRepo := newMockCourseRepository(courses...)
	lessonRepo := newMockLessonRepository()
	enrollmentRepo := newMockEnrollmentRepository(enrollments...)
	ledger := NewEnrollmentLedger(enrollmentRepo, courseRepo, NewLessonResolver(lessonRepo), zap.NewNop())
	ledger.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return ledger, enrollmentRepo, courseRepo, lessonRepo
}

func TestNewEnrollmentLedger(t *testing.T) {
	enrollmentRepo := newMockEnrollmentRepository()
	courseRepo := newMockCourseRepository()
	resolver := NewLessonResolver(newMockLessonRepository())

	ledger := NewEnrollmentLedger(enrollmentRepo, courseRepo, resolver, zap.NewNop())

	assert.NotNil(t, ledger)
	assert.Equal(t, enrollmentRepo, ledger.enrollmentRepo)
	assert.Equal(t, courseRepo, ledger.courseRepo)
}

func TestEnrollmentLedger_Enroll(t *testing.T) {
	tests := []struct {
		name          string
		courseID      string
		existing      []*models.Enrollment
		createErr     error
		getErr        error
		expectedError error
		errorContains string
	}{
		{
			name:     "success",
			courseID: "c1",
		},
		{
			name:          "duplicate enrollment",
			courseID:      "c1",
			existing:      []*models.Enrollment{newTestEnrollment("s1", "c1")},
			expectedError: apperrors.ErrDuplicateEnrollment,
		},
		{
			name:          "concurrent duplicate rejected by store",
			courseID:      "c1",
			createErr:     apperrors.ErrDuplicateEnrollment,
			expectedError: apperrors.ErrDuplicateEnrollment,
		},
		{
			name:          "course not found",
			courseID:      "missing",
			expectedError: apperrors.ErrNotFound,
		},
		{
			name:          "lookup error",
			courseID:      "c1",
			getErr:        errors.New("db down"),
			errorContains: "failed to check enrollment",
		},
		{
			name:          "create error",
			courseID:      "c1",
			createErr:     errors.New("db down"),
			errorContains: "failed to create enrollment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger, enrollmentRepo, _, _ := setupLedger([]*models.Course{newTestCourse("c1", "t1", 3)}, tt.existing...)
			enrollmentRepo.createErr = tt.createErr
			enrollmentRepo.getErr = tt.getErr

			enrollment, err := ledger.Enroll(context.Background(), student, tt.courseID)

			if tt.expectedError != nil || tt.errorContains != "" {
				assert.Error(t, err)
				if tt.expectedError != nil {
					assert.ErrorIs(t, err, tt.expectedError)
				}
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				assert.Nil(t, enrollment)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, enrollment.ID)
			assert.Equal(t, models.StateInProgress, enrollment.State)
			assert.Empty(t, enrollment.CompletedLessons)
			assert.False(t, enrollment.QuizPassed)
			assert.Equal(t, 0, enrollment.QuizScore)
			assert.Equal(t, "Ada Student", enrollment.StudentName)
			assert.NotNil(t, enrollmentRepo.stored("s1", "c1"))
		})
	}
}

func TestEnrollmentLedger_MarkLessonComplete(t *testing.T) {
	stored := newTestEnrollment("s1", "c1", "l1")
	ledger, enrollmentRepo, _, _ := setupLedger(nil, stored)
	enrollment, err := ledger.Get(context.Background(), "s1", "c1")
	require.NoError(t, err)

	require.NoError(t, ledger.MarkLessonComplete(context.Background(), enrollment, "l2", "l1", "l2"))
	assert.Equal(t, []string{"l2"}, enrollmentRepo.lastAddedBatch)
	assert.ElementsMatch(t, []string{"l1", "l2"}, enrollment.CompletedLessons)
	assert.ElementsMatch(t, []string{"l1", "l2"}, stored.CompletedLessons)

	// repeating is a no-op without a write
	require.NoError(t, ledger.MarkLessonComplete(context.Background(), enrollment, "l1", "l2"))
	assert.Equal(t, 1, enrollmentRepo.addCalls)

	enrollmentRepo.addErr = errors.New("db down")
	err = ledger.MarkLessonComplete(context.Background(), enrollment, "l3")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to mark lessons complete")
	assert.NotContains(t, enrollment.CompletedLessons, "l3")
}

func TestEnrollmentLedger_RecordQuizResult(t *testing.T) {
	stored := newTestEnrollment("s1", "c1")
	ledger, _, _, _ := setupLedger(nil, stored)
	enrollment, err := ledger.Get(context.Background(), "s1", "c1")
	require.NoError(t, err)

	require.NoError(t, ledger.RecordQuizResult(context.Background(), enrollment, 60, false))
	assert.Equal(t, 60, stored.QuizScore)
	assert.False(t, stored.QuizPassed)
	assert.False(t, stored.CourseCompleted)

	require.NoError(t, ledger.RecordQuizResult(context.Background(), enrollment, 90, true))
	assert.Equal(t, 90, stored.QuizScore)
	assert.True(t, stored.QuizPassed)
	assert.False(t, stored.CourseCompleted)
}

func TestEnrollmentLedger_Get(t *testing.T) {
	legacy := newTestEnrollment("s1", "c1")
	legacy.State = ""
	ledger, enrollmentRepo, _, _ := setupLedger(nil, legacy)

	enrollment, err := ledger.Get(context.Background(), "s1", "c1")
	require.NoError(t, err)
	assert.Equal(t, models.StateInProgress, enrollment.State)

	_, err = ledger.Get(context.Background(), "s2", "c1")
	assert.ErrorIs(t, err, apperrors.ErrNotEnrolled)

	enrollmentRepo.getErr = errors.New("db down")
	_, err = ledger.Get(context.Background(), "s1", "c1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get enrollment")
}

func TestEnrollmentLedger_Unenroll(t *testing.T) {
	tests := []struct {
		name          string
		studentID     string
		deleteErr     error
		expectedError error
		errorContains string
	}{
		{name: "success", studentID: "s1"},
		{name: "not enrolled", studentID: "s2", expectedError: apperrors.ErrNotEnrolled},
		{name: "database error", studentID: "s1", deleteErr: errors.New("db down"), errorContains: "failed to delete enrollment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger, enrollmentRepo, _, _ := setupLedger(nil, newTestEnrollment("s1", "c1", "l1"))
			enrollmentRepo.deleteErr = tt.deleteErr

			err := ledger.Unenroll(context.Background(), tt.studentID, "c1")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			if tt.errorContains != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			assert.NoError(t, err)
			assert.Nil(t, enrollmentRepo.stored("s1", "c1"))
		})
	}
}

func TestEnrollmentLedger_UnenrollThenEnrollStartsFresh(t *testing.T) {
	progressed := newTestEnrollment("s1", "c1", "l1", "l2")
	progressed.QuizScore = 40
	ledger, _, _, _ := setupLedger([]*models.Course{newTestCourse("c1", "t1", 3)}, progressed)

	require.NoError(t, ledger.Unenroll(context.Background(), "s1", "c1"))
	enrollment, err := ledger.Enroll(context.Background(), student, "c1")

	require.NoError(t, err)
	assert.Empty(t, enrollment.CompletedLessons)
	assert.Equal(t, 0, enrollment.QuizScore)
}

func TestEnrollmentLedger_ListMine(t *testing.T) {
	course := newTestCourse("c1", "t1", 4)
	active := newTestEnrollment("s1", "c1", "l1", "l2", "gone")
	orphan := newTestEnrollment("s1", "deleted-course", "x1")
	orphan.EnrolledAt = active.EnrolledAt.Add(time.Hour)
	ledger, enrollmentRepo, courseRepo, _ := setupLedger([]*models.Course{course}, active, orphan, newTestEnrollment("s2", "c1"))

	views, err := ledger.ListMine(context.Background(), "s1")

	require.NoError(t, err)
	require.Len(t, views, 2)

	tombstone := views[0]
	assert.True(t, tombstone.Course.Deleted)
	assert.Equal(t, "deleted-course", tombstone.Course.ID)
	assert.Equal(t, deletedCourseTitle, tombstone.Course.Title)

	view := views[1]
	assert.False(t, view.Course.Deleted)
	assert.Equal(t, "Go Fundamentals", view.Course.Title)
	assert.Equal(t, "Grace Teacher", view.Course.TeacherName)
	assert.Equal(t, 4, view.Course.LessonCount)
	assert.Equal(t, 4, view.TotalLessons)
	assert.Equal(t, []models.LessonRef{{ID: "l1", Title: "Lesson 1"}, {ID: "l2", Title: "Lesson 2"}}, view.CompletedLessons)
	assert.Equal(t, 50, view.Progress)

	t.Run("course lookup error", func(t *testing.T) {
		courseRepo.err = errors.New("db down")
		defer func() { courseRepo.err = nil }()
		_, err := ledger.ListMine(context.Background(), "s1")
		assert.Error(t, err)
	})

	t.Run("list error", func(t *testing.T) {
		enrollmentRepo.listErr = errors.New("db down")
		_, err := ledger.ListMine(context.Background(), "s1")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list enrollments")
	})
}
