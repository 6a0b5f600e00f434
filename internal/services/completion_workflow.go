package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/learnhub/backend/internal/apperrors"
	"github.com/learnhub/backend/internal/models"
	"go.uber.org/zap"
)

// Certificate refusal reasons
const (
	ReasonLessonsIncomplete = "lessons_incomplete"
	ReasonQuizNotPassed     = "quiz_not_passed"
)

// QuizAttemptRepository defines methods for quiz attempt audit records
type QuizAttemptRepository interface {
	// Create inserts a new quiz attempt
	//
	// "ctx" is the context for the request.
	// "attempt" is the attempt to record.
	//
	// Returns an error if any.
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	// ListByStudent retrieves every quiz attempt of a student, newest first
	//
	// "ctx" is the context for the request.
	// "studentID" is the ID of the student.
	//
	// Returns a list of attempts and an error if any.
	ListByStudent(ctx context.Context, studentID string) ([]models.QuizAttempt, error)
}

type completionWorkflow struct {
	ledger      *enrollmentLedger
	courseRepo  CourseRepository
	lessons     LessonSource
	attemptRepo QuizAttemptRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewCompletionWorkflow creates the lesson completion and quiz gating workflow
func NewCompletionWorkflow(
	ledger *enrollmentLedger,
	courseRepo CourseRepository,
	lessons LessonSource,
	attemptRepo QuizAttemptRepository,
	logger *zap.Logger,
) *completionWorkflow {
	return &completionWorkflow{
		ledger:      ledger,
		courseRepo:  courseRepo,
		lessons:     lessons,
		attemptRepo: attemptRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// IsCertified reports whether every current lesson is completed and the quiz is passed
func IsCertified(enrollment *models.Enrollment, lessons []models.Lesson) bool {
	return CertificationGap(enrollment, lessons) == ""
}

// CertificationGap returns the reason the enrollment is not certified yet, or empty string if it is
func CertificationGap(enrollment *models.Enrollment, lessons []models.Lesson) string {
	missing := enrollment.MissingLessons(lessons)
	switch {
	case len(missing) == 0 && enrollment.QuizPassed:
		return ""
	case len(missing) == 0:
		return ReasonQuizNotPassed
	case enrollment.QuizPassed:
		return ReasonLessonsIncomplete
	case len(missing) == 1 && missing[0] == enrollment.PendingLessonID:
		// only the lesson deferred behind the quiz is left
		return ReasonQuizNotPassed
	default:
		return ReasonLessonsIncomplete
	}
}

// CompleteLesson records a lesson as watched. Completing the last remaining lesson,
// or any lesson once all are done without a passed quiz, opens the final quiz.
func (w *completionWorkflow) CompleteLesson(ctx context.Context, studentID, courseID, lessonID string) (*models.LessonCompletionResult, error) {
	enrollment, err := w.ledger.Get(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}

	course, lessons, err := w.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if !models.ContainsLesson(lessons, lessonID) {
		return nil, apperrors.NotFound("lesson")
	}

	// Every current lesson is done but the quiz is not passed, e.g. after lessons
	// were removed. Completing any lesson again reopens the quiz.
	if !enrollment.QuizPassed && len(enrollment.MissingLessons(lessons)) == 0 {
		return w.requestQuiz(ctx, enrollment, course, lessons, lessonID)
	}

	if enrollment.HasCompleted(lessonID) {
		return completionResult(enrollment, lessons, false), nil
	}

	if !enrollment.QuizPassed && enrollment.CompletedCount(lessons)+1 == len(lessons) {
		return w.requestQuiz(ctx, enrollment, course, lessons, lessonID)
	}

	next, err := enrollment.State.Apply(models.TransitionCompleteLesson)
	if err != nil {
		return nil, fmt.Errorf("failed to complete lesson: %w", err)
	}
	stateChanged := next != enrollment.State || enrollment.PendingLessonID != ""

	if err := w.ledger.MarkLessonComplete(ctx, enrollment, lessonID); err != nil {
		return nil, err
	}

	certified := IsCertified(enrollment, lessons)
	if stateChanged || certified != enrollment.CourseCompleted {
		enrollment.State = next
		enrollment.PendingLessonID = ""
		enrollment.CourseCompleted = certified
		if err := w.ledger.saveProgress(ctx, enrollment); err != nil {
			return nil, err
		}
	}

	return completionResult(enrollment, lessons, false), nil
}

func (w *completionWorkflow) requestQuiz(ctx context.Context, enrollment *models.Enrollment, course *models.Course, lessons []models.Lesson, lessonID string) (*models.LessonCompletionResult, error) {
	if !course.HasValidQuiz() {
		return nil, apperrors.New(apperrors.ErrQuizUnavailable,
			fmt.Sprintf("this course needs a final quiz of %d questions before it can be completed", models.RequiredQuizQuestions))
	}

	next, err := enrollment.State.Apply(models.TransitionRequestQuiz)
	if err != nil {
		return nil, fmt.Errorf("failed to request quiz: %w", err)
	}

	enrollment.State = next
	enrollment.PendingLessonID = lessonID
	if err := w.ledger.saveProgress(ctx, enrollment); err != nil {
		return nil, err
	}

	return completionResult(enrollment, lessons, true), nil
}

// GetPendingQuiz returns the final quiz without its answers while the quiz is pending
func (w *completionWorkflow) GetPendingQuiz(ctx context.Context, studentID, courseID string) ([]models.QuizQuestionView, error) {
	enrollment, err := w.ledger.Get(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	if enrollment.State != models.StateQuizPending {
		return nil, notPendingError(enrollment)
	}

	course, _, err := w.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.HasValidQuiz() {
		return nil, apperrors.ErrQuizUnavailable
	}

	views := make([]models.QuizQuestionView, len(course.QuizQuestions))
	for i, q := range course.QuizQuestions {
		views[i] = models.QuizQuestionView{Index: i, Question: q.Question, Options: q.Options}
	}
	return views, nil
}

// SubmitQuiz grades the pending final quiz. Passing completes every current lesson of the course.
func (w *completionWorkflow) SubmitQuiz(ctx context.Context, studentID, courseID string, answers map[int]int) (*models.QuizSubmissionResult, error) {
	enrollment, err := w.ledger.Get(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	if enrollment.State != models.StateQuizPending {
		return nil, notPendingError(enrollment)
	}

	course, lessons, err := w.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.HasValidQuiz() {
		return nil, apperrors.ErrQuizUnavailable
	}

	if err := validateAnswers(course.QuizQuestions, answers); err != nil {
		return nil, err
	}

	result := EvaluateQuiz(course.QuizQuestions, answers)
	w.recordAttempt(ctx, enrollment, result)

	if !result.Passed {
		next, err := enrollment.State.Apply(models.TransitionFailQuiz)
		if err != nil {
			return nil, fmt.Errorf("failed to record quiz failure: %w", err)
		}
		enrollment.State = next
		if err := w.ledger.RecordQuizResult(ctx, enrollment, result.Score, false); err != nil {
			return nil, err
		}
		return &models.QuizSubmissionResult{
			Success:       false,
			Score:         result.Score,
			CorrectCount:  result.CorrectCount,
			QuestionCount: result.QuestionCount,
			Message:       fmt.Sprintf("You scored %d%%. A score of %d%% is needed to pass, complete the final lesson again to retry.", result.Score, models.PassingScore),
			Enrollment:    enrollment,
		}, nil
	}

	next, err := enrollment.State.Apply(models.TransitionPassQuiz)
	if err != nil {
		return nil, fmt.Errorf("failed to record quiz pass: %w", err)
	}

	// Lessons are written first so a failed result write leaves the quiz pending and retryable
	ids := make([]string, len(lessons))
	for i, l := range lessons {
		ids[i] = l.ID
	}
	if err := w.ledger.MarkLessonComplete(ctx, enrollment, ids...); err != nil {
		return nil, err
	}

	enrollment.State = next
	enrollment.PendingLessonID = ""
	enrollment.QuizPassed = true
	enrollment.CourseCompleted = IsCertified(enrollment, lessons)
	if err := w.ledger.RecordQuizResult(ctx, enrollment, result.Score, true); err != nil {
		return nil, err
	}

	w.logger.Info("course completed",
		zap.String("student_id", studentID),
		zap.String("course_id", courseID),
		zap.Int("score", result.Score),
	)

	return &models.QuizSubmissionResult{
		Success:         true,
		Score:           result.Score,
		CorrectCount:    result.CorrectCount,
		QuestionCount:   result.QuestionCount,
		CourseCompleted: enrollment.CourseCompleted,
		Message:         fmt.Sprintf("You scored %d%% and completed the course.", result.Score),
		Enrollment:      enrollment,
	}, nil
}

func (w *completionWorkflow) loadCourse(ctx context.Context, courseID string) (*models.Course, []models.Lesson, error) {
	course, err := w.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get course: %w", err)
	}
	lessons, err := w.lessons.Lessons(ctx, course)
	if err != nil {
		return nil, nil, err
	}
	return course, lessons, nil
}

// recordAttempt writes the audit record of a submission; failures are logged only
func (w *completionWorkflow) recordAttempt(ctx context.Context, enrollment *models.Enrollment, result models.QuizResult) {
	attempt := &models.QuizAttempt{
		ID:            uuid.New().String(),
		StudentID:     enrollment.StudentID,
		CourseID:      enrollment.CourseID,
		Score:         result.Score,
		CorrectCount:  result.CorrectCount,
		QuestionCount: result.QuestionCount,
		Passed:        result.Passed,
		CreatedAt:     w.now(),
	}
	if err := w.attemptRepo.Create(ctx, attempt); err != nil {
		w.logger.Warn("failed to record quiz attempt",
			zap.String("student_id", enrollment.StudentID),
			zap.String("course_id", enrollment.CourseID),
			zap.Error(err),
		)
	}
}

func validateAnswers(questions []models.QuizQuestion, answers map[int]int) error {
	for index, answer := range answers {
		if index < 0 || index >= len(questions) {
			return apperrors.Validation(fmt.Sprintf("answer for unknown question %d", index))
		}
		if answer < 0 || answer >= models.QuizOptionCount {
			return apperrors.Validation(fmt.Sprintf("answer for question %d must be between 0 and %d", index, models.QuizOptionCount-1))
		}
	}
	if len(answers) != len(questions) {
		return apperrors.New(apperrors.ErrQuizSubmissionIncomplete,
			fmt.Sprintf("all %d quiz questions must be answered, got %d", len(questions), len(answers)))
	}
	return nil
}

func notPendingError(enrollment *models.Enrollment) error {
	if enrollment.State == models.StateQuizPassed {
		return apperrors.New(apperrors.ErrQuizNotPending, "the final quiz has already been passed")
	}
	return apperrors.New(apperrors.ErrQuizNotPending, "complete the final lesson to take the quiz")
}

func completionResult(enrollment *models.Enrollment, lessons []models.Lesson, quizRequired bool) *models.LessonCompletionResult {
	completed := enrollment.CompletedCount(lessons)
	return &models.LessonCompletionResult{
		Enrollment:          enrollment,
		CompletedLessons:    completed,
		TotalLessons:        len(lessons),
		CompletedAllLessons: completed == len(lessons),
		QuizRequired:        quizRequired,
	}
}
