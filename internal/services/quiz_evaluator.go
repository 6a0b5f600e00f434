package services

import (
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/learnhub/backend/internal/models"
)

// EvaluateQuiz grades answers keyed by question index against the questions.
// A missing answer counts as incorrect. An empty question set scores 0 and does not pass.
func EvaluateQuiz(questions []models.QuizQuestion, answers map[int]int) models.QuizResult {
	result := models.QuizResult{QuestionCount: len(questions)}
	if len(questions) == 0 {
		return result
	}

	for i, q := range questions {
		if answer, ok := answers[i]; ok && answer == q.CorrectAnswer {
			result.CorrectCount++
		}
	}

	result.Score = int(math.Round(100 * float64(result.CorrectCount) / float64(result.QuestionCount)))
	result.Passed = result.Score >= models.PassingScore
	return result
}

type quizGrader struct {
	validate *validator.Validate
}

// NewQuizGrader creates a grader for stateless quiz submissions
func NewQuizGrader() *quizGrader {
	return &quizGrader{
		validate: newValidator(),
	}
}

// GradeQuiz validates the submitted questions and grades the answers against them
func (g *quizGrader) GradeQuiz(req *models.GradeQuizRequest) (*models.QuizResult, error) {
	if err := validateStruct(g.validate, req); err != nil {
		return nil, err
	}

	result := EvaluateQuiz(req.Questions, req.Answers)
	return &result, nil
}
