package models

import "time"

const (
	// RequiredQuizQuestions is the number of questions a published course quiz must have
	RequiredQuizQuestions = 10
	// QuizOptionCount is the number of options every quiz question offers
	QuizOptionCount = 4
	// PassingScore is the minimum percentage needed to pass a quiz
	PassingScore = 75
)

// QuizQuestion represents a multiple choice question of a course quiz
type QuizQuestion struct {
	Question      string   `json:"question" bson:"question" validate:"required"`
	Options       []string `json:"options" bson:"options" validate:"len=4,dive,required"`
	CorrectAnswer int      `json:"correctAnswer" bson:"correct_answer" validate:"min=0,max=3"`
}

// IsValid reports whether the question has text, four non-empty options and an in-range correct answer
func (q QuizQuestion) IsValid() bool {
	if q.Question == "" || len(q.Options) != QuizOptionCount {
		return false
	}
	for _, option := range q.Options {
		if option == "" {
			return false
		}
	}
	return q.CorrectAnswer >= 0 && q.CorrectAnswer < QuizOptionCount
}

// QuizQuestionView is a quiz question as shown to a student (correct answer withheld)
type QuizQuestionView struct {
	Index    int      `json:"index"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// QuizResult represents the outcome of grading a set of answers
type QuizResult struct {
	CorrectCount  int  `json:"correctCount"`
	QuestionCount int  `json:"questionCount"`
	Score         int  `json:"score"`
	Passed        bool `json:"passed"`
}

// SubmitQuizRequest represents a student's answers keyed by question index
type SubmitQuizRequest struct {
	Answers map[int]int `json:"answers"`
}

// GradeQuizRequest represents a stateless grading request
type GradeQuizRequest struct {
	Questions []QuizQuestion `json:"questions" validate:"min=1,dive"`
	Answers   map[int]int    `json:"answers"`
}

// QuizSubmissionResult represents the outcome of a final quiz submission
type QuizSubmissionResult struct {
	Success         bool        `json:"success"`
	Score           int         `json:"score"`
	CorrectCount    int         `json:"correctCount"`
	QuestionCount   int         `json:"questionCount"`
	CourseCompleted bool        `json:"courseCompleted"`
	Message         string      `json:"message"`
	Enrollment      *Enrollment `json:"enrollment"`
}

// QuizAttempt is an audit record of a single quiz submission
type QuizAttempt struct {
	ID            string    `json:"id" bson:"_id"`
	StudentID     string    `json:"studentId" bson:"student_id"`
	CourseID      string    `json:"courseId" bson:"course_id"`
	Score         int       `json:"score" bson:"score"`
	CorrectCount  int       `json:"correctCount" bson:"correct_count"`
	QuestionCount int       `json:"questionCount" bson:"question_count"`
	Passed        bool      `json:"passed" bson:"passed"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
}
