package models

import "time"

// StudentProgress is one enrollment row of a course progress report
type StudentProgress struct {
	EnrollmentID      string          `json:"enrollmentId"`
	StudentID         string          `json:"studentId"`
	StudentName       string          `json:"studentName"`
	State             EnrollmentState `json:"state"`
	CompletedLessons  int             `json:"completedLessons"`
	TotalLessons      int             `json:"totalLessons"`
	QuizPassed        bool            `json:"quizPassed"`
	QuizScore         int             `json:"quizScore"`
	CourseCompleted   bool            `json:"courseCompleted"`
	CertificateIssued bool            `json:"certificateIssued"`
	EnrolledAt        time.Time       `json:"enrolledAt"`
}

// CourseReport is the teacher's progress view of a course
type CourseReport struct {
	CourseID     string            `json:"courseId"`
	CourseTitle  string            `json:"courseTitle"`
	TotalLessons int               `json:"totalLessons"`
	Enrolled     int               `json:"enrolled"`
	Completed    int               `json:"completed"`
	Students     []StudentProgress `json:"students"`
}

// CertificateData is the content printed on a certificate
type CertificateData struct {
	RecipientName  string
	CourseTitle    string
	InstructorName string
	PlatformName   string
	IssuedAt       time.Time
}

// Certificate is a rendered certificate document
type Certificate struct {
	FileName    string
	ContentType string
	Content     []byte
}
