package models

// Roles carried in access tokens
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

// Principal is the authenticated caller of a request
type Principal struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Name   string `json:"name"`
}
