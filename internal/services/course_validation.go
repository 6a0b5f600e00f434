package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/learnhub/backend/internal/apperrors"
	"github.com/learnhub/backend/internal/models"
)

// newValidator creates a validator that reports fields by their JSON names
// and knows the "category" tag
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("category", validCategory); err != nil {
		panic(fmt.Sprintf("failed to register category validation: %v", err))
	}
	return v
}

func validCategory(fl validator.FieldLevel) bool {
	return models.Category(fl.Field().String()).IsValid()
}

// validateStruct runs the struct tags and converts failures into a validation error
func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("failed to validate request: %w", err)
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, fieldMessage(fe))
	}
	return apperrors.Validation(strings.Join(messages, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	// Namespace is "<Struct>.<json path>", the struct name is dropped
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min", "gte":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must contain exactly %s items", field, fe.Param())
	case "category":
		names := make([]string, len(models.Categories))
		for i, c := range models.Categories {
			names[i] = string(c)
		}
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(names, ", "))
	default:
		return field + " is invalid"
	}
}

// validateCourse checks the authoring invariants of a course document
func validateCourse(v *validator.Validate, course *models.Course) error {
	if err := validateStruct(v, course); err != nil {
		return err
	}

	seen := make(map[string]bool, len(course.Lessons))
	for _, l := range course.Lessons {
		if seen[l.ID] {
			return apperrors.Validation(fmt.Sprintf("duplicate lesson id: %s", l.ID))
		}
		seen[l.ID] = true
	}

	count := len(course.QuizQuestions)
	if count != 0 && count != models.RequiredQuizQuestions {
		return apperrors.Validation(fmt.Sprintf("quiz must have exactly %d questions, got %d", models.RequiredQuizQuestions, count))
	}
	if course.Published && count != models.RequiredQuizQuestions {
		return apperrors.Validation(fmt.Sprintf("a published course requires a final quiz of exactly %d questions", models.RequiredQuizQuestions))
	}

	return nil
}
