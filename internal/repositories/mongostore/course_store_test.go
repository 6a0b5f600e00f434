package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/learnhub/backend/internal/apperrors"
	"github.com/learnhub/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

var testTime = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func courseDoc(id string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: "Go Fundamentals"},
		{Key: "description", Value: "Learn Go"},
		{Key: "subject", Value: "Programming"},
		{Key: "category", Value: "Backend"},
		{Key: "teacher_id", Value: "t1"},
		{Key: "teacher_name", Value: "Grace Teacher"},
		{Key: "published", Value: true},
		{Key: "lessons", Value: bson.A{
			bson.D{{Key: "id", Value: "l1"}, {Key: "title", Value: "Intro"}, {Key: "video_url", Value: "https://video/1"}},
		}},
		{Key: "created_at", Value: testTime},
		{Key: "updated_at", Value: testTime},
	}
}

func updateResponse(n int32) bson.D {
	return bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: n}, {Key: "nModified", Value: n}}
}

func commandError() bson.D {
	return mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "boom"})
}

func TestCourseStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := NewCourseStore(mt.DB).Create(ctx, &models.Course{ID: "c1", Title: "Go Fundamentals"})

		assert.NoError(mt, err)
	})

	mt.Run("create error", func(mt *mtest.T) {
		mt.AddMockResponses(commandError())

		err := NewCourseStore(mt.DB).Create(ctx, &models.Course{ID: "c1"})

		assert.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to create course")
	})

	mt.Run("get by id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.courses", mtest.FirstBatch, courseDoc("c1")))

		course, err := NewCourseStore(mt.DB).GetByID(ctx, "c1")

		require.NoError(mt, err)
		assert.Equal(mt, "c1", course.ID)
		assert.Equal(mt, models.CategoryBackend, course.Category)
		require.Len(mt, course.Lessons, 1)
		assert.Equal(mt, "https://video/1", course.Lessons[0].VideoURL)
		assert.NotNil(mt, course.QuizQuestions)
		assert.Empty(mt, course.QuizQuestions)
		assert.Equal(mt, testTime, course.CreatedAt)
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.courses", mtest.FirstBatch))

		course, err := NewCourseStore(mt.DB).GetByID(ctx, "c1")

		assert.Nil(mt, course)
		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
		assert.EqualError(mt, err, "course not found")
	})

	mt.Run("list", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.courses", mtest.FirstBatch, courseDoc("c2"), courseDoc("c1")))
		backend := models.CategoryBackend

		courses, err := NewCourseStore(mt.DB).List(ctx, models.CourseFilter{Category: &backend, Search: "go+"})

		require.NoError(mt, err)
		require.Len(mt, courses, 2)
		assert.Equal(mt, "c2", courses[0].ID)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "find", started.CommandName)
		assert.Contains(mt, started.Command.String(), `go\\+`)
	})

	mt.Run("list error", func(mt *mtest.T) {
		mt.AddMockResponses(commandError())

		courses, err := NewCourseStore(mt.DB).List(ctx, models.CourseFilter{})

		assert.Nil(mt, courses)
		assert.Error(mt, err)
	})

	mt.Run("update", func(mt *mtest.T) {
		mt.AddMockResponses(updateResponse(1))

		err := NewCourseStore(mt.DB).Update(ctx, &models.Course{ID: "c1", Title: "Go Advanced"})

		assert.NoError(mt, err)
	})

	mt.Run("update not found", func(mt *mtest.T) {
		mt.AddMockResponses(updateResponse(0))

		err := NewCourseStore(mt.DB).Update(ctx, &models.Course{ID: "c1"})

		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}})

		assert.NoError(mt, NewCourseStore(mt.DB).Delete(ctx, "c1"))
	})

	mt.Run("delete not found", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}})

		err := NewCourseStore(mt.DB).Delete(ctx, "c1")

		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
	})
}

func TestLessonStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := NewLessonStore(mt.DB).Create(ctx, &models.Lesson{ID: "l9", CourseID: "c1", Title: "Extra", VideoURL: "https://video/9"})

		assert.NoError(mt, err)
	})

	mt.Run("list by course", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.lessons", mtest.FirstBatch,
			bson.D{{Key: "id", Value: "l1"}, {Key: "course_id", Value: "c1"}, {Key: "title", Value: "Intro"}, {Key: "created_at", Value: testTime}},
			bson.D{{Key: "id", Value: "l2"}, {Key: "course_id", Value: "c1"}, {Key: "title", Value: "Basics"}, {Key: "duration", Value: 120}},
		))

		lessons, err := NewLessonStore(mt.DB).ListByCourse(ctx, "c1")

		require.NoError(mt, err)
		require.Len(mt, lessons, 2)
		assert.Equal(mt, "l1", lessons[0].ID)
		assert.Equal(mt, 120, lessons[1].Duration)
	})

	mt.Run("list by course empty", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.lessons", mtest.FirstBatch))

		lessons, err := NewLessonStore(mt.DB).ListByCourse(ctx, "c1")

		require.NoError(mt, err)
		assert.NotNil(mt, lessons)
		assert.Empty(mt, lessons)
	})

	mt.Run("delete by course error", func(mt *mtest.T) {
		mt.AddMockResponses(commandError())

		err := NewLessonStore(mt.DB).DeleteByCourse(ctx, "c1")

		assert.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to delete lessons")
	})
}

func TestEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates indexes on every collection", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		assert.NoError(mt, EnsureIndexes(context.Background(), mt.DB))
	})

	mt.Run("index error", func(mt *mtest.T) {
		mt.AddMockResponses(commandError())

		err := EnsureIndexes(context.Background(), mt.DB)

		assert.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to create indexes on courses")
	})
}
