package catalog

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/joesive47/skillnexus-lms-sub005/core"
)

type (
	Course struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		// FinalExamLessonID designates the lesson whose completion is a
		// mandatory gate for whole-course completion.
		FinalExamLessonID null.String `json:"final_exam_lesson_id,omitempty"`
		CreatedAt         time.Time   `json:"created_at"` // UTC
		UpdatedAt         time.Time   `json:"updated_at"` // UTC
	}

	Lesson struct {
		ID              string    `json:"id"`
		CourseID        string    `json:"course_id"`
		Title           string    `json:"title"`
		Position        int       `json:"position"`
		DurationSeconds float64   `json:"duration_seconds"`
		Required        bool      `json:"required"`
		CreatedAt       time.Time `json:"created_at"` // UTC
		UpdatedAt       time.Time `json:"updated_at"` // UTC
	}

	Enrollment struct {
		UserID    string    `json:"user_id"`
		CourseID  string    `json:"course_id"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}
)

// IsFinalExam reports whether lessonID is the course's designated final exam.
func (c Course) IsFinalExam(lessonID string) bool {
	return c.FinalExamLessonID.Valid && c.FinalExamLessonID.String == lessonID
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title string `json:"title" validate:"required"`
}

func (nc *NewCourse) Validate(validate *validator.Validate, _ ut.Translator) error {
	nc.Title = core.CleanString(nc.Title)
	return validate.Struct(nc)
}

// NewLesson contains information needed to create a new Lesson.
type NewLesson struct {
	CourseID        string  `json:"course_id" validate:"required"`
	Title           string  `json:"title" validate:"required"`
	Position        int     `json:"position" validate:"min=0"`
	DurationSeconds float64 `json:"duration_seconds" validate:"min=0"`
	Required        bool    `json:"required"`
	FinalExam       bool    `json:"final_exam"`
}

func (nl *NewLesson) Validate(validate *validator.Validate, _ ut.Translator) error {
	nl.Title = core.CleanString(nl.Title)
	nl.CourseID = core.CleanString(nl.CourseID)
	return validate.Struct(nl)
}
