package progress

import (
	"math"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/joesive47/skillnexus-lms-sub005/core"
)

// WatchProgress is the persisted record of how much of a lesson's media a
// given learner has viewed. One record per (user, lesson).
type WatchProgress struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	LessonID       string  `json:"lesson_id"`
	WatchedSeconds float64 `json:"watched_seconds"`
	TotalSeconds   float64 `json:"total_seconds"`
	// Completed only ever transitions false -> true; repositories merge it
	// with a logical OR on update.
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Fraction returns the watched fraction of the media, in [0, 1].
func (wp WatchProgress) Fraction() float64 {
	if wp.TotalSeconds <= 0 {
		return 0
	}
	return wp.WatchedSeconds / wp.TotalSeconds
}

// ProgressReport is a single progress update from a playback client.
type ProgressReport struct {
	LessonID       string  `json:"lesson_id" validate:"required"`
	WatchedSeconds float64 `json:"watched_seconds" validate:"finite,min=0"`
	TotalSeconds   float64 `json:"total_seconds" validate:"finite,min=0"`
	// Completed lets the client assert completion explicitly, e.g. when the
	// player reached its natural end before the percentage threshold.
	Completed bool `json:"completed"`
}

func (pr *ProgressReport) Validate(validate *validator.Validate, _ ut.Translator) error {
	pr.LessonID = core.CleanString(pr.LessonID)
	return validate.Struct(pr)
}

// CourseCompletion summarizes a learner's standing in a course.
type CourseCompletion struct {
	CourseID          string `json:"course_id"`
	Complete          bool   `json:"complete"`
	RequiredLessons   int    `json:"required_lessons"`
	CompletedLessons  int    `json:"completed_lessons"`
	FinalExamLessonID string `json:"final_exam_lesson_id,omitempty"`
	FinalExamDone     bool   `json:"final_exam_done"`
}

var (
	finiteTag  = "finite"
	finiteText = "must be a finite number"
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(finiteTag, finiteValidation)
	core.RegisterCustomTranslation(validate, translator, finiteTag, finiteText)
}

// finiteValidation rejects NaN and +/-Inf float fields; JSON cannot carry
// them but other transports and direct service calls can.
func finiteValidation(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !(math.IsNaN(f) || math.IsInf(f, 0))
}
