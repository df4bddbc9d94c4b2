package catalog

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrLessonNotFound = errors.New("lesson not found")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, course Course) (Course, error)
		CreateLesson(ctx context.Context, lesson Lesson) (Lesson, error)
		SetFinalExamLesson(ctx context.Context, courseID, lessonID string) error
		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		GetLesson(ctx context.Context, id string) (Lesson, error)
		// QueryCourseLessons returns the course's lessons ordered by position.
		QueryCourseLessons(ctx context.Context, courseID string) ([]Lesson, error)
		EnrollmentExists(ctx context.Context, userID, courseID string) (bool, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateCourse(ctx context.Context, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	return svc.repo.CreateCourse(ctx, Course{
		Title:     nc.Title,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) CreateLesson(ctx context.Context, nl NewLesson) (Lesson, error) {
	if _, err := svc.repo.GetCourse(ctx, nl.CourseID); err != nil {
		return Lesson{}, err
	}

	now := time.Now().UTC()
	lesson, err := svc.repo.CreateLesson(ctx, Lesson{
		CourseID:        nl.CourseID,
		Title:           nl.Title,
		Position:        nl.Position,
		DurationSeconds: nl.DurationSeconds,
		Required:        nl.Required,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return Lesson{}, err
	}

	if nl.FinalExam {
		if err = svc.repo.SetFinalExamLesson(ctx, nl.CourseID, lesson.ID); err != nil {
			return Lesson{}, errors.Wrap(err, "designating final exam lesson")
		}
	}
	return lesson, nil
}

func (svc *Service) Enroll(ctx context.Context, userID, courseID string) (Enrollment, error) {
	if _, err := svc.repo.GetCourse(ctx, courseID); err != nil {
		return Enrollment{}, err
	}
	return svc.repo.CreateEnrollment(ctx, Enrollment{
		UserID:    userID,
		CourseID:  courseID,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) GetCourse(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *Service) GetLesson(ctx context.Context, id string) (Lesson, error) {
	return svc.repo.GetLesson(ctx, id)
}

func (svc *Service) QueryCourseLessons(ctx context.Context, courseID string) ([]Lesson, error) {
	return svc.repo.QueryCourseLessons(ctx, courseID)
}

func (svc *Service) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	return svc.repo.EnrollmentExists(ctx, userID, courseID)
}
