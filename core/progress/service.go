package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/joesive47/skillnexus-lms-sub005/core"
	"github.com/joesive47/skillnexus-lms-sub005/core/catalog"
)

var (
	ErrNotFound    = errors.New("watch progress not found")
	ErrNotEnrolled = errors.New("user is not enrolled in this course")
)

type (
	Repository interface {
		// UpsertProgress atomically creates or updates the (user, lesson)
		// record: numeric fields are last-write-wins, Completed is merged
		// with a logical OR so it never reverts. Must be a single atomic
		// write (database-native upsert).
		UpsertProgress(ctx context.Context, wp WatchProgress) (WatchProgress, error)
		GetProgress(ctx context.Context, userID, lessonID string) (WatchProgress, error)
		// QueryCourseProgress returns all of the user's records for lessons
		// belonging to the course.
		QueryCourseProgress(ctx context.Context, userID, courseID string) ([]WatchProgress, error)
	}

	// CertificateIssuer idempotently creates a certificate for (user, course).
	CertificateIssuer interface {
		Issue(ctx context.Context, userID, courseID string) error
	}

	Service struct {
		repo       Repository
		catalogSvc *catalog.Service
		issuer     CertificateIssuer
		logger     core.Logger
		threshold  float64
	}
)

func NewService(repo Repository, catalogSvc *catalog.Service, issuer CertificateIssuer, logger core.Logger, conf *core.Config) *Service {
	return &Service{
		repo:       repo,
		catalogSvc: catalogSvc,
		issuer:     issuer,
		logger:     logger,
		threshold:  conf.Progress.CompletionThreshold,
	}
}

// ReportProgress persists a playback client's progress report for userID and
// returns the stored record. The lesson must exist and the user must be
// enrolled in its course. When the report completes the lesson and that in
// turn completes the course, certificate issuance is triggered; issuance
// failures are logged but never fail the report.
func (svc *Service) ReportProgress(ctx context.Context, userID string, report ProgressReport) (WatchProgress, error) {
	lesson, err := svc.catalogSvc.GetLesson(ctx, report.LessonID)
	if err != nil {
		return WatchProgress{}, err
	}

	enrolled, err := svc.catalogSvc.IsEnrolled(ctx, userID, lesson.CourseID)
	if err != nil {
		return WatchProgress{}, errors.Wrap(err, "checking enrollment")
	}
	if !enrolled {
		return WatchProgress{}, ErrNotEnrolled
	}

	completed := report.Completed ||
		(report.TotalSeconds > 0 && report.WatchedSeconds/report.TotalSeconds >= svc.threshold)

	prev, err := svc.repo.GetProgress(ctx, userID, report.LessonID)
	if err != nil && errors.Cause(err) != ErrNotFound {
		return WatchProgress{}, errors.Wrap(err, "failed to update progress")
	}

	now := time.Now().UTC()
	rec, err := svc.repo.UpsertProgress(ctx, WatchProgress{
		UserID:         userID,
		LessonID:       report.LessonID,
		WatchedSeconds: report.WatchedSeconds,
		TotalSeconds:   report.TotalSeconds,
		Completed:      completed,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return WatchProgress{}, errors.Wrap(err, "failed to update progress")
	}

	// Two racing reports may both observe the transition; issuance is
	// idempotent so that is harmless.
	if rec.Completed && !prev.Completed {
		svc.onLessonCompleted(ctx, userID, lesson)
	}
	return rec, nil
}

func (svc *Service) onLessonCompleted(ctx context.Context, userID string, lesson catalog.Lesson) {
	completion, err := svc.CourseCompletion(ctx, userID, lesson.CourseID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("computing course completion: %v", err), err)
		return
	}
	if !completion.Complete {
		return
	}
	if err = svc.issuer.Issue(ctx, userID, lesson.CourseID); err != nil {
		// never roll back progress for a downstream failure; a later
		// qualifying report retries issuance
		svc.logger.Error(fmt.Sprintf("issuing certificate: %v", err), err)
	}
}

// GetProgress returns the stored record for (userID, lessonID), or
// ErrNotFound when the learner has not reported any progress yet.
func (svc *Service) GetProgress(ctx context.Context, userID, lessonID string) (WatchProgress, error) {
	return svc.repo.GetProgress(ctx, userID, lessonID)
}

// CourseCompletion computes whole-course completion: every required lesson
// completed, and the designated final-exam lesson (if any) completed as well.
// A course with zero lessons is never complete.
func (svc *Service) CourseCompletion(ctx context.Context, userID, courseID string) (CourseCompletion, error) {
	course, err := svc.catalogSvc.GetCourse(ctx, courseID)
	if err != nil {
		return CourseCompletion{}, err
	}
	lessons, err := svc.catalogSvc.QueryCourseLessons(ctx, courseID)
	if err != nil {
		return CourseCompletion{}, errors.Wrap(err, "querying course lessons")
	}

	records, err := svc.repo.QueryCourseProgress(ctx, userID, courseID)
	if err != nil {
		return CourseCompletion{}, errors.Wrap(err, "querying course progress")
	}
	completedByLesson := make(map[string]bool, len(records))
	for _, rec := range records {
		completedByLesson[rec.LessonID] = rec.Completed
	}

	completion := CourseCompletion{
		CourseID:          courseID,
		FinalExamLessonID: course.FinalExamLessonID.String,
	}
	allRequiredDone := true
	for _, lesson := range lessons {
		done := completedByLesson[lesson.ID]
		if done {
			completion.CompletedLessons++
		}
		if lesson.Required || course.IsFinalExam(lesson.ID) {
			completion.RequiredLessons++
			if !done {
				allRequiredDone = false
			}
		}
	}
	completion.FinalExamDone = !course.FinalExamLessonID.Valid ||
		completedByLesson[course.FinalExamLessonID.String]

	completion.Complete = len(lessons) > 0 && allRequiredDone && completion.FinalExamDone
	return completion, nil
}
