package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/joesive47/skillnexus-lms-sub005/core/catalog"
)

type catalogRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *sqlx.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

type (
	courseRow struct {
		ID                string      `db:"id"`
		Title             string      `db:"title"`
		FinalExamLessonID null.String `db:"final_exam_lesson_id"`
		CreatedAt         null.Time   `db:"created_at"`
		UpdatedAt         null.Time   `db:"updated_at"`
	}

	lessonRow struct {
		ID              string    `db:"id"`
		CourseID        string    `db:"course_id"`
		Title           string    `db:"title"`
		Position        int       `db:"position"`
		DurationSeconds float64   `db:"duration_seconds"`
		Required        bool      `db:"required"`
		CreatedAt       null.Time `db:"created_at"`
		UpdatedAt       null.Time `db:"updated_at"`
	}
)

func (repo catalogRepository) unrowCourse(row courseRow) catalog.Course {
	return catalog.Course{
		ID:                row.ID,
		Title:             row.Title,
		FinalExamLessonID: row.FinalExamLessonID,
		CreatedAt:         row.CreatedAt.Time,
		UpdatedAt:         row.UpdatedAt.Time,
	}
}

func (repo catalogRepository) unrowLesson(row lessonRow) catalog.Lesson {
	return catalog.Lesson{
		ID:              row.ID,
		CourseID:        row.CourseID,
		Title:           row.Title,
		Position:        row.Position,
		DurationSeconds: row.DurationSeconds,
		Required:        row.Required,
		CreatedAt:       row.CreatedAt.Time,
		UpdatedAt:       row.UpdatedAt.Time,
	}
}

func (repo catalogRepository) CreateCourse(ctx context.Context, course catalog.Course) (catalog.Course, error) {
	course.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO course (id, title, final_exam_lesson_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		course.ID, course.Title, course.FinalExamLessonID, course.CreatedAt.UTC(), course.UpdatedAt.UTC())
	if err != nil {
		return catalog.Course{}, errors.Wrap(err, "inserting course")
	}
	return course, nil
}

func (repo catalogRepository) CreateLesson(ctx context.Context, lesson catalog.Lesson) (catalog.Lesson, error) {
	lesson.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO lesson (id, course_id, title, position, duration_seconds, required, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		lesson.ID, lesson.CourseID, lesson.Title, lesson.Position, lesson.DurationSeconds,
		lesson.Required, lesson.CreatedAt.UTC(), lesson.UpdatedAt.UTC())
	if err != nil {
		return catalog.Lesson{}, errors.Wrap(err, "inserting lesson")
	}
	return lesson, nil
}

func (repo catalogRepository) SetFinalExamLesson(ctx context.Context, courseID, lessonID string) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE course SET final_exam_lesson_id = $1 WHERE id = $2`, lessonID, courseID)
	if err != nil {
		return errors.Wrap(err, "setting final exam lesson")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return catalog.ErrCourseNotFound
	}
	return nil
}

func (repo catalogRepository) CreateEnrollment(ctx context.Context, enr catalog.Enrollment) (catalog.Enrollment, error) {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO enrollment (user_id, course_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, course_id) DO NOTHING`,
		enr.UserID, enr.CourseID, enr.CreatedAt.UTC())
	if err != nil {
		return catalog.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return enr, nil
}

func (repo catalogRepository) GetCourse(ctx context.Context, id string) (catalog.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return catalog.Course{}, catalog.ErrCourseNotFound
	}
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Course{}, catalog.ErrCourseNotFound
		}
		return catalog.Course{}, errors.Wrap(err, "finding course")
	}
	return repo.unrowCourse(row), nil
}

func (repo catalogRepository) GetLesson(ctx context.Context, id string) (catalog.Lesson, error) {
	if _, err := uuid.Parse(id); err != nil {
		return catalog.Lesson{}, catalog.ErrLessonNotFound
	}
	var row lessonRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM lesson WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Lesson{}, catalog.ErrLessonNotFound
		}
		return catalog.Lesson{}, errors.Wrap(err, "finding lesson")
	}
	return repo.unrowLesson(row), nil
}

func (repo catalogRepository) QueryCourseLessons(ctx context.Context, courseID string) ([]catalog.Lesson, error) {
	var rows []lessonRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM lesson WHERE course_id = $1 ORDER BY position, created_at`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying course lessons")
	}
	lessons := make([]catalog.Lesson, 0, len(rows))
	for _, row := range rows {
		lessons = append(lessons, repo.unrowLesson(row))
	}
	return lessons, nil
}

func (repo catalogRepository) EnrollmentExists(ctx context.Context, userID, courseID string) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM enrollment WHERE user_id = $1 AND course_id = $2)`, userID, courseID)
	if err != nil {
		return false, errors.Wrap(err, "checking enrollment")
	}
	return exists, nil
}
