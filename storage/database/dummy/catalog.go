package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/joesive47/skillnexus-lms-sub005/core/catalog"
)

type catalogRepository struct {
	courses     *courseTable
	lessons     *lessonTable
	enrollments *enrollmentTable
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{
		courses:     db.course,
		lessons:     db.lesson,
		enrollments: db.enrollment,
	}
}

func (repo *catalogRepository) CreateCourse(_ context.Context, course catalog.Course) (catalog.Course, error) {
	repo.courses.Lock()
	defer repo.courses.Unlock()

	course.ID = uuid.New().String()
	repo.courses.table[course.ID] = &course
	return course, nil
}

func (repo *catalogRepository) CreateLesson(_ context.Context, lesson catalog.Lesson) (catalog.Lesson, error) {
	repo.lessons.Lock()
	defer repo.lessons.Unlock()

	lesson.ID = uuid.New().String()
	repo.lessons.table[lesson.ID] = &lesson
	return lesson, nil
}

func (repo *catalogRepository) SetFinalExamLesson(_ context.Context, courseID, lessonID string) error {
	repo.courses.Lock()
	defer repo.courses.Unlock()

	course, ok := repo.courses.table[courseID]
	if !ok {
		return catalog.ErrCourseNotFound
	}
	course.FinalExamLessonID = null.StringFrom(lessonID)
	return nil
}

func (repo *catalogRepository) CreateEnrollment(_ context.Context, enr catalog.Enrollment) (catalog.Enrollment, error) {
	repo.enrollments.Lock()
	defer repo.enrollments.Unlock()

	repo.enrollments.table[enrollmentKey{enr.UserID, enr.CourseID}] = &enr
	return enr, nil
}

func (repo *catalogRepository) GetCourse(_ context.Context, id string) (catalog.Course, error) {
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	if course, ok := repo.courses.table[id]; ok {
		return *course, nil
	}
	return catalog.Course{}, catalog.ErrCourseNotFound
}

func (repo *catalogRepository) GetLesson(_ context.Context, id string) (catalog.Lesson, error) {
	repo.lessons.RLock()
	defer repo.lessons.RUnlock()

	if lesson, ok := repo.lessons.table[id]; ok {
		return *lesson, nil
	}
	return catalog.Lesson{}, catalog.ErrLessonNotFound
}

func (repo *catalogRepository) QueryCourseLessons(_ context.Context, courseID string) ([]catalog.Lesson, error) {
	repo.lessons.RLock()
	defer repo.lessons.RUnlock()

	var lessons []catalog.Lesson
	for _, lesson := range repo.lessons.table {
		if lesson.CourseID == courseID {
			lessons = append(lessons, *lesson)
		}
	}
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].Position < lessons[j].Position })
	return lessons, nil
}

func (repo *catalogRepository) EnrollmentExists(_ context.Context, userID, courseID string) (bool, error) {
	repo.enrollments.RLock()
	defer repo.enrollments.RUnlock()

	_, ok := repo.enrollments.table[enrollmentKey{userID, courseID}]
	return ok, nil
}
