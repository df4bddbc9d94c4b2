package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/joesive47/skillnexus-lms-sub005/core/progress"
)

type progressRepository struct {
	db      *progressTable
	lessons *lessonTable
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *DB) *progressRepository {
	return &progressRepository{db: db.progress, lessons: db.lesson}
}

func (repo *progressRepository) UpsertProgress(_ context.Context, wp progress.WatchProgress) (progress.WatchProgress, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := progressKey{wp.UserID, wp.LessonID}
	if orig, ok := repo.db.table[key]; ok {
		orig.WatchedSeconds = wp.WatchedSeconds
		orig.TotalSeconds = wp.TotalSeconds
		orig.Completed = orig.Completed || wp.Completed // never un-completes
		orig.UpdatedAt = wp.UpdatedAt
		return *orig, nil
	}

	wp.ID = uuid.New().String()
	repo.db.table[key] = &wp
	return wp, nil
}

func (repo *progressRepository) GetProgress(_ context.Context, userID, lessonID string) (progress.WatchProgress, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if wp, ok := repo.db.table[progressKey{userID, lessonID}]; ok {
		return *wp, nil
	}
	return progress.WatchProgress{}, progress.ErrNotFound
}

func (repo *progressRepository) QueryCourseProgress(_ context.Context, userID, courseID string) ([]progress.WatchProgress, error) {
	repo.lessons.RLock()
	lessonIDs := make(map[string]bool)
	for _, lesson := range repo.lessons.table {
		if lesson.CourseID == courseID {
			lessonIDs[lesson.ID] = true
		}
	}
	repo.lessons.RUnlock()

	repo.db.RLock()
	defer repo.db.RUnlock()

	var records []progress.WatchProgress
	for key, wp := range repo.db.table {
		if key.userID == userID && lessonIDs[key.lessonID] {
			records = append(records, *wp)
		}
	}
	return records, nil
}
