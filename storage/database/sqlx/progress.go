package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/joesive47/skillnexus-lms-sub005/core/progress"
)

type progressRepository struct {
	db *sqlx.DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *sqlx.DB) *progressRepository {
	return &progressRepository{db: db}
}

type progressRow struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	LessonID       string    `db:"lesson_id"`
	WatchedSeconds float64   `db:"watched_seconds"`
	TotalSeconds   float64   `db:"total_seconds"`
	Completed      bool      `db:"completed"`
	CreatedAt      null.Time `db:"created_at"`
	UpdatedAt      null.Time `db:"updated_at"`
}

func (repo progressRepository) unrow(row progressRow) progress.WatchProgress {
	return progress.WatchProgress{
		ID:             row.ID,
		UserID:         row.UserID,
		LessonID:       row.LessonID,
		WatchedSeconds: row.WatchedSeconds,
		TotalSeconds:   row.TotalSeconds,
		Completed:      row.Completed,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}

// UpsertProgress is a single atomic write: the numeric fields take the
// latest reported values while completed is OR-merged so it never reverts.
// Concurrent reports (multiple tabs) need no locking since the merge is
// commutative and idempotent.
func (repo progressRepository) UpsertProgress(ctx context.Context, wp progress.WatchProgress) (progress.WatchProgress, error) {
	row := progressRow{
		ID:             uuid.New().String(),
		UserID:         wp.UserID,
		LessonID:       wp.LessonID,
		WatchedSeconds: wp.WatchedSeconds,
		TotalSeconds:   wp.TotalSeconds,
		Completed:      wp.Completed,
		CreatedAt:      null.TimeFrom(wp.CreatedAt.UTC()),
		UpdatedAt:      null.TimeFrom(wp.UpdatedAt.UTC()),
	}

	rows, err := repo.db.NamedQueryContext(ctx, `
		INSERT INTO watch_progress (id, user_id, lesson_id, watched_seconds, total_seconds, completed, created_at, updated_at)
		VALUES (:id, :user_id, :lesson_id, :watched_seconds, :total_seconds, :completed, :created_at, :updated_at)
		ON CONFLICT (user_id, lesson_id) DO UPDATE
		SET watched_seconds = EXCLUDED.watched_seconds,
		    total_seconds   = EXCLUDED.total_seconds,
		    completed       = watch_progress.completed OR EXCLUDED.completed,
		    updated_at      = EXCLUDED.updated_at
		RETURNING *`,
		row)
	if err != nil {
		return progress.WatchProgress{}, errors.Wrap(err, "upserting watch progress")
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return progress.WatchProgress{}, errors.New("upserting watch progress: no row returned")
	}
	var stored progressRow
	if err = rows.StructScan(&stored); err != nil {
		return progress.WatchProgress{}, errors.Wrap(err, "upserting watch progress")
	}
	return repo.unrow(stored), nil
}

func (repo progressRepository) GetProgress(ctx context.Context, userID, lessonID string) (progress.WatchProgress, error) {
	var row progressRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM watch_progress WHERE user_id = $1 AND lesson_id = $2`, userID, lessonID)
	if err != nil {
		if err == sql.ErrNoRows {
			return progress.WatchProgress{}, progress.ErrNotFound
		}
		return progress.WatchProgress{}, errors.Wrap(err, "finding watch progress")
	}
	return repo.unrow(row), nil
}

func (repo progressRepository) QueryCourseProgress(ctx context.Context, userID, courseID string) ([]progress.WatchProgress, error) {
	var rows []progressRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT wp.* FROM watch_progress wp
		JOIN lesson l ON l.id = wp.lesson_id
		WHERE wp.user_id = $1 AND l.course_id = $2`,
		userID, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying course progress")
	}
	records := make([]progress.WatchProgress, 0, len(rows))
	for _, row := range rows {
		records = append(records, repo.unrow(row))
	}
	return records, nil
}
