package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/joesive47/skillnexus-lms-sub005/core/certificate"
)

// pq unique_violation
const uniqueViolationCode = "23505"

type certificateRepository struct {
	db *sqlx.DB
}

var _ certificate.Repository = (*certificateRepository)(nil) // interface compliance check

func NewCertificateRepository(db *sqlx.DB) *certificateRepository {
	return &certificateRepository{db: db}
}

type certificateRow struct {
	ID           string       `db:"id"`
	UserID       string       `db:"user_id"`
	CourseID     string       `db:"course_id"`
	SerialNumber string       `db:"serial_number"`
	IssuedAt     sql.NullTime `db:"issued_at"`
}

func (repo certificateRepository) unrow(row certificateRow) certificate.Certificate {
	return certificate.Certificate{
		ID:           row.ID,
		UserID:       row.UserID,
		CourseID:     row.CourseID,
		SerialNumber: row.SerialNumber,
		IssuedAt:     row.IssuedAt.Time,
	}
}

func (repo certificateRepository) CreateCertificate(ctx context.Context, cert certificate.Certificate) (certificate.Certificate, error) {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO certificate (id, user_id, course_id, serial_number, issued_at)
		VALUES ($1, $2, $3, $4, $5)`,
		cert.ID, cert.UserID, cert.CourseID, cert.SerialNumber, cert.IssuedAt.UTC())
	if err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == uniqueViolationCode {
			return certificate.Certificate{}, certificate.ErrExists
		}
		return certificate.Certificate{}, errors.Wrap(err, "inserting certificate")
	}
	return cert, nil
}

func (repo certificateRepository) GetCertificate(ctx context.Context, userID, courseID string) (certificate.Certificate, error) {
	var row certificateRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM certificate WHERE user_id = $1 AND course_id = $2`, userID, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return certificate.Certificate{}, certificate.ErrNotFound
		}
		return certificate.Certificate{}, errors.Wrap(err, "finding certificate")
	}
	return repo.unrow(row), nil
}

func (repo certificateRepository) QueryUserCertificates(ctx context.Context, userID string) ([]certificate.Certificate, error) {
	var rows []certificateRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM certificate WHERE user_id = $1 ORDER BY issued_at DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying certificates")
	}
	certs := make([]certificate.Certificate, 0, len(rows))
	for _, row := range rows {
		certs = append(certs, repo.unrow(row))
	}
	return certs, nil
}
