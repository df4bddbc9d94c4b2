package dummydb

import (
	"context"
	"sort"

	"github.com/joesive47/skillnexus-lms-sub005/core/certificate"
)

type certificateRepository struct {
	db *certificateTable
}

var _ certificate.Repository = (*certificateRepository)(nil) // interface compliance check

func NewCertificateRepository(db *DB) *certificateRepository {
	return &certificateRepository{db: db.certificate}
}

func (repo *certificateRepository) CreateCertificate(_ context.Context, cert certificate.Certificate) (certificate.Certificate, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := certificateKey{cert.UserID, cert.CourseID}
	if _, ok := repo.db.table[key]; ok {
		return certificate.Certificate{}, certificate.ErrExists
	}
	repo.db.table[key] = &cert
	return cert, nil
}

func (repo *certificateRepository) GetCertificate(_ context.Context, userID, courseID string) (certificate.Certificate, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cert, ok := repo.db.table[certificateKey{userID, courseID}]; ok {
		return *cert, nil
	}
	return certificate.Certificate{}, certificate.ErrNotFound
}

func (repo *certificateRepository) QueryUserCertificates(_ context.Context, userID string) ([]certificate.Certificate, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var certs []certificate.Certificate
	for key, cert := range repo.db.table {
		if key.userID == userID {
			certs = append(certs, *cert)
		}
	}
	sort.Slice(certs, func(i, j int) bool { return certs[i].IssuedAt.After(certs[j].IssuedAt) })
	return certs, nil
}
