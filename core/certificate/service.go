package certificate

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/joesive47/skillnexus-lms-sub005/core"
	"github.com/joesive47/skillnexus-lms-sub005/core/catalog"
	"github.com/joesive47/skillnexus-lms-sub005/core/user"
)

var (
	ErrNotFound = errors.New("certificate not found")
	// ErrExists is returned by repositories on a (user, course) uniqueness
	// violation; Issue traps it to stay idempotent under races.
	ErrExists = errors.New("certificate already exists")
)

type (
	Repository interface {
		CreateCertificate(ctx context.Context, cert Certificate) (Certificate, error)
		GetCertificate(ctx context.Context, userID, courseID string) (Certificate, error)
		QueryUserCertificates(ctx context.Context, userID string) ([]Certificate, error)
	}

	Service struct {
		repo       Repository
		usrSvc     *user.Service
		catalogSvc *catalog.Service
		mailSvc    core.EmailService
		logger     core.Logger
	}
)

func NewService(repo Repository, usrSvc *user.Service, catalogSvc *catalog.Service, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		repo:       repo,
		usrSvc:     usrSvc,
		catalogSvc: catalogSvc,
		mailSvc:    mailSvc,
		logger:     logger,
	}
}

// Issue creates a certificate for (userID, courseID) if one does not already
// exist, and notifies the learner by email on first issuance. Safe to call
// repeatedly: the existing certificate is returned as-is.
func (svc *Service) Issue(ctx context.Context, userID, courseID string) error {
	if _, err := svc.repo.GetCertificate(ctx, userID, courseID); err == nil {
		return nil
	} else if errors.Cause(err) != ErrNotFound {
		return errors.Wrap(err, "checking existing certificate")
	}

	cert := Certificate{
		ID:           uuid.New().String(),
		UserID:       userID,
		CourseID:     courseID,
		SerialNumber: newSerialNumber(),
		IssuedAt:     time.Now().UTC(),
	}
	cert, err := svc.repo.CreateCertificate(ctx, cert)
	if err != nil {
		if errors.Cause(err) == ErrExists { // lost a race; certificate is there
			return nil
		}
		return errors.Wrap(err, "creating certificate")
	}

	svc.sendIssuedMail(ctx, cert)
	return nil
}

func (svc *Service) Get(ctx context.Context, userID, courseID string) (Certificate, error) {
	return svc.repo.GetCertificate(ctx, userID, courseID)
}

func (svc *Service) QueryByUser(ctx context.Context, userID string) ([]Certificate, error) {
	return svc.repo.QueryUserCertificates(ctx, userID)
}

func (svc *Service) sendIssuedMail(ctx context.Context, cert Certificate) {
	usr, err := svc.usrSvc.GetByID(ctx, cert.UserID)
	if err != nil {
		svc.logger.Error("looking up certificate recipient", err)
		return
	}
	if usr.Email == "" {
		return
	}
	course, err := svc.catalogSvc.GetCourse(ctx, cert.CourseID)
	if err != nil {
		svc.logger.Error("looking up certificate course", err)
		return
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Your certificate for " + course.Title,
		TemplateName: "certificate-issued",
		TemplateData: struct {
			Name         string
			CourseTitle  string
			SerialNumber string
		}{usr.Name, course.Title, cert.SerialNumber},
	})
}

// newSerialNumber returns a short human-readable serial, e.g. "SKN-1A2B3C4D".
func newSerialNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "SKN-" + id[:8]
}
