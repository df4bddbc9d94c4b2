package certificate_test

import (
	"context"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joesive47/skillnexus-lms-sub005/core"
	"github.com/joesive47/skillnexus-lms-sub005/core/catalog"
	"github.com/joesive47/skillnexus-lms-sub005/core/certificate"
	"github.com/joesive47/skillnexus-lms-sub005/core/user"
	appfs "github.com/joesive47/skillnexus-lms-sub005/fs"
	emailsvc "github.com/joesive47/skillnexus-lms-sub005/services/email"
	logsvc "github.com/joesive47/skillnexus-lms-sub005/services/logger"
	dummydb "github.com/joesive47/skillnexus-lms-sub005/storage/database/dummy"
)

func setup(t *testing.T) (*certificate.Service, *user.Service, *catalog.Service) {
	t.Helper()

	db, err := dummydb.Open()
	require.NoError(t, err)

	logger := logsvc.NewConsoleLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	core.ParseEmailTemplates(appfs.FS, logger)
	emailsvc.ClearSentMessages()

	usrSvc := user.NewService(dummydb.NewUserRepository(db), logger)
	catalogSvc := catalog.NewService(dummydb.NewCatalogRepository(db))
	svc := certificate.NewService(
		dummydb.NewCertificateRepository(db), usrSvc, catalogSvc, emailsvc.NewConsoleServiceMock(), logger)
	return svc, usrSvc, catalogSvc
}

func TestService_Issue_isIdempotent(t *testing.T) {
	svc, usrSvc, catalogSvc := setup(t)
	ctx := context.Background()

	usr, err := usrSvc.Create(ctx, user.NewUser{
		Name:            "Awa Khady",
		Username:        "awakhady",
		Email:           "awa@skillnexus.test",
		Password:        "s3cr3t-pwd",
		PasswordConfirm: "s3cr3t-pwd",
		Roles:           []string{user.RoleStudent},
	})
	require.NoError(t, err)
	course, err := catalogSvc.CreateCourse(ctx, catalog.NewCourse{Title: "Go Fundamentals"})
	require.NoError(t, err)

	require.NoError(t, svc.Issue(ctx, usr.ID, course.ID))
	require.NoError(t, svc.Issue(ctx, usr.ID, course.ID))
	require.NoError(t, svc.Issue(ctx, usr.ID, course.ID))

	certs, err := svc.QueryByUser(ctx, usr.ID)
	require.NoError(t, err)
	require.Len(t, certs, 1, "repeat issuance must not mint extra certificates")

	cert := certs[0]
	assert.Equal(t, usr.ID, cert.UserID)
	assert.Equal(t, course.ID, cert.CourseID)
	assert.True(t, strings.HasPrefix(cert.SerialNumber, "SKN-"), "serial = %q", cert.SerialNumber)
	assert.False(t, cert.IssuedAt.IsZero())

	// exactly one notification, on first issuance only
	require.Len(t, emailsvc.SentMessages, 1)
	msg := emailsvc.SentMessages[0]
	assert.Equal(t, usr.Email, msg.To[0].Address)
	assert.Contains(t, msg.Subject, course.Title)
	assert.Contains(t, msg.TextContent, cert.SerialNumber)
}

func TestService_Get(t *testing.T) {
	svc, usrSvc, catalogSvc := setup(t)
	ctx := context.Background()

	usr, err := usrSvc.Create(ctx, user.NewUser{
		Name:            "Moussa Diop",
		Username:        "moussadiop",
		Email:           "moussa@skillnexus.test",
		Password:        "s3cr3t-pwd",
		PasswordConfirm: "s3cr3t-pwd",
	})
	require.NoError(t, err)
	course, err := catalogSvc.CreateCourse(ctx, catalog.NewCourse{Title: "Go Fundamentals"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, usr.ID, course.ID)
	assert.Equal(t, certificate.ErrNotFound, errors.Cause(err))

	require.NoError(t, svc.Issue(ctx, usr.ID, course.ID))
	cert, err := svc.Get(ctx, usr.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, cert.CourseID)
}
