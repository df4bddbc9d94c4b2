package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/joesive47/skillnexus-lms-sub005/core"
	"github.com/joesive47/skillnexus-lms-sub005/core/catalog"
	"github.com/joesive47/skillnexus-lms-sub005/core/certificate"
	"github.com/joesive47/skillnexus-lms-sub005/core/progress"
	"github.com/joesive47/skillnexus-lms-sub005/core/user"
	emailsvc "github.com/joesive47/skillnexus-lms-sub005/services/email"
	logsvc "github.com/joesive47/skillnexus-lms-sub005/services/logger"
	"github.com/joesive47/skillnexus-lms-sub005/storage/database"
	sqlxrepos "github.com/joesive47/skillnexus-lms-sub005/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	appLogger := logsvc.NewConsoleLogger(logger)

	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())
	sqlxDB := sqlx.NewDb(db, core.Conf.Database.Engine)

	// set up services
	mailSvc := emailsvc.NewConsoleService()
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(sqlxDB), appLogger)
	catalogSvc := catalog.NewService(sqlxrepos.NewCatalogRepository(sqlxDB))
	certSvc := certificate.NewService(
		sqlxrepos.NewCertificateRepository(sqlxDB), usrSvc, catalogSvc, mailSvc, appLogger)
	progressSvc := progress.NewService(
		sqlxrepos.NewProgressRepository(sqlxDB), catalogSvc, certSvc, appLogger, core.Conf)

	// start CLI
	cli := commandLine{
		db:          db,
		usrSvc:      usrSvc,
		catalogSvc:  catalogSvc,
		progressSvc: progressSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
