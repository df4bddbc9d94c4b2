package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/joesive47/skillnexus-lms-sub005/core/catalog"
	"github.com/joesive47/skillnexus-lms-sub005/core/progress"
	"github.com/joesive47/skillnexus-lms-sub005/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db          *sql.DB
	usrSvc      *user.Service
	catalogSvc  *catalog.Service
	progressSvc *progress.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate up|down|status|version... - run database migrations")
	fmt.Println("  adduser -username USERNAME -email EMAIL [-admin] - create a user; the password is prompted next")
	fmt.Println("  coursestatus -user USER_ID -course COURSE_ID - print a learner's course completion standing")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserUname := addUserCmd.String("username", "", "The user's username. The password will be prompted next.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserIsAdmin := addUserCmd.Bool("admin", false, "Grant all roles to the user.")

	courseStatusCmd := flag.NewFlagSet("coursestatus", flag.ExitOnError)
	courseStatusUser := courseStatusCmd.String("user", "", "The learner's user ID.")
	courseStatusCourse := courseStatusCmd.String("course", "", "The course ID.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserUname, *addUserEmail, string(pwd), *addUserIsAdmin)
	case "coursestatus":
		if err := courseStatusCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *courseStatusUser == "" || *courseStatusCourse == "" {
			courseStatusCmd.Usage()
			return errHelp
		}
		return cli.courseStatus(*courseStatusUser, *courseStatusCourse)
	default:
		cli.printUsage()
		return errHelp
	}
}
