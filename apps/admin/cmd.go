package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/lophoc/core/calendar"
	"github.com/trezcool/lophoc/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	usrSvc user.ServiceInterface
	calSvc calendar.ServiceInterface
	db     *sqlx.DB // nil unless the backend is a SQL database
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -email EMAIL -name NAME [-role ROLE] - create an account")
	fmt.Println("  resetpassword -email EMAIL - reset an account's password")
	fmt.Println("  setweek -week N [-start YYYY-MM-DD] - set (or clear) the first day of a school week")
	fmt.Println("  bootstrap - create the missing tables of the SQL backend")
}

// promptPassword reads a password without echoing it. An empty password prints usage.
func promptPassword(fs *flag.FlagSet) (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		fs.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserEmail := addUserCmd.String("email", "", "The account's email. The password will be prompted next.")
	addUserName := addUserCmd.String("name", "", "The account's display name.")
	addUserRole := addUserCmd.String("role", user.RoleTeacher, "One of admin, teacher, student.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The account's email. The password will be prompted next.")

	setWeekCmd := flag.NewFlagSet("setweek", flag.ExitOnError)
	setWeekNumber := setWeekCmd.Int("week", 0, fmt.Sprintf("The school week (%d-%d).", calendar.FirstWeek, calendar.LastWeek))
	setWeekStart := setWeekCmd.String("start", "", "The week's first day as YYYY-MM-DD. Empty clears it.")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" || *addUserName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword(addUserCmd)
		if err != nil {
			return err
		}
		return cli.addUser(ctx, *addUserEmail, *addUserName, *addUserRole, pwd)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword(resetPasswordCmd)
		if err != nil {
			return err
		}
		return cli.resetPassword(ctx, *resetPasswordEmail, pwd)

	case "setweek":
		if err := setWeekCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setWeekNumber == 0 {
			setWeekCmd.Usage()
			return errHelp
		}
		return cli.setWeek(ctx, *setWeekNumber, *setWeekStart)

	case "bootstrap":
		return cli.bootstrap(ctx)

	default:
		cli.printUsage()
		return errHelp
	}
}
