package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/KaushalKalal/TrainingManagement-Dashboard/core"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf   *core.Config
	db     *sql.DB
	usrSvc user.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Println("  resetpassword -email EMAIL - reset user's password")
	fmt.Println("  addcode -code CODE - add an instructor security code")
	fmt.Println("  seedcodes - seed the configured instructor security codes, if none exists yet")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	addCodeCmd := flag.NewFlagSet("addcode", flag.ExitOnError)
	addCodeCode := addCodeCmd.String("code", "", "The instructor security code to add.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, string(pwd))
	case "addcode":
		if err := addCodeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addCodeCode == "" {
			addCodeCmd.Usage()
			return errHelp
		}
		return cli.addCode(*addCodeCode)
	case "seedcodes":
		return cli.seedCodes()
	default:
		cli.printUsage()
		return errHelp
	}
}
