package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) addCode(code string) error {
	if err := cli.usrSvc.AddSecurityCode(context.Background(), code); err != nil {
		return err
	}
	fmt.Println("instructor security code added")
	return nil
}

func (cli *commandLine) seedCodes() error {
	seeded, err := cli.usrSvc.SeedSecurityCodes(context.Background(), cli.conf.InstructorCodes)
	if err != nil {
		return err
	}
	if seeded {
		fmt.Printf("%d instructor security codes seeded\n", len(cli.conf.InstructorCodes))
	} else {
		fmt.Println("instructor security codes already exist, nothing to do")
	}
	return nil
}
