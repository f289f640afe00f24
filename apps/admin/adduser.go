package main

import (
	"context"
	"fmt"

	"github.com/trezcool/lophoc/core/user"
)

func (cli *commandLine) addUser(ctx context.Context, email, name, role, pwd string) error {
	usr, err := cli.usrSvc.CreateAccount(ctx, user.NewAccount{
		Email:    email,
		Name:     name,
		Role:     role,
		Password: pwd,
	})
	if err != nil {
		return err
	}
	fmt.Printf("account %s created for %s (%s)\n", usr.ID, usr.Email, usr.Role)
	return nil
}
