package main

import (
	"context"
)

func (cli *commandLine) resetPassword(ctx context.Context, email, pwd string) error {
	return cli.usrSvc.ResetPassword(ctx, email, pwd)
}
