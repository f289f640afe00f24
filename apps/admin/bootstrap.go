package main

import (
	"context"
	"errors"

	"github.com/trezcool/lophoc/storage/database"
)

var (
	bootstrapFunc = database.Bootstrap // mockable

	errNoSQLBackend = errors.New("bootstrap needs a SQL backend (postgres or sqlite)")
)

func (cli *commandLine) bootstrap(ctx context.Context) error {
	if cli.db == nil {
		return errNoSQLBackend
	}
	return bootstrapFunc(ctx, cli.db)
}
