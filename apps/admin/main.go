package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	dig_container "github.com/trezcool/lophoc/apps/api/di/dig"
	"github.com/trezcool/lophoc/core"
	"github.com/trezcool/lophoc/core/calendar"
	"github.com/trezcool/lophoc/core/user"
)

func main() {
	c := dig_container.New()

	var code int
	err := c.Invoke(func(
		logger core.Logger,
		backend dig_container.Backend,
		stores dig_container.LocalStores,
		validate *validator.Validate,
		translator ut.Translator,
		usrSvc user.ServiceInterface,
		calSvc calendar.ServiceInterface,
	) {
		defer func() {
			if backend.DB != nil {
				_ = backend.DB.Close()
			}
			_ = stores.Close()
		}()

		core.InitValidators(validate, translator)
		user.InitValidators(validate, translator)

		cli := commandLine{
			usrSvc: usrSvc,
			calSvc: calSvc,
			db:     backend.DB,
		}
		if err := cli.run(os.Args); err != nil {
			if !errors.Is(err, errHelp) {
				logger.Error(fmt.Sprintf("error: %v", err), err)
			}
			code = 1
		}
	})
	if err != nil {
		log.Fatal(err)
	}
	os.Exit(code)
}
