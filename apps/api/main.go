package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	dig_container "github.com/trezcool/lophoc/apps/api/di/dig"
	echoapi "github.com/trezcool/lophoc/apps/api/echo"
	"github.com/trezcool/lophoc/core"
	"github.com/trezcool/lophoc/core/user"
	"github.com/trezcool/lophoc/services/telemetry"
)

func main() {
	c := dig_container.New()

	shutdownTracing := func(context.Context) error { return nil }
	must(c.Invoke(func(conf *core.Config, logger core.Logger) {
		shutdown, err := telemetry.Setup(context.Background(), conf)
		if err != nil {
			logger.Error(fmt.Sprintf("setting up tracing: %v", err), err)
			return
		}
		shutdownTracing = shutdown
	}))

	must(c.Invoke(run))

	if err := shutdownTracing(context.Background()); err != nil {
		log.Printf("flushing traces: %v", err)
	}
}

func run(
	conf *core.Config,
	apiLogger core.Logger,
	dbLoggerParam dig_container.DBLoggerParam,
	backend dig_container.Backend,
	stores dig_container.LocalStores,
	validate *validator.Validate,
	translator ut.Translator,
	server *echoapi.Server,
) {
	// =========================================================================
	// Initialize App

	apiLogger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))

	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	core.ParseEmailTemplates(apiLogger)

	dbLogger := dbLoggerParam.Logger
	defer func() {
		if backend.DB == nil {
			return
		}
		if err := backend.DB.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()
	defer func() {
		if err := stores.Close(); err != nil {
			dbLogger.Error(fmt.Sprintf("closing local store: %v", err), err)
		}
	}()
	defer apiLogger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("backend").Set(conf.Backend)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			apiLogger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		apiLogger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		apiLogger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shut down and shed load
		if err := server.Shutdown(ctx); err != nil {
			apiLogger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				apiLogger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
