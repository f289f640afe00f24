package dig_container

import (
	"context"
	"fmt"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/lophoc/apps/api/echo"
	"github.com/trezcool/lophoc/core"
	"github.com/trezcool/lophoc/core/calendar"
	"github.com/trezcool/lophoc/core/classroom"
	"github.com/trezcool/lophoc/core/user"
	emailsvc "github.com/trezcool/lophoc/services/email"
	logsvc "github.com/trezcool/lophoc/services/logger"
	"github.com/trezcool/lophoc/storage/database"
	inmemdb "github.com/trezcool/lophoc/storage/inmem"
	localstore "github.com/trezcool/lophoc/storage/local"
	"github.com/trezcool/lophoc/storage/postgrest"
	"github.com/trezcool/lophoc/storage/traced"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Backend is the table service in use. DB is nil unless the backend is a SQL database.
type Backend struct {
	Tables core.TableService
	DB     *sqlx.DB
}

// LocalStores holds the client-side state. Close is a no-op for the in-memory stores.
type LocalStores struct {
	Sessions user.SessionStore
	Weeks    calendar.WeekStore
	Close    func() error
}

type serverParams struct {
	dig.In

	Conf         *core.Config
	Logger       core.Logger
	UserSvc      user.ServiceInterface
	ClassroomSvc classroom.ServiceInterface
	CalendarSvc  calendar.ServiceInterface
	Validate     *validator.Validate
	Translator   ut.Translator
}

func newLogger(conf *core.Config) core.Logger {
	return logsvc.New("API", conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	return logsvc.New("DB", conf)
}

func setUpSQL(conf *core.Config) (*sqlx.DB, error) {
	if conf.Backend == core.BackendPostgres {
		if err := database.CreateIfNotExist(conf.Database); err != nil {
			return nil, err
		}
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Bootstrap(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newBackend(conf *core.Config, loggerParam DBLoggerParam) Backend {
	logger := loggerParam.Logger

	var b Backend
	switch conf.Backend {
	case core.BackendPostgREST:
		b.Tables = postgrest.NewClient(conf.Supabase)
	case core.BackendPostgres, core.BackendSQLite:
		db, err := setUpSQL(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		b.DB = db
		b.Tables = database.NewStore(db)
	default:
		logger.Warn("using the in-memory backend: data is lost on exit")
		b.Tables = inmemdb.NewDB()
	}

	logger.Info(fmt.Sprintf("table service: %s (%s)", conf.Backend, conf.BackendURL()))
	b.Tables = traced.New(b.Tables, nil)
	return b
}

func newTables(b Backend) core.TableService {
	return b.Tables
}

func newLocalStores(conf *core.Config, loggerParam DBLoggerParam) LocalStores {
	if conf.LocalStorePath == "" {
		return LocalStores{
			Sessions: inmemdb.NewSessionStore(),
			Weeks:    inmemdb.NewWeekStore(),
			Close:    func() error { return nil },
		}
	}

	store, err := localstore.Open(conf.LocalStorePath)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("opening local store: %v", err), err)
	}
	return LocalStores{Sessions: store, Weeks: store, Close: store.Close}
}

func newSessionStore(s LocalStores) user.SessionStore { return s.Sessions }
func newWeekStore(s LocalStores) calendar.WeekStore   { return s.Weeks }

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:         p.Conf,
		Logger:       p.Logger,
		UserSvc:      p.UserSvc,
		ClassroomSvc: p.ClassroomSvc,
		CalendarSvc:  p.CalendarSvc,
		Validate:     p.Validate,
		Translator:   p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newBackend))
	must(c.Provide(newTables))
	must(c.Provide(newLocalStores))
	must(c.Provide(newSessionStore))
	must(c.Provide(newWeekStore))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(user.NewService, dig.As(new(user.ServiceInterface))))
	must(c.Provide(classroom.NewService, dig.As(new(classroom.ServiceInterface))))
	must(c.Provide(calendar.NewService, dig.As(new(calendar.ServiceInterface))))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
