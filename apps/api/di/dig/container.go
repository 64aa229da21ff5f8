package dig_container

import (
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/KaushalKalal/TrainingManagement-Dashboard/apps/api/echo"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/core"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/module"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/token"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/user"
	emailsvc "github.com/KaushalKalal/TrainingManagement-Dashboard/services/email"
	logsvc "github.com/KaushalKalal/TrainingManagement-Dashboard/services/logger"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/storage/database"
	dummydb "github.com/KaushalKalal/TrainingManagement-Dashboard/storage/database/dummy"
	sqlxrepos "github.com/KaushalKalal/TrainingManagement-Dashboard/storage/database/sqlx"
)

const engineMemory = "memory"

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type Repositories struct {
	dig.Out
	Users   user.Repository
	Codes   user.SecurityCodeRepository
	Modules module.Repository
}

type ServerParams struct {
	dig.In
	Conf       *core.Config
	Logger     core.Logger
	UserSvc    user.Service
	ModuleSvc  module.Service
	Tokens     echoapi.TokenVerifier
	Validate   *validator.Validate
	Translator ut.Translator
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

// newDB opens and migrates the postgres database; it returns nil with the memory engine.
func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	if conf.Database.Engine == engineMemory {
		return nil
	}

	setUp := func() (*sqlx.DB, error) {
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newRepositories(conf *core.Config, db *sqlx.DB) Repositories {
	if conf.Database.Engine == engineMemory {
		mem := dummydb.Open()
		return Repositories{
			Users:   dummydb.NewUserRepository(mem),
			Codes:   dummydb.NewSecurityCodeRepository(mem),
			Modules: dummydb.NewModuleRepository(mem),
		}
	}
	return Repositories{
		Users:   sqlxrepos.NewUserRepository(db),
		Codes:   sqlxrepos.NewSecurityCodeRepository(db),
		Modules: sqlxrepos.NewModuleRepository(db),
	}
}

func newTokenManager(conf *core.Config) *token.Manager {
	return token.NewManager(conf.SecretKey, conf.AppName, conf.JWTExpirationDelta)
}

func newTokenIssuer(m *token.Manager) user.TokenIssuer { return m }

func newTokenVerifier(m *token.Manager) echoapi.TokenVerifier { return m }

func newValidator() *validator.Validate {
	return validator.New()
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(&echoapi.ServerDeps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		UserSvc:    p.UserSvc,
		ModuleSvc:  p.ModuleSvc,
		Tokens:     p.Tokens,
		Validate:   p.Validate,
		Translator: p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newRepositories))
	must(c.Provide(newTokenManager))
	must(c.Provide(newTokenIssuer))
	must(c.Provide(newTokenVerifier))
	must(c.Provide(emailsvc.NewConsoleService))
	must(c.Provide(newValidator))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(user.NewService))
	must(c.Provide(module.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
