package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/KaushalKalal/TrainingManagement-Dashboard/core"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/token"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/user"
	emailsvc "github.com/KaushalKalal/TrainingManagement-Dashboard/services/email"
	logsvc "github.com/KaushalKalal/TrainingManagement-Dashboard/services/logger"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/storage/database"
	sqlxrepos "github.com/KaushalKalal/TrainingManagement-Dashboard/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	errAndDie(err)

	appLogger := logsvc.NewRollbarLogger(logger, conf)
	appLogger.Enable(!conf.Debug)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)

	usrSvc := user.NewService(
		sqlxrepos.NewUserRepository(db),
		sqlxrepos.NewSecurityCodeRepository(db),
		token.NewManager(conf.SecretKey, conf.AppName, conf.JWTExpirationDelta),
		emailsvc.NewConsoleService(conf, appLogger),
		validate,
		conf,
	)

	// start CLI
	cli := commandLine{
		conf:   conf,
		db:     db.DB,
		usrSvc: usrSvc,
	}
	err = cli.run(os.Args)
	if cErr := db.Close(); cErr != nil {
		logger.Printf("closing database: %s\n", cErr)
	}
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
