package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/KaushalKalal/TrainingManagement-Dashboard/core"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/module"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/user"
)

// NewConfig returns the configuration used by tests.
func NewConfig() *core.Config {
	return &core.Config{
		AppName:                   "TrainingManagement",
		Env:                       "TEST",
		TestMode:                  true,
		SecretKey:                 "secret",
		JWTExpirationDelta:        time.Hour,
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		DefaultFromEmail:          "noreply@test.cd",
		FrontendBaseURL:           "http://localhost:3000",
		InstructorCodes:           []string{"admin-01", "int-17", "Kaushal"},
		Server: core.ServerConfig{
			Host:         "localhost",
			Port:         5000,
			AllowOrigins: []string{"*"},
		},
		Database: core.DatabaseConfig{Engine: "memory"},
	}
}

// NewValidator returns a validator and translator with all the app validations registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

// Logger records the logged messages.
type Logger struct {
	mu       sync.Mutex
	Messages []string
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, msg)
}

func (l *Logger) Debug(msg string, _ ...interface{}) { l.log(msg) }
func (l *Logger) Info(msg string, _ ...interface{})  { l.log(msg) }
func (l *Logger) Warn(msg string, _ ...interface{})  { l.log(msg) }
func (l *Logger) Error(msg string, _ ...interface{}) { l.log(msg) }
func (l *Logger) Fatal(msg string, _ ...interface{}) { l.log(msg) }

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd string,
	role user.Role,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateModule(
	t *testing.T,
	repo module.Repository,
	title, createdBy string,
	assignedTo, completedBy []string,
	createdAt ...time.Time,
) module.Module {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	if assignedTo == nil {
		assignedTo = []string{}
	}
	if completedBy == nil {
		completedBy = []string{}
	}
	mod, err := repo.CreateModule(context.Background(), module.Module{
		Title:       title,
		CreatedBy:   createdBy,
		AssignedTo:  assignedTo,
		CompletedBy: completedBy,
		CreatedAt:   tstamp,
		UpdatedAt:   tstamp,
	})
	if err != nil {
		t.Fatalf("CreateModule() failed: %v", err)
	}
	return mod
}
