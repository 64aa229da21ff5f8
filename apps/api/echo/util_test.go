package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	echoapi "github.com/KaushalKalal/TrainingManagement-Dashboard/apps/api/echo"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/module"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/token"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/user"
	emailsvc "github.com/KaushalKalal/TrainingManagement-Dashboard/services/email"
	dummydb "github.com/KaushalKalal/TrainingManagement-Dashboard/storage/database/dummy"
	testutil "github.com/KaushalKalal/TrainingManagement-Dashboard/tests"
)

type testEnv struct {
	app     *echoapi.Server
	usrRepo user.Repository
	modRepo module.Repository
	mailSvc *emailsvc.ConsoleServiceMock
	tokens  *token.Manager
}

func setup(t *testing.T) *testEnv {
	conf := testutil.NewConfig()
	logger := new(testutil.Logger)
	validate, translator := testutil.NewValidator()

	// set up DB & repos
	db := dummydb.Open()
	env := &testEnv{
		usrRepo: dummydb.NewUserRepository(db),
		modRepo: dummydb.NewModuleRepository(db),
		mailSvc: emailsvc.NewConsoleServiceMock(conf, logger),
		tokens:  token.NewManager(conf.SecretKey, conf.AppName, conf.JWTExpirationDelta),
	}

	// set up services
	usrSvc := user.NewService(
		env.usrRepo, dummydb.NewSecurityCodeRepository(db), env.tokens, env.mailSvc, validate, conf,
	)
	if _, err := usrSvc.SeedSecurityCodes(context.Background(), conf.InstructorCodes); err != nil {
		t.Fatalf("SeedSecurityCodes() failed: %v", err)
	}
	modSvc := module.NewService(env.modRepo, validate, logger)

	// set up server
	env.app = echoapi.NewServer(&echoapi.ServerDeps{
		Conf:           conf,
		Logger:         logger,
		UserSvc:        usrSvc,
		ModuleSvc:      modSvc,
		Tokens:         env.tokens,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return env
}

func (env *testEnv) serve(tt httpTest) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	if tt.auth != "" {
		req.Header.Set("Authorization", tt.auth)
	}
	env.app.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) getToken(t *testing.T, usr user.User) string {
	tkn, err := env.tokens.Issue(usr.ID)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return tkn
}

func (env *testEnv) getModule(t *testing.T, id string) module.Module {
	mod, err := env.modRepo.GetModuleByID(context.Background(), id)
	if err != nil {
		t.Fatalf("getModule() failed: %v", err)
	}
	return mod
}

type httpErr struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// fieldErrs returns the body of a validation failure on the given field/message pairs, in field order.
func fieldErrs(t *testing.T, pairs ...string) []byte {
	t.Helper()
	if len(pairs) < 2 || len(pairs)%2 != 0 {
		t.Fatalf("fieldErrs(): want field/message pairs, got %v", pairs)
	}
	body := httpErr{Message: pairs[1], Errors: make(map[string]string, len(pairs)/2)}
	for i := 0; i < len(pairs); i += 2 {
		body.Errors[pairs[i]] = pairs[i+1]
	}
	return marchallObj(t, body)
}

type httpMsg struct {
	Message string `json:"message"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	auth     string // raw Authorization header; overrides token
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, env *testEnv, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.serve(tt)
			checkCodeAndData(t, tt, rec)
		})
	}
}
