package echoapi_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/user"
	testutil "github.com/KaushalKalal/TrainingManagement-Dashboard/tests"
)

func decodeSession(t *testing.T, data []byte) user.Session {
	var sess user.Session
	require.NoError(t, json.Unmarshal(data, &sess))
	return sess
}

func Test_userApi_register(t *testing.T) {
	env := setup(t)
	testutil.CreateUser(t, env.usrRepo, "Taken", "taken@test.cd", "password", user.RoleTrainee)

	register := func(nu user.NewUser) []byte { return marchallObj(t, nu) }

	tests := []httpTest{
		{
			name: "missing fields", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: fieldErrs(t,
				"name", "this field is required",
				"email", "this field is required",
				"password", "this field is required",
				"role", "this field is required",
			),
		},
		{
			name:     "invalid role",
			body:     register(user.NewUser{Name: "Bob", Email: "bob@test.cd", Password: "password", Role: "Admin"}),
			wantCode: http.StatusBadRequest, wantData: fieldErrs(t, "role", "invalid role"),
		},
		{
			name:     "instructor without code",
			body:     register(user.NewUser{Name: "Bob", Email: "bob@test.cd", Password: "password", Role: "Instructor"}),
			wantCode: http.StatusBadRequest,
			wantData: fieldErrs(t, "instructorCode", "instructor security code is required"),
		},
		{
			name: "instructor with invalid code",
			body: register(user.NewUser{
				Name: "Bob", Email: "bob@test.cd", Password: "password", Role: "Instructor", InstructorCode: "nope",
			}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Message: "invalid instructor code"}),
		},
		{
			name:     "duplicate email",
			body:     register(user.NewUser{Name: "Bob", Email: "taken@test.cd", Password: "password", Role: "Trainee"}),
			wantCode: http.StatusBadRequest, wantData: fieldErrs(t, "email", "user already exists"),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/api/auth/register"
	}
	runHTTPTests(t, env, tests)

	t.Run("trainee", func(t *testing.T) {
		rec := env.serve(httpTest{
			method: http.MethodPost, path: "/api/auth/register",
			body: register(user.NewUser{Name: " Ada ", Email: "ada@test.cd", Password: "password", Role: "Trainee"}),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		sess := decodeSession(t, rec.Body.Bytes())
		assert.Equal(t, "Ada", sess.Name)
		assert.Equal(t, "ada@test.cd", sess.Email)
		assert.Equal(t, user.RoleTrainee, sess.Role)
		assert.NotContains(t, rec.Body.String(), "password")

		uid, err := env.tokens.Verify(sess.Token)
		require.NoError(t, err)
		assert.Equal(t, sess.ID, uid)
	})

	t.Run("instructor code is reusable", func(t *testing.T) {
		for _, email := range []string{"ins1@test.cd", "ins2@test.cd"} {
			rec := env.serve(httpTest{
				method: http.MethodPost, path: "/api/auth/register",
				body: register(user.NewUser{
					Name: "Ins", Email: email, Password: "password", Role: "Instructor", InstructorCode: "int-17",
				}),
			})
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
			assert.Equal(t, user.RoleInstructor, decodeSession(t, rec.Body.Bytes()).Role)
		}
	})
}

func Test_userApi_login(t *testing.T) {
	env := setup(t)
	usr := testutil.CreateUser(t, env.usrRepo, "Ada", "ada@test.cd", "password", user.RoleTrainee)

	tests := []httpTest{
		{
			name: "missing fields", body: []byte(`{"email": "ada@test.cd"}`), wantCode: http.StatusBadRequest,
			wantData: fieldErrs(t, "password", "this field is required"),
		},
		{
			name: "unknown email", body: []byte(`{"email": "bob@test.cd", "password": "password"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Message: "user not found"}),
		},
		{
			name: "email is case-sensitive", body: []byte(`{"email": "ADA@test.cd", "password": "password"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Message: "user not found"}),
		},
		{
			name: "wrong password", body: []byte(`{"email": "ada@test.cd", "password": "passw0rd"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Message: "invalid credentials"}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/api/auth/login"
	}
	runHTTPTests(t, env, tests)

	t.Run("success", func(t *testing.T) {
		rec := env.serve(httpTest{
			method: http.MethodPost, path: "/api/auth/login",
			body: []byte(`{"email": " ada@test.cd ", "password": "password"}`),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		sess := decodeSession(t, rec.Body.Bytes())
		assert.Equal(t, usr.Public(), sess.Public)
		uid, err := env.tokens.Verify(sess.Token)
		require.NoError(t, err)
		assert.Equal(t, usr.ID, uid)
	})
}

var resetTokenRe = regexp.MustCompile(`token=([A-Za-z0-9_\-]+)`)

func Test_userApi_passwordReset(t *testing.T) {
	env := setup(t)
	usr := testutil.CreateUser(t, env.usrRepo, "Ada", "ada@test.cd", "password", user.RoleTrainee)

	runHTTPTests(t, env, []httpTest{
		{
			name: "forgot: missing email", method: http.MethodPost, path: "/api/auth/forgot-password",
			body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: fieldErrs(t, "email", "this field is required"),
		},
		{
			name: "forgot: unknown email", method: http.MethodPost, path: "/api/auth/forgot-password",
			body: []byte(`{"email": "bob@test.cd"}`), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "user not found"}),
		},
	})
	assert.Empty(t, env.mailSvc.Sent())

	rec := env.serve(httpTest{
		method: http.MethodPost, path: "/api/auth/forgot-password", body: []byte(`{"email": "ada@test.cd"}`),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ok, err := jsonBytesEqual(rec.Body.Bytes(), marchallObj(t, httpMsg{Message: "Reset link sent (simulated). Check console."}))
	require.NoError(t, err)
	assert.True(t, ok)

	sent := env.mailSvc.Sent()
	require.Len(t, sent, 1)
	require.Len(t, sent[0].To, 1)
	assert.Equal(t, usr.Email, sent[0].To[0].Address)

	match := resetTokenRe.FindStringSubmatch(sent[0].TextContent)
	require.Len(t, match, 2, sent[0].TextContent)
	resetToken, err := url.QueryUnescape(match[1])
	require.NoError(t, err)

	verify := func(email, tkn string) []byte {
		return marchallObj(t, map[string]string{"email": email, "token": tkn})
	}
	reset := func(email, current, newPwd string) []byte {
		return marchallObj(t, user.ResetPassword{Email: email, CurrentPassword: current, NewPassword: newPwd})
	}

	runHTTPTests(t, env, []httpTest{
		{
			name: "verify: valid token", method: http.MethodPost, path: "/api/auth/verify-reset-token",
			body: verify(usr.Email, resetToken), wantCode: http.StatusOK,
			wantData: marchallObj(t, httpMsg{Message: "Reset token is valid"}),
		},
		{
			name: "verify: tampered token", method: http.MethodPost, path: "/api/auth/verify-reset-token",
			body: verify(usr.Email, resetToken+"x"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Message: "invalid or expired password reset token"}),
		},
		{
			name: "verify: missing token", method: http.MethodPost, path: "/api/auth/verify-reset-token",
			body: verify(usr.Email, ""), wantCode: http.StatusBadRequest,
			wantData: fieldErrs(t, "token", "this field is required"),
		},
		{
			name: "reset: missing fields", method: http.MethodPost, path: "/api/auth/reset-password",
			body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: fieldErrs(t,
				"email", "this field is required",
				"currentPassword", "this field is required",
				"newPassword", "this field is required",
			),
		},
		{
			name: "reset: weak password", method: http.MethodPost, path: "/api/auth/reset-password",
			body: reset(usr.Email, "password", "short"), wantCode: http.StatusBadRequest,
			wantData: fieldErrs(t, "newPassword", "password must be at least 8 characters long"),
		},
		{
			name: "reset: unknown user", method: http.MethodPost, path: "/api/auth/reset-password",
			body: reset("bob@test.cd", "password", "new-password"), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "user not found"}),
		},
		{
			name: "reset: incorrect current password", method: http.MethodPost, path: "/api/auth/reset-password",
			body: reset(usr.Email, "passw0rd", "new-password"), wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Message: "incorrect current password"}),
		},
		{
			name: "reset: success", method: http.MethodPost, path: "/api/auth/reset-password",
			body: reset(usr.Email, "password", "new-password"), wantCode: http.StatusOK,
			wantData: marchallObj(t, httpMsg{Message: "Password reset successful"}),
		},
		{
			name: "login: old password", method: http.MethodPost, path: "/api/auth/login",
			body: []byte(`{"email": "ada@test.cd", "password": "password"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Message: "invalid credentials"}),
		},
		{
			name: "verify: token invalidated by the new password", method: http.MethodPost, path: "/api/auth/verify-reset-token",
			body: verify(usr.Email, resetToken), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Message: "invalid or expired password reset token"}),
		},
	})

	rec = env.serve(httpTest{
		method: http.MethodPost, path: "/api/auth/login", body: []byte(`{"email": "ada@test.cd", "password": "new-password"}`),
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func Test_userApi_query(t *testing.T) {
	env := setup(t)

	now := time.Now()
	ins := testutil.CreateUser(t, env.usrRepo, "Ins", "ins@test.cd", "password", user.RoleInstructor, now)
	ada := testutil.CreateUser(t, env.usrRepo, "Ada", "ada@test.cd", "password", user.RoleTrainee, now.Add(1*time.Hour))
	bob := testutil.CreateUser(t, env.usrRepo, "Bob", "bob@test.cd", "password", user.RoleTrainee, now.Add(2*time.Hour))
	insToken := env.getToken(t, ins)

	tests := []httpTest{
		{
			name: "trainees forbidden", path: "/api/users?role=Trainee", token: env.getToken(t, ada),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Message: "permission denied"}),
		},
		{
			name: "role required", path: "/api/users", token: insToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Message: "role is required"}),
		},
		{
			name: "invalid role", path: "/api/users?role=Admin", token: insToken,
			wantCode: http.StatusBadRequest, wantData: fieldErrs(t, "role", "invalid role"),
		},
		{
			name: "trainees, newest first", path: "/api/users?role=Trainee", token: insToken,
			wantCode: http.StatusOK, wantData: marchallList(t, bob, ada),
		},
		{
			name: "instructors", path: "/api/users?role=Instructor", token: insToken,
			wantCode: http.StatusOK, wantData: marchallList(t, ins),
		},
		{
			name: "search", path: "/api/users?role=Trainee&search=ADA", token: insToken,
			wantCode: http.StatusOK, wantData: marchallList(t, ada),
		},
		{
			name: "search (unknown)", path: "/api/users?role=Trainee&search=lol", token: insToken,
			wantCode: http.StatusOK, wantData: marchallList(t),
		},
		{
			name: "order by name", path: "/api/users?role=Trainee&ordering=name", token: insToken,
			wantCode: http.StatusOK, wantData: marchallList(t, ada, bob),
		},
		{
			name: "unknown ordering ignored", path: "/api/users?role=Trainee&ordering=password", token: insToken,
			wantCode: http.StatusOK, wantData: marchallList(t, bob, ada),
		},
	}
	runHTTPTests(t, env, tests)
}

func Test_userApi_errorMessages(t *testing.T) {
	env := setup(t)
	testutil.CreateUser(t, env.usrRepo, "Ada", "ada@test.cd", "password", user.RoleTrainee)

	tests := []struct {
		name       string
		path       string
		body       interface{}
		wantCode   int
		wantMsg    string
		wantFields map[string]string
	}{
		{
			name: "login: unknown email", path: "/api/auth/login",
			body:     user.LoginCredentials{Email: "bob@test.cd", Password: "password"},
			wantCode: http.StatusBadRequest, wantMsg: "user not found",
		},
		{
			name: "login: wrong password", path: "/api/auth/login",
			body:     user.LoginCredentials{Email: "ada@test.cd", Password: "nope-nope"},
			wantCode: http.StatusBadRequest, wantMsg: "invalid credentials",
		},
		{
			name: "register: duplicate email", path: "/api/auth/register",
			body:       user.NewUser{Name: "Ada", Email: "ada@test.cd", Password: "password", Role: "Trainee"},
			wantCode:   http.StatusBadRequest, wantMsg: "user already exists",
			wantFields: map[string]string{"email": "user already exists"},
		},
		{
			name: "register: first missing field leads", path: "/api/auth/register",
			body:       map[string]string{"role": "Trainee", "password": "password"},
			wantCode:   http.StatusBadRequest, wantMsg: "this field is required",
			wantFields: map[string]string{"name": "this field is required", "email": "this field is required"},
		},
		{
			name: "reset: weak password", path: "/api/auth/reset-password",
			body:       user.ResetPassword{Email: "ada@test.cd", CurrentPassword: "password", NewPassword: "short"},
			wantCode:   http.StatusBadRequest, wantMsg: "password must be at least 8 characters long",
			wantFields: map[string]string{"newPassword": "password must be at least 8 characters long"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.serve(httpTest{method: http.MethodPost, path: tt.path, body: marchallObj(t, tt.body)})
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			var body httpErr
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMsg, body.Message)
			assert.Equal(t, tt.wantFields, body.Errors)
		})
	}
}
