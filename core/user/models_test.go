package user

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr error
	}{
		{in: "Trainee", want: RoleTrainee},
		{in: "Instructor", want: RoleInstructor},
		{in: "trainee", wantErr: ErrInvalidRole},
		{in: "Admin", wantErr: ErrInvalidRole},
		{in: "", wantErr: ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			assert.Equal(t, tt.wantErr, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantErr == nil, Role(tt.in).Valid())
		})
	}
}

func TestUser_Password(t *testing.T) {
	var usr User
	require.NoError(t, usr.SetPassword("s3cr3t-pwd"))
	assert.NotEqual(t, []byte("s3cr3t-pwd"), usr.PasswordHash)
	assert.NoError(t, usr.CheckPassword("s3cr3t-pwd"))
	assert.Error(t, usr.CheckPassword("S3cr3t-pwd"))
}

func TestUser_JSON(t *testing.T) {
	usr := User{ID: "42", Name: "Ada", Email: "ada@test.cd", Role: RoleInstructor}
	require.NoError(t, usr.SetPassword("s3cr3t-pwd"))

	data, err := json.Marshal(usr)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "password")
	assert.NotContains(t, string(data), "Hash")
	assert.Contains(t, string(data), `"_id":"42"`)

	data, err = json.Marshal(Session{Public: usr.Public(), Token: "tkn"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"42","name":"Ada","email":"ada@test.cd","role":"Instructor","token":"tkn"}`, string(data))
}

func TestValidPassword(t *testing.T) {
	assert.False(t, validPassword("1234567"))
	assert.True(t, validPassword("12345678"))
	assert.True(t, validPassword("éééééééé"))
	assert.False(t, validPassword("ééé"))
}
