package dummydb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaushalKalal/TrainingManagement-Dashboard/core"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/module"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/user"
)

func TestUserRepository_QueryUsers(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(Open())

	now := time.Now().UTC()
	mk := func(name, email string, role user.Role, createdAt time.Time) user.User {
		usr, err := repo.CreateUser(ctx, user.User{Name: name, Email: email, Role: role, CreatedAt: createdAt})
		require.NoError(t, err)
		return usr
	}
	bob := mk("Bob", "bob@test.cd", user.RoleTrainee, now)
	ada := mk("Ada", "ada@test.cd", user.RoleTrainee, now.Add(time.Hour))
	ins := mk("Ins", "ins@test.cd", user.RoleInstructor, now.Add(2*time.Hour))

	_, err := repo.CreateUser(ctx, user.User{Email: "ada@test.cd"})
	assert.Equal(t, user.ErrEmailExists, err)

	tests := []struct {
		name     string
		filter   user.QueryFilter
		ordering []core.DBOrdering
		want     []user.User
	}{
		{name: "all, newest first", want: []user.User{ins, ada, bob}},
		{name: "trainees", filter: user.QueryFilter{Role: user.RoleTrainee}, want: []user.User{ada, bob}},
		{name: "instructors", filter: user.QueryFilter{Role: user.RoleInstructor}, want: []user.User{ins}},
		{name: "search", filter: user.QueryFilter{Search: "BO"}, want: []user.User{bob}},
		{name: "order by name", ordering: []core.DBOrdering{{Field: "name", Ascending: true}}, want: []user.User{ada, bob, ins}},
		{name: "unknown ordering ignored", ordering: []core.DBOrdering{{Field: "lol"}}, want: []user.User{ins, ada, bob}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.QueryUsers(ctx, tt.filter, tt.ordering...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModuleRepository_Isolation(t *testing.T) {
	ctx := context.Background()
	repo := NewModuleRepository(Open())

	mod, err := repo.CreateModule(ctx, module.Module{Title: "Safety 101", AssignedTo: []string{}, CompletedBy: []string{}})
	require.NoError(t, err)

	// mutating a returned copy must not leak into the store
	mod.AssignedTo = append(mod.AssignedTo, "t1")
	stored, err := repo.GetModuleByID(ctx, mod.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.AssignedTo)

	_, err = repo.UpdateModuleMembers(ctx, mod)
	require.NoError(t, err)
	assigned, err := repo.QueryModules(ctx, module.QueryFilter{AssignedTo: "t1"})
	require.NoError(t, err)
	assert.Len(t, assigned, 1)

	require.NoError(t, repo.DeleteModule(ctx, mod.ID))
	assert.Equal(t, module.ErrNotFound, repo.DeleteModule(ctx, mod.ID))
	_, err = repo.UpdateModuleMembers(ctx, mod)
	assert.Equal(t, module.ErrNotFound, err)
}

func TestSecurityCodeRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSecurityCodeRepository(Open())

	count, err := repo.CountSecurityCodes(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, repo.CreateSecurityCodes(ctx, user.SecurityCode{Code: "admin-01"}, user.SecurityCode{Code: "int-17"}))
	count, _ = repo.CountSecurityCodes(ctx)
	assert.Equal(t, 2, count)

	ok, _ := repo.SecurityCodeExists(ctx, "int-17")
	assert.True(t, ok)
	ok, _ = repo.SecurityCodeExists(ctx, "INT-17")
	assert.False(t, ok)
}
