package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terminal-portal/internal/auth"
	"terminal-portal/internal/model"
	"terminal-portal/internal/repository"
)

func usersWith(t *testing.T, password string, users ...model.User) *fakeUsers {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	for i := range users {
		users[i].PasswordHash = hash
	}
	return &fakeUsers{users: users}
}

func TestAuthenticate(t *testing.T) {
	store := usersWith(t, "secreto1",
		model.User{ID: 1, Username: "admin", Rol: model.UserRoleAdmin, Activo: true},
		model.User{ID: 2, Username: "antiguo", Rol: model.UserRoleOperator, Activo: false},
	)
	svc := NewUserService(store)
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, " admin ", "secreto1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)

	_, err = svc.Authenticate(ctx, "admin", "otra-clave")
	require.ErrorIs(t, err, ErrPermissionDenied)
	_, err = svc.Authenticate(ctx, "antiguo", "secreto1")
	require.ErrorIs(t, err, ErrPermissionDenied)
	_, err = svc.Authenticate(ctx, "nadie", "secreto1")
	require.ErrorIs(t, err, ErrPermissionDenied)
	_, err = svc.Authenticate(ctx, "admin", "")
	require.ErrorIs(t, err, ErrMissingField)

	store.err = errors.New("db down")
	_, err = svc.Authenticate(ctx, "admin", "secreto1")
	require.ErrorIs(t, err, ErrTechnical)
}

func TestSaveUser(t *testing.T) {
	store := &fakeUsers{}
	svc := NewUserService(store)
	ctx := context.Background()

	_, err := svc.Save(ctx, operatorPrincipal, UserInput{Username: "x", Password: "secreto1", Rol: "admin"})
	require.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Save(ctx, adminPrincipal, UserInput{Username: "x", Password: "secreto1", Rol: "chofer"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Save(ctx, adminPrincipal, UserInput{Username: "x", Rol: "operador"})
	require.ErrorIs(t, err, ErrMissingField)

	_, err = svc.Save(ctx, adminPrincipal, UserInput{Username: "x", Password: "123", Rol: "operador"})
	require.ErrorIs(t, err, ErrInvalidInput)

	user, err := svc.Save(ctx, adminPrincipal, UserInput{Username: " operador2 ", Password: "secreto1", Rol: "Operador", Activo: true})
	require.NoError(t, err)
	assert.Equal(t, "operador2", user.Username)
	assert.Equal(t, model.UserRoleOperator, user.Rol)
	require.NoError(t, auth.CheckPassword(store.created[0].PasswordHash, "secreto1"))

	_, err = svc.Save(ctx, adminPrincipal, UserInput{ID: 5, Username: "operador2", Rol: "operador", Activo: false})
	require.NoError(t, err)
	require.Len(t, store.updated, 1)
	assert.Empty(t, store.updated[0].PasswordHash)

	store.err = repository.ErrDuplicate
	_, err = svc.Save(ctx, adminPrincipal, UserInput{Username: "operador2", Password: "secreto1", Rol: "operador"})
	require.ErrorIs(t, err, ErrConflict)
}

func TestAdminCannotLockThemselvesOut(t *testing.T) {
	store := &fakeUsers{}
	svc := NewUserService(store)
	ctx := context.Background()

	_, err := svc.Save(ctx, adminPrincipal, UserInput{ID: adminPrincipal.UserID, Username: "admin", Rol: "admin", Activo: false})
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Save(ctx, adminPrincipal, UserInput{ID: adminPrincipal.UserID, Username: "admin", Rol: "operador", Activo: true})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, svc.Delete(ctx, adminPrincipal, adminPrincipal.UserID), ErrInvalidInput)

	require.NoError(t, svc.Delete(ctx, adminPrincipal, 9))
	assert.Equal(t, []int64{9}, store.deleted)
}

func TestDeleteUserWithHistoryAsksToDeactivate(t *testing.T) {
	store := &fakeUsers{err: fmt.Errorf("%w: historial_extras_usuario_id_fkey", repository.ErrReferenced)}
	svc := NewUserService(store)

	err := svc.Delete(context.Background(), adminPrincipal, 5)
	require.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrTechnical)

	var inUse *InUseError
	require.ErrorAs(t, err, &inUse)
	assert.Equal(t, "usuario", inUse.Resource)
	assert.Contains(t, err.Error(), "desactívelo")
}

func TestBootstrapCreatesActiveUser(t *testing.T) {
	store := &fakeUsers{}
	svc := NewUserService(store)

	user, err := svc.Bootstrap(context.Background(), UserInput{ID: 44, Username: "root", Password: "secreto1", Rol: "admin"})
	require.NoError(t, err)
	assert.True(t, user.Activo)
	require.Len(t, store.created, 1)
	assert.Empty(t, store.updated)
}
