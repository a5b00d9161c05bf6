package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
)

const (
	adminActorID = "40000000-0000-0000-0000-000000000001"
	adminRoleID  = "10000000-0000-0000-0000-0000000000aa"
)

type adminFixture struct {
	uc    *AdminUseCase
	users *memUsers
	cache *memCache
}

func newAdminFixture() adminFixture {
	users := newMemUsers()
	users.users[adminActorID] = &entity.User{ID: adminActorID, Email: "admin@crm.test", IsActive: true}
	roles := newMemRoles()
	roles.roles[adminRoleID] = &entity.Role{ID: adminRoleID, Name: "admin"}
	cache := newMemCache()
	perms := NewPermissionService(roles, cache, time.Minute, nil, nil)
	tx := passTx{repos: repository.Repos{Users: users, Roles: roles}}
	return adminFixture{uc: NewAdminUseCase(users, roles, tx, perms), users: users, cache: cache}
}

func TestCreateUser_HasheaYNormaliza(t *testing.T) {
	f := newAdminFixture()
	role := adminRoleID

	out, err := f.uc.CreateUser(context.Background(), dto.CreateUserRequest{
		Email: "  Ana.Ruiz@CRM.test ", Password: "secreto123", DisplayName: "ana  ruiz", RoleID: &role,
	})
	require.NoError(t, err)
	assert.Equal(t, "ana.ruiz@crm.test", out.Email)
	assert.Equal(t, "Ana Ruiz", out.DisplayName)
	assert.True(t, out.IsActive)

	stored := f.users.users[out.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "secreto123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secreto123")))
	assert.Contains(t, f.users.profiles, out.ID)
}

func TestCreateUser_EmailDuplicado(t *testing.T) {
	f := newAdminFixture()

	_, err := f.uc.CreateUser(context.Background(), dto.CreateUserRequest{
		Email: "ADMIN@crm.test", Password: "secreto123", DisplayName: "Otro",
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestCreateUser_RolInexistenteYPasswordCorto(t *testing.T) {
	f := newAdminFixture()
	missing := "10000000-0000-0000-0000-0000000000ff"

	_, err := f.uc.CreateUser(context.Background(), dto.CreateUserRequest{
		Email: "nuevo@crm.test", Password: "secreto123", DisplayName: "Nuevo", RoleID: &missing,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.CreateUser(context.Background(), dto.CreateUserRequest{
		Email: "nuevo@crm.test", Password: "corto", DisplayName: "Nuevo",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Len(t, f.users.users, 1)
}

func TestGetUser_IDInvalidoOInexistente(t *testing.T) {
	f := newAdminFixture()

	_, err := f.uc.GetUser(context.Background(), "no-es-uuid")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = f.uc.GetUser(context.Background(), "40000000-0000-0000-0000-0000000000ff")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestDeleteUser_ASiMismoRechazado(t *testing.T) {
	f := newAdminFixture()

	err := f.uc.DeleteUser(context.Background(), adminActorID, adminActorID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, f.users.users, adminActorID)
}

func TestDeleteUser_BorraPerfilEInvalidaCache(t *testing.T) {
	f := newAdminFixture()
	created, err := f.uc.CreateUser(context.Background(), dto.CreateUserRequest{
		Email: "baja@crm.test", Password: "secreto123", DisplayName: "Baja",
	})
	require.NoError(t, err)
	f.cache.data[permissionKey(created.ID)] = []byte("[]")

	require.NoError(t, f.uc.DeleteUser(context.Background(), adminActorID, created.ID))
	assert.NotContains(t, f.users.users, created.ID)
	assert.NotContains(t, f.users.profiles, created.ID)
	assert.NotContains(t, f.cache.data, permissionKey(created.ID))

	_, err = f.uc.GetUser(context.Background(), created.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	err = f.uc.DeleteUser(context.Background(), adminActorID, created.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUpdateUser_DesactivarInvalidaPermisos(t *testing.T) {
	f := newAdminFixture()
	created, err := f.uc.CreateUser(context.Background(), dto.CreateUserRequest{
		Email: "vendedor@crm.test", Password: "secreto123", DisplayName: "Vendedor",
	})
	require.NoError(t, err)
	f.cache.data[permissionKey(created.ID)] = []byte("[]")

	inactive := false
	phone := "+57 300 000 0000"
	out, err := f.uc.UpdateUser(context.Background(), created.ID, dto.UpdateUserRequest{IsActive: &inactive, Phone: &phone})
	require.NoError(t, err)
	assert.False(t, out.IsActive)
	assert.Equal(t, phone, out.Phone)
	assert.NotContains(t, f.cache.data, permissionKey(created.ID))
}

func TestUpdateUser_ReactivarInvalidaPermisos(t *testing.T) {
	f := newAdminFixture()
	created, err := f.uc.CreateUser(context.Background(), dto.CreateUserRequest{
		Email: "regreso@crm.test", Password: "secreto123", DisplayName: "Regreso",
	})
	require.NoError(t, err)
	inactive, active := false, true
	_, err = f.uc.UpdateUser(context.Background(), created.ID, dto.UpdateUserRequest{IsActive: &inactive})
	require.NoError(t, err)

	// el conjunto vacío memoizado mientras estuvo inactivo no debe sobrevivir
	f.cache.data[permissionKey(created.ID)] = []byte("[]")
	out, err := f.uc.UpdateUser(context.Background(), created.ID, dto.UpdateUserRequest{IsActive: &active})
	require.NoError(t, err)
	assert.True(t, out.IsActive)
	assert.NotContains(t, f.cache.data, permissionKey(created.ID))

	// sin cambio de estado no se toca la caché
	f.cache.data[permissionKey(created.ID)] = []byte("[]")
	phone := "+57 301 000 0000"
	_, err = f.uc.UpdateUser(context.Background(), created.ID, dto.UpdateUserRequest{IsActive: &active, Phone: &phone})
	require.NoError(t, err)
	assert.Contains(t, f.cache.data, permissionKey(created.ID))
}

func TestUpdateUserRole_AsignaYQuita(t *testing.T) {
	f := newAdminFixture()
	role := adminRoleID

	out, err := f.uc.UpdateUserRole(context.Background(), adminActorID, dto.UpdateUserRoleRequest{RoleID: &role})
	require.NoError(t, err)
	require.NotNil(t, out.RoleID)
	assert.Equal(t, adminRoleID, *out.RoleID)

	empty := ""
	out, err = f.uc.UpdateUserRole(context.Background(), adminActorID, dto.UpdateUserRoleRequest{RoleID: &empty})
	require.NoError(t, err)
	assert.Nil(t, out.RoleID)

	_, err = f.uc.UpdateUserRole(context.Background(), "x", dto.UpdateUserRoleRequest{})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
