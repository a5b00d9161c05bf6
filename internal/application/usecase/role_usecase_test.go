package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
)

const (
	roleID      = "10000000-0000-0000-0000-000000000001"
	roleActorID = "20000000-0000-0000-0000-000000000001"
	roleUserA   = "30000000-0000-0000-0000-00000000000a"
	roleUserB   = "30000000-0000-0000-0000-00000000000b"
)

func newRoleFixture() (*RoleUseCase, *memRoles, *memCache) {
	roles := newMemRoles()
	roles.roles[roleID] = &entity.Role{ID: roleID, Name: "front_sales", DisplayName: "Front Sales"}
	roles.perms[roleID] = map[string]entity.ModulePermission{
		entity.ModuleLeads: {RoleID: roleID, Module: entity.ModuleLeads, CanRead: true},
		entity.ModuleSales: {RoleID: roleID, Module: entity.ModuleSales, CanRead: true, CanCreate: true},
	}
	roles.users[roleID] = []string{roleUserA, roleUserB}
	cache := newMemCache()
	perms := NewPermissionService(roles, cache, time.Minute, nil, nil)
	return NewRoleUseCase(roles, passTx{repos: repository.Repos{Roles: roles}}, perms), roles, cache
}

func TestRoleGetPermissions_TodosLosModulos(t *testing.T) {
	uc, _, _ := newRoleFixture()

	out, err := uc.GetPermissions(context.Background(), roleID)
	require.NoError(t, err)
	assert.Len(t, out, len(entity.Modules))
	for _, p := range out {
		switch p.Module {
		case entity.ModuleLeads:
			assert.True(t, p.CanRead)
		case entity.ModuleSales:
			assert.True(t, p.CanCreate)
		default:
			assert.False(t, p.CanRead, p.Module)
		}
	}
}

func TestRoleUpdatePermissions_AuditaSoloCambios(t *testing.T) {
	uc, roles, cache := newRoleFixture()
	cache.data[permissionKey(roleUserA)] = []byte("[]")

	_, err := uc.UpdatePermissions(context.Background(), roleActorID, roleID, dto.UpdatePermissionsRequest{
		Permissions: []dto.ModulePermissionDTO{
			{Module: entity.ModuleLeads, CanRead: true},                         // sin cambio
			{Module: entity.ModuleSales, CanRead: true, CanUpdate: true},        // cambio
			{Module: entity.ModuleProjects, CanRead: true, ScreenVisible: true}, // nuevo
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, roles.upsert)
	require.Len(t, roles.audit, 2)
	assert.Equal(t, entity.ModuleSales, roles.audit[0].Module)
	require.NotNil(t, roles.audit[0].Before)
	assert.True(t, roles.audit[0].Before.CanCreate)
	assert.False(t, roles.audit[0].After.CanCreate)
	assert.Equal(t, roleActorID, roles.audit[0].ChangedBy)
	assert.Nil(t, roles.audit[1].Before, "módulo sin fila previa")

	assert.NotContains(t, cache.data, permissionKey(roleUserA))
	assert.ElementsMatch(t, []string{permissionKey(roleUserA), permissionKey(roleUserB)}, cache.deleted)
}

func TestRoleUpdatePermissions_ModuloDesconocido(t *testing.T) {
	uc, roles, _ := newRoleFixture()

	_, err := uc.UpdatePermissions(context.Background(), roleActorID, roleID, dto.UpdatePermissionsRequest{
		Permissions: []dto.ModulePermissionDTO{{Module: "bodegas", CanRead: true}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, roles.upsert)
}

func TestRoleUpdatePermissions_RolInexistente(t *testing.T) {
	uc, _, _ := newRoleFixture()

	_, err := uc.UpdatePermissions(context.Background(), roleActorID, "10000000-0000-0000-0000-0000000000ff", dto.UpdatePermissionsRequest{
		Permissions: []dto.ModulePermissionDTO{{Module: entity.ModuleLeads}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRoleCreate_NormalizaNombre(t *testing.T) {
	uc, _, _ := newRoleFixture()

	out, err := uc.Create(context.Background(), dto.CreateRoleRequest{Name: "  Project_Manager ", DisplayName: "PM"})
	require.NoError(t, err)
	assert.Equal(t, "project_manager", out.Name)

	_, err = uc.Create(context.Background(), dto.CreateRoleRequest{Name: "x", HierarchyLevel: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRoleListAudit(t *testing.T) {
	uc, _, _ := newRoleFixture()
	_, err := uc.UpdatePermissions(context.Background(), roleActorID, roleID, dto.UpdatePermissionsRequest{
		Permissions: []dto.ModulePermissionDTO{{Module: entity.ModuleLeads, CanRead: true, CanDelete: true}},
	})
	require.NoError(t, err)

	list, err := uc.ListAudit(context.Background(), roleID, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Before)
	assert.False(t, list[0].Before.CanDelete)
	assert.True(t, list[0].After.CanDelete)
}
