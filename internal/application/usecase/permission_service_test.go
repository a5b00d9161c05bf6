package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
)

const permUserID = "00000000-0000-0000-0000-000000000001"

func leadsReader() []entity.ModulePermission {
	return []entity.ModulePermission{
		{Module: entity.ModuleLeads, CanRead: true, CanCreate: true, ScreenVisible: true},
		{Module: entity.ModuleDashboard, CanRead: true},
	}
}

func TestPermissionService_CacheMissLuegoHit(t *testing.T) {
	roles := &mockRoles{}
	roles.On("PermissionsForUser", mock.Anything, permUserID).Return(leadsReader(), nil).Once()
	cache := newMemCache()
	metrics := &recordingMetrics{}
	svc := NewPermissionService(roles, cache, time.Minute, metrics, nil)

	assert.True(t, svc.Check(context.Background(), permUserID, entity.ModuleLeads, entity.ActionCreate))
	assert.True(t, svc.Check(context.Background(), permUserID, entity.ModuleLeads, entity.ActionRead))
	assert.False(t, svc.Check(context.Background(), permUserID, entity.ModuleLeads, entity.ActionDelete))

	roles.AssertNumberOfCalls(t, "PermissionsForUser", 1)
	assert.Equal(t, 1, metrics.misses)
	assert.Equal(t, 2, metrics.hits)
	assert.Equal(t, []string{"leads:delete"}, metrics.denied)
	assert.Contains(t, cache.data, permissionKey(permUserID))
}

func TestPermissionService_InvalidateFuerzaRelectura(t *testing.T) {
	roles := &mockRoles{}
	roles.On("PermissionsForUser", mock.Anything, permUserID).Return(leadsReader(), nil).Once()
	roles.On("PermissionsForUser", mock.Anything, permUserID).Return([]entity.ModulePermission{}, nil).Once()
	cache := newMemCache()
	svc := NewPermissionService(roles, cache, time.Minute, nil, nil)

	require.True(t, svc.Check(context.Background(), permUserID, entity.ModuleLeads, entity.ActionRead))
	svc.Invalidate(context.Background(), permUserID)
	assert.False(t, svc.Check(context.Background(), permUserID, entity.ModuleLeads, entity.ActionRead),
		"tras invalidar se leen los flags nuevos")
	roles.AssertExpectations(t)
}

func TestPermissionService_ErrorDeBaseDeniega(t *testing.T) {
	roles := &mockRoles{}
	roles.On("PermissionsForUser", mock.Anything, permUserID).Return(nil, errors.New("conexión rechazada"))
	svc := NewPermissionService(roles, nil, 0, nil, nil)

	assert.False(t, svc.Check(context.Background(), permUserID, entity.ModuleLeads, entity.ActionRead))
	_, err := svc.ForUser(context.Background(), permUserID)
	assert.Error(t, err)
}

func TestPermissionService_CacheCaidaConsultaLaBase(t *testing.T) {
	roles := &mockRoles{}
	roles.On("PermissionsForUser", mock.Anything, permUserID).Return(leadsReader(), nil)
	cache := newMemCache()
	cache.getErr = errors.New("redis: connection refused")
	svc := NewPermissionService(roles, cache, time.Minute, nil, nil)

	assert.True(t, svc.Check(context.Background(), permUserID, entity.ModuleDashboard, entity.ActionRead))
	assert.True(t, svc.Check(context.Background(), permUserID, entity.ModuleDashboard, entity.ActionRead))
	roles.AssertNumberOfCalls(t, "PermissionsForUser", 2)
}

func TestPermissionService_EntradaCorruptaSeIgnora(t *testing.T) {
	roles := &mockRoles{}
	roles.On("PermissionsForUser", mock.Anything, permUserID).Return(leadsReader(), nil).Once()
	cache := newMemCache()
	cache.data[permissionKey(permUserID)] = []byte("{no es json")
	svc := NewPermissionService(roles, cache, time.Minute, nil, nil)

	assert.True(t, svc.Check(context.Background(), permUserID, entity.ModuleLeads, entity.ActionRead))
	roles.AssertExpectations(t)
}

func TestPermissionService_ModuloOAccionDesconocidos(t *testing.T) {
	roles := &mockRoles{}
	svc := NewPermissionService(roles, nil, 0, nil, nil)

	assert.False(t, svc.Check(context.Background(), permUserID, "inventario", entity.ActionRead))
	assert.False(t, svc.Check(context.Background(), permUserID, entity.ModuleLeads, "export"))
	assert.False(t, svc.Check(context.Background(), "", entity.ModuleLeads, entity.ActionRead))
	roles.AssertNotCalled(t, "PermissionsForUser", mock.Anything, mock.Anything)
}

func TestPermissionService_CheckLive(t *testing.T) {
	roles := &mockRoles{}
	roles.On("CheckPermission", mock.Anything, permUserID, entity.ModuleSales, entity.ActionUpdate).Return(true, nil)
	roles.On("CheckPermission", mock.Anything, permUserID, entity.ModuleSales, entity.ActionDelete).Return(false, errors.New("timeout"))
	svc := NewPermissionService(roles, newMemCache(), time.Minute, nil, nil)

	assert.True(t, svc.CheckLive(context.Background(), permUserID, entity.ModuleSales, entity.ActionUpdate))
	assert.False(t, svc.CheckLive(context.Background(), permUserID, entity.ModuleSales, entity.ActionDelete))
}

// slowRoles lee el flag de borrado de ventas y, si se le pide, se detiene a mitad de la lectura.
type slowRoles struct {
	repository.RoleRepository
	mu        sync.Mutex
	canDelete bool
	pause     bool
	paused    chan struct{}
	resume    chan struct{}
}

func newSlowRoles() *slowRoles {
	return &slowRoles{canDelete: true, paused: make(chan struct{}), resume: make(chan struct{})}
}

func (r *slowRoles) PermissionsForUser(_ context.Context, _ string) ([]entity.ModulePermission, error) {
	r.mu.Lock()
	snapshot, pause := r.canDelete, r.pause
	r.pause = false
	r.mu.Unlock()
	if pause {
		close(r.paused)
		<-r.resume
	}
	return []entity.ModulePermission{{Module: entity.ModuleSales, CanRead: true, CanDelete: snapshot}}, nil
}

func (r *slowRoles) revoke() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.canDelete = false
}

func TestPermissionService_LecturaViejaNoSobreviveAInvalidate(t *testing.T) {
	roles := newSlowRoles()
	roles.pause = true
	cache := newMemCache()
	svc := NewPermissionService(roles, cache, time.Minute, nil, nil)

	done := make(chan bool)
	go func() { done <- svc.Check(context.Background(), permUserID, entity.ModuleSales, entity.ActionDelete) }()

	<-roles.paused
	roles.revoke()
	svc.Invalidate(context.Background(), permUserID)
	close(roles.resume)

	assert.True(t, <-done, "la petición en curso usa lo que leyó")
	assert.NotContains(t, cache.data, permissionKey(permUserID))
	assert.False(t, svc.Check(context.Background(), permUserID, entity.ModuleSales, entity.ActionDelete))
}

func TestPermissionService_InvalidateDesdeOtraInstancia(t *testing.T) {
	roles := newSlowRoles()
	roles.pause = true
	cache := newMemCache()
	reader := NewPermissionService(roles, cache, time.Minute, nil, nil)
	writer := NewPermissionService(roles, cache, time.Minute, nil, nil)

	done := make(chan bool)
	go func() {
		done <- reader.Check(context.Background(), permUserID, entity.ModuleSales, entity.ActionDelete)
	}()

	<-roles.paused
	roles.revoke()
	writer.Invalidate(context.Background(), permUserID)
	close(roles.resume)
	<-done

	assert.NotContains(t, cache.data, permissionKey(permUserID))
	assert.False(t, reader.Check(context.Background(), permUserID, entity.ModuleSales, entity.ActionDelete))
}
