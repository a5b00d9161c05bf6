package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/CRM-api/internal/application/ports"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/pkg/logger"
)

const (
	permissionKeyPrefix = "perm:user:"
	permissionEpochKey  = "perm:epoch:"
)

// PermissionService resuelve permisos por módulo de un usuario.
// Es el único punto de la aplicación que conoce la lógica user → role → role_permissions.
// Cualquier error se trata como "sin permiso" (fail-closed).
type PermissionService struct {
	roles   repository.RoleRepository
	cache   ports.Cache
	ttl     time.Duration
	metrics ports.Metrics
	log     *logger.Logger

	// gen cuenta invalidaciones por usuario en este proceso; mu cubre también el Set en caché.
	mu  sync.Mutex
	gen map[string]uint64
}

// NewPermissionService construye el servicio. cache puede ser nil (sin memoización).
func NewPermissionService(roles repository.RoleRepository, cache ports.Cache, ttl time.Duration, metrics ports.Metrics, log *logger.Logger) *PermissionService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &PermissionService{
		roles:   roles,
		cache:   cache,
		ttl:     ttl,
		metrics: metrics,
		log:     log.Component("permissions"),
		gen:     make(map[string]uint64),
	}
}

func permissionKey(userID string) string { return permissionKeyPrefix + userID }

// epoch marca de invalidación compartida entre instancias; "" si no hay o la caché falla.
func (s *PermissionService) epoch(ctx context.Context, userID string) string {
	raw, err := s.cache.Get(ctx, permissionEpochKey+userID)
	if err != nil {
		return ""
	}
	return string(raw)
}

func (s *PermissionService) generation(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen[userID]
}

// store guarda el set leído solo si nadie invalidó al usuario mientras se leía la base.
func (s *PermissionService) store(ctx context.Context, userID string, perms []entity.ModulePermission, gen uint64, epoch string) {
	if s.epoch(ctx, userID) != epoch {
		s.log.Debug().Str("user_id", userID).Msg("permisos invalidados durante la lectura, no se cachean")
		return
	}
	raw, err := json.Marshal(perms)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen[userID] != gen {
		s.log.Debug().Str("user_id", userID).Msg("permisos invalidados durante la lectura, no se cachean")
		return
	}
	if err := s.cache.Set(ctx, permissionKey(userID), raw, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("no se pudo guardar permisos en caché")
	}
}

// ForUser devuelve el set de permisos del usuario, memoizado en caché con TTL.
// Un fallo de caché no es fatal: se consulta la base.
func (s *PermissionService) ForUser(ctx context.Context, userID string) (entity.PermissionSet, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, permissionKey(userID))
		switch {
		case err == nil:
			var perms []entity.ModulePermission
			if jerr := json.Unmarshal(raw, &perms); jerr == nil {
				s.metrics.CacheLookup("permissions", true)
				return entity.NewPermissionSet(perms), nil
			}
			s.log.Warn().Str("user_id", userID).Msg("entrada de caché de permisos corrupta, se ignora")
		case errors.Is(err, ports.ErrCacheMiss):
		default:
			s.log.Warn().Err(err).Str("user_id", userID).Msg("caché de permisos no disponible")
		}
		s.metrics.CacheLookup("permissions", false)
	}

	var (
		gen   uint64
		epoch string
	)
	if s.cache != nil {
		gen, epoch = s.generation(userID), s.epoch(ctx, userID)
	}
	perms, err := s.roles.PermissionsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.store(ctx, userID, perms, gen, epoch)
	}
	return entity.NewPermissionSet(perms), nil
}

// Check informa si el usuario puede ejecutar action sobre module.
// Módulo o acción desconocidos, usuario vacío o error de infraestructura = false.
func (s *PermissionService) Check(ctx context.Context, userID, module, action string) bool {
	if userID == "" || !entity.IsValidModule(module) || !entity.IsValidAction(action) {
		s.metrics.PermissionDenied(module, action)
		return false
	}
	set, err := s.ForUser(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).
			Str("user_id", userID).Str("module", module).Str("action", action).
			Msg("error verificando permiso, se deniega")
		s.metrics.PermissionDenied(module, action)
		return false
	}
	if !set.Can(module, action) {
		s.metrics.PermissionDenied(module, action)
		return false
	}
	return true
}

// CheckLive evalúa has_module_permission en la base sin pasar por la caché.
func (s *PermissionService) CheckLive(ctx context.Context, userID, module, action string) bool {
	if userID == "" || !entity.IsValidModule(module) || !entity.IsValidAction(action) {
		return false
	}
	ok, err := s.roles.CheckPermission(ctx, userID, module, action)
	if err != nil {
		s.log.Error().Err(err).
			Str("user_id", userID).Str("module", module).Str("action", action).
			Msg("has_module_permission falló, se deniega")
		return false
	}
	return ok
}

// Invalidate descarta los permisos memoizados de los usuarios indicados.
// Una lectura que estaba en curso ya no podrá guardar su resultado viejo.
func (s *PermissionService) Invalidate(ctx context.Context, userIDs ...string) {
	if s.cache == nil || len(userIDs) == 0 {
		return
	}
	s.mu.Lock()
	for _, id := range userIDs {
		s.gen[id]++
	}
	s.mu.Unlock()

	mark := []byte(uuid.NewString())
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if err := s.cache.Set(ctx, permissionEpochKey+id, mark, s.ttl); err != nil {
			s.log.Warn().Err(err).Str("user_id", id).Msg("no se pudo marcar la invalidación de permisos")
		}
		keys = append(keys, permissionKey(id))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Error().Err(err).Int("users", len(userIDs)).Msg("no se pudo invalidar la caché de permisos")
	}
}
