package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/jhoicas/CRM-api/internal/application/ports"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
)

// mockRoles RoleRepository con testify/mock; los métodos no usados quedan sin implementar.
type mockRoles struct {
	repository.RoleRepository
	mock.Mock
}

func (m *mockRoles) PermissionsForUser(ctx context.Context, userID string) ([]entity.ModulePermission, error) {
	args := m.Called(ctx, userID)
	perms, _ := args.Get(0).([]entity.ModulePermission)
	return perms, args.Error(1)
}

func (m *mockRoles) CheckPermission(ctx context.Context, userID, module, action string) (bool, error) {
	args := m.Called(ctx, userID, module, action)
	return args.Bool(0), args.Error(1)
}

// memCache ports.Cache en memoria; getErr/deleteErr fuerzan fallos de infraestructura.
type memCache struct {
	mu        sync.Mutex
	data      map[string][]byte
	getErr    error
	deleteErr error
	deleted   []string
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	v, ok := c.data[key]
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleteErr != nil {
		return c.deleteErr
	}
	for _, k := range keys {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
	sort.Strings(c.deleted)
	return nil
}

type recordingMetrics struct {
	ports.NopMetrics
	mu      sync.Mutex
	hits    int
	misses  int
	denied  []string
	llmOuts []string
}

func (m *recordingMetrics) CacheLookup(_ string, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *recordingMetrics) PermissionDenied(module, action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denied = append(m.denied, module+":"+action)
}

func (m *recordingMetrics) LLMRequest(_, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.llmOuts = append(m.llmOuts, outcome)
}

// memRoles RoleRepository en memoria para roles y bitácora.
type memRoles struct {
	mu     sync.Mutex
	roles  map[string]*entity.Role
	perms  map[string]map[string]entity.ModulePermission
	audit  []*entity.PermissionAudit
	users  map[string][]string // roleID → userIDs
	upsert int
}

func newMemRoles() *memRoles {
	return &memRoles{
		roles: map[string]*entity.Role{},
		perms: map[string]map[string]entity.ModulePermission{},
		users: map[string][]string{},
	}
}

func (m *memRoles) Create(_ context.Context, r *entity.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[r.ID] = r
	return nil
}

func (m *memRoles) GetByID(_ context.Context, id string) (*entity.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roles[id], nil
}

func (m *memRoles) GetByName(_ context.Context, name string) (*entity.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.roles {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, nil
}

func (m *memRoles) List(context.Context) ([]*entity.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.Role, 0, len(m.roles))
	for _, r := range m.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memRoles) GetPermissions(_ context.Context, roleID string) ([]entity.ModulePermission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.ModulePermission
	for _, p := range m.perms[roleID] {
		out = append(out, p)
	}
	return out, nil
}

func (m *memRoles) UpsertPermission(_ context.Context, p entity.ModulePermission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.perms[p.RoleID] == nil {
		m.perms[p.RoleID] = map[string]entity.ModulePermission{}
	}
	m.perms[p.RoleID][p.Module] = p
	m.upsert++
	return nil
}

func (m *memRoles) PermissionsForUser(_ context.Context, userID string) ([]entity.ModulePermission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for roleID, ids := range m.users {
		for _, id := range ids {
			if id == userID {
				var out []entity.ModulePermission
				for _, p := range m.perms[roleID] {
					out = append(out, p)
				}
				return out, nil
			}
		}
	}
	return nil, nil
}

func (m *memRoles) CheckPermission(ctx context.Context, userID, module, action string) (bool, error) {
	perms, _ := m.PermissionsForUser(ctx, userID)
	return entity.NewPermissionSet(perms).Can(module, action), nil
}

func (m *memRoles) UserIDsByRole(_ context.Context, roleID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[roleID], nil
}

func (m *memRoles) AddAudit(_ context.Context, a *entity.PermissionAudit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, a)
	return nil
}

func (m *memRoles) ListAudit(_ context.Context, roleID string, limit int) ([]*entity.PermissionAudit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.PermissionAudit
	for i := len(m.audit) - 1; i >= 0 && len(out) < limit; i-- {
		if m.audit[i].RoleID == roleID {
			out = append(out, m.audit[i])
		}
	}
	return out, nil
}

// memUsers UserRepository en memoria.
type memUsers struct {
	mu       sync.Mutex
	users    map[string]*entity.User
	profiles map[string]*entity.UserProfile
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]*entity.User{}, profiles: map[string]*entity.UserProfile{}}
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	if offset > len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *memUsers) Update(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) UpdateRole(_ context.Context, userID string, roleID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.RoleID = roleID
	return nil
}

func (m *memUsers) TouchLastLogin(context.Context, string) error { return nil }

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *memUsers) CreateProfile(_ context.Context, p *entity.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.profiles[p.UserID] = &cp
	return nil
}

func (m *memUsers) GetProfile(_ context.Context, userID string) (*entity.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memUsers) UpdateProfile(ctx context.Context, p *entity.UserProfile) error {
	return m.CreateProfile(ctx, p)
}

func (m *memUsers) DeleteProfile(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, userID)
	return nil
}

// memConversations ConversationRepository en memoria.
type memConversations struct {
	mu       sync.Mutex
	convs    map[string]*entity.Conversation
	messages []*entity.Message
}

func newMemConversations() *memConversations {
	return &memConversations{convs: map[string]*entity.Conversation{}}
}

func (m *memConversations) Create(_ context.Context, c *entity.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.convs[c.ID] = c
	return nil
}

func (m *memConversations) GetByID(_ context.Context, id string) (*entity.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.convs[id], nil
}

func (m *memConversations) ListForUser(_ context.Context, userID, kind string) ([]*entity.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Conversation
	for _, c := range m.convs {
		if kind != "" && c.Kind != kind {
			continue
		}
		for _, p := range c.ParticipantIDs {
			if p == userID {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (m *memConversations) IsParticipant(_ context.Context, conversationID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.convs[conversationID]
	if !ok {
		return false, nil
	}
	for _, p := range c.ParticipantIDs {
		if p == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memConversations) AddMessage(_ context.Context, msg *entity.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *memConversations) ListMessages(_ context.Context, conversationID string, limit int) ([]*entity.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Message
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (m *memConversations) Touch(_ context.Context, conversationID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.convs[conversationID]; ok {
		c.LastMessageAt = &at
	}
	return nil
}

// passTx ejecuta fn con los repos dados, sin transacción real.
type passTx struct{ repos repository.Repos }

func (t passTx) Run(_ context.Context, fn func(r repository.Repos) error) error { return fn(t.repos) }
