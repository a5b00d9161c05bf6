package dto

import (
	"fmt"
	"time"

	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
)

// DateLayout formato de fechas sin hora (sale_date, due_date, join_date).
const DateLayout = "2006-01-02"

// ParseDate convierte YYYY-MM-DD a medianoche UTC. Vacío = nil.
func ParseDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return nil, domain.Invalid(field, fmt.Sprintf("fecha inválida %q, formato YYYY-MM-DD", s))
	}
	return &t, nil
}

// FormatDate inverso de ParseDate.
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(DateLayout)
	return &s
}

// NewUserResponse combina usuario y perfil (el perfil puede faltar).
func NewUserResponse(u *entity.User, p *entity.UserProfile) UserResponse {
	out := UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		RoleID:      u.RoleID,
		Role:        u.RoleName,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if p != nil {
		out.DisplayName = p.DisplayName
		out.Phone = p.Phone
		out.AvatarURL = p.AvatarURL
		out.EmployeeID = p.EmployeeID
	}
	return out
}

// NewModulePermissionDTO flags de un módulo sin el role_id.
func NewModulePermissionDTO(p entity.ModulePermission) ModulePermissionDTO {
	return ModulePermissionDTO{
		Module:        p.Module,
		CanCreate:     p.CanCreate,
		CanRead:       p.CanRead,
		CanUpdate:     p.CanUpdate,
		CanDelete:     p.CanDelete,
		ScreenVisible: p.ScreenVisible,
	}
}

// NewPermissionMap expande el set a todos los módulos conocidos (faltantes en false).
func NewPermissionMap(set entity.PermissionSet) map[string]ModulePermissionDTO {
	out := make(map[string]ModulePermissionDTO, len(entity.Modules))
	for _, m := range entity.Modules {
		p, ok := set[m]
		if !ok {
			p = entity.ModulePermission{Module: m}
		}
		out[m] = NewModulePermissionDTO(p)
	}
	return out
}

// NewRoleResponse salida de un rol.
func NewRoleResponse(r *entity.Role) RoleResponse {
	return RoleResponse{
		ID:             r.ID,
		Name:           r.Name,
		DisplayName:    r.DisplayName,
		Description:    r.Description,
		HierarchyLevel: r.HierarchyLevel,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// NewEmployeeResponse salida de un empleado.
func NewEmployeeResponse(e *entity.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:         e.ID,
		UserID:     e.UserID,
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		FullName:   e.FullName(),
		Email:      e.Email,
		Phone:      e.Phone,
		Department: e.Department,
		JobTitle:   e.JobTitle,
		JoinDate:   e.JoinDate,
		IsActive:   e.IsActive,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

// NewLeadResponse salida de un lead.
func NewLeadResponse(l *entity.Lead) LeadResponse {
	return LeadResponse{
		ID:                 l.ID,
		Name:               l.Name,
		Email:              l.Email,
		Phone:              l.Phone,
		CompanyName:        l.CompanyName,
		Source:             l.Source,
		Status:             l.Status,
		Notes:              l.Notes,
		AssignedTo:         l.AssignedTo,
		SalesDispositionID: l.SalesDispositionID,
		ConvertedAt:        l.ConvertedAt,
		CreatedBy:          l.CreatedBy,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

// NewDispositionResponse salida de una venta.
func NewDispositionResponse(d *entity.SalesDisposition) DispositionResponse {
	services := d.Services
	if services == nil {
		services = []string{}
	}
	return DispositionResponse{
		ID:                         d.ID,
		LeadID:                     d.LeadID,
		OriginalSalesDispositionID: d.OriginalSalesDispositionID,
		IsUpsell:                   d.IsUpsell,
		CustomerName:               d.CustomerName,
		CustomerEmail:              d.CustomerEmail,
		CustomerPhone:              d.CustomerPhone,
		BusinessName:               d.BusinessName,
		Services:                   services,
		ServiceDetails:             d.ServiceDetails,
		GrossValue:                 d.GrossValue,
		CashIn:                     d.CashIn,
		Remaining:                  d.Remaining,
		PaymentMode:                d.PaymentMode,
		Company:                    d.Company,
		Source:                     d.Source,
		SellerID:                   d.SellerID,
		SellerName:                 d.SellerName,
		SaleDate:                   d.SaleDate.UTC().Format(DateLayout),
		CreatedBy:                  d.CreatedBy,
		CreatedAt:                  d.CreatedAt,
		UpdatedAt:                  d.UpdatedAt,
	}
}

// NewProjectResponse salida de un proyecto; financials opcional.
func NewProjectResponse(p *entity.Project, f *entity.ProjectFinancials) ProjectResponse {
	out := ProjectResponse{
		ID:                 p.ID,
		SalesDispositionID: p.SalesDispositionID,
		Name:               p.Name,
		ClientName:         p.ClientName,
		Description:        p.Description,
		ProjectManagerID:   p.ProjectManagerID,
		ProjectManagerName: p.ProjectManagerName,
		Status:             p.Status,
		DueDate:            FormatDate(p.DueDate),
		CreatedBy:          p.CreatedBy,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
	if f != nil {
		out.Financials = &ProjectFinancialsDTO{
			Gross:       f.Gross,
			CashIn:      f.CashIn,
			Remaining:   f.Remaining,
			UpsellCount: f.UpsellCount,
		}
	}
	return out
}

// NewTaskResponse salida de una tarea con sus asignados.
func NewTaskResponse(t *entity.Task, assignments []*entity.TaskAssignment) TaskResponse {
	out := TaskResponse{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     FormatDate(t.DueDate),
		CompletedAt: t.CompletedAt,
		Assignees:   make([]TaskAssignmentDTO, 0, len(assignments)),
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	for _, a := range assignments {
		out.Assignees = append(out.Assignees, TaskAssignmentDTO{
			EmployeeID:   a.EmployeeID,
			EmployeeName: a.EmployeeName,
			AssignedAt:   a.AssignedAt,
		})
	}
	return out
}

// NewConversationResponse salida de una conversación.
func NewConversationResponse(c *entity.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:             c.ID,
		Title:          c.Title,
		Kind:           c.Kind,
		CreatedBy:      c.CreatedBy,
		ParticipantIDs: c.ParticipantIDs,
		LastMessageAt:  c.LastMessageAt,
		CreatedAt:      c.CreatedAt,
	}
}

// NewMessageResponse salida de un mensaje.
func NewMessageResponse(m *entity.Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Role:           m.Role,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}
