package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/CRM-api/internal/application/analytics"
	"github.com/jhoicas/CRM-api/internal/application/auth"
	"github.com/jhoicas/CRM-api/internal/application/messaging"
	"github.com/jhoicas/CRM-api/internal/application/projects"
	"github.com/jhoicas/CRM-api/internal/application/sales"
	"github.com/jhoicas/CRM-api/internal/application/usecase"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	Permissions   *usecase.PermissionService
	RoleUC        *usecase.RoleUseCase
	AdminUC       *usecase.AdminUseCase
	EmployeeUC    *usecase.EmployeeUseCase
	LeadUC        *usecase.LeadUseCase
	SalesUC       *sales.DispositionUseCase
	ProjectUC     *projects.ProjectUseCase
	TaskUC        *projects.TaskUseCase
	MessagingUC   *messaging.UseCase
	AIUC          *usecase.AIUseCase
	DashboardUC   *appanalytics.DashboardUseCase
	PerformanceUC *appanalytics.PerformanceUseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// /api/admin/delete-user solo acepta DELETE; se responde 405 antes de exigir token.
	adminHandler := NewAdminHandler(deps.AdminUC)
	api.All("/admin/delete-user", func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodDelete {
			return c.Next()
		}
		return adminHandler.DeleteUserMethodNotAllowed(c)
	})

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	can := func(module, action string) fiber.Handler {
		return RequirePermission(deps.Permissions, module, action)
	}

	protected.Get("/auth/me", authHandler.Me)

	permissionHandler := NewPermissionHandler(deps.Permissions)
	protected.Get("/permissions/me", permissionHandler.Me)
	protected.Get("/permissions/check", permissionHandler.Check)

	// Roles y flags por módulo
	roles := protected.Group("/roles")
	roleHandler := NewRoleHandler(deps.RoleUC)
	roles.Get("/", can(entity.ModuleRoles, entity.ActionRead), roleHandler.List)
	roles.Post("/", can(entity.ModuleRoles, entity.ActionCreate), roleHandler.Create)
	roles.Get("/:id/permissions", can(entity.ModuleRoles, entity.ActionRead), roleHandler.GetPermissions)
	roles.Put("/:id/permissions", can(entity.ModuleRoles, entity.ActionUpdate), roleHandler.UpdatePermissions)
	roles.Get("/:id/audit", can(entity.ModuleRoles, entity.ActionRead), roleHandler.Audit)

	// Administración de usuarios
	admin := protected.Group("/admin")
	admin.Get("/users", can(entity.ModuleUsers, entity.ActionRead), adminHandler.ListUsers)
	admin.Get("/users/:id", can(entity.ModuleUsers, entity.ActionRead), adminHandler.GetUser)
	admin.Post("/create-user", can(entity.ModuleUsers, entity.ActionCreate), adminHandler.CreateUser)
	admin.Put("/users/:id", can(entity.ModuleUsers, entity.ActionUpdate), adminHandler.UpdateUser)
	admin.Put("/users/:id/role", can(entity.ModuleUsers, entity.ActionUpdate), adminHandler.UpdateUserRole)
	admin.Delete("/delete-user", can(entity.ModuleUsers, entity.ActionDelete), adminHandler.DeleteUser)

	// Empleados
	employees := protected.Group("/employees")
	employeeHandler := NewEmployeeHandler(deps.EmployeeUC)
	employees.Get("/", can(entity.ModuleEmployees, entity.ActionRead), employeeHandler.List)
	employees.Post("/", can(entity.ModuleEmployees, entity.ActionCreate), employeeHandler.Create)
	employees.Get("/:id", can(entity.ModuleEmployees, entity.ActionRead), employeeHandler.GetByID)
	employees.Put("/:id", can(entity.ModuleEmployees, entity.ActionUpdate), employeeHandler.Update)
	employees.Delete("/:id", can(entity.ModuleEmployees, entity.ActionDelete), employeeHandler.Delete)
	employees.Get("/:id/performance", can(entity.ModuleEmployees, entity.ActionRead), employeeHandler.Performance)

	// Leads
	leads := protected.Group("/leads")
	leadHandler := NewLeadHandler(deps.LeadUC, deps.SalesUC)
	leads.Get("/", can(entity.ModuleLeads, entity.ActionRead), leadHandler.List)
	leads.Post("/", can(entity.ModuleLeads, entity.ActionCreate), leadHandler.Create)
	leads.Get("/:id", can(entity.ModuleLeads, entity.ActionRead), leadHandler.GetByID)
	leads.Put("/:id", can(entity.ModuleLeads, entity.ActionUpdate), leadHandler.Update)
	leads.Delete("/:id", can(entity.ModuleLeads, entity.ActionDelete), leadHandler.Delete)
	leads.Post("/:id/convert",
		can(entity.ModuleLeads, entity.ActionUpdate),
		can(entity.ModuleSales, entity.ActionCreate),
		leadHandler.Convert,
	)

	// Ventas
	dispositions := protected.Group("/sales-dispositions")
	salesHandler := NewSalesHandler(deps.SalesUC)
	dispositions.Get("/", can(entity.ModuleSales, entity.ActionRead), salesHandler.List)
	dispositions.Post("/", can(entity.ModuleSales, entity.ActionCreate), salesHandler.Create)
	dispositions.Get("/:id", can(entity.ModuleSales, entity.ActionRead), salesHandler.GetByID)
	dispositions.Put("/:id", can(entity.ModuleSales, entity.ActionUpdate), salesHandler.Update)
	dispositions.Delete("/:id", can(entity.ModuleSales, entity.ActionDelete), salesHandler.Delete)
	dispositions.Post("/:id/upsell", can(entity.ModuleSales, entity.ActionCreate), salesHandler.Upsell)
	dispositions.Get("/:id/receipt", can(entity.ModuleSales, entity.ActionRead), salesHandler.Receipt)

	// Proyectos y tareas
	projectsGroup := protected.Group("/projects")
	projectHandler := NewProjectHandler(deps.ProjectUC, deps.TaskUC)
	projectsGroup.Get("/", can(entity.ModuleProjects, entity.ActionRead), projectHandler.List)
	projectsGroup.Post("/", can(entity.ModuleProjects, entity.ActionCreate), projectHandler.Create)
	projectsGroup.Get("/:id", can(entity.ModuleProjects, entity.ActionRead), projectHandler.GetByID)
	projectsGroup.Put("/:id", can(entity.ModuleProjects, entity.ActionUpdate), projectHandler.Update)
	projectsGroup.Put("/:id/assign", can(entity.ModuleProjects, entity.ActionUpdate), projectHandler.Assign)
	projectsGroup.Delete("/:id", can(entity.ModuleProjects, entity.ActionDelete), projectHandler.Delete)
	projectsGroup.Get("/:id/tasks", can(entity.ModuleTasks, entity.ActionRead), projectHandler.ListTasks)
	projectsGroup.Post("/:id/tasks", can(entity.ModuleTasks, entity.ActionCreate), projectHandler.CreateTask)

	tasks := protected.Group("/tasks")
	taskHandler := NewTaskHandler(deps.TaskUC)
	tasks.Get("/:id", can(entity.ModuleTasks, entity.ActionRead), taskHandler.GetByID)
	tasks.Put("/:id", can(entity.ModuleTasks, entity.ActionUpdate), taskHandler.Update)
	tasks.Delete("/:id", can(entity.ModuleTasks, entity.ActionDelete), taskHandler.Delete)
	tasks.Post("/:id/assign", can(entity.ModuleTasks, entity.ActionUpdate), taskHandler.Assign)
	tasks.Put("/:id/status", can(entity.ModuleTasks, entity.ActionUpdate), taskHandler.UpdateStatus)

	// Mensajería
	messages := protected.Group("/messages")
	messageHandler := NewMessageHandler(deps.MessagingUC)
	messages.Get("/conversations", can(entity.ModuleMessages, entity.ActionRead), messageHandler.ListConversations)
	messages.Post("/conversations", can(entity.ModuleMessages, entity.ActionCreate), messageHandler.CreateConversation)
	messages.Get("/conversations/:id/messages", can(entity.ModuleMessages, entity.ActionRead), messageHandler.ListMessages)
	messages.Post("/send-message-mysql", can(entity.ModuleMessages, entity.ActionCreate), messageHandler.Send)
	messages.Post("/send", can(entity.ModuleMessages, entity.ActionCreate), messageHandler.Send)

	// Asistente IA
	ai := protected.Group("/ai")
	aiHandler := NewAIHandler(deps.AIUC)
	ai.Post("/chat", can(entity.ModuleAIChat, entity.ActionCreate), aiHandler.Chat)
	ai.Get("/conversations", can(entity.ModuleAIChat, entity.ActionRead), aiHandler.Conversations)
	ai.Get("/conversations/:id/messages", can(entity.ModuleAIChat, entity.ActionRead), aiHandler.Messages)

	// Dashboard y desempeño
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard/summary", can(entity.ModuleDashboard, entity.ActionRead), dashboardHandler.GetSummary)

	analyticsHandler := NewAnalyticsHandler(deps.PerformanceUC)
	protected.Get("/front-sales/performance", can(entity.ModuleFrontSales, entity.ActionRead), analyticsHandler.FrontSalesPerformance)
	protected.Get("/upseller/performance", can(entity.ModuleUpseller, entity.ActionRead), analyticsHandler.UpsellerPerformance)
}
