package mysqlmirror

import (
	"fmt"
	"sort"
	"strings"
)

// Table tabla a copiar, el orden estable de lectura por páginas y la columna de
// sello temporal que usa la verificación.
type Table struct {
	Name    string
	OrderBy []string
	Stamp   string
}

// DefaultTables en orden de dependencias (padres antes que hijos).
// sales_dispositions se lee con las ventas originales primero para que los upsells
// encuentren su FK.
var DefaultTables = []Table{
	{Name: "roles", OrderBy: []string{"id"}, Stamp: "updated_at"},
	{Name: "users", OrderBy: []string{"id"}, Stamp: "updated_at"},
	{Name: "employees", OrderBy: []string{"id"}, Stamp: "updated_at"},
	{Name: "user_profiles", OrderBy: []string{"user_id"}, Stamp: "updated_at"},
	{Name: "role_permissions", OrderBy: []string{"role_id", "module"}, Stamp: "updated_at"},
	{Name: "permission_audit_log", OrderBy: []string{"id"}, Stamp: "created_at"},
	{Name: "leads", OrderBy: []string{"id"}, Stamp: "updated_at"},
	{Name: "sales_dispositions", OrderBy: []string{"is_upsell", "id"}, Stamp: "updated_at"},
	{Name: "front_seller_performance", OrderBy: []string{"id"}, Stamp: "updated_at"},
	{Name: "upseller_performance", OrderBy: []string{"id"}, Stamp: "updated_at"},
	{Name: "projects", OrderBy: []string{"id"}, Stamp: "updated_at"},
	{Name: "tasks", OrderBy: []string{"id"}, Stamp: "updated_at"},
	{Name: "task_assignments", OrderBy: []string{"task_id", "employee_id"}, Stamp: "assigned_at"},
	{Name: "task_performance", OrderBy: []string{"id"}, Stamp: "created_at"},
	{Name: "conversations", OrderBy: []string{"id"}, Stamp: "updated_at"},
	{Name: "conversation_participants", OrderBy: []string{"conversation_id", "user_id"}, Stamp: "joined_at"},
	{Name: "chat_messages", OrderBy: []string{"id"}, Stamp: "created_at"},
}

// SelectTables filtra DefaultTables conservando el orden de dependencias.
// Una lista vacía devuelve todas.
func SelectTables(names []string) ([]Table, error) {
	if len(names) == 0 {
		return DefaultTables, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	out := make([]Table, 0, len(names))
	for _, t := range DefaultTables {
		if want[t.Name] {
			out = append(out, t)
			delete(want, t.Name)
		}
	}
	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for n := range want {
			missing = append(missing, n)
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("mysqlmirror: tablas desconocidas: %s", strings.Join(missing, ", "))
	}
	return out, nil
}
