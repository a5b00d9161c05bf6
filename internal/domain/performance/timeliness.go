package performance

import (
	"math"
	"time"
)

// Timeliness resultado de evaluar el cierre de una tarea contra su fecha límite.
type Timeliness struct {
	OnTime   bool
	DaysLate int
	Strike   bool
}

// Evaluate compara la fecha de cierre con la fecha límite (servicio de dominio).
// La fecha límite cubre el día completo: cerrar el mismo día es a tiempo.
// Sin fecha límite la tarea siempre está a tiempo. Cada cierre tardío suma un strike.
func Evaluate(due *time.Time, completedAt time.Time) Timeliness {
	if due == nil {
		return Timeliness{OnTime: true}
	}
	d := due.UTC()
	deadline := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
	c := completedAt.UTC()
	if c.Before(deadline) {
		return Timeliness{OnTime: true}
	}
	days := int(math.Ceil(c.Sub(deadline).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return Timeliness{OnTime: false, DaysLate: days, Strike: true}
}

// OnTimeRate porcentaje de tareas a tiempo (0-100, dos decimales). Sin tareas = 0.
func OnTimeRate(onTime, completed int) float64 {
	if completed <= 0 {
		return 0
	}
	return math.Round(float64(onTime)/float64(completed)*10000) / 100
}
