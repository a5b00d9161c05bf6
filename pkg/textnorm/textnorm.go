// Package textnorm normaliza textos capturados en formularios (nombres, emails)
// y produce etiquetas de período en español para los dashboards.
package textnorm

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var monthsES = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// PersonName colapsa espacios y aplica mayúscula inicial por palabra.
// "  maría   JOSÉ pérez " -> "María José Pérez"
func PersonName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	return cases.Title(language.Spanish).String(s)
}

// Email recorta espacios y pasa a minúsculas.
func Email(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// MonthLabel devuelve la etiqueta del mes en español, ej. "Octubre 2026".
func MonthLabel(t time.Time) string {
	name := cases.Title(language.Spanish).String(monthsES[t.Month()-1])
	return fmt.Sprintf("%s %d", name, t.Year())
}
