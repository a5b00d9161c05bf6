package sales

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/CRM-api/internal/domain"
)

// Remaining calcula el saldo pendiente de una venta (servicio de dominio).
// Saldo = Bruto - Cobrado, con 0 <= Cobrado <= Bruto y Bruto > 0.
func Remaining(gross, cashIn decimal.Decimal) (decimal.Decimal, error) {
	if !gross.IsPositive() {
		return decimal.Zero, domain.Invalid("gross_value", "debe ser mayor que cero")
	}
	if cashIn.IsNegative() {
		return decimal.Zero, domain.Invalid("cash_in", "no puede ser negativo")
	}
	if cashIn.GreaterThan(gross) {
		return decimal.Zero, domain.Invalid("cash_in", "no puede superar el valor bruto")
	}
	return gross.Sub(cashIn).Round(2), nil
}
