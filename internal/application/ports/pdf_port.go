package ports

import "github.com/jhoicas/CRM-api/internal/domain/entity"

// ReceiptPDFGenerator genera el comprobante PDF de una venta.
// Upsells son las ventas que referencian a la original (puede ser vacío).
type ReceiptPDFGenerator interface {
	GenerateReceipt(d *entity.SalesDisposition, upsells []*entity.SalesDisposition) ([]byte, error)
}
