// Package pdf genera el comprobante de venta (sales disposition) en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Marca + "Comprobante de venta" │ N° + Fecha        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre / negocio / contacto                        │
//	│  VENDEDOR + origen + modo de pago                            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Concepto | Bruto | Cobrado | Saldo           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Bruto / Cobrado / SALDO PENDIENTE                  │
//	│  FOOTER: QR con el ID de la venta                            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/CRM-api/internal/application/ports"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
)

var _ ports.ReceiptPDFGenerator = (*MarotoReceiptGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var companyNames = map[string]string{
	entity.CompanyMain:     "Ventas CRM",
	entity.CompanyDigital:  "Ventas CRM Digital",
	entity.CompanyStudio:   "Ventas CRM Studio",
	entity.CompanyPartners: "Ventas CRM Partners",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReceiptGenerator implementa ports.ReceiptPDFGenerator usando Maroto v2.
type MarotoReceiptGenerator struct{}

// NewMarotoReceiptGenerator construye el generador.
func NewMarotoReceiptGenerator() *MarotoReceiptGenerator { return &MarotoReceiptGenerator{} }

// GenerateReceipt genera el PDF de la venta más sus upsells y devuelve sus bytes.
func (g *MarotoReceiptGenerator) GenerateReceipt(d *entity.SalesDisposition, upsells []*entity.SalesDisposition) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("pdf: venta nil")
	}
	brand := nonEmpty(companyNames[d.Company], d.Company)
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de venta", true).
		WithAuthor(brand, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(d, brand))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(d))
	m.AddRows(sellerRow(d))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	all := append([]*entity.SalesDisposition{d}, upsells...)
	for _, r := range tableDetailRows(all) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(all))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(d))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(d *entity.SalesDisposition, brand string) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(brand, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("COMPROBANTE DE VENTA", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("N° "+shortID(d.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 2,
			}),
			text.New("Fecha: "+d.SaleDate.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 10, Color: colorGray,
			}),
		),
	)
}

func customerRow(d *entity.SalesDisposition) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(d.CustomerName, "—"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Negocio: %s   |   Email: %s   |   Tel: %s",
				nonEmpty(d.BusinessName, "—"),
				nonEmpty(d.CustomerEmail, "—"),
				nonEmpty(d.CustomerPhone, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func sellerRow(d *entity.SalesDisposition) core.Row {
	return row.New(8).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Vendedor: %s   |   Origen: %s   |   Pago: %s",
				nonEmpty(d.SellerName, "—"), d.Source, d.PaymentMode,
			), props.Text{Size: 8, Top: 2, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Center),
		h("Concepto", 4, align.Left),
		h("Bruto", 2, align.Right),
		h("Cobrado", 2, align.Right),
		h("Saldo", 2, align.Right),
	)
}

func concept(d *entity.SalesDisposition) string {
	label := "Venta"
	if d.IsUpsell {
		label = "Upsell"
	}
	if len(d.Services) > 0 {
		return label + ": " + strings.Join(d.Services, ", ")
	}
	return label
}

func tableDetailRows(list []*entity.SalesDisposition) []core.Row {
	result := make([]core.Row, 0, len(list))
	for _, d := range list {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(d.SaleDate.Format("02/01/2006"),
				props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(4).Add(text.New(concept(d),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(formatMoney(d.GrossValue),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatMoney(d.CashIn),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatMoney(d.Remaining),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func totalsRow(list []*entity.SalesDisposition) core.Row {
	gross, cash, remaining := decimal.Zero, decimal.Zero, decimal.Zero
	for _, d := range list {
		gross = gross.Add(d.GrossValue)
		cash = cash.Add(d.CashIn)
		remaining = remaining.Add(d.Remaining)
	}
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grand := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 10,
		})
	}
	return row.New(18).Add(
		col.New(6),
		col.New(3).Add(
			label("Total bruto:"),
			text.New("Total cobrado:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 5}),
			text.New("SALDO PENDIENTE:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 10,
			}),
		),
		col.New(3).Add(
			value(formatMoney(gross)),
			text.New(formatMoney(cash), props.Text{Size: 9, Align: align.Right, Right: 1, Top: 5}),
			grand(formatMoney(remaining)),
		),
	)
}

func footerRow(d *entity.SalesDisposition) core.Row {
	return row.New(30).Add(
		col.New(3).Add(code.NewQr("sales-disposition:"+d.ID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Referencia interna: "+d.ID, props.Text{Size: 7, Top: 4, Left: 3, Color: colorGray}),
			text.New("Este comprobante no reemplaza la factura de venta.", props.Text{
				Style: fontstyle.Bold, Size: 8, Top: 12, Left: 3, Color: colorPrimary,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func shortID(id string) string {
	if len(id) >= 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}

// formatMoney formato es-CO: "$1.234.567,50".
func formatMoney(v decimal.Decimal) string {
	s := v.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	sign := ""
	if v.IsNegative() {
		sign = "-"
	}
	return sign + "$" + string(buf) + "," + frac
}
