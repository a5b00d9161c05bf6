package sales

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/application/ports"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
	domainsales "github.com/jhoicas/CRM-api/internal/domain/sales"
	"github.com/jhoicas/CRM-api/pkg/logger"
	"github.com/jhoicas/CRM-api/pkg/textnorm"
)

const maxReceiptUpsells = 100

// DispositionCreated payload del evento sales.disposition.created.
type DispositionCreated struct {
	ID                         string          `json:"id"`
	SellerID                   string          `json:"seller_id"`
	LeadID                     *string         `json:"lead_id,omitempty"`
	OriginalSalesDispositionID *string         `json:"original_sales_disposition_id,omitempty"`
	IsUpsell                   bool            `json:"is_upsell"`
	Company                    string          `json:"company"`
	Source                     string          `json:"source"`
	GrossValue                 decimal.Decimal `json:"gross_value"`
	CashIn                     decimal.Decimal `json:"cash_in"`
	SaleDate                   string          `json:"sale_date"`
	OccurredAt                 time.Time       `json:"occurred_at"`
}

// DispositionUseCase ventas, upsells y conversión de leads.
// Toda escritura recalcula el desempeño mensual del vendedor en la misma transacción.
type DispositionUseCase struct {
	dispositions repository.SalesDispositionRepository
	leads        repository.LeadRepository
	tx           repository.TxRunner
	events       ports.EventPublisher
	receipts     ports.ReceiptPDFGenerator
	log          *logger.Logger
	now          func() time.Time
}

// NewDispositionUseCase construye el caso de uso. events y receipts pueden ser nil.
func NewDispositionUseCase(
	dispositions repository.SalesDispositionRepository,
	leads repository.LeadRepository,
	tx repository.TxRunner,
	events ports.EventPublisher,
	receipts ports.ReceiptPDFGenerator,
	log *logger.Logger,
) *DispositionUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &DispositionUseCase{
		dispositions: dispositions,
		leads:        leads,
		tx:           tx,
		events:       events,
		receipts:     receipts,
		log:          log.Component("sales"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// build valida la entrada y arma la venta. sellerID vacío = actor.
func (uc *DispositionUseCase) build(actorID string, in dto.SaleInput) (*entity.SalesDisposition, error) {
	remaining, err := domainsales.Remaining(in.GrossValue, in.CashIn)
	if err != nil {
		return nil, err
	}
	if !entity.Contains(entity.SaleCompanies, in.Company) {
		return nil, domain.Invalid("company", "empresa inválida: "+in.Company)
	}
	source := in.Source
	if source == "" {
		source = entity.SaleSourceFrontSales
	}
	if !entity.Contains(entity.SaleSources, source) {
		return nil, domain.Invalid("source", "origen inválido: "+source)
	}
	mode := in.PaymentMode
	if mode == "" {
		mode = entity.PaymentFull
		if remaining.IsPositive() {
			mode = entity.PaymentPartial
		}
	}
	if !entity.Contains(entity.PaymentModes, mode) {
		return nil, domain.Invalid("payment_mode", "modo de pago inválido: "+mode)
	}

	now := uc.now()
	saleDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if in.SaleDate != "" {
		d, err := dto.ParseDate("sale_date", in.SaleDate)
		if err != nil {
			return nil, err
		}
		saleDate = *d
	}
	seller := in.SellerID
	if seller == "" {
		seller = actorID
	}

	return &entity.SalesDisposition{
		ID:             uuid.New().String(),
		CustomerName:   textnorm.PersonName(in.CustomerName),
		CustomerEmail:  textnorm.Email(in.CustomerEmail),
		CustomerPhone:  strings.TrimSpace(in.CustomerPhone),
		BusinessName:   strings.TrimSpace(in.BusinessName),
		Services:       cleanServices(in.Services),
		ServiceDetails: in.ServiceDetails,
		GrossValue:     in.GrossValue,
		CashIn:         in.CashIn,
		Remaining:      remaining,
		PaymentMode:    mode,
		Company:        in.Company,
		Source:         source,
		SellerID:       seller,
		SaleDate:       saleDate,
		CreatedBy:      actorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func cleanServices(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// sellerMonth clave de un registro mensual de desempeño.
type sellerMonth struct {
	sellerID string
	month    time.Time
}

func monthOf(sellerID string, saleDate time.Time) sellerMonth {
	return sellerMonth{sellerID: sellerID, month: entity.MonthStart(saleDate)}
}

func (k sellerMonth) String() string {
	return k.sellerID + ":" + k.month.Format("2006-01")
}

// recompute recalcula los registros mensuales indicados a partir de las ventas vigentes.
// Los locks se toman todos antes de sumar y en orden fijo, así dos transacciones
// que tocan los mismos meses no se cruzan.
func (uc *DispositionUseCase) recompute(ctx context.Context, r repository.Repos, isUpsell bool, keys ...sellerMonth) error {
	dept := entity.DepartmentFrontSales
	if isUpsell {
		dept = entity.DepartmentUpseller
	}
	seen := make(map[string]bool, len(keys))
	uniq := make([]sellerMonth, 0, len(keys))
	for _, k := range keys {
		if !seen[k.String()] {
			seen[k.String()] = true
			uniq = append(uniq, k)
		}
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i].String() < uniq[j].String() })

	for _, k := range uniq {
		if err := r.Performance.LockSellerMonth(ctx, dept, k.sellerID, k.month); err != nil {
			return err
		}
	}
	for _, k := range uniq {
		totals, err := r.Dispositions.SellerTotals(ctx, k.sellerID, isUpsell, k.month, k.month.AddDate(0, 1, 0))
		if err != nil {
			return err
		}
		if err := r.Performance.Upsert(ctx, &entity.PerformanceRecord{
			Department:       dept,
			SellerID:         k.sellerID,
			Month:            k.month,
			AccountsAchieved: totals.Accounts,
			TotalGross:       totals.Gross,
			TotalCashIn:      totals.CashIn,
			UpdatedAt:        uc.now(),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (uc *DispositionUseCase) insert(ctx context.Context, r repository.Repos, d *entity.SalesDisposition) error {
	if err := r.Dispositions.Create(ctx, d); err != nil {
		return err
	}
	return uc.recompute(ctx, r, d.IsUpsell, monthOf(d.SellerID, d.SaleDate))
}

// publishCreated publica el evento tras el commit; un fallo del bus no revierte la venta.
func (uc *DispositionUseCase) publishCreated(ctx context.Context, d *entity.SalesDisposition) {
	if uc.events == nil {
		return
	}
	ev := ports.Event{
		Name: ports.EventDispositionCreated,
		Key:  d.ID,
		Payload: DispositionCreated{
			ID:                         d.ID,
			SellerID:                   d.SellerID,
			LeadID:                     d.LeadID,
			OriginalSalesDispositionID: d.OriginalSalesDispositionID,
			IsUpsell:                   d.IsUpsell,
			Company:                    d.Company,
			Source:                     d.Source,
			GrossValue:                 d.GrossValue,
			CashIn:                     d.CashIn,
			SaleDate:                   d.SaleDate.Format(dto.DateLayout),
			OccurredAt:                 d.CreatedAt,
		},
	}
	if err := uc.events.Publish(ctx, ev); err != nil {
		uc.log.Warn().Err(err).Str("disposition_id", d.ID).Msg("no se pudo publicar evento de venta")
	}
}

// reload relee la venta tras escribir para devolver el nombre del vendedor.
func (uc *DispositionUseCase) reload(ctx context.Context, d *entity.SalesDisposition) *dto.DispositionResponse {
	if fresh, err := uc.dispositions.GetByID(ctx, d.ID); err == nil && fresh != nil {
		d = fresh
	}
	out := dto.NewDispositionResponse(d)
	return &out
}

// Create registra una venta nueva (no upsell).
func (uc *DispositionUseCase) Create(ctx context.Context, actorID string, in dto.CreateDispositionRequest) (*dto.DispositionResponse, error) {
	d, err := uc.build(actorID, in.SaleInput)
	if err != nil {
		return nil, err
	}
	if d.Source == entity.SaleSourceUpsell {
		return nil, domain.Invalid("source", "use /upsell para registrar un upsell")
	}
	d.LeadID = in.LeadID
	if err := uc.tx.Run(ctx, func(r repository.Repos) error {
		return uc.insert(ctx, r, d)
	}); err != nil {
		return nil, err
	}
	uc.publishCreated(ctx, d)
	return uc.reload(ctx, d), nil
}

func (uc *DispositionUseCase) get(ctx context.Context, id string) (*entity.SalesDisposition, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	d, err := uc.dispositions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

// Get obtiene una venta.
func (uc *DispositionUseCase) Get(ctx context.Context, id string) (*dto.DispositionResponse, error) {
	d, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.NewDispositionResponse(d)
	return &out, nil
}

// List lista ventas filtradas con total.
func (uc *DispositionUseCase) List(ctx context.Context, f dto.DispositionFilter) (*dto.DispositionListResponse, error) {
	f.DefaultPage()
	from, err := dto.ParseDate("from", f.From)
	if err != nil {
		return nil, err
	}
	to, err := dto.ParseDate("to", f.To)
	if err != nil {
		return nil, err
	}
	filter := repository.DispositionFilter{
		SellerID: f.SellerID,
		Source:   f.Source,
		Company:  f.Company,
		From:     from,
		To:       to,
		Limit:    f.Limit,
		Offset:   f.Offset,
	}
	switch strings.ToLower(f.IsUpsell) {
	case "":
	case "true", "1":
		v := true
		filter.IsUpsell = &v
	case "false", "0":
		v := false
		filter.IsUpsell = &v
	default:
		return nil, domain.Invalid("is_upsell", "debe ser true o false")
	}
	list, total, err := uc.dispositions.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.DispositionListResponse{
		Items: make([]dto.DispositionResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: total},
	}
	for _, d := range list {
		out.Items = append(out.Items, dto.NewDispositionResponse(d))
	}
	return out, nil
}

// Update actualización parcial. Recalcula el mes anterior y el nuevo si cambian vendedor o fecha.
func (uc *DispositionUseCase) Update(ctx context.Context, id string, in dto.UpdateDispositionRequest) (*dto.DispositionResponse, error) {
	d, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	prevSeller, prevDate := d.SellerID, d.SaleDate

	if in.CustomerName != nil {
		d.CustomerName = textnorm.PersonName(*in.CustomerName)
	}
	if in.CustomerEmail != nil {
		d.CustomerEmail = textnorm.Email(*in.CustomerEmail)
	}
	if in.CustomerPhone != nil {
		d.CustomerPhone = strings.TrimSpace(*in.CustomerPhone)
	}
	if in.BusinessName != nil {
		d.BusinessName = strings.TrimSpace(*in.BusinessName)
	}
	if in.Services != nil {
		d.Services = cleanServices(in.Services)
	}
	if in.ServiceDetails != nil {
		d.ServiceDetails = *in.ServiceDetails
	}
	if in.GrossValue != nil {
		d.GrossValue = *in.GrossValue
	}
	if in.CashIn != nil {
		d.CashIn = *in.CashIn
	}
	if d.Remaining, err = domainsales.Remaining(d.GrossValue, d.CashIn); err != nil {
		return nil, err
	}
	if in.PaymentMode != nil {
		if !entity.Contains(entity.PaymentModes, *in.PaymentMode) {
			return nil, domain.Invalid("payment_mode", "modo de pago inválido: "+*in.PaymentMode)
		}
		d.PaymentMode = *in.PaymentMode
	}
	if in.Company != nil {
		if !entity.Contains(entity.SaleCompanies, *in.Company) {
			return nil, domain.Invalid("company", "empresa inválida: "+*in.Company)
		}
		d.Company = *in.Company
	}
	if in.Source != nil {
		if !entity.Contains(entity.SaleSources, *in.Source) {
			return nil, domain.Invalid("source", "origen inválido: "+*in.Source)
		}
		if (*in.Source == entity.SaleSourceUpsell) != d.IsUpsell {
			return nil, domain.Invalid("source", "el origen upsell solo aplica a upsells")
		}
		d.Source = *in.Source
	}
	if in.SellerID != nil && *in.SellerID != "" {
		d.SellerID = *in.SellerID
	}
	if in.SaleDate != nil {
		sd, err := dto.ParseDate("sale_date", *in.SaleDate)
		if err != nil {
			return nil, err
		}
		if sd != nil {
			d.SaleDate = *sd
		}
	}
	d.UpdatedAt = uc.now()

	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := r.Dispositions.Update(ctx, d); err != nil {
			return err
		}
		return uc.recompute(ctx, r, d.IsUpsell, monthOf(d.SellerID, d.SaleDate), monthOf(prevSeller, prevDate))
	})
	if err != nil {
		return nil, err
	}
	return uc.reload(ctx, d), nil
}

// Delete elimina una venta y recalcula el mes del vendedor.
// Una venta con upsells o proyecto asociado devuelve ErrConflict; si venía de un lead,
// el lead vuelve a quedar disponible para convertir.
func (uc *DispositionUseCase) Delete(ctx context.Context, id string) error {
	d, err := uc.get(ctx, id)
	if err != nil {
		return err
	}
	return uc.tx.Run(ctx, func(r repository.Repos) error {
		if !d.IsUpsell {
			p, err := r.Projects.GetBySalesDisposition(ctx, d.ID)
			if err != nil {
				return err
			}
			if p != nil {
				return domain.ErrConflict
			}
			upsells, _, err := r.Dispositions.List(ctx, repository.DispositionFilter{OriginalID: d.ID, Limit: 1})
			if err != nil {
				return err
			}
			if len(upsells) > 0 {
				return domain.ErrConflict
			}
			if d.LeadID != nil {
				if err := r.Leads.ReleaseConversion(ctx, d.ID, uc.now()); err != nil {
					return err
				}
			}
		}
		if err := r.Dispositions.Delete(ctx, d.ID); err != nil {
			return err
		}
		return uc.recompute(ctx, r, d.IsUpsell, monthOf(d.SellerID, d.SaleDate))
	})
}

// Upsell registra una venta adicional sobre una venta existente.
// Los datos de cliente vacíos se heredan de la original.
func (uc *DispositionUseCase) Upsell(ctx context.Context, actorID, originalID string, in dto.UpsellRequest) (*dto.DispositionResponse, error) {
	orig, err := uc.get(ctx, originalID)
	if err != nil {
		return nil, err
	}
	if orig.IsUpsell && orig.OriginalSalesDispositionID != nil {
		// los upsells encadenados cuelgan siempre de la venta raíz
		originalID = *orig.OriginalSalesDispositionID
	}
	in.Source = entity.SaleSourceUpsell
	if in.Company == "" {
		in.Company = orig.Company
	}
	d, err := uc.build(actorID, in.SaleInput)
	if err != nil {
		return nil, err
	}
	if d.CustomerName == "" {
		d.CustomerName = orig.CustomerName
	}
	if d.CustomerEmail == "" {
		d.CustomerEmail = orig.CustomerEmail
	}
	if d.CustomerPhone == "" {
		d.CustomerPhone = orig.CustomerPhone
	}
	if d.BusinessName == "" {
		d.BusinessName = orig.BusinessName
	}
	d.IsUpsell = true
	d.OriginalSalesDispositionID = &originalID
	d.LeadID = orig.LeadID

	if err := uc.tx.Run(ctx, func(r repository.Repos) error {
		return uc.insert(ctx, r, d)
	}); err != nil {
		return nil, err
	}
	uc.publishCreated(ctx, d)
	return uc.reload(ctx, d), nil
}

// ConvertLead crea la venta a partir del lead y lo marca convertido, todo en una transacción.
// Un lead ya convertido devuelve ErrConflict.
func (uc *DispositionUseCase) ConvertLead(ctx context.Context, actorID, leadID string, in dto.ConvertLeadRequest) (*dto.ConvertLeadResponse, error) {
	if _, err := uuid.Parse(leadID); err != nil {
		return nil, domain.ErrNotFound
	}
	lead, err := uc.leads.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, domain.ErrNotFound
	}
	if lead.IsConverted() {
		return nil, domain.ErrConflict
	}

	if in.CustomerName == "" {
		in.CustomerName = lead.Name
	}
	if in.CustomerEmail == "" {
		in.CustomerEmail = lead.Email
	}
	if in.CustomerPhone == "" {
		in.CustomerPhone = lead.Phone
	}
	if in.BusinessName == "" {
		in.BusinessName = lead.CompanyName
	}
	if in.Source == "" {
		in.Source = entity.SaleSourceLead
	}
	if in.SellerID == "" && lead.AssignedTo != nil {
		in.SellerID = *lead.AssignedTo
	}
	d, err := uc.build(actorID, in.SaleInput)
	if err != nil {
		return nil, err
	}
	if d.Source == entity.SaleSourceUpsell {
		return nil, domain.Invalid("source", "una conversión no puede ser upsell")
	}
	d.LeadID = &lead.ID

	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := uc.insert(ctx, r, d); err != nil {
			return err
		}
		return r.Leads.MarkConverted(ctx, lead.ID, d.ID, d.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	uc.publishCreated(ctx, d)

	lead.Status = entity.LeadStatusConverted
	lead.SalesDispositionID = &d.ID
	lead.ConvertedAt = &d.CreatedAt
	lead.UpdatedAt = d.CreatedAt
	return &dto.ConvertLeadResponse{
		Lead:        dto.NewLeadResponse(lead),
		Disposition: *uc.reload(ctx, d),
	}, nil
}

// Receipt genera el comprobante PDF de la venta con sus upsells.
func (uc *DispositionUseCase) Receipt(ctx context.Context, id string) ([]byte, error) {
	if uc.receipts == nil {
		return nil, domain.ErrUnavailable
	}
	d, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	var upsells []*entity.SalesDisposition
	if !d.IsUpsell {
		upsells, _, err = uc.dispositions.List(ctx, repository.DispositionFilter{OriginalID: d.ID, Limit: maxReceiptUpsells})
		if err != nil {
			return nil, err
		}
	}
	return uc.receipts.GenerateReceipt(d, upsells)
}
