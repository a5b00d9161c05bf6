package sales

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/application/ports"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
)

const (
	sellerA = "aaaaaaaa-0000-0000-0000-000000000001"
	sellerB = "bbbbbbbb-0000-0000-0000-000000000002"
)

// callLog registra el orden de las llamadas a los repos dentro de una transacción.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(s string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, s)
}

func (l *callLog) take() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.calls
	l.calls = nil
	return out
}

type memDispositions struct {
	mu   sync.Mutex
	rows map[string]*entity.SalesDisposition
	log  *callLog
}

func (m *memDispositions) Create(_ context.Context, d *entity.SalesDisposition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	m.rows[d.ID] = &cp
	return nil
}

func (m *memDispositions) GetByID(_ context.Context, id string) (*entity.SalesDisposition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *memDispositions) List(_ context.Context, f repository.DispositionFilter) ([]*entity.SalesDisposition, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.SalesDisposition
	for _, d := range m.rows {
		if f.OriginalID != "" && (d.OriginalSalesDispositionID == nil || *d.OriginalSalesDispositionID != f.OriginalID) {
			continue
		}
		if f.SellerID != "" && d.SellerID != f.SellerID {
			continue
		}
		if f.IsUpsell != nil && d.IsUpsell != *f.IsUpsell {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *memDispositions) Update(_ context.Context, d *entity.SalesDisposition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[d.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *d
	m.rows[d.ID] = &cp
	return nil
}

func (m *memDispositions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memDispositions) SellerTotals(_ context.Context, sellerID string, isUpsell bool, from, to time.Time) (repository.SellerTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log.add("totals " + sellerID[:4])
	t := repository.SellerTotals{Gross: decimal.Zero, CashIn: decimal.Zero}
	for _, d := range m.rows {
		if d.SellerID != sellerID || d.IsUpsell != isUpsell || d.SaleDate.Before(from) || !d.SaleDate.Before(to) {
			continue
		}
		t.Accounts++
		t.Gross = t.Gross.Add(d.GrossValue)
		t.CashIn = t.CashIn.Add(d.CashIn)
	}
	return t, nil
}

type memPerformance struct {
	mu   sync.Mutex
	rows map[string]entity.PerformanceRecord
	log  *callLog
}

func perfKey(dept, seller string, month time.Time) string {
	return dept + "|" + seller + "|" + month.Format("2006-01")
}

func (m *memPerformance) LockSellerMonth(_ context.Context, department, sellerID string, month time.Time) error {
	m.log.add("lock " + sellerID[:4] + " " + month.Format("2006-01"))
	return nil
}

func (m *memPerformance) Upsert(_ context.Context, rec *entity.PerformanceRecord) error {
	m.log.add("upsert " + rec.SellerID[:4])
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[perfKey(rec.Department, rec.SellerID, rec.Month)] = *rec
	return nil
}

func (m *memPerformance) ListByMonth(_ context.Context, department string, month time.Time) ([]*entity.PerformanceRecord, error) {
	return nil, nil
}

func (m *memPerformance) get(dept, seller string, month time.Time) (entity.PerformanceRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[perfKey(dept, seller, month)]
	return r, ok
}

type memLeads struct {
	mu   sync.Mutex
	rows map[string]*entity.Lead
}

func (m *memLeads) Create(_ context.Context, l *entity.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[l.ID] = l
	return nil
}

func (m *memLeads) GetByID(_ context.Context, id string) (*entity.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (m *memLeads) List(context.Context, repository.LeadFilter) ([]*entity.Lead, int, error) {
	return nil, 0, nil
}

func (m *memLeads) Update(_ context.Context, l *entity.Lead) error { return nil }
func (m *memLeads) Delete(_ context.Context, id string) error      { return nil }

func (m *memLeads) MarkConverted(_ context.Context, id, dispositionID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	if l.Status == entity.LeadStatusConverted {
		return domain.ErrConflict
	}
	l.Status = entity.LeadStatusConverted
	l.SalesDispositionID = &dispositionID
	l.ConvertedAt = &at
	return nil
}

func (m *memLeads) ReleaseConversion(_ context.Context, dispositionID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.rows {
		if l.SalesDispositionID != nil && *l.SalesDispositionID == dispositionID {
			l.Status = entity.LeadStatusQualified
			l.SalesDispositionID = nil
			l.ConvertedAt = nil
		}
	}
	return nil
}

type memProjects struct {
	repository.ProjectRepository
	byDisposition map[string]*entity.Project
}

func (m *memProjects) GetBySalesDisposition(_ context.Context, dispositionID string) (*entity.Project, error) {
	return m.byDisposition[dispositionID], nil
}

type passTx struct {
	repos repository.Repos
}

func (t passTx) Run(_ context.Context, fn func(r repository.Repos) error) error {
	return fn(t.repos)
}

type recordingPublisher struct {
	events []ports.Event
}

func (p *recordingPublisher) Publish(_ context.Context, events ...ports.Event) error {
	p.events = append(p.events, events...)
	return nil
}

type fixture struct {
	uc       *DispositionUseCase
	disp     *memDispositions
	perf     *memPerformance
	leads    *memLeads
	projects *memProjects
	events   *recordingPublisher
	log      *callLog
}

func newFixture() fixture {
	log := &callLog{}
	disp := &memDispositions{rows: map[string]*entity.SalesDisposition{}, log: log}
	perf := &memPerformance{rows: map[string]entity.PerformanceRecord{}, log: log}
	leads := &memLeads{rows: map[string]*entity.Lead{}}
	projects := &memProjects{byDisposition: map[string]*entity.Project{}}
	events := &recordingPublisher{}
	tx := passTx{repos: repository.Repos{Dispositions: disp, Performance: perf, Leads: leads, Projects: projects}}
	uc := NewDispositionUseCase(disp, leads, tx, events, nil, nil)
	uc.now = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }
	return fixture{uc: uc, disp: disp, perf: perf, leads: leads, projects: projects, events: events, log: log}
}

func sale(gross, cash string) dto.SaleInput {
	return dto.SaleInput{
		CustomerName: "maría pérez",
		Services:     []string{"SEO", " SEO ", "Web"},
		GrossValue:   decimal.RequireFromString(gross),
		CashIn:       decimal.RequireFromString(cash),
		Company:      entity.CompanyMain,
		SaleDate:     "2024-03-10",
	}
}

var march = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestCreate_RoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.uc.Create(ctx, sellerA, dto.CreateDispositionRequest{SaleInput: sale("1500.00", "500.00")})
	require.NoError(t, err)

	got, err := f.uc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "María Pérez", got.CustomerName)
	assert.Equal(t, []string{"SEO", "Web"}, got.Services)
	assert.True(t, got.Remaining.Equal(decimal.RequireFromString("1000")))
	assert.Equal(t, entity.PaymentPartial, got.PaymentMode)
	assert.Equal(t, entity.SaleSourceFrontSales, got.Source)
	assert.Equal(t, sellerA, got.SellerID)
	assert.Equal(t, "2024-03-10", got.SaleDate)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, ports.EventDispositionCreated, f.events.events[0].Name)
	assert.Equal(t, created.ID, f.events.events[0].Key)
}

func TestCreate_CobradoMayorQueBruto(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Create(context.Background(), sellerA, dto.CreateDispositionRequest{SaleInput: sale("100", "150")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.disp.rows)
	assert.Empty(t, f.events.events)
}

func TestCreate_RecalculaDesempenoFront(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.Create(ctx, sellerA, dto.CreateDispositionRequest{SaleInput: sale("1000", "400")})
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, sellerA, dto.CreateDispositionRequest{SaleInput: sale("500", "500")})
	require.NoError(t, err)

	rec, ok := f.perf.get(entity.DepartmentFrontSales, sellerA, march)
	require.True(t, ok)
	assert.Equal(t, 2, rec.AccountsAchieved)
	assert.True(t, rec.TotalGross.Equal(decimal.NewFromInt(1500)))
	assert.True(t, rec.TotalCashIn.Equal(decimal.NewFromInt(900)))

	_, ok = f.perf.get(entity.DepartmentUpseller, sellerA, march)
	assert.False(t, ok)
}

func TestUpsell_AlimentaTablaUpseller(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	orig, err := f.uc.Create(ctx, sellerA, dto.CreateDispositionRequest{SaleInput: sale("1000", "1000")})
	require.NoError(t, err)

	in := sale("300", "100")
	in.CustomerName = ""
	in.SellerID = sellerB
	up, err := f.uc.Upsell(ctx, sellerB, orig.ID, dto.UpsellRequest{SaleInput: in})
	require.NoError(t, err)
	assert.True(t, up.IsUpsell)
	require.NotNil(t, up.OriginalSalesDispositionID)
	assert.Equal(t, orig.ID, *up.OriginalSalesDispositionID)
	assert.Equal(t, entity.SaleSourceUpsell, up.Source)
	assert.Equal(t, "María Pérez", up.CustomerName)

	rec, ok := f.perf.get(entity.DepartmentUpseller, sellerB, march)
	require.True(t, ok)
	assert.Equal(t, 1, rec.AccountsAchieved)
	assert.True(t, rec.TotalCashIn.Equal(decimal.NewFromInt(100)))

	// upsell de un upsell cuelga de la venta raíz
	chained, err := f.uc.Upsell(ctx, sellerB, up.ID, dto.UpsellRequest{SaleInput: sale("50", "0")})
	require.NoError(t, err)
	assert.Equal(t, orig.ID, *chained.OriginalSalesDispositionID)
}

func TestUpsell_OriginalInexistente(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Upsell(context.Background(), sellerA, "9a9a9a9a-0000-0000-0000-000000000000", dto.UpsellRequest{SaleInput: sale("10", "0")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_CambioDeVendedorRecalculaAmbos(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d, err := f.uc.Create(ctx, sellerA, dto.CreateDispositionRequest{SaleInput: sale("800", "800")})
	require.NoError(t, err)

	newSeller := sellerB
	_, err = f.uc.Update(ctx, d.ID, dto.UpdateDispositionRequest{SellerID: &newSeller})
	require.NoError(t, err)

	recA, ok := f.perf.get(entity.DepartmentFrontSales, sellerA, march)
	require.True(t, ok)
	assert.Equal(t, 0, recA.AccountsAchieved)
	assert.True(t, recA.TotalGross.IsZero())

	recB, ok := f.perf.get(entity.DepartmentFrontSales, sellerB, march)
	require.True(t, ok)
	assert.Equal(t, 1, recB.AccountsAchieved)
}

func TestUpdate_RecalculaSaldo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d, err := f.uc.Create(ctx, sellerA, dto.CreateDispositionRequest{SaleInput: sale("800", "200")})
	require.NoError(t, err)

	cash := decimal.NewFromInt(900)
	_, err = f.uc.Update(ctx, d.ID, dto.UpdateDispositionRequest{CashIn: &cash})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	cash = decimal.NewFromInt(800)
	out, err := f.uc.Update(ctx, d.ID, dto.UpdateDispositionRequest{CashIn: &cash})
	require.NoError(t, err)
	assert.True(t, out.Remaining.IsZero())
}

func TestDelete_RecalculaMes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d, err := f.uc.Create(ctx, sellerA, dto.CreateDispositionRequest{SaleInput: sale("800", "200")})
	require.NoError(t, err)
	require.NoError(t, f.uc.Delete(ctx, d.ID))

	_, err = f.uc.Get(ctx, d.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	rec, _ := f.perf.get(entity.DepartmentFrontSales, sellerA, march)
	assert.Equal(t, 0, rec.AccountsAchieved)
}

func TestConvertLead(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	assigned := sellerB
	f.leads.rows["11111111-2222-3333-4444-555555555555"] = &entity.Lead{
		ID: "11111111-2222-3333-4444-555555555555", Name: "Juan Gómez", Email: "juan@acme.test",
		CompanyName: "Acme", Status: entity.LeadStatusQualified, AssignedTo: &assigned,
	}

	in := sale("2000", "1000")
	in.CustomerName = ""
	res, err := f.uc.ConvertLead(ctx, sellerA, "11111111-2222-3333-4444-555555555555", dto.ConvertLeadRequest{SaleInput: in})
	require.NoError(t, err)
	assert.Equal(t, entity.LeadStatusConverted, res.Lead.Status)
	require.NotNil(t, res.Lead.SalesDispositionID)
	assert.Equal(t, res.Disposition.ID, *res.Lead.SalesDispositionID)
	assert.Equal(t, "Juan Gómez", res.Disposition.CustomerName)
	assert.Equal(t, "Acme", res.Disposition.BusinessName)
	assert.Equal(t, entity.SaleSourceLead, res.Disposition.Source)
	assert.Equal(t, sellerB, res.Disposition.SellerID)

	_, err = f.uc.ConvertLead(ctx, sellerA, "11111111-2222-3333-4444-555555555555", dto.ConvertLeadRequest{SaleInput: sale("10", "0")})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestList_IsUpsellInvalido(t *testing.T) {
	f := newFixture()

	_, err := f.uc.List(context.Background(), dto.DispositionFilter{IsUpsell: "quizás"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReceipt_SinGenerador(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Receipt(context.Background(), "9a9a9a9a-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestRecompute_BloqueaAntesDeSumarYEnOrdenFijo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d, err := f.uc.Create(ctx, sellerB, dto.CreateDispositionRequest{SaleInput: sale("500", "100")})
	require.NoError(t, err)
	assert.Equal(t, []string{"lock bbbb 2024-03", "totals bbbb", "upsert bbbb"}, f.log.take())

	// cambio de vendedor: se bloquean ambos meses antes de sumar, en orden por clave
	seller := sellerA
	_, err = f.uc.Update(ctx, d.ID, dto.UpdateDispositionRequest{SellerID: &seller})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"lock aaaa 2024-03", "lock bbbb 2024-03",
		"totals aaaa", "upsert aaaa",
		"totals bbbb", "upsert bbbb",
	}, f.log.take())
}

func TestRecompute_MismoMesUnSoloLock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d, err := f.uc.Create(ctx, sellerA, dto.CreateDispositionRequest{SaleInput: sale("500", "100")})
	require.NoError(t, err)
	f.log.take()

	cash := decimal.NewFromInt(300)
	_, err = f.uc.Update(ctx, d.ID, dto.UpdateDispositionRequest{CashIn: &cash})
	require.NoError(t, err)
	assert.Equal(t, []string{"lock aaaa 2024-03", "totals aaaa", "upsert aaaa"}, f.log.take())
}

func TestDelete_ConProyectoOUpsellsEsConflicto(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	conProyecto, err := f.uc.Create(ctx, sellerA, dto.CreateDispositionRequest{SaleInput: sale("800", "200")})
	require.NoError(t, err)
	f.projects.byDisposition[conProyecto.ID] = &entity.Project{ID: "p1", SalesDispositionID: conProyecto.ID}
	assert.ErrorIs(t, f.uc.Delete(ctx, conProyecto.ID), domain.ErrConflict)

	conUpsell, err := f.uc.Create(ctx, sellerA, dto.CreateDispositionRequest{SaleInput: sale("800", "200")})
	require.NoError(t, err)
	ups, err := f.uc.Upsell(ctx, sellerB, conUpsell.ID, dto.UpsellRequest{SaleInput: sale("100", "100")})
	require.NoError(t, err)
	assert.ErrorIs(t, f.uc.Delete(ctx, conUpsell.ID), domain.ErrConflict)

	// el upsell sí se puede borrar, y después la venta original también
	require.NoError(t, f.uc.Delete(ctx, ups.ID))
	require.NoError(t, f.uc.Delete(ctx, conUpsell.ID))

	_, err = f.uc.Get(ctx, conProyecto.ID)
	assert.NoError(t, err, "la venta con proyecto sigue en pie")
	rec, _ := f.perf.get(entity.DepartmentFrontSales, sellerA, march)
	assert.Equal(t, 1, rec.AccountsAchieved)
}

func TestDelete_LiberaLeadConvertido(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	const leadID = "11111111-2222-3333-4444-666666666666"
	f.leads.rows[leadID] = &entity.Lead{ID: leadID, Name: "Eva Díaz", Status: entity.LeadStatusProposal}

	res, err := f.uc.ConvertLead(ctx, sellerA, leadID, dto.ConvertLeadRequest{SaleInput: sale("900", "300")})
	require.NoError(t, err)
	require.NoError(t, f.uc.Delete(ctx, res.Disposition.ID))

	lead, _ := f.leads.GetByID(ctx, leadID)
	assert.Equal(t, entity.LeadStatusQualified, lead.Status)
	assert.Nil(t, lead.SalesDispositionID)

	_, err = f.uc.ConvertLead(ctx, sellerA, leadID, dto.ConvertLeadRequest{SaleInput: sale("900", "300")})
	assert.NoError(t, err, "puede convertirse de nuevo")
}
