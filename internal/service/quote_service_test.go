package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cabinetcpq/internal/dto"
	"cabinetcpq/internal/model"
	"cabinetcpq/internal/repository"
)

// ── In-memory CatalogRepository stub ─────────────────────────────────────────

type stubCatalogRepo struct {
	products     []model.Product
	processings  []model.Processing
	rules        []model.ProcessingRule
	dependencies []model.ProductDependency
}

func (r *stubCatalogRepo) LoadAll(_ context.Context) ([]model.Product, []model.Processing, []model.ProcessingRule, []model.ProductDependency, error) {
	return r.products, r.processings, r.rules, r.dependencies, nil
}

func (r *stubCatalogRepo) CreateProduct(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products = append(r.products, *p)
	return nil
}

func (r *stubCatalogRepo) FindProductByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	for i := range r.products {
		if r.products[i].ID == id {
			return &r.products[i], nil
		}
	}
	return nil, errors.New("record not found")
}

func (r *stubCatalogRepo) ListProducts(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	return r.products, int64(len(r.products)), nil
}

func (r *stubCatalogRepo) UpdateProduct(_ context.Context, p *model.Product) error {
	for i := range r.products {
		if r.products[i].ID == p.ID {
			r.products[i] = *p
		}
	}
	return nil
}

func (r *stubCatalogRepo) DeactivateProduct(_ context.Context, id uuid.UUID) error {
	for i := range r.products {
		if r.products[i].ID == id {
			r.products[i].Active = false
		}
	}
	return nil
}

func (r *stubCatalogRepo) CreateProcessing(_ context.Context, p *model.Processing) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.processings = append(r.processings, *p)
	return nil
}

func (r *stubCatalogRepo) ListProcessings(_ context.Context) ([]model.Processing, error) {
	return r.processings, nil
}

func (r *stubCatalogRepo) DeactivateProcessing(_ context.Context, id uuid.UUID) error {
	for i := range r.processings {
		if r.processings[i].ID == id {
			r.processings[i].Active = false
		}
	}
	return nil
}

func (r *stubCatalogRepo) CreateRule(_ context.Context, rule *model.ProcessingRule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	r.rules = append(r.rules, *rule)
	return nil
}

func (r *stubCatalogRepo) ListRules(_ context.Context) ([]model.ProcessingRule, error) {
	return r.rules, nil
}

func (r *stubCatalogRepo) DeleteRule(_ context.Context, id uuid.UUID) error {
	kept := r.rules[:0]
	for _, rule := range r.rules {
		if rule.ID != id {
			kept = append(kept, rule)
		}
	}
	r.rules = kept
	return nil
}

func (r *stubCatalogRepo) CreateDependency(_ context.Context, d *model.ProductDependency) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.dependencies = append(r.dependencies, *d)
	return nil
}

func (r *stubCatalogRepo) ListDependencies(_ context.Context) ([]model.ProductDependency, error) {
	return r.dependencies, nil
}

func (r *stubCatalogRepo) DeleteDependency(_ context.Context, id uuid.UUID) error {
	kept := r.dependencies[:0]
	for _, d := range r.dependencies {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	r.dependencies = kept
	return nil
}

var _ repository.CatalogRepository = (*stubCatalogRepo)(nil)

// ── In-memory QuoteRepository stub ───────────────────────────────────────────

type stubQuoteRepo struct {
	quotes map[uuid.UUID]*model.Quote
	steps  []model.ApprovalStep
}

func newStubQuoteRepo() *stubQuoteRepo {
	return &stubQuoteRepo{quotes: make(map[uuid.UUID]*model.Quote)}
}

func (r *stubQuoteRepo) DB() *gorm.DB { return nil }

func (r *stubQuoteRepo) Create(_ context.Context, q *model.Quote) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	q.CreatedAt = time.Now()
	cloned := *q
	r.quotes[q.ID] = &cloned
	return nil
}

func (r *stubQuoteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Quote, error) {
	q, ok := r.quotes[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	cloned := *q
	return &cloned, nil
}

func (r *stubQuoteRepo) Save(_ context.Context, _ *gorm.DB, q *model.Quote) error {
	cloned := *q
	r.quotes[q.ID] = &cloned
	return nil
}

func (r *stubQuoteRepo) List(_ context.Context, _ dto.QuoteFilter) ([]model.Quote, int64, error) {
	var out []model.Quote
	for _, q := range r.quotes {
		out = append(out, *q)
	}
	return out, int64(len(out)), nil
}

func (r *stubQuoteRepo) UpdateStatus(_ context.Context, _ *gorm.DB, id uuid.UUID, status string) error {
	q, ok := r.quotes[id]
	if !ok {
		return errors.New("record not found")
	}
	q.Status = status
	return nil
}

func (r *stubQuoteRepo) CreateApprovalStep(_ context.Context, _ *gorm.DB, step *model.ApprovalStep) error {
	if step.ID == uuid.Nil {
		step.ID = uuid.New()
	}
	step.CreatedAt = time.Now()
	r.steps = append(r.steps, *step)
	return nil
}

func (r *stubQuoteRepo) ListApprovalSteps(_ context.Context, quoteID uuid.UUID) ([]model.ApprovalStep, error) {
	var out []model.ApprovalStep
	for _, s := range r.steps {
		if s.QuoteID == quoteID {
			out = append(out, s)
		}
	}
	return out, nil
}

var _ repository.QuoteRepository = (*stubQuoteRepo)(nil)

// ── In-memory CustomerRepository stub ────────────────────────────────────────

type stubCustomerRepo struct {
	customers map[string]*model.Customer
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[string]*model.Customer)}
}

func (r *stubCustomerRepo) Upsert(_ context.Context, c *model.Customer) error {
	if existing, ok := r.customers[c.DirectoryID]; ok {
		c.ID = existing.ID
	} else if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.SyncedAt = time.Now()
	cloned := *c
	r.customers[c.DirectoryID] = &cloned
	return nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	for _, c := range r.customers {
		if c.ID == id {
			cloned := *c
			return &cloned, nil
		}
	}
	return nil, errors.New("record not found")
}

func (r *stubCustomerRepo) FindByDirectoryID(_ context.Context, directoryID string) (*model.Customer, error) {
	c, ok := r.customers[directoryID]
	if !ok {
		return nil, errors.New("record not found")
	}
	cloned := *c
	return &cloned, nil
}

func (r *stubCustomerRepo) ListStale(_ context.Context, cutoff time.Time, limit int) ([]model.Customer, error) {
	var out []model.Customer
	for _, c := range r.customers {
		if c.SyncedAt.Before(cutoff) && len(out) < limit {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubCustomerRepo) List(_ context.Context, _ dto.CustomerFilter) ([]model.Customer, int64, error) {
	var out []model.Customer
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)

// ── Fixtures ─────────────────────────────────────────────────────────────────

var (
	fixtureCabinetID = uuid.MustParse("10000000-0000-0000-0000-000000000001")
	fixtureHingeID   = uuid.MustParse("10000000-0000-0000-0000-000000000002")
	fixturePlinthID  = uuid.MustParse("10000000-0000-0000-0000-000000000003")
	fixtureStainID   = uuid.MustParse("20000000-0000-0000-0000-000000000001")
	fixturePaintID   = uuid.MustParse("20000000-0000-0000-0000-000000000002")
)

func testDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func fixtureCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{
		products: []model.Product{
			{ID: fixtureCabinetID, Code: "BC-600", Name: "Base cabinet 600mm", Category: "cabinet",
				BasePrice: testDec("200"), Active: true,
				Dimensions: &model.Dimensions{Width: testDec("600"), Height: testDec("720"), Depth: testDec("560")}},
			{ID: fixtureHingeID, Code: "HG-STD", Name: "Hinge set", Category: "hardware",
				BasePrice: testDec("12.50"), Active: true},
			{ID: fixturePlinthID, Code: "PL-150", Name: "Plinth 150mm", Category: "hardware",
				BasePrice: testDec("22"), Active: true},
		},
		processings: []model.Processing{
			{ID: fixtureStainID, Name: "Walnut stain", PricingModel: model.PricingPercentage,
				Rate: testDec("15"), Categories: []string{"cabinet"}, Active: true},
			{ID: fixturePaintID, Name: "Custom paint", PricingModel: model.PricingFixed,
				Rate: testDec("75"), Categories: []string{"cabinet"}, RequiresOptions: true, Active: true},
		},
		dependencies: []model.ProductDependency{
			{ID: uuid.New(), ProductID: fixtureCabinetID, RequiredProductID: fixtureHingeID,
				IsAutomatic: true, QuantityFormula: "qty * 2"},
			{ID: uuid.New(), ProductID: fixtureCabinetID, RequiredProductID: fixturePlinthID,
				IsAutomatic: false, QuantityFormula: "1"},
		},
	}
}

// stubDispatcher records render-job enqueues in place of the Redis dispatcher.
type stubDispatcher struct {
	err      error
	enqueued int
	onCall   func()
}

func (d *stubDispatcher) EnqueueRender(_ context.Context, _ interface{}) error {
	d.enqueued++
	if d.onCall != nil {
		d.onCall()
	}
	return d.err
}

var _ RenderDispatcher = (*stubDispatcher)(nil)

// newTestQuoteService wires the service against in-memory stubs; no DB,
// no Redis, no dispatcher.
func newTestQuoteService(t *testing.T) (QuoteService, *stubQuoteRepo, *stubCustomerRepo) {
	t.Helper()
	return newTestQuoteServiceWith(t, nil)
}

func newTestQuoteServiceWith(t *testing.T, dispatcher RenderDispatcher) (QuoteService, *stubQuoteRepo, *stubCustomerRepo) {
	t.Helper()
	quoteRepo := newStubQuoteRepo()
	customerRepo := newStubCustomerRepo()
	catalogSvc := NewCatalogService(fixtureCatalogRepo(), nil, time.Minute)

	email := "buyer@example.com"
	require.NoError(t, customerRepo.Upsert(context.Background(), &model.Customer{
		DirectoryID:      "ACME-001",
		Name:             "Acme Kitchens",
		Email:            &email,
		ContractDiscount: testDec("10"),
		CustomerDiscount: testDec("5"),
	}))

	svc := NewQuoteService(quoteRepo, customerRepo, catalogSvc, dispatcher, testDec("10000"))
	return svc, quoteRepo, customerRepo
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestCreateFreezesCustomerTerms(t *testing.T) {
	svc, _, _ := newTestQuoteService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, dto.CreateQuoteRequest{CustomerID: "ACME-001"})
	require.NoError(t, err)

	assert.Equal(t, model.StatusDraft, resp.Status)
	assert.True(t, resp.ContractDiscount.Equal(testDec("10")))
	assert.True(t, resp.CustomerDiscount.Equal(testDec("5")))
	assert.True(t, resp.ApprovalThreshold.Equal(testDec("10000")))
}

func TestCreateUnknownCustomer(t *testing.T) {
	svc, _, _ := newTestQuoteService(t)

	_, err := svc.Create(context.Background(), dto.CreateQuoteRequest{CustomerID: "NOPE"})
	assert.Error(t, err)
}

func TestAddItemAutoAddsDependenciesAndSuggests(t *testing.T) {
	svc, _, _ := newTestQuoteService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateQuoteRequest{CustomerID: "ACME-001"})
	require.NoError(t, err)
	quoteID := uuid.MustParse(created.ID)

	resp, err := svc.AddItem(ctx, quoteID, dto.AddItemRequest{
		ProductID: fixtureCabinetID.String(),
		Quantity:  3,
	})
	require.NoError(t, err)

	// Cabinet plus the automatic hinge line (qty*2 = 6).
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Base cabinet 600mm", resp.Items[0].ProductName)
	assert.Equal(t, "Hinge set", resp.Items[1].ProductName)
	assert.Equal(t, 6, resp.Items[1].Quantity)

	// Plinth is suggested, not added.
	require.Len(t, resp.Suggestions, 1)
	assert.Equal(t, "Plinth 150mm", resp.Suggestions[0].Name)
	assert.Equal(t, 1, resp.Suggestions[0].Quantity)
}

func TestListReportsItemCounts(t *testing.T) {
	svc, _, _ := newTestQuoteService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateQuoteRequest{CustomerID: "ACME-001"})
	require.NoError(t, err)
	quoteID := uuid.MustParse(created.ID)

	// Cabinet plus the automatic hinge line.
	_, err = svc.AddItem(ctx, quoteID, dto.AddItemRequest{
		ProductID: fixtureCabinetID.String(), Quantity: 3,
	})
	require.NoError(t, err)

	list, err := svc.List(ctx, dto.QuoteFilter{Page: 1, Limit: 50})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, 2, list.Data[0].ItemCount)
	assert.Equal(t, "Acme Kitchens", list.Data[0].CustomerName)
}

func TestMutationRejectedOutsideDraft(t *testing.T) {
	svc, repo, _ := newTestQuoteService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateQuoteRequest{CustomerID: "ACME-001"})
	require.NoError(t, err)
	quoteID := uuid.MustParse(created.ID)

	require.NoError(t, repo.UpdateStatus(ctx, nil, quoteID, model.StatusSent))

	_, err = svc.AddItem(ctx, quoteID, dto.AddItemRequest{
		ProductID: fixtureCabinetID.String(),
		Quantity:  1,
	})
	assert.ErrorContains(t, err, "read-only")
}

func TestApprovalFlow(t *testing.T) {
	svc, _, _ := newTestQuoteService(t)
	ctx := context.Background()
	actor := uuid.New()

	created, err := svc.Create(ctx, dto.CreateQuoteRequest{CustomerID: "ACME-001"})
	require.NoError(t, err)
	quoteID := uuid.MustParse(created.ID)

	// Below threshold: submit is refused.
	_, err = svc.Submit(ctx, quoteID, actor, dto.ApprovalActionRequest{})
	assert.ErrorContains(t, err, "does not require approval")

	// Push it above the threshold: 60 cabinets ≈ 200*60 = 12000, minus the
	// 10% + 5% cascade still over 10000.
	_, err = svc.AddItem(ctx, quoteID, dto.AddItemRequest{
		ProductID: fixtureCabinetID.String(),
		Quantity:  60,
	})
	require.NoError(t, err)

	resp, err := svc.Submit(ctx, quoteID, actor, dto.ApprovalActionRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingApproval, resp.Status)

	resp, err = svc.Approve(ctx, quoteID, actor, dto.ApprovalActionRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, resp.Status)

	history, err := svc.ApprovalHistory(ctx, quoteID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "submitted", history[0].Action)
	assert.Equal(t, "approved", history[1].Action)
	assert.Equal(t, actor.String(), history[1].ActorID)
}

func TestRejectReturnsToEditableState(t *testing.T) {
	svc, _, _ := newTestQuoteService(t)
	ctx := context.Background()
	actor := uuid.New()

	created, err := svc.Create(ctx, dto.CreateQuoteRequest{CustomerID: "ACME-001"})
	require.NoError(t, err)
	quoteID := uuid.MustParse(created.ID)

	_, err = svc.AddItem(ctx, quoteID, dto.AddItemRequest{
		ProductID: fixtureCabinetID.String(), Quantity: 60,
	})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, quoteID, actor, dto.ApprovalActionRequest{})
	require.NoError(t, err)
	resp, err := svc.Reject(ctx, quoteID, actor, dto.ApprovalActionRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, resp.Status)

	// A rejected quote can be edited again; editing returns it to draft.
	resp, err = svc.SetOrderDiscount(ctx, quoteID, dto.SetOrderDiscountRequest{Amount: testDec("500")})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, resp.Status)
}

func TestSendBlocksOnPendingConfiguration(t *testing.T) {
	svc, _, _ := newTestQuoteService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateQuoteRequest{CustomerID: "ACME-001"})
	require.NoError(t, err)
	quoteID := uuid.MustParse(created.ID)

	resp, err := svc.AddItem(ctx, quoteID, dto.AddItemRequest{
		ProductID: fixtureCabinetID.String(), Quantity: 1,
	})
	require.NoError(t, err)
	itemID := uuid.MustParse(resp.Items[0].ID)

	// Apply the paint without options — stays pending.
	resp, err = svc.ApplyProcessing(ctx, quoteID, itemID, dto.ApplyProcessingRequest{
		ProcessingID: fixturePaintID.String(),
	})
	require.NoError(t, err)
	require.Len(t, resp.Pending, 1)

	_, err = svc.Send(ctx, quoteID, dto.SendQuoteRequest{})
	assert.ErrorContains(t, err, "need configuration")

	// Supplying the options clears the block.
	_, err = svc.ApplyProcessing(ctx, quoteID, itemID, dto.ApplyProcessingRequest{
		ProcessingID: fixturePaintID.String(),
		Options:      map[string]string{"color": "sage green"},
	})
	require.NoError(t, err)

	resp, err = svc.Send(ctx, quoteID, dto.SendQuoteRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusSent, resp.Status)
}

func TestSendPersistsStatusBeforeEnqueue(t *testing.T) {
	dispatcher := &stubDispatcher{}
	svc, quoteRepo, _ := newTestQuoteServiceWith(t, dispatcher)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateQuoteRequest{CustomerID: "ACME-001"})
	require.NoError(t, err)
	quoteID := uuid.MustParse(created.ID)
	_, err = svc.AddItem(ctx, quoteID, dto.AddItemRequest{
		ProductID: fixtureCabinetID.String(), Quantity: 1,
	})
	require.NoError(t, err)

	var statusAtEnqueue string
	dispatcher.onCall = func() {
		q, err := quoteRepo.FindByID(ctx, quoteID)
		require.NoError(t, err)
		statusAtEnqueue = q.Status
	}

	resp, err := svc.Send(ctx, quoteID, dto.SendQuoteRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusSent, resp.Status)

	// The render job only goes out once the stored record already says sent.
	require.Equal(t, 1, dispatcher.enqueued)
	assert.Equal(t, model.StatusSent, statusAtEnqueue)
}

func TestSendSurvivesEnqueueFailure(t *testing.T) {
	dispatcher := &stubDispatcher{err: errors.New("redis down")}
	svc, quoteRepo, _ := newTestQuoteServiceWith(t, dispatcher)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateQuoteRequest{CustomerID: "ACME-001"})
	require.NoError(t, err)
	quoteID := uuid.MustParse(created.ID)
	_, err = svc.AddItem(ctx, quoteID, dto.AddItemRequest{
		ProductID: fixtureCabinetID.String(), Quantity: 1,
	})
	require.NoError(t, err)

	// A queue outage is logged but does not fail the request or roll back.
	resp, err := svc.Send(ctx, quoteID, dto.SendQuoteRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusSent, resp.Status)

	stored, err := quoteRepo.FindByID(ctx, quoteID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSent, stored.Status)
}

func TestAvailableProcessingsForItem(t *testing.T) {
	svc, _, _ := newTestQuoteService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateQuoteRequest{CustomerID: "ACME-001"})
	require.NoError(t, err)
	quoteID := uuid.MustParse(created.ID)

	resp, err := svc.AddItem(ctx, quoteID, dto.AddItemRequest{
		ProductID: fixtureCabinetID.String(), Quantity: 1,
	})
	require.NoError(t, err)
	itemID := uuid.MustParse(resp.Items[0].ID)

	available, err := svc.AvailableProcessings(ctx, quoteID, itemID)
	require.NoError(t, err)
	assert.Len(t, available, 2) // stain + paint apply to cabinets

	// Hardware item has no applicable processings.
	hingeItemID := uuid.MustParse(resp.Items[1].ID)
	available, err = svc.AvailableProcessings(ctx, quoteID, hingeItemID)
	require.NoError(t, err)
	assert.Empty(t, available)
}

func TestAcceptRequiresSent(t *testing.T) {
	svc, _, _ := newTestQuoteService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateQuoteRequest{CustomerID: "ACME-001"})
	require.NoError(t, err)
	quoteID := uuid.MustParse(created.ID)

	_, err = svc.MarkAccepted(ctx, quoteID)
	assert.Error(t, err)

	_, err = svc.Send(ctx, quoteID, dto.SendQuoteRequest{})
	require.NoError(t, err)

	resp, err := svc.MarkAccepted(ctx, quoteID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAccepted, resp.Status)
}
