package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cabinetcpq/internal/catalog"
	"cabinetcpq/internal/dto"
	"cabinetcpq/internal/engine"
	"cabinetcpq/internal/model"
	"cabinetcpq/internal/repository"
	"cabinetcpq/internal/worker"
)

// QuoteService orchestrates quote lifecycle: it loads the aggregate, runs the
// pure pricing engine against the current catalog snapshot, persists the
// returned value, and drives the approval/send status machine.
type QuoteService interface {
	Create(ctx context.Context, req dto.CreateQuoteRequest) (*dto.QuoteResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.QuoteResponse, error)
	List(ctx context.Context, filter dto.QuoteFilter) (*dto.QuoteListResponse, error)

	AddItem(ctx context.Context, quoteID uuid.UUID, req dto.AddItemRequest) (*dto.QuoteResponse, error)
	RemoveItem(ctx context.Context, quoteID, itemID uuid.UUID) (*dto.QuoteResponse, error)
	SetQuantity(ctx context.Context, quoteID, itemID uuid.UUID, req dto.SetQuantityRequest) (*dto.QuoteResponse, error)
	ApplyProcessing(ctx context.Context, quoteID, itemID uuid.UUID, req dto.ApplyProcessingRequest) (*dto.QuoteResponse, error)
	RemoveProcessing(ctx context.Context, quoteID, itemID, processingID uuid.UUID) (*dto.QuoteResponse, error)
	AvailableProcessings(ctx context.Context, quoteID, itemID uuid.UUID) ([]dto.AvailableProcessingResponse, error)

	AddRoom(ctx context.Context, quoteID uuid.UUID, req dto.AddRoomRequest) (*dto.QuoteResponse, error)
	SetRoomProcessings(ctx context.Context, quoteID, roomID uuid.UUID, req dto.SetRoomProcessingsRequest) (*dto.QuoteResponse, error)

	SetOrderDiscount(ctx context.Context, quoteID uuid.UUID, req dto.SetOrderDiscountRequest) (*dto.QuoteResponse, error)

	Submit(ctx context.Context, quoteID, actorID uuid.UUID, req dto.ApprovalActionRequest) (*dto.QuoteResponse, error)
	Approve(ctx context.Context, quoteID, actorID uuid.UUID, req dto.ApprovalActionRequest) (*dto.QuoteResponse, error)
	Reject(ctx context.Context, quoteID, actorID uuid.UUID, req dto.ApprovalActionRequest) (*dto.QuoteResponse, error)
	Send(ctx context.Context, quoteID uuid.UUID, req dto.SendQuoteRequest) (*dto.QuoteResponse, error)
	MarkAccepted(ctx context.Context, quoteID uuid.UUID) (*dto.QuoteResponse, error)
	ApprovalHistory(ctx context.Context, quoteID uuid.UUID) ([]dto.ApprovalStepResponse, error)
}

// RenderDispatcher enqueues the async render-and-mail job for a sent quote.
// Satisfied by *worker.Dispatcher.
type RenderDispatcher interface {
	EnqueueRender(ctx context.Context, payload interface{}) error
}

type quoteService struct {
	repo              repository.QuoteRepository
	customerRepo      repository.CustomerRepository
	catalog           CatalogService
	dispatcher        RenderDispatcher
	approvalThreshold decimal.Decimal
}

func NewQuoteService(
	repo repository.QuoteRepository,
	customerRepo repository.CustomerRepository,
	catalogSvc CatalogService,
	dispatcher RenderDispatcher,
	approvalThreshold decimal.Decimal,
) QuoteService {
	return &quoteService{
		repo:              repo,
		customerRepo:      customerRepo,
		catalog:           catalogSvc,
		dispatcher:        dispatcher,
		approvalThreshold: approvalThreshold,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Lifecycle ────────────────────────────────────────────────────────────────

// Create opens a draft quote for the customer, freezing the contract and
// customer discount percentages (and the approval threshold) as they stand
// right now. Later directory changes never reprice an existing quote.
func (s *quoteService) Create(ctx context.Context, req dto.CreateQuoteRequest) (*dto.QuoteResponse, error) {
	customer, err := s.customerRepo.FindByDirectoryID(ctx, req.CustomerID)
	if err != nil {
		return nil, errors.New("customer not found; sync it from the directory first")
	}

	q := &model.Quote{
		CustomerID:        customer.ID,
		ContractDiscount:  customer.ContractDiscount,
		CustomerDiscount:  customer.CustomerDiscount,
		OrderDiscount:     decimal.Zero,
		Subtotal:          decimal.Zero,
		TotalDiscount:     decimal.Zero,
		FinalTotal:        decimal.Zero,
		ApprovalThreshold: s.approvalThreshold,
		Status:            model.StatusDraft,
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, err
	}

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.toResponse(snap, q, nil), nil
}

func (s *quoteService) Get(ctx context.Context, id uuid.UUID) (*dto.QuoteResponse, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("quote not found")
	}
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.toResponse(snap, q, nil), nil
}

func (s *quoteService) List(ctx context.Context, filter dto.QuoteFilter) (*dto.QuoteListResponse, error) {
	quotes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	// Resolve customer names once per distinct customer.
	names := make(map[uuid.UUID]string)
	items := make([]dto.QuoteListItem, len(quotes))
	for i, q := range quotes {
		name, ok := names[q.CustomerID]
		if !ok {
			if c, err := s.customerRepo.FindByID(ctx, q.CustomerID); err == nil {
				name = c.Name
			}
			names[q.CustomerID] = name
		}
		items[i] = dto.QuoteListItem{
			ID:               q.ID.String(),
			CustomerID:       q.CustomerID.String(),
			CustomerName:     name,
			Subtotal:         q.Subtotal,
			FinalTotal:       q.FinalTotal,
			RequiresApproval: q.RequiresApproval,
			Status:           q.Status,
			ItemCount:        len(q.Items),
			CreatedAt:        q.CreatedAt.Format(time.RFC3339),
		}
	}
	return &dto.QuoteListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Item operations ──────────────────────────────────────────────────────────

// AddItem adds the product line, auto-adds its automatic dependencies, and
// surfaces the suggested ones in the response. Dependency resolution is not
// chased recursively into the auto-added products.
func (s *quoteService) AddItem(ctx context.Context, quoteID uuid.UUID, req dto.AddItemRequest) (*dto.QuoteResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, errors.New("invalid product_id")
	}
	var roomID *uuid.UUID
	if req.RoomID != nil {
		id, err := uuid.Parse(*req.RoomID)
		if err != nil {
			return nil, errors.New("invalid room_id")
		}
		roomID = &id
	}

	var suggestions []dto.DependencySuggestion
	return s.mutate(ctx, quoteID, &suggestions, func(eng *engine.Engine, q model.Quote) (model.Quote, error) {
		q, err := eng.AddItem(q, productID, req.Quantity, roomID)
		if err != nil {
			return q, err
		}

		deps, err := eng.ResolveDependencies(productID, req.Quantity)
		if err != nil {
			return q, err
		}
		for _, dep := range deps {
			if dep.Automatic {
				// Dependencies are hardware/accessories: added without a room
				// so they never inherit finish selections.
				q, err = eng.AddItem(q, dep.ProductID, dep.Quantity, nil)
				if err != nil {
					return q, err
				}
				continue
			}
			suggestions = append(suggestions, dto.DependencySuggestion{
				ProductID: dep.ProductID.String(),
				Name:      dep.Name,
				Quantity:  dep.Quantity,
			})
		}
		return q, nil
	})
}

func (s *quoteService) RemoveItem(ctx context.Context, quoteID, itemID uuid.UUID) (*dto.QuoteResponse, error) {
	return s.mutate(ctx, quoteID, nil, func(eng *engine.Engine, q model.Quote) (model.Quote, error) {
		return eng.RemoveItem(q, itemID), nil
	})
}

func (s *quoteService) SetQuantity(ctx context.Context, quoteID, itemID uuid.UUID, req dto.SetQuantityRequest) (*dto.QuoteResponse, error) {
	return s.mutate(ctx, quoteID, nil, func(eng *engine.Engine, q model.Quote) (model.Quote, error) {
		return eng.SetQuantity(q, itemID, req.Quantity)
	})
}

func (s *quoteService) ApplyProcessing(ctx context.Context, quoteID, itemID uuid.UUID, req dto.ApplyProcessingRequest) (*dto.QuoteResponse, error) {
	processingID, err := uuid.Parse(req.ProcessingID)
	if err != nil {
		return nil, errors.New("invalid processing_id")
	}
	return s.mutate(ctx, quoteID, nil, func(eng *engine.Engine, q model.Quote) (model.Quote, error) {
		return eng.ApplyProcessing(q, itemID, processingID, req.Options)
	})
}

func (s *quoteService) RemoveProcessing(ctx context.Context, quoteID, itemID, processingID uuid.UUID) (*dto.QuoteResponse, error) {
	return s.mutate(ctx, quoteID, nil, func(eng *engine.Engine, q model.Quote) (model.Quote, error) {
		return eng.RemoveProcessing(q, itemID, processingID)
	})
}

// AvailableProcessings lists what can still be applied to the item under the
// current exclusion rules. Read-only: no persistence.
func (s *quoteService) AvailableProcessings(ctx context.Context, quoteID, itemID uuid.UUID) ([]dto.AvailableProcessingResponse, error) {
	q, err := s.repo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, errors.New("quote not found")
	}
	item := q.Item(itemID)
	if item == nil {
		return nil, errors.New("item not found")
	}

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	eng := engine.New(snap)

	product, ok := snap.Product(item.ProductID)
	if !ok {
		return nil, errors.New("product no longer in catalog")
	}
	applied := make([]uuid.UUID, 0, len(item.AppliedProcessings))
	for _, ap := range item.AppliedProcessings {
		applied = append(applied, ap.ProcessingID)
	}

	available := eng.AvailableProcessings(product, applied)
	resp := make([]dto.AvailableProcessingResponse, len(available))
	for i, p := range available {
		resp[i] = dto.AvailableProcessingResponse{
			ID:              p.ID.String(),
			Name:            p.Name,
			PricingModel:    p.PricingModel,
			Rate:            p.Rate,
			RequiresOptions: p.RequiresOptions,
		}
	}
	return resp, nil
}

// ── Rooms ────────────────────────────────────────────────────────────────────

func (s *quoteService) AddRoom(ctx context.Context, quoteID uuid.UUID, req dto.AddRoomRequest) (*dto.QuoteResponse, error) {
	ids, err := parseUUIDs(req.ProcessingIDs)
	if err != nil {
		return nil, errors.New("invalid processing id")
	}
	return s.mutate(ctx, quoteID, nil, func(eng *engine.Engine, q model.Quote) (model.Quote, error) {
		return eng.AddRoom(q, req.Name, ids)
	})
}

func (s *quoteService) SetRoomProcessings(ctx context.Context, quoteID, roomID uuid.UUID, req dto.SetRoomProcessingsRequest) (*dto.QuoteResponse, error) {
	ids, err := parseUUIDs(req.ProcessingIDs)
	if err != nil {
		return nil, errors.New("invalid processing id")
	}
	return s.mutate(ctx, quoteID, nil, func(eng *engine.Engine, q model.Quote) (model.Quote, error) {
		return eng.SetRoomProcessings(q, roomID, ids)
	})
}

// ── Discounts ────────────────────────────────────────────────────────────────

func (s *quoteService) SetOrderDiscount(ctx context.Context, quoteID uuid.UUID, req dto.SetOrderDiscountRequest) (*dto.QuoteResponse, error) {
	if req.Amount.IsNegative() {
		return nil, errors.New("order discount cannot be negative")
	}
	return s.mutate(ctx, quoteID, nil, func(eng *engine.Engine, q model.Quote) (model.Quote, error) {
		return eng.SetOrderDiscount(q, req.Amount), nil
	})
}

// ── Status machine ───────────────────────────────────────────────────────────

// Submit moves a draft that crossed the approval threshold into
// pending_approval and records the audit step.
func (s *quoteService) Submit(ctx context.Context, quoteID, actorID uuid.UUID, req dto.ApprovalActionRequest) (*dto.QuoteResponse, error) {
	q, err := s.repo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, errors.New("quote not found")
	}
	if q.Status != model.StatusDraft {
		return nil, fmt.Errorf("cannot submit a quote in status %q", q.Status)
	}
	if !q.RequiresApproval {
		return nil, errors.New("quote does not require approval; send it directly")
	}
	if err := s.transition(ctx, q, model.StatusPendingApproval, "submitted", actorID, req.Note); err != nil {
		return nil, err
	}
	return s.Get(ctx, quoteID)
}

func (s *quoteService) Approve(ctx context.Context, quoteID, actorID uuid.UUID, req dto.ApprovalActionRequest) (*dto.QuoteResponse, error) {
	q, err := s.repo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, errors.New("quote not found")
	}
	if q.Status != model.StatusPendingApproval {
		return nil, fmt.Errorf("cannot approve a quote in status %q", q.Status)
	}
	if err := s.transition(ctx, q, model.StatusApproved, "approved", actorID, req.Note); err != nil {
		return nil, err
	}
	return s.Get(ctx, quoteID)
}

func (s *quoteService) Reject(ctx context.Context, quoteID, actorID uuid.UUID, req dto.ApprovalActionRequest) (*dto.QuoteResponse, error) {
	q, err := s.repo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, errors.New("quote not found")
	}
	if q.Status != model.StatusPendingApproval {
		return nil, fmt.Errorf("cannot reject a quote in status %q", q.Status)
	}
	if err := s.transition(ctx, q, model.StatusRejected, "rejected", actorID, req.Note); err != nil {
		return nil, err
	}
	return s.Get(ctx, quoteID)
}

// Send marks the quote sent and then enqueues the async render job that
// produces the PDF and mails it to the customer. The status commits before
// the job goes out, so a queue failure never leaves a mailed quote stuck in
// its pre-send status.
func (s *quoteService) Send(ctx context.Context, quoteID uuid.UUID, req dto.SendQuoteRequest) (*dto.QuoteResponse, error) {
	q, err := s.repo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, errors.New("quote not found")
	}
	switch q.Status {
	case model.StatusDraft:
		if q.RequiresApproval {
			return nil, errors.New("quote requires approval before sending")
		}
	case model.StatusApproved:
		// ok
	default:
		return nil, fmt.Errorf("cannot send a quote in status %q", q.Status)
	}
	if pending := countPending(q); pending > 0 {
		return nil, fmt.Errorf("%d applied processings still need configuration", pending)
	}

	var email string
	if req.Email != nil {
		email = *req.Email
	} else if customer, err := s.customerRepo.FindByID(ctx, q.CustomerID); err == nil && customer.Email != nil {
		email = *customer.Email
	}

	// Persist the status before enqueueing: the customer must never receive
	// a PDF for a quote whose own record still says draft or approved.
	if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.UpdateStatus(ctx, tx, q.ID, model.StatusSent)
	}); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		payload := worker.RenderJobPayload{QuoteID: q.ID.String(), ToEmail: email}
		if err := s.dispatcher.EnqueueRender(ctx, payload); err != nil {
			// The status change already committed, so the request still
			// succeeds; the missing job is surfaced in the logs instead.
			log.Warn().Err(err).Str("quote_id", q.ID.String()).Msg("quote: failed to enqueue render job")
		}
	}
	return s.Get(ctx, quoteID)
}

func (s *quoteService) MarkAccepted(ctx context.Context, quoteID uuid.UUID) (*dto.QuoteResponse, error) {
	q, err := s.repo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, errors.New("quote not found")
	}
	if q.Status != model.StatusSent {
		return nil, fmt.Errorf("cannot accept a quote in status %q", q.Status)
	}
	if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.UpdateStatus(ctx, tx, q.ID, model.StatusAccepted)
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, quoteID)
}

// ApprovalHistory returns the quote's submit/approve/reject audit trail,
// oldest first.
func (s *quoteService) ApprovalHistory(ctx context.Context, quoteID uuid.UUID) ([]dto.ApprovalStepResponse, error) {
	if _, err := s.repo.FindByID(ctx, quoteID); err != nil {
		return nil, errors.New("quote not found")
	}
	steps, err := s.repo.ListApprovalSteps(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ApprovalStepResponse, len(steps))
	for i, step := range steps {
		resp[i] = dto.ApprovalStepResponse{
			ID:        step.ID.String(),
			Action:    step.Action,
			ActorID:   step.ActorID.String(),
			Note:      step.Note,
			CreatedAt: step.CreatedAt.Format(time.RFC3339),
		}
	}
	return resp, nil
}

// transition writes the status change and its approval step atomically.
func (s *quoteService) transition(ctx context.Context, q *model.Quote, status, action string, actorID uuid.UUID, note *string) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateStatus(ctx, tx, q.ID, status); err != nil {
			return err
		}
		return s.repo.CreateApprovalStep(ctx, tx, &model.ApprovalStep{
			QuoteID: q.ID,
			Action:  action,
			ActorID: actorID,
			Note:    note,
		})
	})
}

// ── Internals ────────────────────────────────────────────────────────────────

// mutate is the shared edit path: load, check editability, run the engine
// operation, persist the returned value. Editing a rejected quote returns it
// to draft so it can be re-submitted.
func (s *quoteService) mutate(
	ctx context.Context,
	quoteID uuid.UUID,
	suggestions *[]dto.DependencySuggestion,
	fn func(eng *engine.Engine, q model.Quote) (model.Quote, error),
) (*dto.QuoteResponse, error) {
	q, err := s.repo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, errors.New("quote not found")
	}
	if q.Status != model.StatusDraft && q.Status != model.StatusRejected {
		return nil, fmt.Errorf("quote in status %q is read-only", q.Status)
	}

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	eng := engine.New(snap)

	updated, err := fn(eng, *q)
	if err != nil {
		return nil, err
	}
	updated.Status = model.StatusDraft

	if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.Save(ctx, tx, &updated)
	}); err != nil {
		return nil, err
	}

	var sug []dto.DependencySuggestion
	if suggestions != nil {
		sug = *suggestions
	}
	return s.toResponse(snap, &updated, sug), nil
}

func countPending(q *model.Quote) int {
	n := 0
	for _, item := range q.Items {
		for _, ap := range item.AppliedProcessings {
			if ap.Pending {
				n++
			}
		}
	}
	return n
}

// toResponse maps the aggregate to the API shape, resolving catalog names
// from the snapshot.
func (s *quoteService) toResponse(snap *catalog.Snapshot, q *model.Quote, suggestions []dto.DependencySuggestion) *dto.QuoteResponse {
	eng := engine.New(snap)

	items := make([]dto.QuoteItemResponse, len(q.Items))
	for i, item := range q.Items {
		productName := ""
		if p, ok := snap.Product(item.ProductID); ok {
			productName = p.Name
		}
		applied := make([]dto.AppliedProcessingResponse, len(item.AppliedProcessings))
		for j, ap := range item.AppliedProcessings {
			name := ""
			if p, ok := snap.Processing(ap.ProcessingID); ok {
				name = p.Name
			}
			var sourceRoom *string
			if ap.SourceRoomID != nil {
				id := ap.SourceRoomID.String()
				sourceRoom = &id
			}
			applied[j] = dto.AppliedProcessingResponse{
				ProcessingID:    ap.ProcessingID.String(),
				Name:            name,
				CalculatedPrice: ap.CalculatedPrice,
				Options:         ap.Options,
				Pending:         ap.Pending,
				SourceRoomID:    sourceRoom,
			}
		}
		var roomID *string
		if item.RoomID != nil {
			id := item.RoomID.String()
			roomID = &id
		}
		items[i] = dto.QuoteItemResponse{
			ID:                 item.ID.String(),
			ProductID:          item.ProductID.String(),
			ProductName:        productName,
			RoomID:             roomID,
			Quantity:           item.Quantity,
			BasePrice:          item.BasePrice,
			AppliedProcessings: applied,
			TotalPrice:         item.TotalPrice,
		}
	}

	rooms := make([]dto.RoomResponse, len(q.Rooms))
	for i, room := range q.Rooms {
		rooms[i] = dto.RoomResponse{
			ID:            room.ID.String(),
			Name:          room.Name,
			ProcessingIDs: uuidStrings(room.ProcessingIDs),
		}
	}

	var pending []dto.PendingConfigurationResponse
	for _, pc := range eng.PendingConfigurations(*q) {
		pending = append(pending, dto.PendingConfigurationResponse{
			ItemID:         pc.ItemID.String(),
			ProcessingID:   pc.ProcessingID.String(),
			ProcessingName: pc.ProcessingName,
		})
	}

	return &dto.QuoteResponse{
		ID:                q.ID.String(),
		CustomerID:        q.CustomerID.String(),
		Items:             items,
		Rooms:             rooms,
		ContractDiscount:  q.ContractDiscount,
		CustomerDiscount:  q.CustomerDiscount,
		OrderDiscount:     q.OrderDiscount,
		Subtotal:          q.Subtotal,
		TotalDiscount:     q.TotalDiscount,
		FinalTotal:        q.FinalTotal,
		RequiresApproval:  q.RequiresApproval,
		ApprovalThreshold: q.ApprovalThreshold,
		Status:            q.Status,
		Pending:           pending,
		Suggestions:       suggestions,
		CreatedAt:         q.CreatedAt.Format(time.RFC3339),
	}
}
