package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cabinetcpq/internal/dto"
	"cabinetcpq/internal/model"
)

// QuoteRepository persists quote aggregates. The engine works on in-memory
// values and returns a fully recomputed copy, so Save replaces the whole
// aggregate (items, applied processings, rooms) rather than diffing.
type QuoteRepository interface {
	Create(ctx context.Context, q *model.Quote) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Quote, error)
	Save(ctx context.Context, tx *gorm.DB, q *model.Quote) error
	List(ctx context.Context, filter dto.QuoteFilter) ([]model.Quote, int64, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error
	CreateApprovalStep(ctx context.Context, tx *gorm.DB, step *model.ApprovalStep) error
	ListApprovalSteps(ctx context.Context, quoteID uuid.UUID) ([]model.ApprovalStep, error)
	// DB exposes the underlying handle so services can run transactions
	// spanning multiple repository calls.
	DB() *gorm.DB
}

type quoteRepo struct{ db *gorm.DB }

func NewQuoteRepository(db *gorm.DB) QuoteRepository { return &quoteRepo{db: db} }

func (r *quoteRepo) DB() *gorm.DB { return r.db }

func (r *quoteRepo) Create(ctx context.Context, q *model.Quote) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *quoteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	var q model.Quote
	err := r.db.WithContext(ctx).
		Preload("Items.AppliedProcessings").
		Preload("Rooms").
		First(&q, id).Error
	return &q, err
}

// Save rewrites the aggregate inside the given transaction: the quote row is
// updated in place and the child rows are deleted and re-inserted. Item and
// room ids are stable across engine operations, so references held by clients
// survive a save.
func (r *quoteRepo) Save(ctx context.Context, tx *gorm.DB, q *model.Quote) error {
	tx = tx.WithContext(ctx)

	var itemIDs []uuid.UUID
	if err := tx.Model(&model.QuoteItem{}).Where("quote_id = ?", q.ID).Pluck("id", &itemIDs).Error; err != nil {
		return err
	}
	if len(itemIDs) > 0 {
		if err := tx.Where("quote_item_id IN ?", itemIDs).Delete(&model.AppliedProcessing{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("quote_id = ?", q.ID).Delete(&model.QuoteItem{}).Error; err != nil {
		return err
	}
	if err := tx.Where("quote_id = ?", q.ID).Delete(&model.Room{}).Error; err != nil {
		return err
	}

	if err := tx.Omit("Items", "Rooms").Save(q).Error; err != nil {
		return err
	}
	for i := range q.Items {
		if err := tx.Create(&q.Items[i]).Error; err != nil {
			return err
		}
	}
	for i := range q.Rooms {
		if err := tx.Create(&q.Rooms[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *quoteRepo) List(ctx context.Context, filter dto.QuoteFilter) ([]model.Quote, int64, error) {
	var quotes []model.Quote
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Quote{})
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (filter.Page - 1) * filter.Limit
	// Items are preloaded so the list response can carry per-quote item counts.
	err := q.Preload("Items").
		Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&quotes).Error
	return quotes, total, err
}

func (r *quoteRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.WithContext(ctx).Model(&model.Quote{}).Where("id = ?", id).Update("status", status).Error
}

func (r *quoteRepo) CreateApprovalStep(ctx context.Context, tx *gorm.DB, step *model.ApprovalStep) error {
	return tx.WithContext(ctx).Create(step).Error
}

func (r *quoteRepo) ListApprovalSteps(ctx context.Context, quoteID uuid.UUID) ([]model.ApprovalStep, error) {
	var steps []model.ApprovalStep
	err := r.db.WithContext(ctx).Where("quote_id = ?", quoteID).Order("created_at ASC").Find(&steps).Error
	return steps, err
}
