package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cabinetcpq/internal/dto"
	"cabinetcpq/internal/model"
)

// CatalogRepository is the data access contract for catalog reference data.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type CatalogRepository interface {
	// LoadAll fetches everything needed to build a catalog snapshot.
	LoadAll(ctx context.Context) ([]model.Product, []model.Processing, []model.ProcessingRule, []model.ProductDependency, error)

	// Products
	CreateProduct(ctx context.Context, p *model.Product) error
	FindProductByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListProducts(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeactivateProduct(ctx context.Context, id uuid.UUID) error

	// Processings
	CreateProcessing(ctx context.Context, p *model.Processing) error
	ListProcessings(ctx context.Context) ([]model.Processing, error)
	DeactivateProcessing(ctx context.Context, id uuid.UUID) error

	// Rules
	CreateRule(ctx context.Context, r *model.ProcessingRule) error
	ListRules(ctx context.Context) ([]model.ProcessingRule, error)
	DeleteRule(ctx context.Context, id uuid.UUID) error

	// Dependencies
	CreateDependency(ctx context.Context, d *model.ProductDependency) error
	ListDependencies(ctx context.Context) ([]model.ProductDependency, error)
	DeleteDependency(ctx context.Context, id uuid.UUID) error
}

type catalogRepo struct{ db *gorm.DB }

func NewCatalogRepository(db *gorm.DB) CatalogRepository { return &catalogRepo{db: db} }

func (r *catalogRepo) LoadAll(ctx context.Context) ([]model.Product, []model.Processing, []model.ProcessingRule, []model.ProductDependency, error) {
	var (
		products     []model.Product
		processings  []model.Processing
		rules        []model.ProcessingRule
		dependencies []model.ProductDependency
	)
	q := r.db.WithContext(ctx)
	if err := q.Where("active = true").Order("code ASC").Find(&products).Error; err != nil {
		return nil, nil, nil, nil, err
	}
	if err := q.Order("name ASC").Find(&processings).Error; err != nil {
		return nil, nil, nil, nil, err
	}
	if err := q.Order("priority ASC").Find(&rules).Error; err != nil {
		return nil, nil, nil, nil, err
	}
	if err := q.Find(&dependencies).Error; err != nil {
		return nil, nil, nil, nil, err
	}
	return products, processings, rules, dependencies, nil
}

func (r *catalogRepo) CreateProduct(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *catalogRepo) FindProductByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *catalogRepo) ListProducts(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})

	switch filter.Active {
	case "false":
		q = q.Where("active = false")
	case "all":
		// no filter
	default:
		q = q.Where("active = true")
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("code ASC").Limit(filter.Limit).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *catalogRepo) UpdateProduct(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *catalogRepo) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("active", false).Error
}

func (r *catalogRepo) CreateProcessing(ctx context.Context, p *model.Processing) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *catalogRepo) ListProcessings(ctx context.Context) ([]model.Processing, error) {
	var processings []model.Processing
	err := r.db.WithContext(ctx).Order("name ASC").Find(&processings).Error
	return processings, err
}

func (r *catalogRepo) DeactivateProcessing(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Processing{}).Where("id = ?", id).Update("active", false).Error
}

func (r *catalogRepo) CreateRule(ctx context.Context, rule *model.ProcessingRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *catalogRepo) ListRules(ctx context.Context) ([]model.ProcessingRule, error) {
	var rules []model.ProcessingRule
	err := r.db.WithContext(ctx).Order("priority ASC").Find(&rules).Error
	return rules, err
}

func (r *catalogRepo) DeleteRule(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ProcessingRule{}, id).Error
}

func (r *catalogRepo) CreateDependency(ctx context.Context, d *model.ProductDependency) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *catalogRepo) ListDependencies(ctx context.Context) ([]model.ProductDependency, error) {
	var deps []model.ProductDependency
	err := r.db.WithContext(ctx).Find(&deps).Error
	return deps, err
}

func (r *catalogRepo) DeleteDependency(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ProductDependency{}, id).Error
}
