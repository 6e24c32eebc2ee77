package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cabinetcpq/internal/dto"
	"cabinetcpq/internal/model"
)

type CustomerRepository interface {
	// Upsert inserts or refreshes the local copy of a directory record,
	// keyed by DirectoryID.
	Upsert(ctx context.Context, c *model.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	FindByDirectoryID(ctx context.Context, directoryID string) (*model.Customer, error)
	List(ctx context.Context, filter dto.CustomerFilter) ([]model.Customer, int64, error)
	// ListStale returns up to limit customers whose terms were last synced
	// before the cutoff, oldest first. Used by the background sync cron.
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]model.Customer, error)
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) Upsert(ctx context.Context, c *model.Customer) error {
	c.SyncedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "directory_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "email", "contract_discount", "customer_discount", "synced_at", "updated_at",
		}),
	}).Create(c).Error
}

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *customerRepo) FindByDirectoryID(ctx context.Context, directoryID string) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).Where("directory_id = ?", directoryID).First(&c).Error
	return &c, err
}

func (r *customerRepo) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]model.Customer, error) {
	var customers []model.Customer
	err := r.db.WithContext(ctx).
		Where("synced_at < ?", cutoff).
		Order("synced_at ASC").
		Limit(limit).
		Find(&customers).Error
	return customers, err
}

func (r *customerRepo) List(ctx context.Context, filter dto.CustomerFilter) ([]model.Customer, int64, error) {
	var customers []model.Customer
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Customer{})
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&customers).Error
	return customers, total, err
}
