package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"cabinetcpq/internal/dto"
	"cabinetcpq/internal/infra"
	"cabinetcpq/internal/model"
	"cabinetcpq/internal/repository"
)

// CustomerService resolves customers against the external directory and keeps
// a local copy of each record with its negotiated discount terms. Directory
// calls go through a circuit breaker; when the circuit is open the
// last-synced local record is served instead of failing the request.
type CustomerService interface {
	// Sync fetches current terms from the directory and upserts the local
	// record. Falls back to the stale local copy when the directory is down.
	Sync(ctx context.Context, directoryID string) (*dto.CustomerResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error)
	List(ctx context.Context, filter dto.CustomerFilter) (*dto.CustomerListResponse, error)
}

type customerService struct {
	repo      repository.CustomerRepository
	directory *infra.DirectoryClient
	breaker   *infra.CircuitBreaker
}

func NewCustomerService(repo repository.CustomerRepository, directory *infra.DirectoryClient, breaker *infra.CircuitBreaker) CustomerService {
	return &customerService{repo: repo, directory: directory, breaker: breaker}
}

func (s *customerService) Sync(ctx context.Context, directoryID string) (*dto.CustomerResponse, error) {
	var record *infra.DirectoryRecord
	err := s.breaker.Execute(func() error {
		var lookupErr error
		record, lookupErr = s.directory.Lookup(ctx, directoryID)
		return lookupErr
	})

	if err != nil {
		// Directory unreachable or circuit open — serve the stale local copy.
		local, localErr := s.repo.FindByDirectoryID(ctx, directoryID)
		if localErr != nil {
			if errors.Is(err, infra.ErrCircuitOpen) {
				return nil, errors.New("customer directory unavailable and no local record exists")
			}
			return nil, err
		}
		log.Warn().
			Str("directory_id", directoryID).
			Time("synced_at", local.SyncedAt).
			Err(err).
			Msg("customer: directory unavailable, using last-synced terms")
		return customerToResponse(local), nil
	}

	customer := &model.Customer{
		DirectoryID:      record.DirectoryID,
		Name:             record.Name,
		Email:            record.Email,
		ContractDiscount: record.ContractDiscount,
		CustomerDiscount: record.CustomerDiscount,
	}
	if err := s.repo.Upsert(ctx, customer); err != nil {
		return nil, err
	}
	// Re-read so the response carries the persisted id on first sync.
	stored, err := s.repo.FindByDirectoryID(ctx, directoryID)
	if err != nil {
		return nil, err
	}
	return customerToResponse(stored), nil
}

func (s *customerService) Get(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("customer not found")
	}
	return customerToResponse(c), nil
}

func (s *customerService) List(ctx context.Context, filter dto.CustomerFilter) (*dto.CustomerListResponse, error) {
	customers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CustomerResponse, len(customers))
	for i := range customers {
		resp[i] = *customerToResponse(&customers[i])
	}
	return &dto.CustomerListResponse{Data: resp, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func customerToResponse(c *model.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:               c.ID.String(),
		DirectoryID:      c.DirectoryID,
		Name:             c.Name,
		Email:            c.Email,
		ContractDiscount: c.ContractDiscount,
		CustomerDiscount: c.CustomerDiscount,
		SyncedAt:         c.SyncedAt.Format(time.RFC3339),
	}
}
