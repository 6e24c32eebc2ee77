package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"cabinetcpq/internal/catalog"
	"cabinetcpq/internal/dto"
	"cabinetcpq/internal/model"
	"cabinetcpq/internal/repository"
)

const snapshotCacheKey = "catalog:snapshot"

// CatalogService manages catalog reference data and serves the immutable
// snapshot the pricing engine evaluates against. Snapshots are cached in
// Redis; any catalog write invalidates the cache so the next quote mutation
// sees the new data.
type CatalogService interface {
	Snapshot(ctx context.Context) (*catalog.Snapshot, error)

	CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	ListProducts(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	DeactivateProduct(ctx context.Context, id uuid.UUID) error

	CreateProcessing(ctx context.Context, req dto.CreateProcessingRequest) (*dto.ProcessingResponse, error)
	ListProcessings(ctx context.Context) ([]dto.ProcessingResponse, error)
	DeactivateProcessing(ctx context.Context, id uuid.UUID) error

	CreateRule(ctx context.Context, req dto.CreateRuleRequest) (*dto.RuleResponse, error)
	ListRules(ctx context.Context) ([]dto.RuleResponse, error)
	DeleteRule(ctx context.Context, id uuid.UUID) error

	CreateDependency(ctx context.Context, req dto.CreateDependencyRequest) (*dto.DependencyResponse, error)
	ListDependencies(ctx context.Context) ([]dto.DependencyResponse, error)
	DeleteDependency(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	repo     repository.CatalogRepository
	rdb      *redis.Client
	cacheTTL time.Duration
}

func NewCatalogService(repo repository.CatalogRepository, rdb *redis.Client, cacheTTL time.Duration) CatalogService {
	return &catalogService{repo: repo, rdb: rdb, cacheTTL: cacheTTL}
}

// cachedCatalog is the Redis serialization of the four catalog tables.
type cachedCatalog struct {
	Products     []model.Product           `json:"products"`
	Processings  []model.Processing        `json:"processings"`
	Rules        []model.ProcessingRule    `json:"rules"`
	Dependencies []model.ProductDependency `json:"dependencies"`
}

// Snapshot returns the current catalog snapshot, from Redis when fresh,
// otherwise rebuilt from the database and cached. A Redis outage degrades to
// a direct database read, never to an error.
func (s *catalogService) Snapshot(ctx context.Context) (*catalog.Snapshot, error) {
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, snapshotCacheKey).Bytes()
		if err == nil {
			var cached cachedCatalog
			if err := json.Unmarshal(raw, &cached); err == nil {
				return catalog.NewSnapshot(cached.Products, cached.Processings, cached.Rules, cached.Dependencies), nil
			}
			log.Warn().Err(err).Msg("catalog: corrupt snapshot cache, rebuilding")
		} else if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("catalog: redis unavailable, reading from db")
		}
	}

	products, processings, rules, deps, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		data, err := json.Marshal(cachedCatalog{
			Products: products, Processings: processings, Rules: rules, Dependencies: deps,
		})
		if err == nil {
			if err := s.rdb.Set(ctx, snapshotCacheKey, data, s.cacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("catalog: failed to cache snapshot")
			}
		}
	}
	return catalog.NewSnapshot(products, processings, rules, deps), nil
}

// invalidate drops the cached snapshot after any catalog write.
func (s *catalogService) invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, snapshotCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("catalog: failed to invalidate snapshot cache")
	}
}

// ── Products ─────────────────────────────────────────────────────────────────

func (s *catalogService) CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	p := &model.Product{
		Code:      req.Code,
		Name:      req.Name,
		Category:  req.Category,
		BasePrice: req.BasePrice,
		Active:    true,
	}
	if req.Dimensions != nil {
		p.Dimensions = &model.Dimensions{
			Width:  req.Dimensions.Width,
			Height: req.Dimensions.Height,
			Depth:  req.Dimensions.Depth,
		}
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return productToResponse(p), nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, errors.New("product not found")
	}
	return productToResponse(p), nil
}

func (s *catalogService) ListProducts(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	products, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProductResponse, len(products))
	for i := range products {
		resp[i] = *productToResponse(&products[i])
	}
	return &dto.ProductListResponse{Data: resp, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, errors.New("product not found")
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Category != "" {
		p.Category = req.Category
	}
	if req.BasePrice != nil {
		p.BasePrice = *req.BasePrice
	}
	if req.Dimensions != nil {
		p.Dimensions = &model.Dimensions{
			Width:  req.Dimensions.Width,
			Height: req.Dimensions.Height,
			Depth:  req.Dimensions.Depth,
		}
	}
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return productToResponse(p), nil
}

func (s *catalogService) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeactivateProduct(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ── Processings ──────────────────────────────────────────────────────────────

func (s *catalogService) CreateProcessing(ctx context.Context, req dto.CreateProcessingRequest) (*dto.ProcessingResponse, error) {
	p := &model.Processing{
		Name:            req.Name,
		PricingModel:    req.PricingModel,
		Rate:            req.Rate,
		Categories:      req.Categories,
		RequiresOptions: req.RequiresOptions,
		Active:          true,
	}
	if err := s.repo.CreateProcessing(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return processingToResponse(p), nil
}

func (s *catalogService) ListProcessings(ctx context.Context) ([]dto.ProcessingResponse, error) {
	processings, err := s.repo.ListProcessings(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProcessingResponse, len(processings))
	for i := range processings {
		resp[i] = *processingToResponse(&processings[i])
	}
	return resp, nil
}

func (s *catalogService) DeactivateProcessing(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeactivateProcessing(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ── Rules ────────────────────────────────────────────────────────────────────

func (s *catalogService) CreateRule(ctx context.Context, req dto.CreateRuleRequest) (*dto.RuleResponse, error) {
	triggers, err := parseUUIDs(req.TriggerIDs)
	if err != nil {
		return nil, errors.New("invalid trigger id")
	}
	excluded, err := parseUUIDs(req.ExcludedIDs)
	if err != nil {
		return nil, errors.New("invalid excluded id")
	}
	r := &model.ProcessingRule{
		Name:        req.Name,
		TriggerIDs:  triggers,
		ExcludedIDs: excluded,
		Priority:    req.Priority,
	}
	if err := s.repo.CreateRule(ctx, r); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return ruleToResponse(r), nil
}

func (s *catalogService) ListRules(ctx context.Context) ([]dto.RuleResponse, error) {
	rules, err := s.repo.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.RuleResponse, len(rules))
	for i := range rules {
		resp[i] = *ruleToResponse(&rules[i])
	}
	return resp, nil
}

func (s *catalogService) DeleteRule(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteRule(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ── Dependencies ─────────────────────────────────────────────────────────────

func (s *catalogService) CreateDependency(ctx context.Context, req dto.CreateDependencyRequest) (*dto.DependencyResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, errors.New("invalid product_id")
	}
	requiredID, err := uuid.Parse(req.RequiredProductID)
	if err != nil {
		return nil, errors.New("invalid required_product_id")
	}
	if productID == requiredID {
		return nil, errors.New("a product cannot depend on itself")
	}
	formula := req.QuantityFormula
	if formula == "" {
		formula = "1"
	}
	d := &model.ProductDependency{
		ProductID:         productID,
		RequiredProductID: requiredID,
		IsAutomatic:       req.IsAutomatic,
		QuantityFormula:   formula,
	}
	if err := s.repo.CreateDependency(ctx, d); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return dependencyToResponse(d), nil
}

func (s *catalogService) ListDependencies(ctx context.Context) ([]dto.DependencyResponse, error) {
	deps, err := s.repo.ListDependencies(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.DependencyResponse, len(deps))
	for i := range deps {
		resp[i] = *dependencyToResponse(&deps[i])
	}
	return resp, nil
}

func (s *catalogService) DeleteDependency(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteDependency(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ── Mappers ──────────────────────────────────────────────────────────────────

func productToResponse(p *model.Product) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:        p.ID.String(),
		Code:      p.Code,
		Name:      p.Name,
		Category:  p.Category,
		BasePrice: p.BasePrice,
		Active:    p.Active,
	}
	if p.Dimensions != nil {
		resp.Dimensions = &dto.DimensionsDTO{
			Width:  p.Dimensions.Width,
			Height: p.Dimensions.Height,
			Depth:  p.Dimensions.Depth,
		}
	}
	return resp
}

func processingToResponse(p *model.Processing) *dto.ProcessingResponse {
	return &dto.ProcessingResponse{
		ID:              p.ID.String(),
		Name:            p.Name,
		PricingModel:    p.PricingModel,
		Rate:            p.Rate,
		Categories:      p.Categories,
		RequiresOptions: p.RequiresOptions,
		Active:          p.Active,
	}
}

func ruleToResponse(r *model.ProcessingRule) *dto.RuleResponse {
	return &dto.RuleResponse{
		ID:          r.ID.String(),
		Name:        r.Name,
		TriggerIDs:  uuidStrings(r.TriggerIDs),
		ExcludedIDs: uuidStrings(r.ExcludedIDs),
		Priority:    r.Priority,
	}
}

func dependencyToResponse(d *model.ProductDependency) *dto.DependencyResponse {
	return &dto.DependencyResponse{
		ID:                d.ID.String(),
		ProductID:         d.ProductID.String(),
		RequiredProductID: d.RequiredProductID.String(),
		IsAutomatic:       d.IsAutomatic,
		QuantityFormula:   d.QuantityFormula,
	}
}

func parseUUIDs(in []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, len(in))
	for i, s := range in {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

func uuidStrings(in []uuid.UUID) []string {
	out := make([]string, len(in))
	for i, id := range in {
		out[i] = id.String()
	}
	return out
}
