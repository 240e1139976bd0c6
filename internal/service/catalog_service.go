package service

import (
	"context"
	"errors"
	"time"

	"github.com/psholiveira/barber-system/internal/apperror"
	"github.com/psholiveira/barber-system/internal/dto"
	"github.com/psholiveira/barber-system/internal/infra"
	"github.com/psholiveira/barber-system/internal/metrics"
	"github.com/psholiveira/barber-system/internal/model"
	"github.com/psholiveira/barber-system/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var defaultCommissionPercent = decimal.NewFromInt(50)

const (
	catalogCacheAll    = "catalog:services:all"
	catalogCacheActive = "catalog:services:active"
)

// CatalogService manages the service catalog. Lists are served cache-aside
// from Redis and invalidated on every write.
type CatalogService interface {
	List(ctx context.Context, onlyActive bool) ([]dto.ServiceResponse, error)
	Create(ctx context.Context, req dto.ServiceRequest) (*dto.ServiceResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.ServiceRequest) (*dto.ServiceResponse, error)
}

type catalogService struct {
	repo    repository.ServiceRepository
	cache   *infra.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
}

func NewCatalogService(repo repository.ServiceRepository, cache *infra.Cache, ttl time.Duration, m *metrics.Metrics) CatalogService {
	return &catalogService{repo: repo, cache: cache, ttl: ttl, metrics: m}
}

func (s *catalogService) List(ctx context.Context, onlyActive bool) ([]dto.ServiceResponse, error) {
	key := catalogCacheAll
	if onlyActive {
		key = catalogCacheActive
	}

	var cached []dto.ServiceResponse
	hit, err := s.cache.GetJSON(ctx, key, &cached)
	switch {
	case err != nil:
		s.metrics.CacheResult("error")
		log.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
	case hit:
		s.metrics.CacheResult("hit")
		return cached, nil
	default:
		s.metrics.CacheResult("miss")
	}

	services, err := s.repo.List(ctx, onlyActive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ServiceResponse, 0, len(services))
	for i := range services {
		out = append(out, serviceToResponse(&services[i]))
	}

	// Populate cache: best effort
	if err := s.cache.SetJSON(ctx, key, out, s.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
	return out, nil
}

func (s *catalogService) Create(ctx context.Context, req dto.ServiceRequest) (*dto.ServiceResponse, error) {
	if err := validateServiceRequest(req); err != nil {
		return nil, err
	}
	svc := &model.Service{
		Name:                     req.Name,
		DefaultPrice:             req.DefaultPrice,
		DefaultCommissionPercent: defaultCommissionPercent,
		Active:                   req.Active == nil || *req.Active,
	}
	if req.DefaultCommissionPercent != nil {
		svc.DefaultCommissionPercent = *req.DefaultCommissionPercent
	}
	if err := s.repo.Create(ctx, svc); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Validation("Já existe um serviço com esse nome.")
		}
		return nil, err
	}
	s.invalidate(ctx)
	resp := serviceToResponse(svc)
	return &resp, nil
}

func (s *catalogService) Update(ctx context.Context, id uuid.UUID, req dto.ServiceRequest) (*dto.ServiceResponse, error) {
	if err := validateServiceRequest(req); err != nil {
		return nil, err
	}
	svc, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, notFound("Serviço", err)
	}
	svc.Name = req.Name
	svc.DefaultPrice = req.DefaultPrice
	if req.DefaultCommissionPercent != nil {
		svc.DefaultCommissionPercent = *req.DefaultCommissionPercent
	}
	if req.Active != nil {
		svc.Active = *req.Active
	}
	if err := s.repo.Update(ctx, svc); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Validation("Já existe um serviço com esse nome.")
		}
		return nil, err
	}
	s.invalidate(ctx)
	resp := serviceToResponse(svc)
	return &resp, nil
}

func (s *catalogService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, catalogCacheAll, catalogCacheActive); err != nil {
		log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}

func validateServiceRequest(req dto.ServiceRequest) error {
	if req.DefaultPrice.IsNegative() {
		return apperror.Validation("Preço padrão não pode ser negativo.")
	}
	if req.DefaultCommissionPercent != nil {
		return validatePercent(*req.DefaultCommissionPercent)
	}
	return nil
}

func serviceToResponse(s *model.Service) dto.ServiceResponse {
	return dto.ServiceResponse{
		ID:                       s.ID.String(),
		Name:                     s.Name,
		DefaultPrice:             s.DefaultPrice,
		DefaultCommissionPercent: s.DefaultCommissionPercent,
		Active:                   s.Active,
	}
}
