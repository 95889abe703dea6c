package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"suitesync/config"
	"suitesync/infras/otel"
	customerModel "suitesync/internal/domains/customer/model"
	customerRepo "suitesync/internal/domains/customer/repository"
	offeringModel "suitesync/internal/domains/offering/model"
	offeringRepo "suitesync/internal/domains/offering/repository"
	petModel "suitesync/internal/domains/pet/model"
	petRepo "suitesync/internal/domains/pet/repository"
	reservationRepo "suitesync/internal/domains/reservation/repository"
	resourceModel "suitesync/internal/domains/resource/model"
	resourceRepo "suitesync/internal/domains/resource/repository"
	"suitesync/internal/domains/status/model/dto"
	syncService "suitesync/internal/domains/sync/service"
	"suitesync/shared"
	"suitesync/shared/cache"
	"suitesync/shared/constant"
	gDto "suitesync/shared/dto"
	"suitesync/shared/timezone"
)

type Status interface {
	Summary(ctx context.Context) (dto.StatusSummary, error)
}

type serviceImpl struct {
	reservations reservationRepo.Reservation
	customers    customerRepo.Customer
	pets         petRepo.Pet
	offerings    offeringRepo.Offering
	resources    resourceRepo.Resource
	cache        cache.RedisCache
	cfg          *config.Config
	otel         otel.Otel
}

func New(
	reservations reservationRepo.Reservation,
	customers customerRepo.Customer,
	pets petRepo.Pet,
	offerings offeringRepo.Offering,
	resources resourceRepo.Resource,
	redisCache cache.RedisCache,
	cfg *config.Config,
	otl otel.Otel,
) Status {
	return &serviceImpl{
		reservations: reservations,
		customers:    customers,
		pets:         pets,
		offerings:    offerings,
		resources:    resources,
		cache:        redisCache,
		cfg:          cfg,
		otel:         otl,
	}
}

func (s *serviceImpl) Summary(ctx context.Context) (summary dto.StatusSummary, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Summary")
	defer scope.End()
	defer scope.TraceIfError(err)

	tenantID := s.cfg.App.TenantID

	summary = dto.StatusSummary{
		TenantID:    tenantID,
		GeneratedAt: timezone.Now(),
		LastSyncAt:  s.lastSyncAt(ctx, tenantID),
	}

	if summary.Entities, err = s.entityCounts(ctx, tenantID); err != nil {
		return summary, err
	}

	if summary.ByStatus, err = s.reservations.StatusCounts(ctx, tenantID); err != nil {
		return summary, fmt.Errorf("failed to summarize reservation statuses: %w", err)
	}

	if summary.ByCategory, err = s.reservations.CategoryCounts(ctx, tenantID); err != nil {
		return summary, fmt.Errorf("failed to summarize resource categories: %w", err)
	}

	pairs, err := s.reservations.FindViolationPairs(ctx, tenantID)
	if err != nil {
		return summary, fmt.Errorf("failed to check overlap invariant: %w", err)
	}

	summary.Violations = len(pairs)
	summary.Consistent = len(pairs) == 0

	return summary, nil
}

func (s *serviceImpl) entityCounts(ctx context.Context, tenantID string) (counts dto.EntityCounts, err error) {
	if counts.Customers, err = s.customers.Count(ctx, tenantFilter(tenantID, customerModel.FieldTenantID, customerModel.TableName)); err != nil {
		return counts, fmt.Errorf("failed to count customers: %w", err)
	}

	if counts.Pets, err = s.pets.Count(ctx, tenantFilter(tenantID, petModel.FieldTenantID, petModel.TableName)); err != nil {
		return counts, fmt.Errorf("failed to count pets: %w", err)
	}

	if counts.Offerings, err = s.offerings.Count(ctx, tenantFilter(tenantID, offeringModel.FieldTenantID, offeringModel.TableName)); err != nil {
		return counts, fmt.Errorf("failed to count offerings: %w", err)
	}

	if counts.Resources, err = s.resources.Count(ctx, tenantFilter(tenantID, resourceModel.FieldTenantID, resourceModel.TableName)); err != nil {
		return counts, fmt.Errorf("failed to count resources: %w", err)
	}

	return counts, nil
}

// lastSyncAt is informational only. A cold cache means no sync has run since
// the cache was last flushed, which is worth showing, not failing over.
func (s *serviceImpl) lastSyncAt(ctx context.Context, tenantID string) string {
	key := shared.BuildCacheKey(syncService.CacheKeyLastSync, tenantID)

	var lastSync string
	if err := s.cache.Get(ctx, key, &lastSync); err != nil {
		if !errors.Is(err, cache.Nil) {
			log.Warn().Err(err).Msg("failed to read last sync time from cache")
		}

		return ""
	}

	return lastSync
}

func tenantFilter(tenantID, field, table string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: field, Value: tenantID, Operator: gDto.FilterOperatorEq, Table: table},
		},
	}
}
