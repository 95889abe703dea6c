package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"suitesync/config"
	"suitesync/infras/otel"
	reservationModel "suitesync/internal/domains/reservation/model"
	reservationRepo "suitesync/internal/domains/reservation/repository"
	resourceModel "suitesync/internal/domains/resource/model"
	resourceRepo "suitesync/internal/domains/resource/repository"
	"suitesync/shared/constant"
	"suitesync/shared/failure"
	"suitesync/shared/lock"
)

// PersistFunc applies the caller's write (insert or reassignment) on the same
// transaction that verified the chosen resource is conflict-free.
type PersistFunc func(ctx context.Context, tx *sqlx.Tx, resourceID string) error

// Allocation places reservations onto resources. It is category-agnostic:
// callers pre-filter the candidate pool, the service only guarantees the
// first conflict-free candidate in pool order wins.
type Allocation interface {
	Overlaps(ctx context.Context, tenantID, resourceID string, window reservationModel.Window, excludeID string) (bool, error)
	Allocate(ctx context.Context, tenantID string, pool []resourceModel.Resource, window reservationModel.Window, excludeID string, persist PersistFunc) (string, error)
}

type serviceImpl struct {
	reservations reservationRepo.Reservation
	resources    resourceRepo.Resource
	locker       lock.Locker
	cfg          *config.Config
	otel         otel.Otel
}

func New(reservations reservationRepo.Reservation, resources resourceRepo.Resource, locker lock.Locker, cfg *config.Config, otl otel.Otel) Allocation {
	return &serviceImpl{
		reservations: reservations,
		resources:    resources,
		locker:       locker,
		cfg:          cfg,
		otel:         otl,
	}
}

// Overlaps is the read-only oracle. Writers must not rely on it alone; the
// check-then-assign path inside Allocate re-verifies under the resource row
// lock before any write.
func (s *serviceImpl) Overlaps(ctx context.Context, tenantID, resourceID string, window reservationModel.Window, excludeID string) (bool, error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Overlaps")
	defer scope.End()

	count, err := s.reservations.CountOverlapping(ctx, tenantID, resourceID, window, excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to query overlaps: %w", err)
	}

	return count > 0, nil
}

// Allocate walks the pool in order and assigns the reservation to the first
// conflict-free resource. The per-candidate sequence is: advisory lock, open
// tx, lock the resource row, re-run the overlap check on the tx, persist,
// commit. When every candidate conflicts the caller gets AllocationExhausted;
// silently falling back to an occupied resource is exactly the failure mode
// this engine exists to prevent.
func (s *serviceImpl) Allocate(ctx context.Context, tenantID string, pool []resourceModel.Resource, window reservationModel.Window, excludeID string, persist PersistFunc) (resourceID string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Allocate")
	defer scope.End()
	defer scope.TraceIfError(err)

	if !window.Valid() {
		return "", failure.BadRequestFromString("allocation window must satisfy start < end") //nolint:wrapcheck
	}

	lockTTL := time.Duration(s.cfg.Sync.LockTTLSeconds) * time.Second

	for _, candidate := range pool {
		assigned, err := s.tryCandidate(ctx, tenantID, candidate.ID, window, excludeID, lockTTL, persist)
		if err != nil {
			return "", err
		}

		if assigned {
			log.Info().
				Str("tenantId", tenantID).
				Str("resourceId", candidate.ID).
				Str("resourceName", candidate.Name).
				Msg("reservation allocated")

			return candidate.ID, nil
		}
	}

	return "", &failure.AllocationExhausted{
		TenantID:  tenantID,
		PoolSize:  len(pool),
		StartDate: window.Start.Format(constant.DateOnly),
		EndDate:   window.End.Format(constant.DateOnly),
	}
}

func (s *serviceImpl) tryCandidate(ctx context.Context, tenantID, resourceID string, window reservationModel.Window, excludeID string, lockTTL time.Duration, persist PersistFunc) (assigned bool, err error) {
	lockKey := lock.ResourceKey(tenantID, resourceID)

	if err = s.locker.Acquire(ctx, lockKey, lockTTL); err != nil {
		return false, fmt.Errorf("failed to serialize allocation on resource %s: %w", resourceID, err)
	}

	defer func() {
		if releaseErr := s.locker.Release(ctx, lockKey); releaseErr != nil {
			log.Error().Err(releaseErr).Str("key", lockKey).Msg("failed to release resource lock")
		}
	}()

	tx, err := s.reservations.BeginTx(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to open allocation transaction: %w", err)
	}

	defer func() {
		if err != nil || !assigned {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				log.Error().Err(rollbackErr).Msg("failed to roll back allocation transaction")
			}
		}
	}()

	if err = s.resources.LockTx(ctx, tx, resourceID); err != nil {
		return false, err
	}

	count, err := s.reservations.CountOverlappingTx(ctx, tx, tenantID, resourceID, window, excludeID)
	if err != nil {
		return false, err
	}

	if count > 0 {
		return false, nil
	}

	if err = persist(ctx, tx, resourceID); err != nil {
		return false, fmt.Errorf("failed to persist allocation on resource %s: %w", resourceID, err)
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit allocation: %w", err)
	}

	return true, nil
}
