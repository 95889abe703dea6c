package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"suitesync/internal/domains/audit/model/dto"
	petModel "suitesync/internal/domains/pet/model"
	reservationModel "suitesync/internal/domains/reservation/model"
	resourceModel "suitesync/internal/domains/resource/model"
	"suitesync/shared"
	"suitesync/shared/constant"
	gDto "suitesync/shared/dto"
	"suitesync/shared/failure"
	"suitesync/shared/timezone"
)

// categoryForSize maps a pet's size class to the suite category it should
// occupy. Large dogs need premium runs, medium dogs fit standard plus,
// small pets take standard suites.
func categoryForSize(sizeClass string) string {
	switch sizeClass {
	case petModel.SizeClassLarge:
		return resourceModel.CategoryPremium
	case petModel.SizeClassMedium:
		return resourceModel.CategoryStandardPlus
	default:
		return resourceModel.CategoryStandard
	}
}

// Rebalance redistributes active reservations so each sits on a resource of
// the category matching its pet's size. Buckets are processed premium first;
// each pass sees the placements of the previous ones, so a later, smaller
// bucket never steals a suite a larger pet needs. Reservations already on a
// correct, conflict-free resource stay put.
func (s *serviceImpl) Rebalance(ctx context.Context) (report dto.RebalanceReport, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Rebalance")
	defer scope.End()
	defer scope.TraceIfError(err)

	tenantID := s.cfg.App.TenantID

	report = dto.RebalanceReport{
		TenantID:  tenantID,
		CheckedAt: timezone.Now(),
	}

	active, err := s.listActiveReservations(ctx, tenantID)
	if err != nil {
		return report, err
	}

	report.Total = len(active)

	categories, err := s.petCategories(ctx, tenantID, active)
	if err != nil {
		return report, err
	}

	buckets := map[string][]reservationModel.Reservation{}
	for _, reservation := range active {
		category := categories[reservation.PetID]
		buckets[category] = append(buckets[category], reservation)
	}

	for _, category := range resourceModel.CategoryPassOrder() {
		if err = s.rebalanceBucket(ctx, tenantID, category, buckets[category], &report); err != nil {
			return report, err
		}
	}

	return report, nil
}

func (s *serviceImpl) rebalanceBucket(ctx context.Context, tenantID, category string, bucket []reservationModel.Reservation, report *dto.RebalanceReport) error {
	if len(bucket) == 0 {
		return nil
	}

	// Oldest bookings place first so a late arrival cannot bump one.
	sort.Slice(bucket, func(i, j int) bool {
		if !bucket[i].CreatedAt.Equal(bucket[j].CreatedAt) {
			return bucket[i].CreatedAt.Before(bucket[j].CreatedAt)
		}

		return bucket[i].ID < bucket[j].ID
	})

	pool, err := s.resources.ListActive(ctx, tenantID, category)
	if err != nil {
		return fmt.Errorf("failed to list %s resources: %w", category, err)
	}

	poolCategories := map[string]string{}
	for _, resource := range pool {
		poolCategories[resource.ID] = resource.Category
	}

	for _, reservation := range bucket {
		kept, err := s.placementHolds(ctx, tenantID, reservation, poolCategories)
		if err != nil {
			return err
		}

		if kept {
			report.Kept++

			continue
		}

		if err = s.moveToCategory(ctx, tenantID, category, reservation, pool, report); err != nil {
			return err
		}
	}

	return nil
}

// placementHolds reports whether the reservation already sits on a resource
// of the target category without conflicting with anything else there.
func (s *serviceImpl) placementHolds(ctx context.Context, tenantID string, reservation reservationModel.Reservation, poolCategories map[string]string) (bool, error) {
	if !reservation.ResourceID.Valid {
		return false, nil
	}

	if _, inCategory := poolCategories[reservation.ResourceID.String]; !inCategory {
		return false, nil
	}

	overlaps, err := s.allocator.Overlaps(ctx, tenantID, reservation.ResourceID.String, reservation.Window(), reservation.ID)
	if err != nil {
		return false, err
	}

	return !overlaps, nil
}

func (s *serviceImpl) moveToCategory(ctx context.Context, tenantID, category string, reservation reservationModel.Reservation, pool []resourceModel.Resource, report *dto.RebalanceReport) error {
	fromResourceID := reservation.ResourceID.String

	persist := func(ctx context.Context, tx *sqlx.Tx, resourceID string) error {
		changes := map[string]any{
			reservationModel.FieldResourceID: resourceID,
			constant.FieldModifiedAt:         timezone.Now(),
			constant.FieldModifiedBy:         constant.SyncActorName,
		}

		return s.reservations.UpdateTx(ctx, tx, changes, shared.FilterByID(reservation.ID, reservationModel.FieldID, reservationModel.TableName)) //nolint:wrapcheck
	}

	toResourceID, err := s.allocator.Allocate(ctx, tenantID, pool, reservation.Window(), reservation.ID, persist)
	if err != nil {
		var exhausted *failure.AllocationExhausted
		if errors.As(err, &exhausted) {
			log.Warn().
				Str("reservationId", reservation.ID).
				Str("category", category).
				Msg("no free resource in target category, placement deferred")
			report.Deferred = append(report.Deferred, dto.DeferredPlacement{
				ReservationID: reservation.ID,
				Category:      category,
				Reason:        fmt.Sprintf("all %d resources in category occupied", exhausted.PoolSize),
			})

			return nil
		}

		return fmt.Errorf("failed to rebalance reservation %s: %w", reservation.ID, err)
	}

	report.Moved = append(report.Moved, dto.RebalanceMove{
		ReservationID:  reservation.ID,
		FromResourceID: fromResourceID,
		ToResourceID:   toResourceID,
		Category:       category,
	})
	s.publisher.ReservationReassigned(ctx, tenantID, reservation.ID, fromResourceID, toResourceID)

	return nil
}

func (s *serviceImpl) listActiveReservations(ctx context.Context, tenantID string) ([]reservationModel.Reservation, error) {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: reservationModel.FieldTenantID, Value: tenantID, Operator: gDto.FilterOperatorEq, Table: reservationModel.TableName},
			gDto.Filter{Field: reservationModel.FieldStatus, Value: reservationModel.ActiveStatuses(), Operator: gDto.FilterOperatorIn, Table: reservationModel.TableName},
		},
	}

	reservations, err := s.reservations.GetAll(ctx, gDto.QueryParams{}, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list active reservations: %w", err)
	}

	return reservations, nil
}

// petCategories resolves each referenced pet to its target suite category.
// A pet missing from storage falls back to standard rather than failing the
// whole pass.
func (s *serviceImpl) petCategories(ctx context.Context, tenantID string, reservations []reservationModel.Reservation) (map[string]string, error) {
	petIDs := make([]string, 0, len(reservations))
	seen := map[string]bool{}

	for _, reservation := range reservations {
		if !seen[reservation.PetID] {
			seen[reservation.PetID] = true

			petIDs = append(petIDs, reservation.PetID)
		}
	}

	categories := map[string]string{}
	if len(petIDs) == 0 {
		return categories, nil
	}

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: petModel.FieldTenantID, Value: tenantID, Operator: gDto.FilterOperatorEq, Table: petModel.TableName},
			gDto.Filter{Field: petModel.FieldID, Value: petIDs, Operator: gDto.FilterOperatorIn, Table: petModel.TableName},
		},
	}

	pets, err := s.pets.GetAll(ctx, gDto.QueryParams{}, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load pets for rebalance: %w", err)
	}

	for _, pet := range pets {
		categories[pet.ID] = categoryForSize(pet.SizeClass)
	}

	for _, id := range petIDs {
		if _, ok := categories[id]; !ok {
			categories[id] = resourceModel.CategoryStandard
		}
	}

	return categories, nil
}
