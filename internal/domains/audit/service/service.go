package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"suitesync/config"
	"suitesync/infras/otel"
	allocationService "suitesync/internal/domains/allocation/service"
	"suitesync/internal/domains/audit/model/dto"
	petRepo "suitesync/internal/domains/pet/repository"
	reservationModel "suitesync/internal/domains/reservation/model"
	reservationRepo "suitesync/internal/domains/reservation/repository"
	resourceModel "suitesync/internal/domains/resource/model"
	resourceRepo "suitesync/internal/domains/resource/repository"
	"suitesync/internal/events"
	"suitesync/shared"
	"suitesync/shared/constant"
	gDto "suitesync/shared/dto"
	"suitesync/shared/failure"
	"suitesync/shared/timezone"
)

// Audit detects and heals overlap violations that slipped past allocation:
// concurrent writers, bulk imports, manual suite edits.
type Audit interface {
	Validate(ctx context.Context) (dto.AuditReport, error)
	Repair(ctx context.Context) (dto.AuditReport, error)
	Rebalance(ctx context.Context) (dto.RebalanceReport, error)
}

type serviceImpl struct {
	reservations reservationRepo.Reservation
	resources    resourceRepo.Resource
	pets         petRepo.Pet
	allocator    allocationService.Allocation
	publisher    events.Publisher
	cfg          *config.Config
	otel         otel.Otel
}

func New(
	reservations reservationRepo.Reservation,
	resources resourceRepo.Resource,
	pets petRepo.Pet,
	allocator allocationService.Allocation,
	publisher events.Publisher,
	cfg *config.Config,
	otl otel.Otel,
) Audit {
	return &serviceImpl{
		reservations: reservations,
		resources:    resources,
		pets:         pets,
		allocator:    allocator,
		publisher:    publisher,
		cfg:          cfg,
		otel:         otl,
	}
}

// Validate reports every resource holding intersecting active reservations.
// Read-only.
func (s *serviceImpl) Validate(ctx context.Context) (report dto.AuditReport, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Validate")
	defer scope.End()
	defer scope.TraceIfError(err)

	tenantID := s.cfg.App.TenantID

	groups, err := s.findViolationGroups(ctx, tenantID)
	if err != nil {
		return report, err
	}

	report = dto.AuditReport{
		TenantID:   tenantID,
		CheckedAt:  timezone.Now(),
		Violations: groups,
		Remaining:  len(groups),
	}

	return report, nil
}

// Repair keeps the oldest reservation of each violation group in place and
// reallocates the rest, excluding the violating resource from their pools.
// The pass re-validates afterwards and fails loudly when violations remain;
// reporting false success here would hide the exact corruption the auditor
// exists to catch.
func (s *serviceImpl) Repair(ctx context.Context) (report dto.AuditReport, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Repair")
	defer scope.End()
	defer scope.TraceIfError(err)

	tenantID := s.cfg.App.TenantID

	groups, err := s.findViolationGroups(ctx, tenantID)
	if err != nil {
		return report, err
	}

	report = dto.AuditReport{
		TenantID:   tenantID,
		CheckedAt:  timezone.Now(),
		Violations: groups,
	}

	for _, group := range groups {
		if err = s.repairGroup(ctx, tenantID, group, &report); err != nil {
			return report, err
		}
	}

	remaining, err := s.findViolationGroups(ctx, tenantID)
	if err != nil {
		return report, err
	}

	report.Remaining = len(remaining)

	if !report.Clean() {
		return report, &failure.ConsistencyUnrepairable{
			TenantID:       tenantID,
			ReservationIDs: report.Unrepairable,
		}
	}

	return report, nil
}

func (s *serviceImpl) repairGroup(ctx context.Context, tenantID string, group dto.ViolationGroup, report *dto.AuditReport) error {
	members, err := s.loadReservations(ctx, tenantID, group.ReservationIDs)
	if err != nil {
		return err
	}

	if len(members) < 2 {
		return nil
	}

	// Keep policy: earliest created stays; on a tie the record still mapped
	// to an upstream booking wins.
	sort.Slice(members, func(i, j int) bool {
		if !members[i].CreatedAt.Equal(members[j].CreatedAt) {
			return members[i].CreatedAt.Before(members[j].CreatedAt)
		}

		if members[i].ExternalID.Valid != members[j].ExternalID.Valid {
			return members[i].ExternalID.Valid
		}

		return members[i].ID < members[j].ID
	})

	keeper := members[0]
	log.Info().
		Str("resourceId", group.ResourceID).
		Str("keeperId", keeper.ID).
		Int("groupSize", len(members)).
		Msg("repairing violation group")

	pool, err := s.resources.ListActive(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to list candidate resources: %w", err)
	}

	pool = excludeResource(pool, group.ResourceID)

	for _, member := range members[1:] {
		// A member may already be conflict-free: an earlier move in this pass
		// can dissolve the rest of the group.
		overlaps, err := s.allocator.Overlaps(ctx, tenantID, group.ResourceID, member.Window(), member.ID)
		if err != nil {
			return err
		}

		if !overlaps {
			continue
		}

		if err = s.reassign(ctx, tenantID, member, pool, report); err != nil {
			return err
		}
	}

	return nil
}

func (s *serviceImpl) reassign(ctx context.Context, tenantID string, member reservationModel.Reservation, pool []resourceModel.Resource, report *dto.AuditReport) error {
	fromResourceID := member.ResourceID.String

	persist := func(ctx context.Context, tx *sqlx.Tx, resourceID string) error {
		changes := map[string]any{
			reservationModel.FieldResourceID: resourceID,
			constant.FieldModifiedAt:         timezone.Now(),
			constant.FieldModifiedBy:         constant.SyncActorName,
		}

		return s.reservations.UpdateTx(ctx, tx, changes, shared.FilterByID(member.ID, reservationModel.FieldID, reservationModel.TableName)) //nolint:wrapcheck
	}

	toResourceID, err := s.allocator.Allocate(ctx, tenantID, pool, member.Window(), member.ID, persist)
	if err != nil {
		var exhausted *failure.AllocationExhausted
		if errors.As(err, &exhausted) {
			log.Error().
				Str("reservationId", member.ID).
				Str("resourceId", fromResourceID).
				Msg("no conflict-free placement exists for reservation")
			report.Unrepairable = append(report.Unrepairable, member.ID)

			return nil
		}

		return fmt.Errorf("failed to reassign reservation %s: %w", member.ID, err)
	}

	report.Moved = append(report.Moved, dto.MovedReservation{
		ReservationID:  member.ID,
		FromResourceID: fromResourceID,
		ToResourceID:   toResourceID,
	})
	s.publisher.ReservationReassigned(ctx, tenantID, member.ID, fromResourceID, toResourceID)

	return nil
}

func (s *serviceImpl) findViolationGroups(ctx context.Context, tenantID string) ([]dto.ViolationGroup, error) {
	pairs, err := s.reservations.FindViolationPairs(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for violations: %w", err)
	}

	byResource := map[string]map[string]bool{}
	order := []string{}

	for _, pair := range pairs {
		if byResource[pair.ResourceID] == nil {
			byResource[pair.ResourceID] = map[string]bool{}

			order = append(order, pair.ResourceID)
		}

		byResource[pair.ResourceID][pair.FirstID] = true
		byResource[pair.ResourceID][pair.SecondID] = true
	}

	groups := make([]dto.ViolationGroup, 0, len(order))

	for _, resourceID := range order {
		ids := make([]string, 0, len(byResource[resourceID]))
		for id := range byResource[resourceID] {
			ids = append(ids, id)
		}

		sort.Strings(ids)

		groups = append(groups, dto.ViolationGroup{ResourceID: resourceID, ReservationIDs: ids})
	}

	return groups, nil
}

func (s *serviceImpl) loadReservations(ctx context.Context, tenantID string, ids []string) ([]reservationModel.Reservation, error) {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: reservationModel.FieldTenantID, Value: tenantID, Operator: gDto.FilterOperatorEq, Table: reservationModel.TableName},
			gDto.Filter{Field: reservationModel.FieldID, Value: ids, Operator: gDto.FilterOperatorIn, Table: reservationModel.TableName},
		},
	}

	members, err := s.reservations.GetAll(ctx, gDto.QueryParams{}, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load violation group members: %w", err)
	}

	return members, nil
}

func excludeResource(pool []resourceModel.Resource, resourceID string) []resourceModel.Resource {
	filtered := make([]resourceModel.Resource, 0, len(pool))

	for _, candidate := range pool {
		if candidate.ID != resourceID {
			filtered = append(filtered, candidate)
		}
	}

	return filtered
}
