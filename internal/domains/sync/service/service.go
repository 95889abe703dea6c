package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"suitesync/config"
	"suitesync/infras/otel"
	allocationService "suitesync/internal/domains/allocation/service"
	customerRepo "suitesync/internal/domains/customer/repository"
	mappingModel "suitesync/internal/domains/mapping/model"
	mappingRepo "suitesync/internal/domains/mapping/repository"
	offeringRepo "suitesync/internal/domains/offering/repository"
	petRepo "suitesync/internal/domains/pet/repository"
	reservationModel "suitesync/internal/domains/reservation/model"
	reservationRepo "suitesync/internal/domains/reservation/repository"
	resourceRepo "suitesync/internal/domains/resource/repository"
	"suitesync/internal/domains/sync/model/dto"
	"suitesync/internal/events"
	"suitesync/internal/upstream"
	"suitesync/shared"
	"suitesync/shared/cache"
	"suitesync/shared/constant"
	"suitesync/shared/failure"
	gModel "suitesync/shared/model"
	"suitesync/shared/timezone"
	"suitesync/shared/validator"
)

const (
	CacheKeyLastSync = "sync:last"
)

// Sync reconciles upstream records into the local store. A reservation record
// walks Fetched -> {Mapped | Unmappable} -> {New -> Allocated -> Persisted |
// Existing -> Updated}; unmappable and unallocatable records are reported,
// never partially imported.
type Sync interface {
	SyncReservations(ctx context.Context, window reservationModel.Window) (dto.SyncReport, error)
	SyncAll(ctx context.Context, window reservationModel.Window) (dto.SyncAllReport, error)
}

type serviceImpl struct {
	upstream     upstream.Client
	mappings     mappingRepo.Mapping
	customers    customerRepo.Customer
	pets         petRepo.Pet
	offerings    offeringRepo.Offering
	reservations reservationRepo.Reservation
	resources    resourceRepo.Resource
	allocator    allocationService.Allocation
	publisher    events.Publisher
	cache        cache.RedisCache
	cfg          *config.Config
	otel         otel.Otel
}

func New(
	upstreamClient upstream.Client,
	mappings mappingRepo.Mapping,
	customers customerRepo.Customer,
	pets petRepo.Pet,
	offerings offeringRepo.Offering,
	reservations reservationRepo.Reservation,
	resources resourceRepo.Resource,
	allocator allocationService.Allocation,
	publisher events.Publisher,
	redisCache cache.RedisCache,
	cfg *config.Config,
	otl otel.Otel,
) Sync {
	return &serviceImpl{
		upstream:     upstreamClient,
		mappings:     mappings,
		customers:    customers,
		pets:         pets,
		offerings:    offerings,
		reservations: reservations,
		resources:    resources,
		allocator:    allocator,
		publisher:    publisher,
		cache:        redisCache,
		cfg:          cfg,
		otel:         otl,
	}
}

func (s *serviceImpl) SyncReservations(ctx context.Context, window reservationModel.Window) (report dto.SyncReport, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SyncReservations")
	defer scope.End()
	defer scope.TraceIfError(err)

	tenantID := s.cfg.App.TenantID

	report = dto.SyncReport{
		TenantID:    tenantID,
		WindowStart: window.Start.Format(constant.DateOnly),
		WindowEnd:   window.End.Format(constant.DateOnly),
		StartedAt:   timezone.Now(),
	}

	for _, chunk := range chunkWindow(window, s.cfg.Sync.ChunkDays) {
		records, fetchErr := s.upstream.FetchReservations(ctx, chunk.Start, chunk.End)
		if fetchErr != nil {
			chunkFailure := &failure.TransientFetchFailure{
				StartDate: chunk.Start.Format(constant.DateOnly),
				EndDate:   chunk.End.Format(constant.DateOnly),
				Attempts:  s.cfg.Upstream.MaxRetry,
				Err:       fetchErr,
			}

			log.Error().Err(chunkFailure).Msg("chunk fetch failed, continuing with remaining chunks")
			report.FailedChunks = append(report.FailedChunks, dto.FailedChunk{
				StartDate: chunkFailure.StartDate,
				EndDate:   chunkFailure.EndDate,
				Reason:    fetchErr.Error(),
			})

			continue
		}

		report.Fetched += len(records)

		for _, record := range records {
			if err = s.importReservation(ctx, tenantID, record, &report); err != nil {
				return report, err
			}
		}
	}

	report.FinishedAt = timezone.Now()

	s.saveLastSync(ctx, tenantID, report.FinishedAt)
	s.publisher.SyncCompleted(ctx, tenantID, report)

	log.Info().
		Str("tenantId", tenantID).
		Int("fetched", report.Fetched).
		Int("created", report.Created).
		Int("updated", report.Updated).
		Int("unchanged", report.Unchanged).
		Str("state", report.State()).
		Msg("reservation sync finished")

	return report, nil
}

// SyncAll imports every entity kind in dependency order so reservation
// references resolve: offerings, customers, pets, then reservations.
func (s *serviceImpl) SyncAll(ctx context.Context, window reservationModel.Window) (report dto.SyncAllReport, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SyncAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	if report.Offerings, err = s.syncOfferings(ctx); err != nil {
		return report, err
	}

	if report.Customers, err = s.syncCustomers(ctx); err != nil {
		return report, err
	}

	if report.Pets, err = s.syncPets(ctx); err != nil {
		return report, err
	}

	if report.Reservations, err = s.SyncReservations(ctx, window); err != nil {
		return report, err
	}

	return report, nil
}

// importReservation drives one upstream record through the state machine.
// Per-record problems land in the report; only store-level errors propagate.
func (s *serviceImpl) importReservation(ctx context.Context, tenantID string, record upstream.ReservationRecord, report *dto.SyncReport) error {
	if err := validator.Struct(record); err != nil {
		report.Invalid = append(report.Invalid, dto.InvalidRecord{ExternalID: record.ID, Reason: err.Error()})

		return nil
	}

	refs, err := s.resolveReferences(ctx, tenantID, record)
	if err != nil {
		var unmappable *failure.UnmappableReference
		if errors.As(err, &unmappable) {
			log.Warn().
				Str("externalId", record.ID).
				Str("missingKind", unmappable.Kind).
				Str("missingRefId", unmappable.ExternalID).
				Msg("skipping unmappable upstream reservation")
			report.Unmappable = append(report.Unmappable, dto.UnmappableRecord{
				ExternalID:   record.ID,
				MissingKind:  unmappable.Kind,
				MissingRefID: unmappable.ExternalID,
			})

			return nil
		}

		return err
	}

	existing, err := s.mappings.Resolve(ctx, tenantID, mappingModel.KindReservation, record.ID)
	if err != nil {
		return fmt.Errorf("failed to resolve reservation mapping: %w", err)
	}

	if existing.LocalID != constant.Empty {
		return s.updateExisting(ctx, existing.LocalID, record, report)
	}

	return s.createNew(ctx, tenantID, record, refs, report)
}

type localReferences struct {
	customerID string
	petID      string
	offeringID string
}

// resolveReferences maps the record's upstream owner, animal and type ids to
// local ids. A missing mapping surfaces as failure.UnmappableReference so the
// caller can report and skip the record.
func (s *serviceImpl) resolveReferences(ctx context.Context, tenantID string, record upstream.ReservationRecord) (localReferences, error) {
	refs := localReferences{}

	lookups := []struct {
		kind       string
		externalID string
		target     *string
	}{
		{mappingModel.KindCustomer, record.OwnerID, &refs.customerID},
		{mappingModel.KindPet, record.AnimalID, &refs.petID},
		{mappingModel.KindOffering, record.TypeID, &refs.offeringID},
	}

	for _, lookup := range lookups {
		mapping, err := s.mappings.Resolve(ctx, tenantID, lookup.kind, lookup.externalID)
		if err != nil {
			return refs, fmt.Errorf("failed to resolve %s mapping: %w", lookup.kind, err)
		}

		if mapping.LocalID == constant.Empty {
			return refs, &failure.UnmappableReference{
				Kind:       lookup.kind,
				ExternalID: lookup.externalID,
			}
		}

		*lookup.target = mapping.LocalID
	}

	return refs, nil
}

// updateExisting refreshes window, status, notes and check-in/out marks from
// upstream. The assigned resource is left alone so manual suite moves survive
// a resync; the auditor heals any conflict a window change introduces.
func (s *serviceImpl) updateExisting(ctx context.Context, localID string, record upstream.ReservationRecord, report *dto.SyncReport) error {
	current, err := s.reservations.Get(ctx, shared.FilterByID(localID, reservationModel.FieldID, reservationModel.TableName))
	if err != nil {
		return fmt.Errorf("failed to load reservation %s: %w", localID, err)
	}

	if current.ID == constant.Empty {
		return fmt.Errorf("reservation mapping points to missing local record %s", localID)
	}

	changes := map[string]any{}

	if !current.StartDate.Equal(record.StartDate) {
		changes[reservationModel.FieldStartDate] = record.StartDate
	}

	if !current.EndDate.Equal(record.EndDate) {
		changes[reservationModel.FieldEndDate] = record.EndDate
	}

	if status := DeriveStatus(record); current.Status != status {
		changes[reservationModel.FieldStatus] = status
	}

	if current.Notes != record.Notes {
		changes[reservationModel.FieldNotes] = record.Notes
	}

	if checkedIn := markerTime(record.CheckedInAt); !nullTimesEqual(current.CheckedInAt, checkedIn) {
		changes[reservationModel.FieldCheckedInAt] = checkedIn
	}

	if checkedOut := markerTime(record.CheckedOutAt); !nullTimesEqual(current.CheckedOutAt, checkedOut) {
		changes[reservationModel.FieldCheckedOutAt] = checkedOut
	}

	if len(changes) == 0 {
		report.Unchanged++

		return nil
	}

	changes[constant.FieldModifiedAt] = timezone.Now()
	changes[constant.FieldModifiedBy] = constant.SyncActorName

	if err := s.reservations.Update(ctx, changes, shared.FilterByID(localID, reservationModel.FieldID, reservationModel.TableName)); err != nil {
		return fmt.Errorf("failed to update reservation %s: %w", localID, err)
	}

	report.Updated++

	return nil
}

func (s *serviceImpl) createNew(ctx context.Context, tenantID string, record upstream.ReservationRecord, refs localReferences, report *dto.SyncReport) error {
	reservation := s.newReservation(tenantID, record, refs)
	mapping := s.newMapping(tenantID, mappingModel.KindReservation, record.ID, reservation.ID)

	persist := func(ctx context.Context, tx *sqlx.Tx, resourceID string) error {
		if resourceID != constant.Empty {
			reservation.ResourceID.String = resourceID
			reservation.ResourceID.Valid = true
		}

		if err := s.reservations.InsertTx(ctx, tx, reservation); err != nil {
			return err //nolint:wrapcheck
		}

		return s.mappings.InsertTx(ctx, tx, mapping) //nolint:wrapcheck
	}

	// Inactive records (already cancelled or completed upstream) never occupy
	// a slot, so they are persisted without a resource.
	if !reservation.IsActive() {
		err := s.withImportTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
			return persist(ctx, tx, constant.Empty)
		})
		if err != nil {
			return err
		}

		report.Created++

		return nil
	}

	pool, err := s.resources.ListActive(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to list candidate resources: %w", err)
	}

	resourceID, err := s.allocator.Allocate(ctx, tenantID, pool, reservation.Window(), constant.Empty, persist)
	if err != nil {
		var exhausted *failure.AllocationExhausted
		if errors.As(err, &exhausted) {
			log.Warn().
				Str("externalId", record.ID).
				Int("poolSize", exhausted.PoolSize).
				Msg("no conflict-free resource, deferring record")
			report.Deferred = append(report.Deferred, dto.DeferredRecord{
				ExternalID: record.ID,
				StartDate:  exhausted.StartDate,
				EndDate:    exhausted.EndDate,
				PoolSize:   exhausted.PoolSize,
			})

			return nil
		}

		return fmt.Errorf("failed to allocate reservation for upstream record %s: %w", record.ID, err)
	}

	s.publisher.ReservationAllocated(ctx, tenantID, reservation.ID, resourceID)
	report.Created++

	return nil
}

func (s *serviceImpl) newReservation(tenantID string, record upstream.ReservationRecord, refs localReferences) reservationModel.Reservation {
	now := timezone.Now()

	reservation := reservationModel.Reservation{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		CustomerID:   refs.customerID,
		PetID:        refs.petID,
		OfferingID:   refs.offeringID,
		StartDate:    record.StartDate,
		EndDate:      record.EndDate,
		Status:       DeriveStatus(record),
		CheckedInAt:  markerTime(record.CheckedInAt),
		CheckedOutAt: markerTime(record.CheckedOutAt),
		Notes:        record.Notes,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  constant.SyncActorName,
			ModifiedBy: constant.SyncActorName,
		},
	}

	reservation.ExternalID.String = record.ID
	reservation.ExternalID.Valid = true

	return reservation
}

func (s *serviceImpl) newMapping(tenantID, kind, externalID, localID string) mappingModel.Mapping {
	now := timezone.Now()

	return mappingModel.Mapping{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		EntityKind: kind,
		ExternalID: externalID,
		LocalID:    localID,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  constant.SyncActorName,
			ModifiedBy: constant.SyncActorName,
		},
	}
}

func (s *serviceImpl) saveLastSync(ctx context.Context, tenantID string, finishedAt time.Time) {
	key := shared.BuildCacheKey(CacheKeyLastSync, tenantID)

	if err := s.cache.Save(ctx, key, finishedAt.Format(constant.DateFormat), 0); err != nil {
		log.Error().Err(err).Msg("failed to record last sync time")
	}
}

// chunkWindow splits the sync window into provider-sized date chunks. Each
// chunk is fetched and committed independently, so one failing chunk never
// rolls back the progress of the others.
func chunkWindow(window reservationModel.Window, chunkDays int) []reservationModel.Window {
	if chunkDays <= 0 {
		return []reservationModel.Window{window}
	}

	chunkLength := time.Duration(chunkDays) * 24 * time.Hour
	chunks := []reservationModel.Window{}

	for start := window.Start; start.Before(window.End); start = start.Add(chunkLength) {
		end := start.Add(chunkLength)
		if end.After(window.End) {
			end = window.End
		}

		chunks = append(chunks, reservationModel.Window{Start: start, End: end})
	}

	return chunks
}
