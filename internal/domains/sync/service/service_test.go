package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"suitesync/config"
	"suitesync/infras/otel/mocks"
	allocationMocks "suitesync/internal/domains/allocation/mocks"
	allocationService "suitesync/internal/domains/allocation/service"
	customerMocks "suitesync/internal/domains/customer/mocks"
	mappingMocks "suitesync/internal/domains/mapping/mocks"
	mappingModel "suitesync/internal/domains/mapping/model"
	offeringMocks "suitesync/internal/domains/offering/mocks"
	petMocks "suitesync/internal/domains/pet/mocks"
	reservationMocks "suitesync/internal/domains/reservation/mocks"
	reservationModel "suitesync/internal/domains/reservation/model"
	resourceMocks "suitesync/internal/domains/resource/mocks"
	resourceModel "suitesync/internal/domains/resource/model"
	syncService "suitesync/internal/domains/sync/service"
	eventMocks "suitesync/internal/events/mocks"
	"suitesync/internal/upstream"
	upstreamMocks "suitesync/internal/upstream/mocks"
	cacheMocks "suitesync/shared/cache/mocks"
	"suitesync/shared/failure"
)

const testTenant = "tenant-1"

type syncFixture struct {
	upstream     *upstreamMocks.MockClient
	mappings     *mappingMocks.MockMapping
	customers    *customerMocks.MockCustomer
	pets         *petMocks.MockPet
	offerings    *offeringMocks.MockOffering
	reservations *reservationMocks.MockReservation
	resources    *resourceMocks.MockResource
	allocator    *allocationMocks.MockAllocation
	publisher    *eventMocks.MockPublisher
	cache        *cacheMocks.MockRedisCache
	cfg          *config.Config
	service      syncService.Sync
}

func newSyncFixture(ctrl *gomock.Controller) *syncFixture {
	cfg := &config.Config{}
	cfg.App.TenantID = testTenant

	f := &syncFixture{
		upstream:     upstreamMocks.NewMockClient(ctrl),
		mappings:     mappingMocks.NewMockMapping(ctrl),
		customers:    customerMocks.NewMockCustomer(ctrl),
		pets:         petMocks.NewMockPet(ctrl),
		offerings:    offeringMocks.NewMockOffering(ctrl),
		reservations: reservationMocks.NewMockReservation(ctrl),
		resources:    resourceMocks.NewMockResource(ctrl),
		allocator:    allocationMocks.NewMockAllocation(ctrl),
		publisher:    eventMocks.NewMockPublisher(ctrl),
		cache:        cacheMocks.NewMockRedisCache(ctrl),
		cfg:          cfg,
	}

	f.service = syncService.New(
		f.upstream, f.mappings, f.customers, f.pets, f.offerings,
		f.reservations, f.resources, f.allocator, f.publisher, f.cache,
		f.cfg, mocks.NewOtel(),
	)

	return f
}

// expectRunBookkeeping covers the tail of every sync run: last-sync cache
// write and completion event.
func (f *syncFixture) expectRunBookkeeping() {
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), 0).Return(nil)
	f.publisher.EXPECT().SyncCompleted(gomock.Any(), testTenant, gomock.Any())
}

func (f *syncFixture) expectResolvedReferences(record upstream.ReservationRecord) {
	f.mappings.EXPECT().
		Resolve(gomock.Any(), testTenant, mappingModel.KindCustomer, record.OwnerID).
		Return(mappingModel.Mapping{LocalID: "cust-1"}, nil)
	f.mappings.EXPECT().
		Resolve(gomock.Any(), testTenant, mappingModel.KindPet, record.AnimalID).
		Return(mappingModel.Mapping{LocalID: "pet-1"}, nil)
	f.mappings.EXPECT().
		Resolve(gomock.Any(), testTenant, mappingModel.KindOffering, record.TypeID).
		Return(mappingModel.Mapping{LocalID: "off-1"}, nil)
}

func syncWindow() reservationModel.Window {
	return reservationModel.Window{
		Start: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
	}
}

func confirmedRecord() upstream.ReservationRecord {
	confirmed := time.Date(2026, time.February, 20, 9, 0, 0, 0, time.UTC)

	return upstream.ReservationRecord{
		ID:          "ext-100",
		OwnerID:     "owner-1",
		AnimalID:    "animal-1",
		TypeID:      "type-1",
		StartDate:   time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC),
		ConfirmedAt: &confirmed,
		Notes:       "window seat please",
	}
}

func TestSync_SyncReservations_UnchangedRecordIsNoOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newSyncFixture(ctrl)
	record := confirmedRecord()

	f.upstream.EXPECT().
		FetchReservations(gomock.Any(), syncWindow().Start, syncWindow().End).
		Return([]upstream.ReservationRecord{record}, nil)

	f.expectResolvedReferences(record)
	f.mappings.EXPECT().
		Resolve(gomock.Any(), testTenant, mappingModel.KindReservation, record.ID).
		Return(mappingModel.Mapping{LocalID: "resv-1"}, nil)

	current := reservationModel.Reservation{
		ID:        "resv-1",
		TenantID:  testTenant,
		StartDate: record.StartDate,
		EndDate:   record.EndDate,
		Status:    reservationModel.StatusConfirmed,
		Notes:     record.Notes,
	}
	f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)

	f.expectRunBookkeeping()

	report, err := f.service.SyncReservations(context.Background(), syncWindow())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Fetched)
	assert.Equal(t, 1, report.Unchanged)
	assert.Zero(t, report.Created)
	assert.Zero(t, report.Updated)
	assert.Equal(t, "clean", report.State())
}

func TestSync_SyncReservations_ExtendedStayUpdatesWindowOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newSyncFixture(ctrl)
	record := confirmedRecord()

	f.upstream.EXPECT().
		FetchReservations(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]upstream.ReservationRecord{record}, nil)

	f.expectResolvedReferences(record)
	f.mappings.EXPECT().
		Resolve(gomock.Any(), testTenant, mappingModel.KindReservation, record.ID).
		Return(mappingModel.Mapping{LocalID: "resv-1"}, nil)

	current := reservationModel.Reservation{
		ID:        "resv-1",
		TenantID:  testTenant,
		StartDate: record.StartDate,
		EndDate:   record.EndDate.AddDate(0, 0, -2),
		Status:    reservationModel.StatusConfirmed,
		Notes:     record.Notes,
	}
	current.ResourceID.String = "res-a"
	current.ResourceID.Valid = true

	f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)
	f.reservations.EXPECT().
		Update(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, changes map[string]any, _ any) error {
			assert.Contains(t, changes, reservationModel.FieldEndDate)
			assert.NotContains(t, changes, reservationModel.FieldResourceID, "resync must not touch the suite assignment")
			assert.NotContains(t, changes, reservationModel.FieldStartDate)

			return nil
		})

	f.expectRunBookkeeping()

	report, err := f.service.SyncReservations(context.Background(), syncWindow())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Zero(t, report.Unchanged)
}

func TestSync_SyncReservations_UnmappableOwnerIsReportedAndSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newSyncFixture(ctrl)
	record := confirmedRecord()

	f.upstream.EXPECT().
		FetchReservations(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]upstream.ReservationRecord{record}, nil)

	f.mappings.EXPECT().
		Resolve(gomock.Any(), testTenant, mappingModel.KindCustomer, record.OwnerID).
		Return(mappingModel.Mapping{}, nil)

	f.expectRunBookkeeping()

	report, err := f.service.SyncReservations(context.Background(), syncWindow())

	require.NoError(t, err)
	require.Len(t, report.Unmappable, 1)
	assert.Equal(t, record.ID, report.Unmappable[0].ExternalID)
	assert.Equal(t, mappingModel.KindCustomer, report.Unmappable[0].MissingKind)
	assert.Equal(t, record.OwnerID, report.Unmappable[0].MissingRefID)
	assert.Zero(t, report.Created)
	assert.Equal(t, "degraded", report.State())
}

func TestSync_SyncReservations_NewRecordAllocatedAndPersisted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newSyncFixture(ctrl)
	record := confirmedRecord()

	f.upstream.EXPECT().
		FetchReservations(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]upstream.ReservationRecord{record}, nil)

	f.expectResolvedReferences(record)
	f.mappings.EXPECT().
		Resolve(gomock.Any(), testTenant, mappingModel.KindReservation, record.ID).
		Return(mappingModel.Mapping{}, nil)

	pool := []resourceModel.Resource{{ID: "res-a"}, {ID: "res-b"}}
	f.resources.EXPECT().ListActive(gomock.Any(), testTenant).Return(pool, nil)

	f.allocator.EXPECT().
		Allocate(gomock.Any(), testTenant, pool, gomock.Any(), "", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ []resourceModel.Resource, window reservationModel.Window, _ string, _ allocationService.PersistFunc) (string, error) {
			assert.True(t, window.Start.Equal(record.StartDate))
			assert.True(t, window.End.Equal(record.EndDate))

			return "res-a", nil
		})

	f.publisher.EXPECT().ReservationAllocated(gomock.Any(), testTenant, gomock.Any(), "res-a")
	f.expectRunBookkeeping()

	report, err := f.service.SyncReservations(context.Background(), syncWindow())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, "clean", report.State())
}

func TestSync_SyncReservations_ExhaustedPoolDefersRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newSyncFixture(ctrl)
	record := confirmedRecord()

	f.upstream.EXPECT().
		FetchReservations(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]upstream.ReservationRecord{record}, nil)

	f.expectResolvedReferences(record)
	f.mappings.EXPECT().
		Resolve(gomock.Any(), testTenant, mappingModel.KindReservation, record.ID).
		Return(mappingModel.Mapping{}, nil)

	pool := []resourceModel.Resource{{ID: "res-a"}}
	f.resources.EXPECT().ListActive(gomock.Any(), testTenant).Return(pool, nil)

	f.allocator.EXPECT().
		Allocate(gomock.Any(), testTenant, pool, gomock.Any(), "", gomock.Any()).
		Return("", &failure.AllocationExhausted{TenantID: testTenant, PoolSize: 1, StartDate: "2026-03-02", EndDate: "2026-03-06"})

	f.expectRunBookkeeping()

	report, err := f.service.SyncReservations(context.Background(), syncWindow())

	require.NoError(t, err)
	require.Len(t, report.Deferred, 1)
	assert.Equal(t, record.ID, report.Deferred[0].ExternalID)
	assert.Equal(t, 1, report.Deferred[0].PoolSize)
	assert.Zero(t, report.Created)
	assert.Equal(t, "degraded", report.State())
}

func TestSync_SyncReservations_CancelledRecordPersistedWithoutResource(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newSyncFixture(ctrl)

	record := confirmedRecord()
	cancelled := time.Date(2026, time.February, 25, 12, 0, 0, 0, time.UTC)
	record.CancelledAt = &cancelled

	f.upstream.EXPECT().
		FetchReservations(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]upstream.ReservationRecord{record}, nil)

	f.expectResolvedReferences(record)
	f.mappings.EXPECT().
		Resolve(gomock.Any(), testTenant, mappingModel.KindReservation, record.ID).
		Return(mappingModel.Mapping{}, nil)

	rawDB, dbMock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { rawDB.Close() })

	db := sqlx.NewDb(rawDB, "postgres")
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	f.reservations.EXPECT().
		BeginTx(gomock.Any()).
		DoAndReturn(func(context.Context) (*sqlx.Tx, error) { return db.Beginx() })

	f.reservations.EXPECT().
		InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, reservation reservationModel.Reservation) error {
			assert.Equal(t, reservationModel.StatusCancelled, reservation.Status)
			assert.False(t, reservation.ResourceID.Valid, "cancelled import must not occupy a suite")
			assert.Equal(t, record.ID, reservation.ExternalID.String)

			return nil
		})
	f.mappings.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	f.expectRunBookkeeping()

	report, err := f.service.SyncReservations(context.Background(), syncWindow())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestSync_SyncReservations_FailedChunkDoesNotAbortRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newSyncFixture(ctrl)
	f.cfg.Sync.ChunkDays = 5

	window := syncWindow()
	chunkEnd := window.Start.Add(5 * 24 * time.Hour)

	f.upstream.EXPECT().
		FetchReservations(gomock.Any(), window.Start, chunkEnd).
		Return(nil, errors.New("upstream returned status 502"))
	f.upstream.EXPECT().
		FetchReservations(gomock.Any(), chunkEnd, window.End).
		Return([]upstream.ReservationRecord{}, nil)

	f.expectRunBookkeeping()

	report, err := f.service.SyncReservations(context.Background(), window)

	require.NoError(t, err)
	require.Len(t, report.FailedChunks, 1)
	assert.Equal(t, "2026-03-01", report.FailedChunks[0].StartDate)
	assert.Equal(t, "degraded", report.State())
}

func TestSync_SyncReservations_InvalidRecordIsReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newSyncFixture(ctrl)

	record := confirmedRecord()
	record.EndDate = record.StartDate.AddDate(0, 0, -1)

	f.upstream.EXPECT().
		FetchReservations(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]upstream.ReservationRecord{record}, nil)

	f.expectRunBookkeeping()

	report, err := f.service.SyncReservations(context.Background(), syncWindow())

	require.NoError(t, err)
	require.Len(t, report.Invalid, 1)
	assert.Equal(t, record.ID, report.Invalid[0].ExternalID)
}
