package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"suitesync/config"
	"suitesync/infras/otel/mocks"
	allocationMocks "suitesync/internal/domains/allocation/mocks"
	auditService "suitesync/internal/domains/audit/service"
	petMocks "suitesync/internal/domains/pet/mocks"
	petModel "suitesync/internal/domains/pet/model"
	reservationMocks "suitesync/internal/domains/reservation/mocks"
	reservationModel "suitesync/internal/domains/reservation/model"
	resourceMocks "suitesync/internal/domains/resource/mocks"
	resourceModel "suitesync/internal/domains/resource/model"
	eventMocks "suitesync/internal/events/mocks"
	"suitesync/shared/failure"
	gModel "suitesync/shared/model"
)

const testTenant = "tenant-1"

type auditFixture struct {
	reservations *reservationMocks.MockReservation
	resources    *resourceMocks.MockResource
	pets         *petMocks.MockPet
	allocator    *allocationMocks.MockAllocation
	publisher    *eventMocks.MockPublisher
	service      auditService.Audit
}

func newAuditFixture(ctrl *gomock.Controller) *auditFixture {
	cfg := &config.Config{}
	cfg.App.TenantID = testTenant

	f := &auditFixture{
		reservations: reservationMocks.NewMockReservation(ctrl),
		resources:    resourceMocks.NewMockResource(ctrl),
		pets:         petMocks.NewMockPet(ctrl),
		allocator:    allocationMocks.NewMockAllocation(ctrl),
		publisher:    eventMocks.NewMockPublisher(ctrl),
	}

	f.service = auditService.New(f.reservations, f.resources, f.pets, f.allocator, f.publisher, cfg, mocks.NewOtel())

	return f
}

func activeReservation(id, resourceID string, createdAt time.Time) reservationModel.Reservation {
	reservation := reservationModel.Reservation{
		ID:        id,
		TenantID:  testTenant,
		StartDate: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC),
		Status:    reservationModel.StatusConfirmed,
		Metadata:  gModel.Metadata{CreatedAt: createdAt},
	}

	if resourceID != "" {
		reservation.ResourceID.String = resourceID
		reservation.ResourceID.Valid = true
	}

	return reservation
}

func TestAudit_Validate(t *testing.T) {
	t.Run("clean store reports no violations", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newAuditFixture(ctrl)

		f.reservations.EXPECT().FindViolationPairs(gomock.Any(), testTenant).Return(nil, nil)

		report, err := f.service.Validate(context.Background())

		require.NoError(t, err)
		assert.True(t, report.Clean())
		assert.Empty(t, report.Violations)
	})

	t.Run("pairs on one resource collapse into a single group", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newAuditFixture(ctrl)

		pairs := []reservationModel.ViolationPair{
			{ResourceID: "res-a", FirstID: "resv-1", SecondID: "resv-2"},
			{ResourceID: "res-a", FirstID: "resv-1", SecondID: "resv-3"},
			{ResourceID: "res-a", FirstID: "resv-2", SecondID: "resv-3"},
		}
		f.reservations.EXPECT().FindViolationPairs(gomock.Any(), testTenant).Return(pairs, nil)

		report, err := f.service.Validate(context.Background())

		require.NoError(t, err)
		require.Len(t, report.Violations, 1)
		assert.Equal(t, "res-a", report.Violations[0].ResourceID)
		assert.Equal(t, []string{"resv-1", "resv-2", "resv-3"}, report.Violations[0].ReservationIDs)
		assert.Equal(t, 1, report.Remaining)
		assert.False(t, report.Clean())
	})
}

func TestAudit_Repair(t *testing.T) {
	base := time.Date(2026, time.February, 1, 10, 0, 0, 0, time.UTC)

	t.Run("keeps the earliest reservation and moves the newer one", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newAuditFixture(ctrl)

		keeper := activeReservation("resv-1", "res-a", base)
		mover := activeReservation("resv-2", "res-a", base.Add(time.Hour))

		pairs := []reservationModel.ViolationPair{{ResourceID: "res-a", FirstID: "resv-1", SecondID: "resv-2"}}
		f.reservations.EXPECT().FindViolationPairs(gomock.Any(), testTenant).Return(pairs, nil)

		f.reservations.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]reservationModel.Reservation{mover, keeper}, nil)

		pool := []resourceModel.Resource{
			{ID: "res-a", Name: "Suite A"},
			{ID: "res-b", Name: "Suite B"},
		}
		f.resources.EXPECT().ListActive(gomock.Any(), testTenant).Return(pool, nil)

		f.allocator.EXPECT().
			Overlaps(gomock.Any(), testTenant, "res-a", mover.Window(), "resv-2").
			Return(true, nil)

		f.allocator.EXPECT().
			Allocate(gomock.Any(), testTenant, gomock.Any(), mover.Window(), "resv-2", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, candidates []resourceModel.Resource, _ reservationModel.Window, _ string, _ any) (string, error) {
				require.Len(t, candidates, 1, "the violating resource must be excluded from the pool")
				assert.Equal(t, "res-b", candidates[0].ID)

				return "res-b", nil
			})

		f.publisher.EXPECT().ReservationReassigned(gomock.Any(), testTenant, "resv-2", "res-a", "res-b")

		f.reservations.EXPECT().FindViolationPairs(gomock.Any(), testTenant).Return(nil, nil)

		report, err := f.service.Repair(context.Background())

		require.NoError(t, err)
		require.Len(t, report.Moved, 1)
		assert.Equal(t, "resv-2", report.Moved[0].ReservationID)
		assert.Equal(t, "res-a", report.Moved[0].FromResourceID)
		assert.Equal(t, "res-b", report.Moved[0].ToResourceID)
		assert.True(t, report.Clean())
	})

	t.Run("skips a member an earlier move already freed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newAuditFixture(ctrl)

		keeper := activeReservation("resv-1", "res-a", base)
		mover := activeReservation("resv-2", "res-a", base.Add(time.Hour))

		pairs := []reservationModel.ViolationPair{{ResourceID: "res-a", FirstID: "resv-1", SecondID: "resv-2"}}
		f.reservations.EXPECT().FindViolationPairs(gomock.Any(), testTenant).Return(pairs, nil)
		f.reservations.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]reservationModel.Reservation{keeper, mover}, nil)
		f.resources.EXPECT().ListActive(gomock.Any(), testTenant).Return([]resourceModel.Resource{{ID: "res-b"}}, nil)

		f.allocator.EXPECT().
			Overlaps(gomock.Any(), testTenant, "res-a", mover.Window(), "resv-2").
			Return(false, nil)

		f.reservations.EXPECT().FindViolationPairs(gomock.Any(), testTenant).Return(nil, nil)

		report, err := f.service.Repair(context.Background())

		require.NoError(t, err)
		assert.Empty(t, report.Moved)
		assert.True(t, report.Clean())
	})

	t.Run("reports unrepairable when no conflict-free placement exists", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newAuditFixture(ctrl)

		keeper := activeReservation("resv-1", "res-a", base)
		mover := activeReservation("resv-2", "res-a", base.Add(time.Hour))

		pairs := []reservationModel.ViolationPair{{ResourceID: "res-a", FirstID: "resv-1", SecondID: "resv-2"}}
		f.reservations.EXPECT().FindViolationPairs(gomock.Any(), testTenant).Return(pairs, nil)
		f.reservations.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]reservationModel.Reservation{keeper, mover}, nil)
		f.resources.EXPECT().ListActive(gomock.Any(), testTenant).Return([]resourceModel.Resource{{ID: "res-b"}}, nil)

		f.allocator.EXPECT().
			Overlaps(gomock.Any(), testTenant, "res-a", mover.Window(), "resv-2").
			Return(true, nil)
		f.allocator.EXPECT().
			Allocate(gomock.Any(), testTenant, gomock.Any(), mover.Window(), "resv-2", gomock.Any()).
			Return("", &failure.AllocationExhausted{TenantID: testTenant, PoolSize: 1})

		f.reservations.EXPECT().FindViolationPairs(gomock.Any(), testTenant).Return(pairs, nil)

		report, err := f.service.Repair(context.Background())

		var unrepairable *failure.ConsistencyUnrepairable
		require.ErrorAs(t, err, &unrepairable)
		assert.Equal(t, []string{"resv-2"}, report.Unrepairable)
		assert.Equal(t, 1, report.Remaining)
		assert.False(t, report.Clean())
	})
}

func TestAudit_Rebalance(t *testing.T) {
	base := time.Date(2026, time.February, 1, 10, 0, 0, 0, time.UTC)

	t.Run("moves a large pet onto a premium suite", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newAuditFixture(ctrl)

		reservation := activeReservation("resv-1", "res-std", base)
		reservation.PetID = "pet-1"

		f.reservations.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]reservationModel.Reservation{reservation}, nil)

		f.pets.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]petModel.Pet{{ID: "pet-1", SizeClass: petModel.SizeClassLarge}}, nil)

		premiumPool := []resourceModel.Resource{{ID: "res-prem", Category: resourceModel.CategoryPremium}}
		f.resources.EXPECT().ListActive(gomock.Any(), testTenant, resourceModel.CategoryPremium).Return(premiumPool, nil)

		f.allocator.EXPECT().
			Allocate(gomock.Any(), testTenant, premiumPool, reservation.Window(), "resv-1", gomock.Any()).
			Return("res-prem", nil)

		f.publisher.EXPECT().ReservationReassigned(gomock.Any(), testTenant, "resv-1", "res-std", "res-prem")

		report, err := f.service.Rebalance(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, report.Total)
		assert.Zero(t, report.Kept)
		require.Len(t, report.Moved, 1)
		assert.Equal(t, resourceModel.CategoryPremium, report.Moved[0].Category)
	})

	t.Run("keeps a correctly placed conflict-free reservation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newAuditFixture(ctrl)

		reservation := activeReservation("resv-1", "res-std", base)
		reservation.PetID = "pet-1"

		f.reservations.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]reservationModel.Reservation{reservation}, nil)

		f.pets.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]petModel.Pet{{ID: "pet-1", SizeClass: petModel.SizeClassSmall}}, nil)

		standardPool := []resourceModel.Resource{{ID: "res-std", Category: resourceModel.CategoryStandard}}
		f.resources.EXPECT().ListActive(gomock.Any(), testTenant, resourceModel.CategoryStandard).Return(standardPool, nil)

		f.allocator.EXPECT().
			Overlaps(gomock.Any(), testTenant, "res-std", reservation.Window(), "resv-1").
			Return(false, nil)

		report, err := f.service.Rebalance(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, report.Kept)
		assert.Empty(t, report.Moved)
		assert.Empty(t, report.Deferred)
	})

	t.Run("defers when the target category is full", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newAuditFixture(ctrl)

		reservation := activeReservation("resv-1", "res-std", base)
		reservation.PetID = "pet-1"

		f.reservations.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]reservationModel.Reservation{reservation}, nil)

		f.pets.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]petModel.Pet{{ID: "pet-1", SizeClass: petModel.SizeClassLarge}}, nil)

		premiumPool := []resourceModel.Resource{{ID: "res-prem", Category: resourceModel.CategoryPremium}}
		f.resources.EXPECT().ListActive(gomock.Any(), testTenant, resourceModel.CategoryPremium).Return(premiumPool, nil)

		f.allocator.EXPECT().
			Allocate(gomock.Any(), testTenant, premiumPool, reservation.Window(), "resv-1", gomock.Any()).
			Return("", &failure.AllocationExhausted{TenantID: testTenant, PoolSize: 1})

		report, err := f.service.Rebalance(context.Background())

		require.NoError(t, err)
		require.Len(t, report.Deferred, 1)
		assert.Equal(t, "resv-1", report.Deferred[0].ReservationID)
		assert.Zero(t, report.Kept)
	})
}
