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
	allocationService "suitesync/internal/domains/allocation/service"
	reservationMocks "suitesync/internal/domains/reservation/mocks"
	reservationModel "suitesync/internal/domains/reservation/model"
	resourceMocks "suitesync/internal/domains/resource/mocks"
	resourceModel "suitesync/internal/domains/resource/model"
	"suitesync/shared/failure"
	lockMocks "suitesync/shared/lock/mocks"
)

func testWindow() reservationModel.Window {
	return reservationModel.Window{
		Start: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC),
	}
}

func testPool() []resourceModel.Resource {
	return []resourceModel.Resource{
		{ID: "res-a", TenantID: "tenant-1", Name: "Suite A", Category: resourceModel.CategoryStandard, Active: true},
		{ID: "res-b", TenantID: "tenant-1", Name: "Suite B", Category: resourceModel.CategoryStandard, Active: true},
	}
}

type allocationFixture struct {
	reservations *reservationMocks.MockReservation
	resources    *resourceMocks.MockResource
	locker       *lockMocks.MockLocker
	db           *sqlx.DB
	dbMock       sqlmock.Sqlmock
	service      allocationService.Allocation
}

func newAllocationFixture(t *testing.T, ctrl *gomock.Controller) *allocationFixture {
	t.Helper()

	rawDB, dbMock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { rawDB.Close() })

	cfg := &config.Config{}
	cfg.Sync.LockTTLSeconds = 5

	fixture := &allocationFixture{
		reservations: reservationMocks.NewMockReservation(ctrl),
		resources:    resourceMocks.NewMockResource(ctrl),
		locker:       lockMocks.NewMockLocker(ctrl),
		db:           sqlx.NewDb(rawDB, "postgres"),
		dbMock:       dbMock,
	}

	fixture.service = allocationService.New(fixture.reservations, fixture.resources, fixture.locker, cfg, mocks.NewOtel())

	return fixture
}

func (f *allocationFixture) expectTx() {
	f.reservations.EXPECT().
		BeginTx(gomock.Any()).
		DoAndReturn(func(context.Context) (*sqlx.Tx, error) {
			return f.db.Beginx()
		})
}

func TestAllocation_Allocate(t *testing.T) {
	window := testWindow()

	t.Run("assigns the first free resource in pool order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newAllocationFixture(t, ctrl)

		f.dbMock.ExpectBegin()
		f.dbMock.ExpectCommit()

		f.locker.EXPECT().Acquire(gomock.Any(), "lock:resource:tenant-1:res-a", 5*time.Second).Return(nil)
		f.expectTx()
		f.resources.EXPECT().LockTx(gomock.Any(), gomock.Any(), "res-a").Return(nil)
		f.reservations.EXPECT().CountOverlappingTx(gomock.Any(), gomock.Any(), "tenant-1", "res-a", window, "").Return(0, nil)
		f.locker.EXPECT().Release(gomock.Any(), "lock:resource:tenant-1:res-a").Return(nil)

		var persistedOn string
		persist := func(_ context.Context, _ *sqlx.Tx, resourceID string) error {
			persistedOn = resourceID

			return nil
		}

		resourceID, err := f.service.Allocate(context.Background(), "tenant-1", testPool(), window, "", persist)

		assert.NoError(t, err)
		assert.Equal(t, "res-a", resourceID)
		assert.Equal(t, "res-a", persistedOn)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})

	t.Run("skips an occupied resource and takes the next", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newAllocationFixture(t, ctrl)

		f.dbMock.ExpectBegin()
		f.dbMock.ExpectRollback()
		f.dbMock.ExpectBegin()
		f.dbMock.ExpectCommit()

		f.locker.EXPECT().Acquire(gomock.Any(), "lock:resource:tenant-1:res-a", gomock.Any()).Return(nil)
		f.expectTx()
		f.resources.EXPECT().LockTx(gomock.Any(), gomock.Any(), "res-a").Return(nil)
		f.reservations.EXPECT().CountOverlappingTx(gomock.Any(), gomock.Any(), "tenant-1", "res-a", window, "").Return(1, nil)
		f.locker.EXPECT().Release(gomock.Any(), "lock:resource:tenant-1:res-a").Return(nil)

		f.locker.EXPECT().Acquire(gomock.Any(), "lock:resource:tenant-1:res-b", gomock.Any()).Return(nil)
		f.expectTx()
		f.resources.EXPECT().LockTx(gomock.Any(), gomock.Any(), "res-b").Return(nil)
		f.reservations.EXPECT().CountOverlappingTx(gomock.Any(), gomock.Any(), "tenant-1", "res-b", window, "").Return(0, nil)
		f.locker.EXPECT().Release(gomock.Any(), "lock:resource:tenant-1:res-b").Return(nil)

		resourceID, err := f.service.Allocate(context.Background(), "tenant-1", testPool(), window, "",
			func(context.Context, *sqlx.Tx, string) error { return nil })

		assert.NoError(t, err)
		assert.Equal(t, "res-b", resourceID)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})

	t.Run("returns AllocationExhausted when every candidate conflicts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newAllocationFixture(t, ctrl)

		f.dbMock.ExpectBegin()
		f.dbMock.ExpectRollback()
		f.dbMock.ExpectBegin()
		f.dbMock.ExpectRollback()

		f.locker.EXPECT().Acquire(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
		f.expectTx()
		f.expectTx()
		f.resources.EXPECT().LockTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
		f.reservations.EXPECT().CountOverlappingTx(gomock.Any(), gomock.Any(), "tenant-1", gomock.Any(), window, "").Return(1, nil).Times(2)
		f.locker.EXPECT().Release(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		_, err := f.service.Allocate(context.Background(), "tenant-1", testPool(), window, "",
			func(context.Context, *sqlx.Tx, string) error { return nil })

		var exhausted *failure.AllocationExhausted
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, 2, exhausted.PoolSize)
		assert.Equal(t, "tenant-1", exhausted.TenantID)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})

	t.Run("excludes the reservation being moved from the conflict check", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newAllocationFixture(t, ctrl)

		f.dbMock.ExpectBegin()
		f.dbMock.ExpectCommit()

		f.locker.EXPECT().Acquire(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.expectTx()
		f.resources.EXPECT().LockTx(gomock.Any(), gomock.Any(), "res-a").Return(nil)
		f.reservations.EXPECT().CountOverlappingTx(gomock.Any(), gomock.Any(), "tenant-1", "res-a", window, "resv-42").Return(0, nil)
		f.locker.EXPECT().Release(gomock.Any(), gomock.Any()).Return(nil)

		resourceID, err := f.service.Allocate(context.Background(), "tenant-1", testPool(), window, "resv-42",
			func(context.Context, *sqlx.Tx, string) error { return nil })

		assert.NoError(t, err)
		assert.Equal(t, "res-a", resourceID)
	})

	t.Run("rejects an inverted window", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newAllocationFixture(t, ctrl)

		inverted := reservationModel.Window{Start: window.End, End: window.Start}

		_, err := f.service.Allocate(context.Background(), "tenant-1", testPool(), inverted, "",
			func(context.Context, *sqlx.Tx, string) error { return nil })

		assert.Error(t, err)
	})
}

func TestAllocation_Overlaps(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newAllocationFixture(t, ctrl)
	window := testWindow()

	tests := []struct {
		name     string
		count    int
		countErr error
		want     bool
		wantErr  bool
	}{
		{name: "no overlap", count: 0, want: false},
		{name: "overlap found", count: 2, want: true},
		{name: "repository error", countErr: errors.New("database error"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.reservations.EXPECT().
				CountOverlapping(gomock.Any(), "tenant-1", "res-a", window, "").
				Return(tt.count, tt.countErr)

			got, err := f.service.Overlaps(context.Background(), "tenant-1", "res-a", window, "")

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
