package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"suitesync/config"
	"suitesync/internal/app"
	auditMocks "suitesync/internal/domains/audit/mocks"
	auditDto "suitesync/internal/domains/audit/model/dto"
	reservationModel "suitesync/internal/domains/reservation/model"
	statusMocks "suitesync/internal/domains/status/mocks"
	statusDto "suitesync/internal/domains/status/model/dto"
	syncMocks "suitesync/internal/domains/sync/mocks"
	syncDto "suitesync/internal/domains/sync/model/dto"
	reportMocks "suitesync/internal/reports/mocks"
	"suitesync/shared/timezone"
)

type appFixture struct {
	sync     *syncMocks.MockSync
	audit    *auditMocks.MockAudit
	status   *statusMocks.MockStatus
	archiver *reportMocks.MockArchiver
	app      *app.App
	ctx      context.Context
}

func newAppFixture(t *testing.T) *appFixture {
	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.App.TenantID = "tenant-1"
	cfg.Sync.WindowDaysPast = 7
	cfg.Sync.WindowDaysAhead = 30

	f := &appFixture{
		sync:     syncMocks.NewMockSync(ctrl),
		audit:    auditMocks.NewMockAudit(ctrl),
		status:   statusMocks.NewMockStatus(ctrl),
		archiver: reportMocks.NewMockArchiver(ctrl),
		ctx:      context.Background(),
	}

	f.app = app.New(f.sync, f.audit, f.status, f.archiver, nil, cfg)

	return f
}

func TestApp_SyncReservations_CleanRunExitsZero(t *testing.T) {
	f := newAppFixture(t)

	f.sync.EXPECT().
		SyncReservations(gomock.Any(), gomock.Any()).
		Return(syncDto.SyncReport{TenantID: "tenant-1", Fetched: 2, Updated: 2}, nil)
	f.archiver.EXPECT().Archive(gomock.Any(), "sync", gomock.Any()).Return("", nil)

	code := f.app.Run(f.ctx, []string{app.CommandSyncReservations})

	assert.Equal(t, app.ExitOK, code)
}

func TestApp_SyncReservations_FailedChunkExitsNonZero(t *testing.T) {
	f := newAppFixture(t)

	report := syncDto.SyncReport{
		TenantID: "tenant-1",
		Fetched:  4,
		Updated:  4,
		FailedChunks: []syncDto.FailedChunk{
			{StartDate: "2026-03-06", EndDate: "2026-03-10", Reason: "connection refused"},
		},
	}

	f.sync.EXPECT().SyncReservations(gomock.Any(), gomock.Any()).Return(report, nil)
	f.archiver.EXPECT().Archive(gomock.Any(), "sync", gomock.Any()).Return("", nil)

	code := f.app.Run(f.ctx, []string{app.CommandSyncReservations})

	assert.Equal(t, app.ExitError, code)
}

func TestApp_SyncAll_FailedChunkExitsNonZero(t *testing.T) {
	f := newAppFixture(t)

	report := syncDto.SyncAllReport{
		Reservations: syncDto.SyncReport{
			TenantID: "tenant-1",
			FailedChunks: []syncDto.FailedChunk{
				{StartDate: "2026-03-01", EndDate: "2026-03-06", Reason: "upstream 502"},
			},
		},
	}

	f.sync.EXPECT().SyncAll(gomock.Any(), gomock.Any()).Return(report, nil)
	f.archiver.EXPECT().Archive(gomock.Any(), "sync-all", gomock.Any()).Return("", nil)

	code := f.app.Run(f.ctx, []string{app.CommandSyncAll})

	assert.Equal(t, app.ExitError, code)
}

func TestApp_SyncReservations_DefaultWindowStartsAtLocalMidnight(t *testing.T) {
	f := newAppFixture(t)

	var window reservationModel.Window

	f.sync.EXPECT().
		SyncReservations(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, w reservationModel.Window) (syncDto.SyncReport, error) {
			window = w

			return syncDto.SyncReport{}, nil
		})
	f.archiver.EXPECT().Archive(gomock.Any(), "sync", gomock.Any()).Return("", nil)

	code := f.app.Run(f.ctx, []string{app.CommandSyncReservations})

	assert.Equal(t, app.ExitOK, code)

	loc := timezone.GetLocation()
	midnight := time.Date(window.Start.Year(), window.Start.Month(), window.Start.Day(), 0, 0, 0, 0, loc)

	assert.True(t, window.Start.Equal(midnight))
	assert.Equal(t, loc, window.Start.Location())
	assert.True(t, window.End.Equal(window.Start.AddDate(0, 0, 37)))
}

func TestApp_SyncReservations_ExplicitWindowArguments(t *testing.T) {
	f := newAppFixture(t)

	var window reservationModel.Window

	f.sync.EXPECT().
		SyncReservations(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, w reservationModel.Window) (syncDto.SyncReport, error) {
			window = w

			return syncDto.SyncReport{}, nil
		})
	f.archiver.EXPECT().Archive(gomock.Any(), "sync", gomock.Any()).Return("", nil)

	code := f.app.Run(f.ctx, []string{app.CommandSyncReservations, "2026-03-01", "2026-03-05"})

	assert.Equal(t, app.ExitOK, code)
	assert.Equal(t, "2026-03-01", window.Start.Format("2006-01-02"))
	assert.Equal(t, "2026-03-05", window.End.Format("2006-01-02"))
}

func TestApp_SyncReservations_InvertedWindowRejected(t *testing.T) {
	f := newAppFixture(t)

	code := f.app.Run(f.ctx, []string{app.CommandSyncReservations, "2026-03-05", "2026-03-01"})

	assert.Equal(t, app.ExitError, code)
}

func TestApp_ValidateOverlaps_ViolationsExitInconsistent(t *testing.T) {
	f := newAppFixture(t)

	report := auditDto.AuditReport{
		TenantID:  "tenant-1",
		Remaining: 1,
		Violations: []auditDto.ViolationGroup{
			{ResourceID: "suite-1", ReservationIDs: []string{"resv-1", "resv-2"}},
		},
	}

	f.audit.EXPECT().Validate(gomock.Any()).Return(report, nil)

	code := f.app.Run(f.ctx, []string{app.CommandValidateOverlaps})

	assert.Equal(t, app.ExitInconsistent, code)
}

func TestApp_Status_InconsistentStoreExitsInconsistent(t *testing.T) {
	f := newAppFixture(t)

	f.status.EXPECT().
		Summary(gomock.Any()).
		Return(statusDto.StatusSummary{TenantID: "tenant-1", Violations: 1, Consistent: false}, nil)

	code := f.app.Run(f.ctx, []string{app.CommandStatus})

	assert.Equal(t, app.ExitInconsistent, code)
}

func TestApp_UnknownCommandExitsNonZero(t *testing.T) {
	f := newAppFixture(t)

	code := f.app.Run(f.ctx, []string{"bogus"})

	assert.Equal(t, app.ExitError, code)
}
