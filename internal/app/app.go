package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"suitesync/config"
	auditService "suitesync/internal/domains/audit/service"
	reservationModel "suitesync/internal/domains/reservation/model"
	statusService "suitesync/internal/domains/status/service"
	syncService "suitesync/internal/domains/sync/service"
	"suitesync/internal/reports"
	"suitesync/shared/constant"
	"suitesync/shared/failure"
	"suitesync/shared/timezone"
	"suitesync/transport/http"
)

// Exit codes. Inconsistent means the overlap invariant is (still) violated,
// which operators treat differently from an outright failure.
const (
	ExitOK           = 0
	ExitError        = 1
	ExitInconsistent = 2
)

const (
	CommandSyncReservations = "sync-reservations"
	CommandSyncAll          = "sync-all"
	CommandValidateOverlaps = "validate-overlaps"
	CommandFixOverlaps      = "fix-overlaps"
	CommandRebalance        = "rebalance"
	CommandStatus           = "status"
	CommandServe            = "serve"
)

const (
	reportKindSync      = "sync"
	reportKindSyncAll   = "sync-all"
	reportKindAudit     = "audit"
	reportKindRebalance = "rebalance"
)

type App struct {
	sync     syncService.Sync
	audit    auditService.Audit
	status   statusService.Status
	archiver reports.Archiver
	http     *http.HTTP
	cfg      *config.Config
}

func New(
	sync syncService.Sync,
	audit auditService.Audit,
	status statusService.Status,
	archiver reports.Archiver,
	httpServer *http.HTTP,
	cfg *config.Config,
) *App {
	return &App{
		sync:     sync,
		audit:    audit,
		status:   status,
		archiver: archiver,
		http:     httpServer,
		cfg:      cfg,
	}
}

// Run dispatches one command and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		printUsage()

		return ExitError
	}

	command := args[0]

	switch command {
	case CommandSyncReservations:
		return a.runSyncReservations(ctx, args[1:])
	case CommandSyncAll:
		return a.runSyncAll(ctx, args[1:])
	case CommandValidateOverlaps:
		return a.runValidateOverlaps(ctx)
	case CommandFixOverlaps:
		return a.runFixOverlaps(ctx)
	case CommandRebalance:
		return a.runRebalance(ctx)
	case CommandStatus:
		return a.runStatus(ctx)
	case CommandServe:
		a.http.Serve()

		return ExitOK
	default:
		log.Error().Str("command", command).Msg("unknown command")
		printUsage()

		return ExitError
	}
}

func (a *App) runSyncReservations(ctx context.Context, args []string) int {
	window, err := a.resolveWindow(args)
	if err != nil {
		log.Error().Err(err).Msg("invalid sync window")

		return ExitError
	}

	report, err := a.sync.SyncReservations(ctx, window)
	if err != nil {
		log.Error().Err(err).Msg("reservation sync failed")

		return ExitError
	}

	a.archive(ctx, reportKindSync, report)
	printJSON(report)

	if len(report.FailedChunks) > 0 {
		log.Error().Int("failedChunks", len(report.FailedChunks)).Msg("sync skipped chunks after exhausting retries")

		return ExitError
	}

	return ExitOK
}

func (a *App) runSyncAll(ctx context.Context, args []string) int {
	window, err := a.resolveWindow(args)
	if err != nil {
		log.Error().Err(err).Msg("invalid sync window")

		return ExitError
	}

	report, err := a.sync.SyncAll(ctx, window)
	if err != nil {
		log.Error().Err(err).Msg("full sync failed")

		return ExitError
	}

	a.archive(ctx, reportKindSyncAll, report)
	printJSON(report)

	if len(report.Reservations.FailedChunks) > 0 {
		log.Error().Int("failedChunks", len(report.Reservations.FailedChunks)).Msg("sync skipped chunks after exhausting retries")

		return ExitError
	}

	return ExitOK
}

func (a *App) runValidateOverlaps(ctx context.Context) int {
	report, err := a.audit.Validate(ctx)
	if err != nil {
		log.Error().Err(err).Msg("overlap validation failed")

		return ExitError
	}

	printJSON(report)

	if !report.Clean() {
		return ExitInconsistent
	}

	return ExitOK
}

func (a *App) runFixOverlaps(ctx context.Context) int {
	report, err := a.audit.Repair(ctx)

	a.archive(ctx, reportKindAudit, report)
	printJSON(report)

	if err != nil {
		var unrepairable *failure.ConsistencyUnrepairable
		if errors.As(err, &unrepairable) {
			log.Error().Err(err).Msg("repair did not converge")

			return ExitInconsistent
		}

		log.Error().Err(err).Msg("overlap repair failed")

		return ExitError
	}

	return ExitOK
}

func (a *App) runRebalance(ctx context.Context) int {
	report, err := a.audit.Rebalance(ctx)
	if err != nil {
		log.Error().Err(err).Msg("rebalance failed")

		return ExitError
	}

	a.archive(ctx, reportKindRebalance, report)
	printJSON(report)

	return ExitOK
}

func (a *App) runStatus(ctx context.Context) int {
	summary, err := a.status.Summary(ctx)
	if err != nil {
		log.Error().Err(err).Msg("status summary failed")

		return ExitError
	}

	printJSON(summary)

	if !summary.Consistent {
		return ExitInconsistent
	}

	return ExitOK
}

// resolveWindow builds the sync window from optional FROM and TO date
// arguments, falling back to the configured day range around today.
func (a *App) resolveWindow(args []string) (reservationModel.Window, error) {
	if len(args) >= 2 {
		from, err := timezone.Parse(constant.DateOnly, args[0])
		if err != nil {
			return reservationModel.Window{}, fmt.Errorf("invalid FROM date %q: %w", args[0], err)
		}

		to, err := timezone.Parse(constant.DateOnly, args[1])
		if err != nil {
			return reservationModel.Window{}, fmt.Errorf("invalid TO date %q: %w", args[1], err)
		}

		window := reservationModel.Window{Start: from, End: to}
		if !window.Valid() {
			return reservationModel.Window{}, fmt.Errorf("window %s..%s must satisfy from < to", args[0], args[1])
		}

		return window, nil
	}

	now := timezone.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, timezone.GetLocation())

	return reservationModel.Window{
		Start: today.AddDate(0, 0, -a.cfg.Sync.WindowDaysPast),
		End:   today.AddDate(0, 0, a.cfg.Sync.WindowDaysAhead),
	}, nil
}

func (a *App) archive(ctx context.Context, kind string, report any) {
	if _, err := a.archiver.Archive(ctx, kind, report); err != nil {
		log.Error().Err(err).Str("kind", kind).Msg("failed to archive report")
	}
}

func printJSON(payload any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to write report")
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: suitesync COMMAND [FROM TO]

Commands:
  sync-reservations [FROM TO]  reconcile upstream reservations into local resources
  sync-all [FROM TO]           sync offerings, customers, pets, then reservations
  validate-overlaps            report resources with overlapping active reservations
  fix-overlaps                 reassign overlapping reservations to free resources
  rebalance                    redistribute reservations across suite categories
  status                       print an operational summary for the tenant
  serve                        start the read-only HTTP status API

FROM and TO are dates (2006-01-02); when omitted the configured window around
today is used.`)
}
