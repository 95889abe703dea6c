package ops

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"suitesync/infras/otel"
	auditService "suitesync/internal/domains/audit/service"
	statusService "suitesync/internal/domains/status/service"
	"suitesync/shared/constant"
	"suitesync/transport/http/response"
)

// Handler exposes the read-only operational surface: the same information the
// status and validate-overlaps commands print, for dashboards and probes.
type Handler struct {
	status statusService.Status
	audit  auditService.Audit
	otel   otel.Otel
}

func New(status statusService.Status, audit auditService.Audit, otel otel.Otel) Handler {
	return Handler{
		status: status,
		audit:  audit,
		otel:   otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/status", handler.GetStatus)
	router.Get("/overlaps", handler.GetOverlaps)
}

func (handler *Handler) GetStatus(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetStatus")
	defer scope.End()

	summary, err := handler.status.Summary(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to build status summary")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, summary)
}

func (handler *Handler) GetOverlaps(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetOverlaps")
	defer scope.End()

	report, err := handler.audit.Validate(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate overlap invariant")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, report)
}
