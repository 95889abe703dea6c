//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"suitesync/config"
	"suitesync/infras/kafka"
	"suitesync/infras/otel"
	"suitesync/infras/postgres"
	"suitesync/infras/redis"
	"suitesync/infras/s3"
	"suitesync/internal/app"
	"suitesync/internal/events"
	"suitesync/internal/handlers/ops"
	"suitesync/internal/reports"
	"suitesync/internal/upstream"
	"suitesync/shared/cache"
	"suitesync/shared/lock"
	"suitesync/transport/http"
	"suitesync/transport/http/middleware"
	"suitesync/transport/http/router"

	allocationService "suitesync/internal/domains/allocation/service"
	auditService "suitesync/internal/domains/audit/service"
	customerRepository "suitesync/internal/domains/customer/repository"
	mappingRepository "suitesync/internal/domains/mapping/repository"
	offeringRepository "suitesync/internal/domains/offering/repository"
	petRepository "suitesync/internal/domains/pet/repository"
	reservationRepository "suitesync/internal/domains/reservation/repository"
	resourceRepository "suitesync/internal/domains/resource/repository"
	statusService "suitesync/internal/domains/status/service"
	syncService "suitesync/internal/domains/sync/service"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	kafka.New,
	s3.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	lock.New,
)

var repositories = wire.NewSet(
	customerRepository.New,
	petRepository.New,
	offeringRepository.New,
	resourceRepository.New,
	mappingRepository.New,
	reservationRepository.New,
)

var services = wire.NewSet(
	upstream.New,
	events.New,
	reports.New,
	allocationService.New,
	syncService.New,
	auditService.New,
	statusService.New,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	ops.New,
	router.New,
)

func InitializeApp() *app.App {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		repositories,
		services,
		routing,
		http.New,
		app.New,
	)

	return &app.App{}
}
