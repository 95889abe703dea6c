package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"suitesync/infras/otel"
	"suitesync/infras/postgres"
	"suitesync/internal/domains/resource/model"
	"suitesync/shared/constant"
	gDto "suitesync/shared/dto"
	"suitesync/shared/logger"
	gRepo "suitesync/shared/repository"
)

type Resource interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Resource, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	ListActive(ctx context.Context, tenantID string, categories ...string) ([]model.Resource, error)
	LockTx(ctx context.Context, tx *sqlx.Tx, resourceID string) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Resource]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Resource {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Resource](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// ListActive returns the candidate pool for allocation: active resources of
// the tenant, ordered lexicographically by name so allocation stays
// deterministic across runs.
func (repo *repositoryImpl) ListActive(ctx context.Context, tenantID string, categories ...string) ([]model.Resource, error) {
	filters := []any{
		gDto.Filter{Field: model.FieldTenantID, Value: tenantID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		gDto.Filter{Field: model.FieldActive, Value: true, Operator: gDto.FilterOperatorEq, Table: model.TableName},
	}

	if len(categories) > 0 {
		filters = append(filters, gDto.Filter{Field: model.FieldCategory, Value: categories, Operator: gDto.FilterOperatorIn, Table: model.TableName})
	}

	params := gDto.QueryParams{
		SortBy:  fmt.Sprintf("%s.%s", model.TableName, model.FieldName),
		SortDir: gDto.SortDirAsc,
	}

	return repo.GetAll(ctx, params, gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd, Filters: filters})
}

// LockTx takes a row lock on the resource for the duration of the transaction
// so concurrent check-then-assign passes on the same resource serialize.
func (repo *repositoryImpl) LockTx(ctx context.Context, tx *sqlx.Tx, resourceID string) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".resource.LockTx")
	defer scope.End()

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 FOR UPDATE", model.FieldID, model.TableName, model.FieldID)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var id string
	if err := tx.GetContext(ctx, &id, query, resourceID); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to lock resource %s: %w", resourceID, err)
	}

	return nil
}
