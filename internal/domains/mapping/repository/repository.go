package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"github.com/jmoiron/sqlx"

	"suitesync/infras/otel"
	"suitesync/infras/postgres"
	"suitesync/internal/domains/mapping/model"
	gDto "suitesync/shared/dto"
	gRepo "suitesync/shared/repository"
)

type Mapping interface {
	Insert(ctx context.Context, model model.Mapping) error
	InsertTx(ctx context.Context, tx *sqlx.Tx, model model.Mapping) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Mapping, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Resolve(ctx context.Context, tenantID, entityKind, externalID string) (model.Mapping, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Mapping]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Mapping {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Mapping](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// Resolve looks up the local id mapped to an upstream identifier. A zero-value
// mapping (empty LocalID) means the upstream record was never imported.
func (repo *repositoryImpl) Resolve(ctx context.Context, tenantID, entityKind, externalID string) (model.Mapping, error) {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldTenantID, Value: tenantID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldEntityKind, Value: entityKind, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldExternalID, Value: externalID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	return repo.Get(ctx, filter)
}
