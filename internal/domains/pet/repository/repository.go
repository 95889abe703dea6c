package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"github.com/jmoiron/sqlx"

	"suitesync/infras/otel"
	"suitesync/infras/postgres"
	"suitesync/internal/domains/pet/model"
	gDto "suitesync/shared/dto"
	gRepo "suitesync/shared/repository"
)

type Pet interface {
	Insert(ctx context.Context, model model.Pet) error
	InsertTx(ctx context.Context, tx *sqlx.Tx, model model.Pet) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Pet, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Pet, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateTx(ctx context.Context, tx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Pet]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Pet {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Pet](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}
