package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"suitesync/infras/otel"
	"suitesync/infras/postgres"
	"suitesync/internal/domains/reservation/model"
	resourceModel "suitesync/internal/domains/resource/model"
	"suitesync/shared/constant"
	gDto "suitesync/shared/dto"
	"suitesync/shared/logger"
	gRepo "suitesync/shared/repository"
)

type Reservation interface {
	BeginTx(ctx context.Context) (*sqlx.Tx, error)
	Insert(ctx context.Context, model model.Reservation) error
	InsertTx(ctx context.Context, tx *sqlx.Tx, model model.Reservation) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Reservation, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Reservation, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateTx(ctx context.Context, tx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
	CountOverlapping(ctx context.Context, tenantID, resourceID string, window model.Window, excludeID string) (int, error)
	CountOverlappingTx(ctx context.Context, tx *sqlx.Tx, tenantID, resourceID string, window model.Window, excludeID string) (int, error)
	FindViolationPairs(ctx context.Context, tenantID string) ([]model.ViolationPair, error)
	StatusCounts(ctx context.Context, tenantID string) ([]model.StatusCount, error)
	CategoryCounts(ctx context.Context, tenantID string) ([]model.CategoryCount, error)
}

type namedPreparer interface {
	PrepareNamedContext(ctx context.Context, query string) (*sqlx.NamedStmt, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Reservation]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Reservation {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Reservation](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (repo *repositoryImpl) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	tx, err := repo.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		logger.ErrorWithStack(err)

		return nil, fmt.Errorf("failed to begin transaction (%s): %w", model.EntityName, err)
	}

	return tx, nil
}

// activeStatusList renders the active status set as a SQL literal list. The
// values are package constants, never user input.
func activeStatusList() string {
	statuses := model.ActiveStatuses()
	quoted := make([]string, len(statuses))

	for i, status := range statuses {
		quoted[i] = "'" + status + "'"
	}

	return strings.Join(quoted, ", ")
}

// CountOverlapping answers the overlap oracle on the read connection. Callers
// that write based on the answer must use CountOverlappingTx on the same
// transaction that holds the resource row lock, or the check races.
func (repo *repositoryImpl) CountOverlapping(ctx context.Context, tenantID, resourceID string, window model.Window, excludeID string) (int, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.CountOverlapping")
	defer scope.End()

	return repo.countOverlapping(ctx, repo.db.Read, scope, tenantID, resourceID, window, excludeID)
}

func (repo *repositoryImpl) CountOverlappingTx(ctx context.Context, tx *sqlx.Tx, tenantID, resourceID string, window model.Window, excludeID string) (int, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.CountOverlappingTx")
	defer scope.End()

	return repo.countOverlapping(ctx, tx, scope, tenantID, resourceID, window, excludeID)
}

func (repo *repositoryImpl) countOverlapping(ctx context.Context, preparer namedPreparer, scope otel.Scope, tenantID, resourceID string, window model.Window, excludeID string) (int, error) {
	args := map[string]any{
		"tenant_id":   tenantID,
		"resource_id": resourceID,
		"start_date":  window.Start,
		"end_date":    window.End,
	}

	exclusion := ""
	if excludeID != "" {
		exclusion = "AND id != :exclude_id"
		args["exclude_id"] = excludeID
	}

	query := fmt.Sprintf(
		"SELECT COUNT(%s) FROM %s WHERE %s = :tenant_id AND %s = :resource_id AND %s IN (%s) %s AND %s < :end_date AND %s > :start_date",
		model.FieldID, model.TableName, model.FieldTenantID, model.FieldResourceID,
		model.FieldStatus, activeStatusList(), exclusion, model.FieldStartDate, model.FieldEndDate,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	prepare, err := preparer.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to prepare statement (%s): %w", model.EntityName, err)
	}
	defer prepare.Close()

	var count int
	if err = prepare.GetContext(ctx, &count, args); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to count overlapping reservations: %w", err)
	}

	return count, nil
}

// FindViolationPairs runs the overlap predicate as an indexed self-join and
// returns every pair of active reservations sharing a resource during
// intersecting windows. The r1.id < r2.id guard keeps each pair unique.
func (repo *repositoryImpl) FindViolationPairs(ctx context.Context, tenantID string) ([]model.ViolationPair, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.FindViolationPairs")
	defer scope.End()

	query := fmt.Sprintf(`SELECT r1.%[2]s AS resource_id, r1.%[3]s AS first_id, r2.%[3]s AS second_id
		FROM %[1]s r1
		JOIN %[1]s r2
		  ON r1.%[4]s = r2.%[4]s
		 AND r1.%[2]s = r2.%[2]s
		 AND r1.%[3]s < r2.%[3]s
		 AND r1.%[5]s < r2.%[6]s
		 AND r1.%[6]s > r2.%[5]s
		WHERE r1.%[4]s = :tenant_id
		  AND r1.%[2]s IS NOT NULL
		  AND r1.%[7]s IN (%[8]s)
		  AND r2.%[7]s IN (%[8]s)
		ORDER BY r1.%[2]s, r1.%[3]s`,
		model.TableName, model.FieldResourceID, model.FieldID, model.FieldTenantID,
		model.FieldStartDate, model.FieldEndDate, model.FieldStatus, activeStatusList(),
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	prepare, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to prepare statement (%s): %w", model.EntityName, err)
	}
	defer prepare.Close()

	var pairs []model.ViolationPair
	if err = prepare.SelectContext(ctx, &pairs, map[string]any{"tenant_id": tenantID}); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to find violation pairs: %w", err)
	}

	return pairs, nil
}

func (repo *repositoryImpl) StatusCounts(ctx context.Context, tenantID string) ([]model.StatusCount, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.StatusCounts")
	defer scope.End()

	query := fmt.Sprintf("SELECT %s AS status, COUNT(%s) AS total FROM %s WHERE %s = :tenant_id GROUP BY %s ORDER BY %s",
		model.FieldStatus, model.FieldID, model.TableName, model.FieldTenantID, model.FieldStatus, model.FieldStatus)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	prepare, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to prepare statement (%s): %w", model.EntityName, err)
	}
	defer prepare.Close()

	var counts []model.StatusCount
	if err = prepare.SelectContext(ctx, &counts, map[string]any{"tenant_id": tenantID}); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to count reservations by status: %w", err)
	}

	return counts, nil
}

// CategoryCounts reports how active reservations are distributed across
// resource capacity classes.
func (repo *repositoryImpl) CategoryCounts(ctx context.Context, tenantID string) ([]model.CategoryCount, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.CategoryCounts")
	defer scope.End()

	query := fmt.Sprintf(`SELECT res.%s AS category, COUNT(r.%s) AS total
		FROM %s r
		JOIN %s res ON res.%s = r.%s
		WHERE r.%s = :tenant_id AND r.%s IN (%s)
		GROUP BY res.%s
		ORDER BY res.%s`,
		resourceModel.FieldCategory, model.FieldID,
		model.TableName, resourceModel.TableName, resourceModel.FieldID, model.FieldResourceID,
		model.FieldTenantID, model.FieldStatus, activeStatusList(),
		resourceModel.FieldCategory, resourceModel.FieldCategory,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	prepare, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to prepare statement (%s): %w", model.EntityName, err)
	}
	defer prepare.Close()

	var counts []model.CategoryCount
	if err = prepare.SelectContext(ctx, &counts, map[string]any{"tenant_id": tenantID}); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to count reservations by category: %w", err)
	}

	return counts, nil
}
