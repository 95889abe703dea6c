package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	customerModel "suitesync/internal/domains/customer/model"
	mappingModel "suitesync/internal/domains/mapping/model"
	offeringModel "suitesync/internal/domains/offering/model"
	petModel "suitesync/internal/domains/pet/model"
	"suitesync/internal/domains/sync/model/dto"
	"suitesync/internal/upstream"
	"suitesync/shared"
	"suitesync/shared/constant"
	gModel "suitesync/shared/model"
	"suitesync/shared/timezone"
	"suitesync/shared/validator"
)

// Entity imports share one shape: resolve the mapping, insert record plus
// mapping in a transaction when new, diff-and-update when known. They are
// spelled out per kind because the field sets differ.

func (s *serviceImpl) syncOfferings(ctx context.Context) (report dto.EntitySyncReport, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".syncOfferings")
	defer scope.End()
	defer scope.TraceIfError(err)

	tenantID := s.cfg.App.TenantID
	report.Kind = mappingModel.KindOffering

	records, err := s.upstream.FetchReservationTypes(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to fetch reservation types: %w", err)
	}

	report.Fetched = len(records)

	for _, record := range records {
		if validationErr := validator.Struct(record); validationErr != nil {
			report.Invalid = append(report.Invalid, dto.InvalidRecord{ExternalID: record.ID, Reason: validationErr.Error()})

			continue
		}

		mapping, err := s.mappings.Resolve(ctx, tenantID, mappingModel.KindOffering, record.ID)
		if err != nil {
			return report, fmt.Errorf("failed to resolve offering mapping: %w", err)
		}

		if mapping.LocalID == constant.Empty {
			if err = s.insertOffering(ctx, tenantID, record); err != nil {
				return report, err
			}

			report.Created++

			continue
		}

		updated, err := s.updateOffering(ctx, mapping.LocalID, record)
		if err != nil {
			return report, err
		}

		if updated {
			report.Updated++
		} else {
			report.Unchanged++
		}
	}

	return report, nil
}

func (s *serviceImpl) insertOffering(ctx context.Context, tenantID string, record upstream.ReservationTypeRecord) error {
	now := timezone.Now()

	offering := offeringModel.Offering{
		ID:       uuid.NewString(),
		TenantID: tenantID,
		Name:     record.Name,
		Kind:     record.Kind,
		Active:   record.Active,
		Metadata: gModel.Metadata{CreatedAt: now, ModifiedAt: now, CreatedBy: constant.SyncActorName, ModifiedBy: constant.SyncActorName},
	}

	return s.withImportTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.offerings.InsertTx(ctx, tx, offering); err != nil {
			return err //nolint:wrapcheck
		}

		return s.mappings.InsertTx(ctx, tx, s.newMapping(tenantID, mappingModel.KindOffering, record.ID, offering.ID)) //nolint:wrapcheck
	})
}

func (s *serviceImpl) updateOffering(ctx context.Context, localID string, record upstream.ReservationTypeRecord) (bool, error) {
	filter := shared.FilterByID(localID, offeringModel.FieldID, offeringModel.TableName)

	current, err := s.offerings.Get(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to load offering %s: %w", localID, err)
	}

	changes := map[string]any{}

	if current.Name != record.Name {
		changes["name"] = record.Name
	}

	if current.Kind != record.Kind {
		changes["kind"] = record.Kind
	}

	if current.Active != record.Active {
		changes[offeringModel.FieldActive] = record.Active
	}

	if len(changes) == 0 {
		return false, nil
	}

	changes[constant.FieldModifiedAt] = timezone.Now()
	changes[constant.FieldModifiedBy] = constant.SyncActorName

	if err = s.offerings.Update(ctx, changes, filter); err != nil {
		return false, fmt.Errorf("failed to update offering %s: %w", localID, err)
	}

	return true, nil
}

func (s *serviceImpl) syncCustomers(ctx context.Context) (report dto.EntitySyncReport, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".syncCustomers")
	defer scope.End()
	defer scope.TraceIfError(err)

	tenantID := s.cfg.App.TenantID
	report.Kind = mappingModel.KindCustomer

	records, err := s.upstream.FetchOwners(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to fetch owners: %w", err)
	}

	report.Fetched = len(records)

	for _, record := range records {
		if validationErr := validator.Struct(record); validationErr != nil {
			report.Invalid = append(report.Invalid, dto.InvalidRecord{ExternalID: record.ID, Reason: validationErr.Error()})

			continue
		}

		mapping, err := s.mappings.Resolve(ctx, tenantID, mappingModel.KindCustomer, record.ID)
		if err != nil {
			return report, fmt.Errorf("failed to resolve customer mapping: %w", err)
		}

		if mapping.LocalID == constant.Empty {
			if err = s.insertCustomer(ctx, tenantID, record); err != nil {
				return report, err
			}

			report.Created++

			continue
		}

		updated, err := s.updateCustomer(ctx, mapping.LocalID, record)
		if err != nil {
			return report, err
		}

		if updated {
			report.Updated++
		} else {
			report.Unchanged++
		}
	}

	return report, nil
}

func (s *serviceImpl) insertCustomer(ctx context.Context, tenantID string, record upstream.OwnerRecord) error {
	now := timezone.Now()

	customer := customerModel.Customer{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		FirstName: record.FirstName,
		LastName:  record.LastName,
		Email:     record.Email,
		Phone:     record.Phone,
		Metadata:  gModel.Metadata{CreatedAt: now, ModifiedAt: now, CreatedBy: constant.SyncActorName, ModifiedBy: constant.SyncActorName},
	}

	return s.withImportTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.customers.InsertTx(ctx, tx, customer); err != nil {
			return err //nolint:wrapcheck
		}

		return s.mappings.InsertTx(ctx, tx, s.newMapping(tenantID, mappingModel.KindCustomer, record.ID, customer.ID)) //nolint:wrapcheck
	})
}

func (s *serviceImpl) updateCustomer(ctx context.Context, localID string, record upstream.OwnerRecord) (bool, error) {
	filter := shared.FilterByID(localID, customerModel.FieldID, customerModel.TableName)

	current, err := s.customers.Get(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to load customer %s: %w", localID, err)
	}

	changes := map[string]any{}

	if current.FirstName != record.FirstName {
		changes["first_name"] = record.FirstName
	}

	if current.LastName != record.LastName {
		changes["last_name"] = record.LastName
	}

	if current.Email != record.Email {
		changes[customerModel.FieldEmail] = record.Email
	}

	if current.Phone != record.Phone {
		changes["phone"] = record.Phone
	}

	if len(changes) == 0 {
		return false, nil
	}

	changes[constant.FieldModifiedAt] = timezone.Now()
	changes[constant.FieldModifiedBy] = constant.SyncActorName

	if err = s.customers.Update(ctx, changes, filter); err != nil {
		return false, fmt.Errorf("failed to update customer %s: %w", localID, err)
	}

	return true, nil
}

func (s *serviceImpl) syncPets(ctx context.Context) (report dto.EntitySyncReport, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".syncPets")
	defer scope.End()
	defer scope.TraceIfError(err)

	tenantID := s.cfg.App.TenantID
	report.Kind = mappingModel.KindPet

	records, err := s.upstream.FetchAnimals(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to fetch animals: %w", err)
	}

	report.Fetched = len(records)

	for _, record := range records {
		if validationErr := validator.Struct(record); validationErr != nil {
			report.Invalid = append(report.Invalid, dto.InvalidRecord{ExternalID: record.ID, Reason: validationErr.Error()})

			continue
		}

		ownerMapping, err := s.mappings.Resolve(ctx, tenantID, mappingModel.KindCustomer, record.OwnerID)
		if err != nil {
			return report, fmt.Errorf("failed to resolve owner mapping: %w", err)
		}

		if ownerMapping.LocalID == constant.Empty {
			log.Warn().Str("externalId", record.ID).Str("ownerId", record.OwnerID).Msg("skipping pet with unknown owner")
			report.Unmappable = append(report.Unmappable, dto.UnmappableRecord{
				ExternalID:   record.ID,
				MissingKind:  mappingModel.KindCustomer,
				MissingRefID: record.OwnerID,
			})

			continue
		}

		mapping, err := s.mappings.Resolve(ctx, tenantID, mappingModel.KindPet, record.ID)
		if err != nil {
			return report, fmt.Errorf("failed to resolve pet mapping: %w", err)
		}

		if mapping.LocalID == constant.Empty {
			if err = s.insertPet(ctx, tenantID, ownerMapping.LocalID, record); err != nil {
				return report, err
			}

			report.Created++

			continue
		}

		updated, err := s.updatePet(ctx, mapping.LocalID, ownerMapping.LocalID, record)
		if err != nil {
			return report, err
		}

		if updated {
			report.Updated++
		} else {
			report.Unchanged++
		}
	}

	return report, nil
}

func (s *serviceImpl) insertPet(ctx context.Context, tenantID, customerID string, record upstream.AnimalRecord) error {
	now := timezone.Now()

	pet := petModel.Pet{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		CustomerID: customerID,
		Name:       record.Name,
		Breed:      record.Breed,
		SizeClass:  SizeClassForWeight(record.WeightLbs),
		Metadata:   gModel.Metadata{CreatedAt: now, ModifiedAt: now, CreatedBy: constant.SyncActorName, ModifiedBy: constant.SyncActorName},
	}

	return s.withImportTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.pets.InsertTx(ctx, tx, pet); err != nil {
			return err //nolint:wrapcheck
		}

		return s.mappings.InsertTx(ctx, tx, s.newMapping(tenantID, mappingModel.KindPet, record.ID, pet.ID)) //nolint:wrapcheck
	})
}

func (s *serviceImpl) updatePet(ctx context.Context, localID, customerID string, record upstream.AnimalRecord) (bool, error) {
	filter := shared.FilterByID(localID, petModel.FieldID, petModel.TableName)

	current, err := s.pets.Get(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to load pet %s: %w", localID, err)
	}

	changes := map[string]any{}

	if current.Name != record.Name {
		changes["name"] = record.Name
	}

	if current.Breed != record.Breed {
		changes["breed"] = record.Breed
	}

	if current.CustomerID != customerID {
		changes["customer_id"] = customerID
	}

	if sizeClass := SizeClassForWeight(record.WeightLbs); current.SizeClass != sizeClass {
		changes[petModel.FieldSizeClass] = sizeClass
	}

	if len(changes) == 0 {
		return false, nil
	}

	changes[constant.FieldModifiedAt] = timezone.Now()
	changes[constant.FieldModifiedBy] = constant.SyncActorName

	if err = s.pets.Update(ctx, changes, filter); err != nil {
		return false, fmt.Errorf("failed to update pet %s: %w", localID, err)
	}

	return true, nil
}

func (s *serviceImpl) withImportTx(ctx context.Context, apply func(ctx context.Context, tx *sqlx.Tx) error) error {
	tx, err := s.reservations.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to open import transaction: %w", err)
	}

	if err := apply(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			log.Error().Err(rollbackErr).Msg("failed to roll back import transaction")
		}

		return fmt.Errorf("failed to persist imported entity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import transaction: %w", err)
	}

	return nil
}
