package model

import "suitesync/shared/model"

const (
	TableName  = "external_mappings"
	EntityName = "mapping"

	FieldID         = "id"
	FieldTenantID   = "tenant_id"
	FieldEntityKind = "entity_kind"
	FieldExternalID = "external_id"
	FieldLocalID    = "local_id"
)

const (
	KindCustomer    = "customer"
	KindPet         = "pet"
	KindOffering    = "offering"
	KindReservation = "reservation"
)

// Mapping associates an upstream record identifier with a local entity id.
// Rows are created the first time an upstream record is imported and are
// never deleted, which is what makes re-imports idempotent.
type Mapping struct {
	ID         string `db:"id"`
	TenantID   string `db:"tenant_id"`
	EntityKind string `db:"entity_kind"`
	ExternalID string `db:"external_id"`
	LocalID    string `db:"local_id"`
	model.Metadata
}
