package model

import "suitesync/shared/model"

const (
	TableName  = "offerings"
	EntityName = "offering"

	FieldID       = "id"
	FieldTenantID = "tenant_id"
	FieldActive   = "active"
)

// Offering is a bookable service such as boarding or daycare.
type Offering struct {
	ID       string `db:"id"`
	TenantID string `db:"tenant_id"`
	Name     string `db:"name"`
	Kind     string `db:"kind"`
	Active   bool   `db:"active"`
	model.Metadata
}
