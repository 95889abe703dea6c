package model

import "suitesync/shared/model"

const (
	TableName  = "pets"
	EntityName = "pet"

	FieldID        = "id"
	FieldTenantID  = "tenant_id"
	FieldSizeClass = "size_class"
)

const (
	SizeClassSmall  = "small"
	SizeClassMedium = "medium"
	SizeClassLarge  = "large"
)

type Pet struct {
	ID         string `db:"id"`
	TenantID   string `db:"tenant_id"`
	CustomerID string `db:"customer_id"`
	Name       string `db:"name"`
	Breed      string `db:"breed"`
	SizeClass  string `db:"size_class"`
	model.Metadata
}
