package model

import "suitesync/shared/model"

const (
	TableName  = "resources"
	EntityName = "resource"

	FieldID       = "id"
	FieldTenantID = "tenant_id"
	FieldName     = "name"
	FieldCategory = "category"
	FieldActive   = "active"
)

// Capacity classes, ordered from largest to smallest suite.
const (
	CategoryPremium      = "premium"
	CategoryStandardPlus = "standard_plus"
	CategoryStandard     = "standard"
)

// CategoryPassOrder is the fixed bucket order for bulk redistribution, so
// later buckets observe the placements made by earlier ones.
func CategoryPassOrder() []string {
	return []string{CategoryPremium, CategoryStandardPlus, CategoryStandard}
}

type Resource struct {
	ID       string `db:"id"`
	TenantID string `db:"tenant_id"`
	Name     string `db:"name"`
	Category string `db:"category"`
	Active   bool   `db:"active"`
	model.Metadata
}
