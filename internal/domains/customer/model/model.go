package model

import "suitesync/shared/model"

const (
	TableName  = "customers"
	EntityName = "customer"

	FieldID       = "id"
	FieldTenantID = "tenant_id"
	FieldEmail    = "email"
)

type Customer struct {
	ID        string `db:"id"`
	TenantID  string `db:"tenant_id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Email     string `db:"email"`
	Phone     string `db:"phone"`
	model.Metadata
}
