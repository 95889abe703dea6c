package model

import (
	"database/sql"
	"time"

	"suitesync/shared/model"
)

const (
	TableName  = "reservations"
	EntityName = "reservation"

	FieldID           = "id"
	FieldTenantID     = "tenant_id"
	FieldCustomerID   = "customer_id"
	FieldPetID        = "pet_id"
	FieldOfferingID   = "offering_id"
	FieldResourceID   = "resource_id"
	FieldStartDate    = "start_date"
	FieldEndDate      = "end_date"
	FieldStatus       = "status"
	FieldExternalID   = "external_id"
	FieldCheckedInAt  = "checked_in_at"
	FieldCheckedOutAt = "checked_out_at"
	FieldNotes        = "notes"
)

const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCheckedIn = "CHECKED_IN"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// ActiveStatuses are the lifecycle states subject to the no-overlap invariant.
// Cancelled and completed reservations may legitimately share a slot with
// later bookings.
func ActiveStatuses() []string {
	return []string{StatusPending, StatusConfirmed, StatusCheckedIn}
}

// Window is a half-open time interval [Start, End). The end instant is
// excluded, so back-to-back stays on the same resource do not conflict.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Intersects(other Window) bool {
	return w.Start.Before(other.End) && w.End.After(other.Start)
}

func (w Window) Valid() bool {
	return w.Start.Before(w.End)
}

type Reservation struct {
	ID           string         `db:"id"`
	TenantID     string         `db:"tenant_id"`
	CustomerID   string         `db:"customer_id"`
	PetID        string         `db:"pet_id"`
	OfferingID   string         `db:"offering_id"`
	ResourceID   sql.NullString `db:"resource_id"`
	StartDate    time.Time      `db:"start_date"`
	EndDate      time.Time      `db:"end_date"`
	Status       string         `db:"status"`
	ExternalID   sql.NullString `db:"external_id"`
	CheckedInAt  sql.NullTime   `db:"checked_in_at"`
	CheckedOutAt sql.NullTime   `db:"checked_out_at"`
	Notes        string         `db:"notes"`
	model.Metadata
}

func (r *Reservation) Window() Window {
	return Window{Start: r.StartDate, End: r.EndDate}
}

func (r *Reservation) IsActive() bool {
	switch r.Status {
	case StatusPending, StatusConfirmed, StatusCheckedIn:
		return true
	default:
		return false
	}
}

// ViolationPair is one row of the overlap self-join: two active reservations
// of the same tenant occupying the same resource during intersecting windows.
type ViolationPair struct {
	ResourceID string `db:"resource_id"`
	FirstID    string `db:"first_id"`
	SecondID   string `db:"second_id"`
}

type StatusCount struct {
	Status string `db:"status"`
	Total  int    `db:"total"`
}

type CategoryCount struct {
	Category string `db:"category"`
	Total    int    `db:"total"`
}
