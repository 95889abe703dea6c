package upstream

import "time"

// Wire shapes of the boarding provider API. Marker timestamps are pointers:
// absent means the event never happened.

type ReservationRecord struct {
	ID           string     `json:"id"                      validate:"required"`
	OwnerID      string     `json:"owner_id"                validate:"required"`
	AnimalID     string     `json:"animal_id"               validate:"required"`
	TypeID       string     `json:"type_id"                 validate:"required"`
	StartDate    time.Time  `json:"start_date"              validate:"required"`
	EndDate      time.Time  `json:"end_date"                validate:"required,gtfield=StartDate"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

type OwnerRecord struct {
	ID        string `json:"id"         validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type AnimalRecord struct {
	ID        string  `json:"id"       validate:"required"`
	OwnerID   string  `json:"owner_id" validate:"required"`
	Name      string  `json:"name"     validate:"required"`
	Breed     string  `json:"breed"`
	WeightLbs float64 `json:"weight_lbs"`
}

type ReservationTypeRecord struct {
	ID     string `json:"id"   validate:"required"`
	Name   string `json:"name" validate:"required"`
	Kind   string `json:"kind"`
	Active bool   `json:"active"`
}

type reservationsEnvelope struct {
	Data []ReservationRecord `json:"data"`
}

type ownersEnvelope struct {
	Data []OwnerRecord `json:"data"`
}

type animalsEnvelope struct {
	Data []AnimalRecord `json:"data"`
}

type reservationTypesEnvelope struct {
	Data []ReservationTypeRecord `json:"data"`
}
