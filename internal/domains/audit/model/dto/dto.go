package dto

import "time"

// ViolationGroup is one resource whose active reservations intersect.
type ViolationGroup struct {
	ResourceID     string   `json:"resource_id"`
	ReservationIDs []string `json:"reservation_ids"`
}

type MovedReservation struct {
	ReservationID  string `json:"reservation_id"`
	FromResourceID string `json:"from_resource_id"`
	ToResourceID   string `json:"to_resource_id"`
}

// AuditReport is the outcome of a validation or repair pass. Unrepairable
// reservations are surfaced separately and never counted as successes.
type AuditReport struct {
	TenantID     string             `json:"tenant_id"`
	CheckedAt    time.Time          `json:"checked_at"`
	Violations   []ViolationGroup   `json:"violations,omitempty"`
	Moved        []MovedReservation `json:"moved,omitempty"`
	Unrepairable []string           `json:"unrepairable,omitempty"`
	Remaining    int                `json:"remaining"`
}

func (r *AuditReport) Clean() bool {
	return r.Remaining == 0 && len(r.Unrepairable) == 0
}

type RebalanceMove struct {
	ReservationID  string `json:"reservation_id"`
	FromResourceID string `json:"from_resource_id,omitempty"`
	ToResourceID   string `json:"to_resource_id"`
	Category       string `json:"category"`
}

type DeferredPlacement struct {
	ReservationID string `json:"reservation_id"`
	Category      string `json:"category"`
	Reason        string `json:"reason"`
}

// RebalanceReport is the outcome of a category-aware redistribution pass.
type RebalanceReport struct {
	TenantID  string              `json:"tenant_id"`
	CheckedAt time.Time           `json:"checked_at"`
	Total     int                 `json:"total"`
	Kept      int                 `json:"kept"`
	Moved     []RebalanceMove     `json:"moved,omitempty"`
	Deferred  []DeferredPlacement `json:"deferred,omitempty"`
}
