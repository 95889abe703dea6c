package dto

import (
	"time"

	reservationModel "suitesync/internal/domains/reservation/model"
)

type EntityCounts struct {
	Customers int `json:"customers"`
	Pets      int `json:"pets"`
	Offerings int `json:"offerings"`
	Resources int `json:"resources"`
}

// StatusSummary is a point-in-time operational snapshot of one tenant:
// inventory counts, reservation distribution, and invariant health.
type StatusSummary struct {
	TenantID    string                           `json:"tenant_id"`
	GeneratedAt time.Time                        `json:"generated_at"`
	LastSyncAt  string                           `json:"last_sync_at,omitempty"`
	Entities    EntityCounts                     `json:"entities"`
	ByStatus    []reservationModel.StatusCount   `json:"by_status"`
	ByCategory  []reservationModel.CategoryCount `json:"by_category"`
	Violations  int                              `json:"violations"`
	Consistent  bool                             `json:"consistent"`
}
