package dto

import "time"

const (
	RunStateClean        = "clean"
	RunStateDegraded     = "degraded"
	RunStateInconsistent = "inconsistent"
)

type UnmappableRecord struct {
	ExternalID   string `json:"external_id"`
	MissingKind  string `json:"missing_kind"`
	MissingRefID string `json:"missing_ref_id"`
}

type InvalidRecord struct {
	ExternalID string `json:"external_id"`
	Reason     string `json:"reason"`
}

type DeferredRecord struct {
	ExternalID string `json:"external_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	PoolSize   int    `json:"pool_size"`
}

type FailedChunk struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

// SyncReport is the outcome of one reservation reconciliation pass. Per-record
// problems accumulate here instead of aborting the run.
type SyncReport struct {
	TenantID     string             `json:"tenant_id"`
	WindowStart  string             `json:"window_start"`
	WindowEnd    string             `json:"window_end"`
	StartedAt    time.Time          `json:"started_at"`
	FinishedAt   time.Time          `json:"finished_at"`
	Fetched      int                `json:"fetched"`
	Created      int                `json:"created"`
	Updated      int                `json:"updated"`
	Unchanged    int                `json:"unchanged"`
	Unmappable   []UnmappableRecord `json:"unmappable,omitempty"`
	Invalid      []InvalidRecord    `json:"invalid,omitempty"`
	Deferred     []DeferredRecord   `json:"deferred,omitempty"`
	FailedChunks []FailedChunk      `json:"failed_chunks,omitempty"`
}

// State reports clean when every fetched record landed, degraded when any
// record or chunk was skipped.
func (r *SyncReport) State() string {
	if len(r.Unmappable) > 0 || len(r.Invalid) > 0 || len(r.Deferred) > 0 || len(r.FailedChunks) > 0 {
		return RunStateDegraded
	}

	return RunStateClean
}

type EntitySyncReport struct {
	Kind       string             `json:"kind"`
	Fetched    int                `json:"fetched"`
	Created    int                `json:"created"`
	Updated    int                `json:"updated"`
	Unchanged  int                `json:"unchanged"`
	Unmappable []UnmappableRecord `json:"unmappable,omitempty"`
	Invalid    []InvalidRecord    `json:"invalid,omitempty"`
}

// SyncAllReport covers a dependency-ordered full sync: offerings, then
// customers, then pets, then reservations.
type SyncAllReport struct {
	Offerings    EntitySyncReport `json:"offerings"`
	Customers    EntitySyncReport `json:"customers"`
	Pets         EntitySyncReport `json:"pets"`
	Reservations SyncReport       `json:"reservations"`
}

func (r *SyncAllReport) State() string {
	for _, entity := range []EntitySyncReport{r.Offerings, r.Customers, r.Pets} {
		if len(entity.Unmappable) > 0 || len(entity.Invalid) > 0 {
			return RunStateDegraded
		}
	}

	return r.Reservations.State()
}
