package events

//go:generate go run go.uber.org/mock/mockgen -source=./publisher.go -destination=./mocks/publisher_mock.go -package=mocks

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"suitesync/config"
	"suitesync/infras/kafka"
	"suitesync/shared/timezone"
)

const (
	KeyReservationAllocated  = "reservation.allocated"
	KeyReservationReassigned = "reservation.reassigned"
	KeySyncCompleted         = "sync.completed"
)

// Publisher emits scheduling events for downstream consumers (billing,
// notifications). Publishing is best-effort: a broker failure is logged,
// never propagated into the scheduling path.
type Publisher interface {
	ReservationAllocated(ctx context.Context, tenantID, reservationID, resourceID string)
	ReservationReassigned(ctx context.Context, tenantID, reservationID, fromResourceID, toResourceID string)
	SyncCompleted(ctx context.Context, tenantID string, summary any)
}

type ReservationEvent struct {
	TenantID       string    `json:"tenant_id"`
	ReservationID  string    `json:"reservation_id"`
	ResourceID     string    `json:"resource_id,omitempty"`
	FromResourceID string    `json:"from_resource_id,omitempty"`
	ToResourceID   string    `json:"to_resource_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type SyncEvent struct {
	TenantID   string    `json:"tenant_id"`
	Summary    any       `json:"summary"`
	OccurredAt time.Time `json:"occurred_at"`
}

type publisherImpl struct {
	config *config.Config
	client kafka.Client
}

func New(cfg *config.Config, client kafka.Client) Publisher {
	return &publisherImpl{
		config: cfg,
		client: client,
	}
}

func (p *publisherImpl) ReservationAllocated(ctx context.Context, tenantID, reservationID, resourceID string) {
	p.send(ctx, KeyReservationAllocated, ReservationEvent{
		TenantID:      tenantID,
		ReservationID: reservationID,
		ResourceID:    resourceID,
		OccurredAt:    timezone.Now(),
	})
}

func (p *publisherImpl) ReservationReassigned(ctx context.Context, tenantID, reservationID, fromResourceID, toResourceID string) {
	p.send(ctx, KeyReservationReassigned, ReservationEvent{
		TenantID:       tenantID,
		ReservationID:  reservationID,
		FromResourceID: fromResourceID,
		ToResourceID:   toResourceID,
		OccurredAt:     timezone.Now(),
	})
}

func (p *publisherImpl) SyncCompleted(ctx context.Context, tenantID string, summary any) {
	p.send(ctx, KeySyncCompleted, SyncEvent{
		TenantID:   tenantID,
		Summary:    summary,
		OccurredAt: timezone.Now(),
	})
}

func (p *publisherImpl) send(ctx context.Context, key string, value any) {
	if !p.config.Kafka.Enable {
		return
	}

	message := kafka.Message{Key: key, Value: value}

	if err := p.client.SendMessages(ctx, p.config.Kafka.Topic, message); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to publish event")
	}
}
