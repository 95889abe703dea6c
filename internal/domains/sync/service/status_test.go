package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	petModel "suitesync/internal/domains/pet/model"
	reservationModel "suitesync/internal/domains/reservation/model"
	"suitesync/internal/domains/sync/service"
	"suitesync/internal/upstream"
)

func TestDeriveStatus(t *testing.T) {
	mark := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		record upstream.ReservationRecord
		want   string
	}{
		{
			name:   "no markers means pending",
			record: upstream.ReservationRecord{},
			want:   reservationModel.StatusPending,
		},
		{
			name:   "confirmation marker",
			record: upstream.ReservationRecord{ConfirmedAt: &mark},
			want:   reservationModel.StatusConfirmed,
		},
		{
			name:   "check-in outranks confirmation",
			record: upstream.ReservationRecord{ConfirmedAt: &mark, CheckedInAt: &mark},
			want:   reservationModel.StatusCheckedIn,
		},
		{
			name:   "check-out outranks check-in",
			record: upstream.ReservationRecord{ConfirmedAt: &mark, CheckedInAt: &mark, CheckedOutAt: &mark},
			want:   reservationModel.StatusCompleted,
		},
		{
			name:   "cancellation outranks everything",
			record: upstream.ReservationRecord{ConfirmedAt: &mark, CheckedInAt: &mark, CheckedOutAt: &mark, CancelledAt: &mark},
			want:   reservationModel.StatusCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.DeriveStatus(tt.record))
		})
	}
}

func TestSizeClassForWeight(t *testing.T) {
	tests := []struct {
		weight float64
		want   string
	}{
		{10, petModel.SizeClassSmall},
		{25, petModel.SizeClassSmall},
		{25.5, petModel.SizeClassMedium},
		{60, petModel.SizeClassMedium},
		{61, petModel.SizeClassLarge},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, service.SizeClassForWeight(tt.weight))
	}
}
