package service

import (
	"database/sql"
	"time"

	petModel "suitesync/internal/domains/pet/model"
	reservationModel "suitesync/internal/domains/reservation/model"
	"suitesync/internal/upstream"
)

// DeriveStatus maps upstream lifecycle markers onto a local status. A record
// accumulates markers over its life, so precedence is cancellation, then
// check-out, then check-in, then confirmation; first match wins.
func DeriveStatus(record upstream.ReservationRecord) string {
	switch {
	case record.CancelledAt != nil:
		return reservationModel.StatusCancelled
	case record.CheckedOutAt != nil:
		return reservationModel.StatusCompleted
	case record.CheckedInAt != nil:
		return reservationModel.StatusCheckedIn
	case record.ConfirmedAt != nil:
		return reservationModel.StatusConfirmed
	default:
		return reservationModel.StatusPending
	}
}

func markerTime(marker *time.Time) sql.NullTime {
	if marker == nil {
		return sql.NullTime{}
	}

	return sql.NullTime{Time: *marker, Valid: true}
}

// SizeClassForWeight buckets an animal into the capacity class its suite
// must support.
func SizeClassForWeight(weightLbs float64) string {
	switch {
	case weightLbs > largeWeightLbs:
		return petModel.SizeClassLarge
	case weightLbs > mediumWeightLbs:
		return petModel.SizeClassMedium
	default:
		return petModel.SizeClassSmall
	}
}

const (
	mediumWeightLbs = 25.0
	largeWeightLbs  = 60.0
)

func nullTimesEqual(a, b sql.NullTime) bool {
	if a.Valid != b.Valid {
		return false
	}

	return !a.Valid || a.Time.Equal(b.Time)
}
