package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"suitesync/internal/domains/reservation/model"
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestWindow_Intersects(t *testing.T) {
	tests := []struct {
		name string
		a    model.Window
		b    model.Window
		want bool
	}{
		{
			name: "overlapping windows",
			a:    model.Window{Start: day(1), End: day(5)},
			b:    model.Window{Start: day(3), End: day(8)},
			want: true,
		},
		{
			name: "contained window",
			a:    model.Window{Start: day(1), End: day(10)},
			b:    model.Window{Start: day(3), End: day(5)},
			want: true,
		},
		{
			name: "identical windows",
			a:    model.Window{Start: day(1), End: day(5)},
			b:    model.Window{Start: day(1), End: day(5)},
			want: true,
		},
		{
			name: "back to back stays do not conflict",
			a:    model.Window{Start: day(1), End: day(5)},
			b:    model.Window{Start: day(5), End: day(9)},
			want: false,
		},
		{
			name: "disjoint windows",
			a:    model.Window{Start: day(1), End: day(3)},
			b:    model.Window{Start: day(7), End: day(9)},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Intersects(tt.b))
			assert.Equal(t, tt.want, tt.b.Intersects(tt.a), "intersection must be symmetric")
		})
	}
}

func TestWindow_Valid(t *testing.T) {
	assert.True(t, model.Window{Start: day(1), End: day(2)}.Valid())
	assert.False(t, model.Window{Start: day(2), End: day(1)}.Valid())
	assert.False(t, model.Window{Start: day(1), End: day(1)}.Valid())
}

func TestReservation_IsActive(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{model.StatusPending, true},
		{model.StatusConfirmed, true},
		{model.StatusCheckedIn, true},
		{model.StatusCompleted, false},
		{model.StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			reservation := model.Reservation{Status: tt.status}
			assert.Equal(t, tt.want, reservation.IsActive())
		})
	}
}
