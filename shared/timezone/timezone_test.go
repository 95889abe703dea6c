package timezone_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"suitesync/shared/constant"
	"suitesync/shared/timezone"
)

func TestTimezone_ParseAndFormatRoundTrip(t *testing.T) {
	parsed, err := timezone.Parse(constant.DateOnly, "2026-03-01")

	assert.NoError(t, err)
	assert.Equal(t, "2026-03-01", timezone.Format(parsed, constant.DateOnly))
	assert.Equal(t, timezone.GetLocation(), parsed.Location())
}

func TestTimezone_ParseRejectsMalformedDate(t *testing.T) {
	_, err := timezone.Parse(constant.DateOnly, "01-03-2026")

	assert.Error(t, err)
}

func TestTimezone_ToAppTimeKeepsInstant(t *testing.T) {
	instant := time.Date(2026, 3, 1, 18, 30, 0, 0, time.FixedZone("UTC+7", 7*3600))

	converted := timezone.ToAppTime(instant)

	assert.True(t, converted.Equal(instant))
	assert.Equal(t, timezone.GetLocation(), converted.Location())
}

func TestTimezone_NowUsesAppLocation(t *testing.T) {
	assert.Equal(t, timezone.GetLocation(), timezone.Now().Location())
}
