package adapters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	t.Run("rfc3339", func(t *testing.T) {
		got := ParseTime("2024-04-02T11:30:00Z")
		require.NotNil(t, got)
		assert.Equal(t, time.Date(2024, 4, 2, 11, 30, 0, 0, time.UTC), got.UTC())
	})

	t.Run("rfc3339 with offset", func(t *testing.T) {
		got := ParseTime("2024-04-02T13:30:00+02:00")
		require.NotNil(t, got)
		assert.Equal(t, time.Date(2024, 4, 2, 11, 30, 0, 0, time.UTC), got.UTC())
	})

	t.Run("wordpress gmt layout", func(t *testing.T) {
		got := ParseTime("2023-11-05T08:00:00")
		require.NotNil(t, got)
		assert.Equal(t, time.Date(2023, 11, 5, 8, 0, 0, 0, time.UTC), got.UTC())
	})

	t.Run("garbage", func(t *testing.T) {
		assert.Nil(t, ParseTime("yesterday-ish"))
	})

	t.Run("absent", func(t *testing.T) {
		assert.Nil(t, ParseTime(nil))
		assert.Nil(t, ParseTime(""))
	})

	t.Run("non-string", func(t *testing.T) {
		assert.Nil(t, ParseTime(float64(1700000000)))
	})
}

func TestUpdatedAtOrNow(t *testing.T) {
	t.Run("uses updated when parsable", func(t *testing.T) {
		got := updatedAtOrNow("2024-04-02T11:30:00Z", "2024-03-01T10:00:00Z")
		assert.Equal(t, time.Date(2024, 4, 2, 11, 30, 0, 0, time.UTC), got.UTC())
	})

	t.Run("falls back to published", func(t *testing.T) {
		got := updatedAtOrNow(nil, "2024-03-01T10:00:00Z")
		assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), got.UTC())
	})

	t.Run("falls back to now", func(t *testing.T) {
		before := time.Now().UTC()
		got := updatedAtOrNow(nil, nil)
		assert.False(t, got.Before(before))
	})
}
