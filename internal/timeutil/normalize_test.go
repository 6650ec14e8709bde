package timeutil

import (
	"testing"
	"time"

	"github.com/docease/docease-api/internal/domain/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kolkata(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	return loc
}

func TestNormalizeDateTime(t *testing.T) {
	loc := kolkata(t)
	n := NewNormalizer(loc)

	tests := []struct {
		name        string
		input       string
		wantWeekday schedule.Weekday
		wantHour    int
		wantMinute  int
		wantErr     bool
	}{
		{
			// 2026-03-02 is a Monday.
			name:        "date with T and minutes",
			input:       "2026-03-02T09:30",
			wantWeekday: schedule.Monday,
			wantHour:    9,
			wantMinute:  30,
		},
		{
			name:        "date with seconds",
			input:       "2026-03-02T14:00:00",
			wantWeekday: schedule.Monday,
			wantHour:    14,
			wantMinute:  0,
		},
		{
			name:        "space separated",
			input:       "2026-03-07 11:15",
			wantWeekday: schedule.Saturday,
			wantHour:    11,
			wantMinute:  15,
		},
		{
			// 10:00 UTC is 15:30 in Kolkata, still the same Monday.
			name:        "rfc3339 converted into operating zone",
			input:       "2026-03-02T10:00:00Z",
			wantWeekday: schedule.Monday,
			wantHour:    15,
			wantMinute:  30,
		},
		{
			// 20:00 UTC on Monday is 01:30 Tuesday in Kolkata.
			name:        "rfc3339 crossing midnight in operating zone",
			input:       "2026-03-02T20:00:00Z",
			wantWeekday: schedule.Tuesday,
			wantHour:    1,
			wantMinute:  30,
		},
		{name: "date only", input: "2026-03-02", wantErr: true},
		{name: "garbage", input: "next tuesday at noon", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.NormalizeDateTime(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, schedule.ErrInvalidTimeFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantWeekday, got.Weekday)
			assert.Equal(t, tt.wantHour, got.Hour)
			assert.Equal(t, tt.wantMinute, got.Minute)
			assert.Equal(t, loc, got.At.Location())
		})
	}
}

func TestNormalizeDateAndTime(t *testing.T) {
	n := NewNormalizer(kolkata(t))

	t.Run("valid pair", func(t *testing.T) {
		got, err := n.NormalizeDateAndTime("2026-03-03", "10:00")
		require.NoError(t, err)
		assert.Equal(t, schedule.Tuesday, got.Weekday)
		assert.Equal(t, 10, got.Hour)
		assert.Equal(t, 0, got.Minute)
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := n.NormalizeDateAndTime("03/02/2026", "10:00")
		assert.ErrorIs(t, err, schedule.ErrInvalidTimeFormat)
	})

	t.Run("bad clock", func(t *testing.T) {
		_, err := n.NormalizeDateAndTime("2026-03-03", "10am")
		assert.ErrorIs(t, err, schedule.ErrInvalidTimeFormat)
	})
}

func TestNormalizerIgnoresServerLocalTime(t *testing.T) {
	// The same wall-clock input resolves to the same hour regardless of the
	// zone the process happens to run in.
	utc := NewNormalizer(time.UTC)
	kol := NewNormalizer(kolkata(t))

	a, err := utc.NormalizeDateTime("2026-03-02T09:00")
	require.NoError(t, err)
	b, err := kol.NormalizeDateTime("2026-03-02T09:00")
	require.NoError(t, err)

	assert.Equal(t, 9, a.Hour)
	assert.Equal(t, 9, b.Hour)
	assert.False(t, a.At.Equal(b.At), "same wall clock in different zones is a different instant")
}
