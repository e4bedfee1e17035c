package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWhen(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"90m", now.Add(90 * time.Minute)},
		{"+2h", now.Add(2 * time.Hour)},
		{"18:30", time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)},
		{"09:00", time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)},
		{"2026-03-12 08:15", time.Date(2026, 3, 12, 8, 15, 0, 0, time.UTC)},
		{"2026-03-12T08:15:00Z", time.Date(2026, 3, 12, 8, 15, 0, 0, time.UTC)},
		{"2026-03-12", time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseWhen(tt.in, now)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := parseWhen("someday", now)
	assert.Error(t, err)
	_, err = parseWhen("", now)
	assert.Error(t, err)
}

func TestParseOptionalWhen(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	got, err := parseOptionalWhen("none", now)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseOptionalWhen("1h", now)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, now.Add(time.Hour).Equal(*got))
}
