package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/frostdev-ops/kbd-backlight-go/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"), logger.NewQuiet())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Record(Transition{Timestamp: base, Brightness: 2, Previous: 0, Reason: "schedule", Profile: "home"}))
	require.NoError(t, s.Record(Transition{Timestamp: base.Add(time.Minute), Brightness: 0, Previous: 2, Reason: "idle", Profile: "home"}))

	got, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first.
	assert.Equal(t, 0, got[0].Brightness)
	assert.Equal(t, "idle", got[0].Reason)
	assert.Equal(t, 2, got[1].Brightness)
}

func TestRecentHonorsLimit(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(Transition{
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			Brightness: i % 3,
			Reason:     "schedule",
			Profile:    "home",
		}))
	}

	got, err := s.Recent(3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestRecentEmptyStore(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
