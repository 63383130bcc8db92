package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kthorson/sidepotbot/internal/config"
)

func TestNewSchedulerRejectsBadCron(t *testing.T) {
	_, err := NewScheduler(nil, config.Schedule{Cron: "not a cron"}, nil)
	assert.ErrorContains(t, err, "invalid schedule cron")
}

func TestNewSchedulerRejectsBadLocation(t *testing.T) {
	_, err := NewScheduler(nil, config.Schedule{Location: "Mars/Olympus"}, nil)
	assert.ErrorContains(t, err, "failed to load location")
}

func TestNewSchedulerAcceptsCronOverride(t *testing.T) {
	s, err := NewScheduler(nil, config.Schedule{Location: "America/Chicago", Cron: "30 7 * * 2"}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	assert.NoError(t, s.Stop())
}

func TestNewSchedulerDefaults(t *testing.T) {
	s, err := NewScheduler(nil, config.Schedule{}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	assert.NoError(t, s.Stop())
}
