package cli

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/stockroom/jobs"
)

func TestBuildTask(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	task, err := BuildTask(jobs.TaskLowStockScan, "tools", now)
	require.NoError(t, err)
	var scan jobs.LowStockScanPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &scan))
	require.Equal(t, "tools", scan.Category)
	require.True(t, scan.ScheduledFor.Equal(now))

	task, err = BuildTask(jobs.TaskCacheWarmup, "", now)
	require.NoError(t, err)
	var warm jobs.CacheWarmupPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &warm))
	require.Equal(t, "manual", warm.Reason)

	_, err = BuildTask("mail:send", "", now)
	require.Error(t, err)
}

func TestNilJobsCLI(t *testing.T) {
	var c *JobsCLI
	_, err := c.Trigger(context.Background(), jobs.TaskLowStockScan, "")
	require.Error(t, err)
	_, err = c.InspectQueue(context.Background())
	require.Error(t, err)
}
