package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLocomotiveMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locomotive_metrics.csv")
	rows := []LocomotiveMetric{
		{LocomotiveID: "loco1", BusyMinutes: 30, TotalMinutes: 100, UtilisationRatio: 0.3},
	}

	require.NoError(t, WriteLocomotiveMetrics(path, rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "loco1")
	assert.Contains(t, string(data), "0.3")
}

func TestWriteBottlenecks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bottlenecks.csv")
	rows := []Bottleneck{
		{Kind: BottleneckTrack, SubjectID: "r1", Threshold: 0.2, Ratio: 0.5, Duration: 40, Severity: 12},
	}

	require.NoError(t, WriteBottlenecks(path, rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "track_occupancy")
	assert.Contains(t, string(data), "r1")
}

func TestWriteLocomotiveMetrics_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, WriteLocomotiveMetrics(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "locomotive_id,busy_minutes,total_minutes,utilisation_ratio\n", string(data))
}
