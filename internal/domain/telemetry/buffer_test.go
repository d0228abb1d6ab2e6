package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleWithVoltage(v float64) Sample {
	return Sample{
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		DeviceID:  "panel-01",
		Voltage:   v,
	}
}

func TestSequenceBufferEvictsOldestWhenFull(t *testing.T) {
	buf := NewSequenceBuffer(3)
	for i := 1; i <= 5; i++ {
		buf.Push("panel-01", sampleWithVoltage(float64(i)))
	}

	window := buf.Snapshot("panel-01")
	require.Len(t, window, 3)
	require.Equal(t, 3.0, window[0].Voltage)
	require.Equal(t, 5.0, window[2].Voltage)
}

func TestSequenceBufferWindowsAreIndependent(t *testing.T) {
	buf := NewSequenceBuffer(10)
	buf.Push("panel-01", sampleWithVoltage(11))
	buf.Push("panel-02", sampleWithVoltage(12))

	require.Len(t, buf.Snapshot("panel-01"), 1)
	require.Len(t, buf.Snapshot("panel-02"), 1)
	require.ElementsMatch(t, []string{"panel-01", "panel-02"}, buf.Devices())
}

func TestSnapshotIsACopy(t *testing.T) {
	buf := NewSequenceBuffer(10)
	buf.Push("panel-01", sampleWithVoltage(11))

	window := buf.Snapshot("panel-01")
	window[0].Voltage = 99

	require.Equal(t, 11.0, buf.Snapshot("panel-01")[0].Voltage)
}

func TestSnapshotUnknownDeviceIsEmpty(t *testing.T) {
	buf := NewSequenceBuffer(10)
	require.Empty(t, buf.Snapshot("ghost"))
}
