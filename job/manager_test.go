package job

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inkmachine/polarsketch"
	"github.com/inkmachine/polarsketch/firmware"
	"github.com/inkmachine/polarsketch/geom"
)

func TestDrawingJobManagerDryRunRequiresNoFirmwareClient(t *testing.T) {
	m := NewDrawingJobManager(nil, geom.Rect{}, geom.Rect{}, firmware.Calibration{}, nil)
	gen := &polarsketch.PathGenerator{}

	id, err := m.StartDrawingJob(context.Background(), gen, true, false)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	m.Stop()
}

func TestDrawingJobManagerLiveRunWithoutClientErrors(t *testing.T) {
	m := NewDrawingJobManager(nil, geom.Rect{}, geom.Rect{}, firmware.Calibration{}, nil)
	gen := &polarsketch.PathGenerator{}

	_, err := m.StartDrawingJob(context.Background(), gen, false, false)
	require.Error(t, err)
}

func TestDrawingJobManagerEnforcesOneJobInvariant(t *testing.T) {
	m := NewDrawingJobManager(nil, geom.Rect{}, geom.Rect{}, firmware.Calibration{}, nil)

	id1, err := m.StartDrawingJob(context.Background(), &polarsketch.PathGenerator{}, true, false)
	require.NoError(t, err)
	first := m.current

	id2, err := m.StartDrawingJob(context.Background(), &polarsketch.PathGenerator{}, true, false)
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)

	select {
	case <-first.Done():
	case <-time.After(time.Second):
		t.Fatal("starting a new job must stop the previous one")
	}
	m.Stop()
}

func TestDrawingJobManagerAddObserverRequiresActiveJob(t *testing.T) {
	m := NewDrawingJobManager(nil, geom.Rect{}, geom.Rect{}, firmware.Calibration{}, nil)
	_, _, err := m.AddObserver(&stubObserver{failAt: -1})
	require.Error(t, err)
}
