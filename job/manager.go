package job

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/inkmachine/polarsketch"
	"github.com/inkmachine/polarsketch/firmware"
	"github.com/inkmachine/polarsketch/geom"
)

// DrawingJobManager keeps at most one DrawingJob live: starting a new
// one first stops whichever job is running.
type DrawingJobManager struct {
	firmwareClient *firmware.Client
	canvas         geom.Rect
	baseRect       geom.Rect
	calibration    firmware.Calibration
	log            *zap.SugaredLogger

	mu        sync.Mutex
	current   *DrawingJob
	broadcast *BroadcastConsumer
	jobSeq    uint64
}

// NewDrawingJobManager builds a manager. firmwareClient may be nil if
// every job started through it will be a dry run. baseRect is the
// plotter base's no-go footprint in canvas coordinates (see
// config.Machine.BaseRect), validated against canvas on every live job.
func NewDrawingJobManager(firmwareClient *firmware.Client, canvas, baseRect geom.Rect, cal firmware.Calibration, log *zap.SugaredLogger) *DrawingJobManager {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &DrawingJobManager{firmwareClient: firmwareClient, canvas: canvas, baseRect: baseRect, calibration: cal, log: log}
}

// StartDrawingJob stops any currently running job, then starts a new
// one over generator. A firmware consumer is included only when
// dryRun is false; angleCorrection is replayed to the firmware
// verbatim before the job's first point. Returns the new job's id.
func (m *DrawingJobManager) StartDrawingJob(ctx context.Context, generator *polarsketch.PathGenerator, dryRun, angleCorrection bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.current.Stop(true)
	}

	id := fmt.Sprintf("job-%d", atomic.AddUint64(&m.jobSeq, 1))
	bc := NewBroadcastConsumer(id, m.log)
	consumers := []Consumer{bc}

	if !dryRun {
		if m.firmwareClient == nil {
			return "", fmt.Errorf("job: dryRun=false requires a configured firmware client")
		}
		if err := m.firmwareClient.SetAngleCorrection(ctx, angleCorrection); err != nil {
			return "", fmt.Errorf("job: set angle correction: %w", err)
		}
		fc := NewFirmwareConsumer(m.firmwareClient, m.canvas, m.baseRect, m.calibration, m.log)
		consumers = append([]Consumer{fc}, consumers...)
	}

	j := NewDrawingJob(id, generator, consumers, m.log)
	m.current = j
	m.broadcast = bc
	j.Start(ctx)
	return id, nil
}

// Stop stops the currently running job, if any, and waits for it to
// finish shutting down.
func (m *DrawingJobManager) Stop() {
	m.mu.Lock()
	j := m.current
	m.mu.Unlock()
	if j != nil {
		j.Stop(true)
	}
}

// AddObserver subscribes o to the live job's broadcast consumer,
// returning its id and a channel closed when the job finishes.
func (m *DrawingJobManager) AddObserver(o Observer) (ObserverID, <-chan struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broadcast == nil || m.current == nil {
		return 0, nil, fmt.Errorf("job: no active job")
	}
	id := m.broadcast.AddObserver(o)
	return id, m.current.Done(), nil
}
