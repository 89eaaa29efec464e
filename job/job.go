// Package job drives one drawing at a time: it pulls the point stream
// from a polarsketch.PathGenerator and fans each command out to a set
// of consumers — typically the firmware link and a live-preview
// broadcaster — until the stream ends or the job is stopped.
package job

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/inkmachine/polarsketch"
)

// warmup is the short delay run() waits before doing anything, so a
// caller that just received a job id back from StartDrawingJob has a
// chance to act on it (e.g. subscribe an observer) before the first
// command is consumed.
const warmup = 50 * time.Millisecond

// shutdownTimeout bounds the grace period given to consumers to drain
// and home after the job's own ctx has already been canceled — using
// that same ctx here would make every Shutdown call fail instantly.
const shutdownTimeout = 5 * time.Second

// Consumer receives the command stream of one drawing job.
type Consumer interface {
	Init(ctx context.Context) error
	Consume(ctx context.Context, cmd polarsketch.Command) error
	Shutdown(ctx context.Context) error
}

// DrawingJob owns a generator and drives a fixed list of consumers,
// initialized and shut down in declaration order.
type DrawingJob struct {
	id        string
	generator *polarsketch.PathGenerator
	consumers []Consumer
	log       *zap.SugaredLogger

	cancel   context.CancelFunc
	stopFlag int32
	done     chan struct{}
}

// NewDrawingJob builds a DrawingJob. Call Start to run it.
func NewDrawingJob(id string, generator *polarsketch.PathGenerator, consumers []Consumer, log *zap.SugaredLogger) *DrawingJob {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &DrawingJob{id: id, generator: generator, consumers: consumers, log: log}
}

// ID returns the job's id.
func (j *DrawingJob) ID() string { return j.id }

// Done returns a channel closed once the job's worker has returned
// (stream exhausted, stopped, or a consumer failed to initialize).
func (j *DrawingJob) Done() <-chan struct{} { return j.done }

// Start launches the background worker.
func (j *DrawingJob) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.done = make(chan struct{})
	go j.run(ctx)
}

// Stop requests the worker stop consuming further points. If wait is
// true, Stop blocks until the worker (including every consumer's
// Shutdown) has returned.
func (j *DrawingJob) Stop(wait bool) {
	atomic.StoreInt32(&j.stopFlag, 1)
	if j.cancel != nil {
		j.cancel()
	}
	if wait && j.done != nil {
		<-j.done
	}
}

func (j *DrawingJob) run(ctx context.Context) {
	defer close(j.done)

	select {
	case <-time.After(warmup):
	case <-ctx.Done():
		return
	}

	for _, c := range j.consumers {
		if err := c.Init(ctx); err != nil {
			j.log.Errorw("consumer init failed, aborting job", "job", j.id, "error", err)
			return
		}
	}
	defer j.shutdownConsumers()

	cmds, errc := j.generator.Generate(ctx)
	for {
		if atomic.LoadInt32(&j.stopFlag) != 0 {
			return
		}
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-cmds:
			if !ok {
				if err := <-errc; err != nil {
					j.log.Warnw("path generator ended with error", "job", j.id, "error", err)
				}
				return
			}
			for _, c := range j.consumers {
				if err := c.Consume(ctx, cmd); err != nil {
					j.log.Warnw("consumer error", "job", j.id, "error", err)
				}
			}
		}
	}
}

// shutdownConsumers runs on a fresh context, independent of the
// worker's (by this point already-canceled) ctx, so draining the
// buffer and homing the firmware still get a chance to complete.
func (j *DrawingJob) shutdownConsumers() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, c := range j.consumers {
		if err := c.Shutdown(ctx); err != nil {
			j.log.Warnw("consumer shutdown error", "job", j.id, "error", err)
		}
	}
}
