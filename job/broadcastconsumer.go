package job

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/inkmachine/polarsketch"
	"github.com/inkmachine/polarsketch/geom"
)

// ObserverID identifies one subscribed observer connection.
type ObserverID uint64

// Observer is a live-preview subscriber: Send delivers one update,
// Close releases the connection. A Send error removes the observer
// from the broadcast consumer; other observers are unaffected.
type Observer interface {
	Send(update BroadcastUpdate) error
	Close()
}

// BroadcastUpdate is the JSON message shape delivered to observers:
// the list of paths drawn so far, each a list of [x, y] world-mm
// pairs.
type BroadcastUpdate struct {
	Type    string         `json:"type"`
	Payload [][][2]float64 `json:"payload"`
	JobID   string         `json:"job_id,omitempty"`
}

// BroadcastConsumer accumulates drawn paths and fans out a snapshot to
// every subscribed observer each time a path completes. CLOSE_PATH is
// deliberately a no-op here — only the firmware consumer acts on it,
// so the observer's view of a closed path ends where the artwork's
// points did, not with a re-traced closing segment.
type BroadcastConsumer struct {
	jobID string
	log   *zap.SugaredLogger

	mu          sync.Mutex
	drawnPaths  [][]geom.Point
	currentPath []geom.Point
	observers   map[ObserverID]Observer
	nextID      ObserverID
}

// NewBroadcastConsumer builds a consumer tagging its updates with
// jobID.
func NewBroadcastConsumer(jobID string, log *zap.SugaredLogger) *BroadcastConsumer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &BroadcastConsumer{jobID: jobID, log: log, observers: make(map[ObserverID]Observer)}
}

// Init is a no-op: the broadcast consumer has nothing to set up.
func (c *BroadcastConsumer) Init(ctx context.Context) error { return nil }

// Consume appends PathPoints to the in-progress path, and on
// PathEndMarker snapshots it into drawn_paths and broadcasts.
func (c *BroadcastConsumer) Consume(ctx context.Context, cmd polarsketch.Command) error {
	switch v := cmd.(type) {
	case polarsketch.PathPoint:
		c.mu.Lock()
		c.currentPath = append(c.currentPath, v.Point)
		c.mu.Unlock()
	case polarsketch.PathEndMarker:
		c.mu.Lock()
		c.drawnPaths = append(c.drawnPaths, c.currentPath)
		c.currentPath = nil
		c.mu.Unlock()
		c.broadcast()
	}
	return nil
}

// Shutdown broadcasts the final snapshot and closes every observer.
func (c *BroadcastConsumer) Shutdown(ctx context.Context) error {
	c.broadcast()
	c.mu.Lock()
	observers := c.observers
	c.observers = make(map[ObserverID]Observer)
	c.mu.Unlock()
	for _, o := range observers {
		o.Close()
	}
	return nil
}

// AddObserver registers o and immediately delivers the current
// snapshot; a failed initial send removes it right away.
func (c *BroadcastConsumer) AddObserver(o Observer) ObserverID {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.observers[id] = o
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if err := o.Send(snap); err != nil {
		c.log.Warnw("observer initial send failed, removing", "observer", id, "error", err)
		c.removeObserver(id)
	}
	return id
}

func (c *BroadcastConsumer) removeObserver(id ObserverID) {
	c.mu.Lock()
	delete(c.observers, id)
	c.mu.Unlock()
}

func (c *BroadcastConsumer) broadcast() {
	c.mu.Lock()
	snap := c.snapshotLocked()
	targets := make(map[ObserverID]Observer, len(c.observers))
	for id, o := range c.observers {
		targets[id] = o
	}
	c.mu.Unlock()

	for id, o := range targets {
		if err := o.Send(snap); err != nil {
			c.log.Warnw("observer send failed, removing", "observer", id, "error", err)
			c.removeObserver(id)
		}
	}
}

// snapshotLocked must be called with c.mu held.
func (c *BroadcastConsumer) snapshotLocked() BroadcastUpdate {
	payload := make([][][2]float64, len(c.drawnPaths))
	for i, path := range c.drawnPaths {
		pts := make([][2]float64, len(path))
		for j, p := range path {
			pts[j] = [2]float64{p.X, p.Y}
		}
		payload[i] = pts
	}
	return BroadcastUpdate{Type: "update", Payload: payload, JobID: c.jobID}
}
