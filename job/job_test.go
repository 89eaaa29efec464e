package job

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inkmachine/polarsketch"
)

// recordingConsumer counts lifecycle calls and every command it sees;
// it can optionally fail Init to exercise the abort path.
type recordingConsumer struct {
	mu             sync.Mutex
	inited         bool
	shutdown       bool
	cmds           []polarsketch.Command
	failInit       bool
	shutdownCtxErr error
}

func (c *recordingConsumer) Init(ctx context.Context) error {
	if c.failInit {
		return context.DeadlineExceeded
	}
	c.mu.Lock()
	c.inited = true
	c.mu.Unlock()
	return nil
}

func (c *recordingConsumer) Consume(ctx context.Context, cmd polarsketch.Command) error {
	c.mu.Lock()
	c.cmds = append(c.cmds, cmd)
	c.mu.Unlock()
	return nil
}

func (c *recordingConsumer) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	c.shutdown = true
	c.shutdownCtxErr = ctx.Err()
	c.mu.Unlock()
	return nil
}

func (c *recordingConsumer) commandCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cmds)
}

func TestDrawingJobInitsAndShutsDownEveryConsumerAndCompletes(t *testing.T) {
	gen := &polarsketch.PathGenerator{}
	c1, c2 := &recordingConsumer{}, &recordingConsumer{}
	j := NewDrawingJob("job-1", gen, []Consumer{c1, c2}, nil)

	j.Start(context.Background())
	select {
	case <-j.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("job did not finish on an empty path generator")
	}

	require.True(t, c1.inited)
	require.True(t, c1.shutdown)
	require.True(t, c2.inited)
	require.True(t, c2.shutdown)
}

func TestDrawingJobAbortsWhenConsumerInitFails(t *testing.T) {
	gen := &polarsketch.PathGenerator{}
	bad := &recordingConsumer{failInit: true}
	good := &recordingConsumer{}
	j := NewDrawingJob("job-2", gen, []Consumer{bad, good}, nil)

	j.Start(context.Background())
	select {
	case <-j.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("job did not finish after a failing Init")
	}

	require.False(t, good.inited, "a consumer after a failed Init must never be initialized")
}

func TestDrawingJobStopIsResponsive(t *testing.T) {
	gen := &polarsketch.PathGenerator{}
	c := &recordingConsumer{}
	j := NewDrawingJob("job-3", gen, []Consumer{c}, nil)

	j.Start(context.Background())
	// Stop before the warmup delay elapses: the worker must never reach
	// its Init/Consume loop at all.
	j.Stop(true)

	select {
	case <-j.Done():
	default:
		t.Fatal("expected Done() to be closed after Stop(true) returns")
	}
	require.Equal(t, 0, c.commandCount())
	require.False(t, c.inited, "stopping before warmup elapses must skip Init entirely")
}

func TestDrawingJobShutdownRunsOnLiveContextAfterStop(t *testing.T) {
	gen := &polarsketch.PathGenerator{}
	c := &recordingConsumer{}
	j := NewDrawingJob("job-4", gen, []Consumer{c}, nil)

	j.Start(context.Background())
	require.Eventually(t, func() bool { return c.inited }, 2*time.Second, time.Millisecond,
		"consumer must be initialized before we stop the job")

	j.Stop(true)

	require.True(t, c.shutdown)
	require.NoError(t, c.shutdownCtxErr,
		"Shutdown must run on a context independent of the worker's canceled one")
}
