package firmware

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// response is what the reader goroutine hands back to whichever
// sendCommand call is currently awaiting one.
type response struct {
	ok bool
}

// Client is the host side of the firmware link: one goroutine owns the
// serial read endpoint and dispatches OK/FAIL/STATUS lines; callers
// serialize through sendCommand the way the device itself is
// serialized — "Ready -> issue command -> Awaiting" admits exactly one
// outstanding command. This collapses pulseaudio's tag-multiplexed
// pending map (many requests in flight, matched by tag) down to a
// single pending slot, since the wire protocol here never has more
// than one request outstanding; the sequence counter is kept anyway,
// for log correlation, as a one-entry echo of that design.
type Client struct {
	transport Transport
	log       *zap.SugaredLogger

	sendMu sync.Mutex

	pendingMu sync.Mutex
	pending   chan response
	seq       uint64

	statusMu sync.Mutex
	status   Status

	ready     chan struct{}
	readyOnce sync.Once
}

// NewClient wraps transport in a Client. A nil logger falls back to a
// no-op logger.
func NewClient(transport Transport, log *zap.SugaredLogger) *Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		transport: transport,
		log:       log,
		ready:     make(chan struct{}),
	}
}

// Open resets the device by toggling DTR low then high, starts the
// background reader, and waits for "SETUP DONE".
func (c *Client) Open(ctx context.Context) error {
	if err := c.transport.SetDTR(false); err != nil {
		return fmt.Errorf("firmware: DTR low: %w", err)
	}
	if err := c.transport.SetDTR(true); err != nil {
		return fmt.Errorf("firmware: DTR high: %w", err)
	}
	go c.readLoop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ready:
		return nil
	}
}

// Close releases the underlying transport.
func (c *Client) Close() error {
	return c.transport.Close()
}

// Status returns the most recently received status snapshot.
func (c *Client) Status() Status {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	return c.status
}

// GetStatus issues GET_STATUS and returns the status snapshot once the
// command completes.
func (c *Client) GetStatus(ctx context.Context) (Status, error) {
	if err := c.sendCommand(ctx, buildGetStatus()); err != nil {
		return Status{}, err
	}
	return c.Status(), nil
}

// SetMode issues SET_MODE.
func (c *Client) SetMode(ctx context.Context, mode Mode) error {
	return c.sendCommand(ctx, buildSetMode(mode))
}

// Calibrate issues CALIBRATE with cal's fields.
func (c *Client) Calibrate(ctx context.Context, cal Calibration) error {
	return c.sendCommand(ctx, buildCalibrate(cal))
}

// AddPosition issues ADD_POSITION, retrying on FAIL until the firmware
// accepts it (its ring buffer has room).
func (c *Client) AddPosition(ctx context.Context, pos DrawingPosition) error {
	return c.sendCommand(ctx, buildAddPosition(pos))
}

// SetAngleCorrection issues SET_ANGLE_CORRECTION, replaying enabled
// verbatim; the flag's effect on the firmware is opaque to the host.
func (c *Client) SetAngleCorrection(ctx context.Context, enabled bool) error {
	return c.sendCommand(ctx, buildSetAngleCorrection(enabled))
}

// sendCommand writes frame and waits for OK, retrying on FAIL with a
// 100ms back-off and no retry limit — the firmware's ring buffer
// eventually drains and accepts the command.
func (c *Client) sendCommand(ctx context.Context, frame []byte) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	for {
		c.pendingMu.Lock()
		c.seq++
		seq := c.seq
		respCh := make(chan response, 1)
		c.pending = respCh
		c.pendingMu.Unlock()

		if _, err := c.transport.Write(frame); err != nil {
			c.clearPending()
			return fmt.Errorf("firmware: write frame: %w", err)
		}

		resp, err := c.awaitResponse(ctx, respCh, seq)
		c.clearPending()
		if err != nil {
			return err
		}
		if resp.ok {
			return nil
		}

		c.log.Warnw("firmware FAIL, retrying after back-off", "seq", seq)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func (c *Client) clearPending() {
	c.pendingMu.Lock()
	c.pending = nil
	c.pendingMu.Unlock()
}

// awaitResponse blocks for OK/FAIL, logging (but not failing) on each
// second of silence — per the link's no-automatic-resync policy, a
// slow device is not itself an error.
func (c *Client) awaitResponse(ctx context.Context, ch chan response, seq uint64) (response, error) {
	for {
		select {
		case <-ctx.Done():
			return response{}, ctx.Err()
		case r := <-ch:
			return r, nil
		case <-time.After(time.Second):
			c.log.Warnw("firmware command timed out waiting for OK, continuing to wait", "seq", seq)
		}
	}
}

func (c *Client) readLoop() {
	r := bufio.NewReader(c.transport)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			c.log.Debugw("firmware read loop exiting", "error", err)
			return
		}
		c.dispatchLine(strings.TrimSpace(line), r)
	}
}

func (c *Client) dispatchLine(line string, r *bufio.Reader) {
	switch line {
	case "":
		return
	case lineOK:
		c.deliver(response{ok: true})
	case lineFail:
		c.deliver(response{ok: false})
	case lineSetupDone:
		c.readyOnce.Do(func() { close(c.ready) })
	case lineStatusStart:
		st, err := parseStatus(r)
		if err != nil {
			c.log.Warnw("failed to parse status block", "error", err)
			return
		}
		c.statusMu.Lock()
		c.status = st
		c.statusMu.Unlock()
	case lineUnrecognizedCmd:
		c.log.Warnw("firmware did not recognize command type")
	case lineChecksumMismatch:
		c.log.Warnw("firmware reported checksum mismatch")
	default:
		c.log.Infow("firmware log", "line", line)
	}
}

func (c *Client) deliver(r response) {
	c.pendingMu.Lock()
	ch := c.pending
	c.pendingMu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- r:
	default:
	}
}
