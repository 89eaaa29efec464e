package job

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/inkmachine/polarsketch"
	"github.com/inkmachine/polarsketch/firmware"
	"github.com/inkmachine/polarsketch/geom"
)

// pointsPerUnit is how many pen-up interpolation points to emit per
// step of travel distance between the end of one path and the start
// of the next, matching the source renderer's default.
const pointsPerUnit = 0.1

// statusPollInterval is how often FirmwareConsumer polls GetStatus
// while waiting for the device to reach a target state.
const statusPollInterval = 100 * time.Millisecond

// FirmwareConsumer drives the physical plotter: it converts every
// PathPoint to a stepper position (mirroring the canvas's X axis, since
// the machine's angular origin sits on the canvas's right edge) and
// streams ADD_POSITION commands, inserting pen-up interpolation moves
// across path boundaries.
type FirmwareConsumer struct {
	client   *firmware.Client
	canvas   geom.Rect
	baseRect geom.Rect
	cal      firmware.Calibration
	log      *zap.SugaredLogger

	lastPos firmware.Position
	havePos bool

	firstPoint  geom.Point
	haveFirstPt bool
}

// NewFirmwareConsumer builds a consumer driving client, converting
// world-space points over canvas under cal. baseRect is the plotter
// base's no-go footprint in canvas coordinates (see
// config.Machine.BaseRect); Init logs it and rejects a configuration
// where it doesn't fit inside canvas before ever homing the device.
func NewFirmwareConsumer(client *firmware.Client, canvas, baseRect geom.Rect, cal firmware.Calibration, log *zap.SugaredLogger) *FirmwareConsumer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &FirmwareConsumer{client: client, canvas: canvas, baseRect: baseRect, cal: cal, log: log}
}

// Init validates the configured base rectangle against the canvas,
// homes the device, waits for it to go idle, recalibrates, and
// switches it into draw mode.
func (c *FirmwareConsumer) Init(ctx context.Context) error {
	c.log.Infow("plotter base footprint", "baseRect", c.baseRect)
	if !c.canvas.ContainsRect(c.baseRect) {
		return fmt.Errorf("job: base rect %+v does not fit inside canvas %+v", c.baseRect, c.canvas)
	}
	if err := c.client.SetMode(ctx, firmware.ModeHome); err != nil {
		return err
	}
	if err := c.waitForMode(ctx, firmware.ModeIdle); err != nil {
		return err
	}
	if err := c.client.Calibrate(ctx, c.cal); err != nil {
		return err
	}
	return c.client.SetMode(ctx, firmware.ModeDraw)
}

// Consume converts cmd to firmware motion. A CloseMarker re-emits the
// path's recorded first point so the pen retraces back to it; a
// PathEndMarker clears that record so the next path starts fresh.
func (c *FirmwareConsumer) Consume(ctx context.Context, cmd polarsketch.Command) error {
	switch v := cmd.(type) {
	case polarsketch.PathPoint:
		if !c.haveFirstPt {
			c.firstPoint = v.Point
			c.haveFirstPt = true
			if c.havePos {
				target := c.convert(v.Point)
				if err := c.emitInterpolated(ctx, c.lastPos, target); err != nil {
					return err
				}
			}
		}
		return c.emitPoint(ctx, v.Point)
	case polarsketch.CloseMarker:
		if c.haveFirstPt {
			return c.emitPoint(ctx, c.firstPoint)
		}
		return nil
	case polarsketch.PathEndMarker:
		c.haveFirstPt = false
		return nil
	case polarsketch.DrawingEndMarker:
		return nil
	default:
		return nil
	}
}

// Shutdown waits for the firmware's position ring to drain, homes the
// device, waits for idle, and closes the link.
func (c *FirmwareConsumer) Shutdown(ctx context.Context) error {
	for {
		st, err := c.client.GetStatus(ctx)
		if err != nil {
			return err
		}
		if st.BufferDrained() {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(statusPollInterval):
		}
	}
	if err := c.client.SetMode(ctx, firmware.ModeHome); err != nil {
		return err
	}
	if err := c.waitForMode(ctx, firmware.ModeIdle); err != nil {
		return err
	}
	return c.client.Close()
}

func (c *FirmwareConsumer) waitForMode(ctx context.Context, mode firmware.Mode) error {
	for {
		st, err := c.client.GetStatus(ctx)
		if err != nil {
			return err
		}
		if st.Mode == mode {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(statusPollInterval):
		}
	}
}

func (c *FirmwareConsumer) convert(p geom.Point) firmware.Position {
	mirrored := geom.Point{X: c.canvas.Width() - p.X, Y: p.Y}
	return firmware.Convert(mirrored, c.canvas.Width(), c.canvas.Height(), c.cal)
}

func (c *FirmwareConsumer) emitPoint(ctx context.Context, p geom.Point) error {
	pos := c.convert(p)
	if err := c.emitPosition(ctx, pos, firmware.PenDown); err != nil {
		return err
	}
	c.lastPos, c.havePos = pos, true
	return nil
}

func (c *FirmwareConsumer) emitPosition(ctx context.Context, pos firmware.Position, pen int32) error {
	ampV, angleV := firmware.Couple(c.lastPos.Amplitude, c.lastPos.Angle, pos.Amplitude, pos.Angle)
	d := firmware.NewDrawingPosition(pos.Amplitude, pos.Angle, pen, ampV, angleV)
	return c.client.AddPosition(ctx, d)
}

// emitInterpolated emits pen-up positions linearly interpolated
// between from and to, excluding the destination itself — the caller
// emits that separately with the pen down.
func (c *FirmwareConsumer) emitInterpolated(ctx context.Context, from, to firmware.Position) error {
	dAmp := float64(to.Amplitude - from.Amplitude)
	dAngle := float64(to.Angle - from.Angle)
	dist := math.Hypot(dAmp, dAngle)

	n := int(math.Round(pointsPerUnit * dist))
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n+1)
		ip := firmware.Position{
			Amplitude: from.Amplitude + int32(math.Round(dAmp*t)),
			Angle:     from.Angle + int32(math.Round(dAngle*t)),
		}
		if err := c.emitPosition(ctx, ip, firmware.PenUp); err != nil {
			return err
		}
	}
	return nil
}
