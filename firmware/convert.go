package firmware

import (
	"math"

	"github.com/inkmachine/polarsketch/geom"
)

// Convert maps a world-space point, in mm over a canvas of the given
// width and height, to a stepper Position under cal. Both axes are
// clamped to [0, max].
func Convert(p geom.Point, canvasW, canvasH float64, cal Calibration) Position {
	ampMM := math.Hypot(p.X, p.Y)
	angleDeg := math.Atan2(p.Y, p.X) * 180 / math.Pi

	ampSteps := ampMM * (float64(cal.MaxAmplitude) / canvasW)
	angleSteps := angleDeg * (float64(cal.MaxAngle) / 90)

	return Position{
		Amplitude: clampSteps(ampSteps, cal.MaxAmplitude),
		Angle:     clampSteps(angleSteps, cal.MaxAngle),
	}
}

// Uncovert is Convert's inverse, mapping a stepper Position back to a
// world-space point over a canvas of the given width and height.
func Uncovert(pos Position, canvasW, canvasH float64, cal Calibration) geom.Point {
	ampMM := float64(pos.Amplitude) * canvasW / float64(cal.MaxAmplitude)
	angleDeg := float64(pos.Angle) * 90 / float64(cal.MaxAngle)
	rad := angleDeg * math.Pi / 180
	return geom.Point{
		X: ampMM * math.Cos(rad),
		Y: ampMM * math.Sin(rad),
	}
}

func clampSteps(v float64, max int32) int32 {
	if v < 0 {
		return 0
	}
	if v > float64(max) {
		return max
	}
	return int32(v)
}

// vMax is the default maximum stepper velocity Couple scales from.
const vMax = 1500

// Couple computes the per-axis velocities for a move from (amp0,
// angle0) to (amp1, angle1) from the travel ratio r = |amp1-amp0| /
// |angle1-angle0|: when r < 1 the amplitude axis gets vMax*r and the
// angle axis vMax; otherwise the amplitude axis gets vMax and the angle
// axis vMax*r (so it exceeds vMax when r > 1). When angle0 == angle1 the
// ratio is defined as 1 (equal velocity on both axes) rather than
// propagating a division by zero — preserved from the source firmware
// controller, which special-cases a purely radial move the same way.
func Couple(amp0, angle0, amp1, angle1 int32) (ampVelocity, angleVelocity int32) {
	dA := abs32(amp1 - amp0)
	dT := abs32(angle1 - angle0)
	if dT == 0 {
		return vMax, vMax
	}
	r := float64(dA) / float64(dT)
	if r < 1 {
		return int32(vMax * r), vMax
	}
	return vMax, int32(vMax * r)
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
