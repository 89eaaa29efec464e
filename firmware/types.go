package firmware

// Mode is the firmware's top-level state, set with SET_MODE.
type Mode int32

const (
	ModeIdle Mode = iota
	ModeHome
	ModeAutoCalibrate
	ModeDraw
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "IDLE"
	case ModeHome:
		return "HOME"
	case ModeAutoCalibrate:
		return "AUTO_CALIBRATE"
	case ModeDraw:
		return "DRAW"
	default:
		return "UNKNOWN"
	}
}

// commandID identifies a command frame's payload layout.
type commandID int32

const (
	cmdNone commandID = iota
	cmdGetStatus
	cmdSetMode
	cmdCalibrate
	cmdAddPosition
	cmdSetAngleCorrection
)

// Position is a stepper position in machine units (steps), after
// calibration. Never negative.
type Position struct {
	Amplitude int32
	Angle     int32
}

// DrawingPosition is the ADD_POSITION wire payload: a stepper target
// plus pen state and per-axis velocity, carrying a checksum the
// firmware verifies on receipt.
type DrawingPosition struct {
	Amplitude     int32
	Angle         int32
	Pen           int32
	AmpVelocity   int32
	AngleVelocity int32
	Checksum      int32
}

// PenDown and PenUp are the two pen states the wire protocol uses;
// anything else is a raw servo value.
const (
	PenUp   int32 = 0
	PenDown int32 = 30
)

// NewDrawingPosition builds a DrawingPosition with its checksum
// computed over the other five fields.
func NewDrawingPosition(amp, angle, pen, ampVelocity, angleVelocity int32) DrawingPosition {
	return DrawingPosition{
		Amplitude:     amp,
		Angle:         angle,
		Pen:           pen,
		AmpVelocity:   ampVelocity,
		AngleVelocity: angleVelocity,
		Checksum:      checksumOf(amp, angle, pen, ampVelocity, angleVelocity),
	}
}

// checksumOf is the checksum law every DrawingPosition frame must
// satisfy: the sum of each field taken modulo 123.
func checksumOf(fields ...int32) int32 {
	var sum int32
	for _, f := range fields {
		sum += f % 123
	}
	return sum
}

// Calibration is the CALIBRATE payload: the per-machine constants that
// scale world-space mm to stepper steps.
type Calibration struct {
	TravelableSteps int32
	StepsPerMM      float32
	MinAmplitude    int32
	MaxAmplitude    int32
	MaxAngle        int32
	MaxEncoder      int32
}

// Status mirrors the firmware's STATUS START block, field for field, in
// the order the device writes them (23 lines).
type Status struct {
	Mode        Mode
	Calibrated  bool
	Calibrating bool

	CurrentAmplitude int32
	CurrentAngle     int32
	TargetAmplitude  int32
	TargetAngle      int32
	AmpVelocity      int32
	AngleVelocity    int32

	TravelableSteps int32
	StepsPerMM      float32
	MinAmplitude    int32
	MaxAmplitude    int32
	MaxAngle        int32
	MaxEncoder      int32

	NextPosToPlaceIdx int32
	NextPosToGoIdx    int32

	LimitSwitchAmpMin   bool
	LimitSwitchAmpMax   bool
	LimitSwitchAngleMin bool
	LimitSwitchAngleMax bool

	EncoderAmplitude int32
	AngleCorrection  bool
}

// BufferDrained reports whether the firmware's position ring has
// caught up to the last position the host placed — the condition the
// firmware consumer polls for during shutdown.
func (s Status) BufferDrained() bool {
	return s.NextPosToGoIdx == s.NextPosToPlaceIdx-1
}
