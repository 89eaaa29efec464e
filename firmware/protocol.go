package firmware

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

const (
	frameOpen  = "<<<"
	frameClose = ">>>"
)

// statusLineCount is how many decimal lines follow "STATUS START",
// one per Status field in declaration order.
const statusLineCount = 23

func encodeFrame(id commandID, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(frameOpen)
	binary.Write(&buf, binary.LittleEndian, int32(id))
	buf.Write(payload)
	buf.WriteString(frameClose)
	return buf.Bytes()
}

func buildGetStatus() []byte {
	return encodeFrame(cmdGetStatus, nil)
}

func buildSetMode(mode Mode) []byte {
	var p bytes.Buffer
	binary.Write(&p, binary.LittleEndian, int32(mode))
	return encodeFrame(cmdSetMode, p.Bytes())
}

func buildCalibrate(c Calibration) []byte {
	var p bytes.Buffer
	binary.Write(&p, binary.LittleEndian, c.TravelableSteps)
	binary.Write(&p, binary.LittleEndian, c.StepsPerMM)
	binary.Write(&p, binary.LittleEndian, c.MinAmplitude)
	binary.Write(&p, binary.LittleEndian, c.MaxAmplitude)
	binary.Write(&p, binary.LittleEndian, c.MaxAngle)
	binary.Write(&p, binary.LittleEndian, c.MaxEncoder)
	return encodeFrame(cmdCalibrate, p.Bytes())
}

func buildAddPosition(d DrawingPosition) []byte {
	var p bytes.Buffer
	binary.Write(&p, binary.LittleEndian, d.Amplitude)
	binary.Write(&p, binary.LittleEndian, d.Angle)
	binary.Write(&p, binary.LittleEndian, d.Pen)
	binary.Write(&p, binary.LittleEndian, d.AmpVelocity)
	binary.Write(&p, binary.LittleEndian, d.AngleVelocity)
	binary.Write(&p, binary.LittleEndian, d.Checksum)
	return encodeFrame(cmdAddPosition, p.Bytes())
}

func buildSetAngleCorrection(enabled bool) []byte {
	var p bytes.Buffer
	v := int32(0)
	if enabled {
		v = 1
	}
	binary.Write(&p, binary.LittleEndian, v)
	return encodeFrame(cmdSetAngleCorrection, p.Bytes())
}

// reserved device->host lines. Anything else is ordinary log output.
const (
	lineOK               = "OK"
	lineFail             = "FAIL"
	lineStatusStart      = "STATUS START"
	lineSetupDone        = "SETUP DONE"
	lineUnrecognizedCmd  = "DID NOT RECOGNIZE COMMAND TYPE"
	lineChecksumMismatch = "CHECKSUM MISMATCH"
)

// parseStatus reads statusLineCount decimal lines from r, in Status's
// field declaration order.
func parseStatus(r *bufio.Reader) (Status, error) {
	var s Status
	lines := make([]string, 0, statusLineCount)
	for i := 0; i < statusLineCount; i++ {
		line, err := r.ReadString('\n')
		if err != nil {
			return Status{}, fmt.Errorf("firmware: reading status line %d: %w", i, err)
		}
		lines = append(lines, strings.TrimSpace(line))
	}

	fields := []struct {
		name string
		dst  interface{}
	}{
		{"mode", &s.Mode},
		{"calibrated", &s.Calibrated},
		{"calibrating", &s.Calibrating},
		{"currentAmplitude", &s.CurrentAmplitude},
		{"currentAngle", &s.CurrentAngle},
		{"targetAmplitude", &s.TargetAmplitude},
		{"targetAngle", &s.TargetAngle},
		{"ampVelocity", &s.AmpVelocity},
		{"angleVelocity", &s.AngleVelocity},
		{"travelableSteps", &s.TravelableSteps},
		{"stepsPerMm", &s.StepsPerMM},
		{"minAmplitude", &s.MinAmplitude},
		{"maxAmplitude", &s.MaxAmplitude},
		{"maxAngle", &s.MaxAngle},
		{"maxEncoder", &s.MaxEncoder},
		{"nextPosToPlaceIdx", &s.NextPosToPlaceIdx},
		{"nextPosToGoIdx", &s.NextPosToGoIdx},
		{"limitSwitchAmpMin", &s.LimitSwitchAmpMin},
		{"limitSwitchAmpMax", &s.LimitSwitchAmpMax},
		{"limitSwitchAngleMin", &s.LimitSwitchAngleMin},
		{"limitSwitchAngleMax", &s.LimitSwitchAngleMax},
		{"encoderAmplitude", &s.EncoderAmplitude},
		{"angleCorrection", &s.AngleCorrection},
	}

	for i, f := range fields {
		if err := parseStatusField(lines[i], f.dst); err != nil {
			return Status{}, fmt.Errorf("firmware: status field %s: %w", f.name, err)
		}
	}
	return s, nil
}

func parseStatusField(line string, dst interface{}) error {
	switch v := dst.(type) {
	case *Mode:
		n, err := strconv.Atoi(line)
		if err != nil {
			return err
		}
		*v = Mode(n)
	case *bool:
		n, err := strconv.Atoi(line)
		if err != nil {
			return err
		}
		*v = n != 0
	case *int32:
		n, err := strconv.ParseInt(line, 10, 32)
		if err != nil {
			return err
		}
		*v = int32(n)
	case *float32:
		n, err := strconv.ParseFloat(line, 32)
		if err != nil {
			return err
		}
		*v = float32(n)
	default:
		return fmt.Errorf("unhandled status field type %T", dst)
	}
	return nil
}
