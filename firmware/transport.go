package firmware

import (
	"bytes"
	"io"
	"sync"

	"go.bug.st/serial"
)

// Transport is what a Client speaks frames over: a byte stream plus
// the one piece of out-of-band control the reset sequence needs (DTR
// toggling resets the embedded controller on open, the same trick
// Arduino bootloaders use).
type Transport interface {
	io.ReadWriter
	SetDTR(on bool) error
	Close() error
}

// SerialTransport wraps a go.bug.st/serial port as a Transport.
type SerialTransport struct {
	port serial.Port
}

// OpenSerial opens the named serial port at the given baud rate, 8N1;
// a baud of zero or less falls back to 115200, the firmware link's
// default.
func OpenSerial(name string, baud int) (*SerialTransport, error) {
	if baud <= 0 {
		baud = 115200
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return &SerialTransport{port: port}, nil
}

func (t *SerialTransport) Read(p []byte) (int, error)  { return t.port.Read(p) }
func (t *SerialTransport) Write(p []byte) (int, error) { return t.port.Write(p) }
func (t *SerialTransport) SetDTR(on bool) error         { return t.port.SetDTR(on) }
func (t *SerialTransport) Close() error                { return t.port.Close() }

// MemoryTransport is an in-memory Transport stand-in for a real
// device, used by tests (and any dry-run caller) that need a
// Client without a physical port. Writes land in Sent; bytes queued
// via Feed are what subsequent Reads return.
type MemoryTransport struct {
	mu     sync.Mutex
	toRead bytes.Buffer
	notify chan struct{}

	Sent   [][]byte
	DTRLog []bool
	closed bool
}

// NewMemoryTransport returns a ready-to-use MemoryTransport.
func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{notify: make(chan struct{}, 1)}
}

// Feed appends bytes a subsequent Read will return, as if the stub
// device had sent them.
func (t *MemoryTransport) Feed(p []byte) {
	t.mu.Lock()
	t.toRead.Write(p)
	t.mu.Unlock()
	select {
	case t.notify <- struct{}{}:
	default:
	}
}

// FeedLine is Feed with a trailing newline appended.
func (t *MemoryTransport) FeedLine(line string) {
	t.Feed([]byte(line + "\n"))
}

func (t *MemoryTransport) Read(p []byte) (int, error) {
	for {
		t.mu.Lock()
		if t.toRead.Len() > 0 {
			n, err := t.toRead.Read(p)
			t.mu.Unlock()
			return n, err
		}
		closed := t.closed
		t.mu.Unlock()
		if closed {
			return 0, io.EOF
		}
		<-t.notify
	}
}

func (t *MemoryTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := append([]byte(nil), p...)
	t.Sent = append(t.Sent, cp)
	return len(p), nil
}

func (t *MemoryTransport) SetDTR(on bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.DTRLog = append(t.DTRLog, on)
	return nil
}

func (t *MemoryTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	select {
	case t.notify <- struct{}{}:
	default:
	}
	return nil
}
