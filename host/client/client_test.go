package client

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"pulsetrain/core"
	"pulsetrain/protocol"
	"pulsetrain/pulse"
)

type nullBank struct{}

func (nullBank) Configure() error  { return nil }
func (nullBank) Apply(core.Levels) {}

// loopbackPort runs the firmware interpreter in-process. Writes are
// executed immediately and their replies become readable.
type loopbackPort struct {
	it      *protocol.Interpreter
	replies bytes.Buffer
	sent    []string
	closed  bool
}

func (p *loopbackPort) Write(b []byte) (int, error) {
	if p.closed {
		return 0, io.ErrClosedPipe
	}
	p.sent = append(p.sent, strings.TrimSpace(string(b)))
	if err := p.it.Feed(b); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (p *loopbackPort) Read(b []byte) (int, error) {
	return p.replies.Read(b)
}

func (p *loopbackPort) Close() error {
	p.closed = true
	return nil
}

func (p *loopbackPort) Flush() error {
	p.replies.Reset()
	return nil
}

func newLoopback(t *testing.T) (*Client, *loopbackPort, *pulse.Device) {
	t.Helper()
	core.ResetTimers()
	core.SetTimerFreq(1000000)
	core.SetTime(0)
	t.Cleanup(func() {
		core.ResetTimers()
		core.SetTimerFreq(core.DefaultTimerFreq)
	})

	dev := pulse.NewDevice(core.NewSoftTicker(), nullBank{})
	port := &loopbackPort{}
	port.it = protocol.NewInterpreter(dev, &port.replies)
	return New(port), port, dev
}

func advance(until uint32) {
	for {
		wake, ok := core.NextWakeTime()
		if !ok || core.TimerBefore(until, wake) {
			break
		}
		core.SetTime(wake)
		core.ProcessTimers()
	}
	core.SetTime(until)
}

func TestClientPing(t *testing.T) {
	c, port, _ := newLoopback(t)

	if err := c.Ping(); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if len(port.sent) != 1 || port.sent[0] != "R" {
		t.Errorf("Expected R on the wire, got %q", port.sent)
	}
}

func TestClientConfigureEchoesResolved(t *testing.T) {
	c, port, dev := newLoopback(t)

	got, err := c.Configure(pulse.Config{PulseUS: 0, IPIUS: 500, PulsesPerTrain: 0, ITIUS: 2000, DutyPercent: 250, CarrierHz: 5000000, Trains: 2})
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	want := pulse.Config{PulseUS: 1, IPIUS: 500, PulsesPerTrain: 1, ITIUS: 2000, DutyPercent: 100, CarrierHz: 1000000, Trains: 2}.Normalized()
	if got != want {
		t.Errorf("Configure() = %+v, want %+v", got, want)
	}
	if dev.Config() != want {
		t.Errorf("Device holds %+v, want %+v", dev.Config(), want)
	}
	if port.sent[0] != "CFG 0 500 0 2000 250 5000000 2" {
		t.Errorf("Unexpected CFG line %q", port.sent[0])
	}
}

func TestClientRunAndCount(t *testing.T) {
	c, _, _ := newLoopback(t)

	if _, err := c.Configure(pulse.Config{PulseUS: 1000, IPIUS: 500, PulsesPerTrain: 3, ITIUS: 2000, DutyPercent: 100, CarrierHz: 10000, Trains: 2}); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if err := c.Go(); err != nil {
		t.Fatalf("Go() error = %v", err)
	}

	st, err := c.State()
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if !st.Running || st.Phase != "CARRIER_HIGH" {
		t.Errorf("Unexpected state after Go: %+v", st)
	}

	advance(10000)
	n, err := c.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}

	st, err = c.State()
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if st.Running || st.Phase != "IDLE" || st.Count != 2 {
		t.Errorf("Unexpected final state: %+v", st)
	}
}

func TestClientStop(t *testing.T) {
	c, _, dev := newLoopback(t)

	if _, err := c.Configure(pulse.Config{PulseUS: 1000, IPIUS: 500, PulsesPerTrain: 3, ITIUS: 2000, DutyPercent: 50, CarrierHz: 10000}); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	c.Go()
	advance(18500)
	if err := c.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if dev.Running() {
		t.Error("Device still running after Stop")
	}

	n, err := c.Count()
	if err != nil || n != 3 {
		t.Errorf("Count() = %d, %v; want 3", n, err)
	}
}

func TestClientRejected(t *testing.T) {
	c, _, _ := newLoopback(t)

	_, err := c.Exec("CFG 1 2")
	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("Expected RejectedError, got %v", err)
	}
	if rejected.Reason != "missing argument" || rejected.Command != "CFG 1 2" {
		t.Errorf("Unexpected rejection %+v", rejected)
	}

	// The connection is still usable
	if err := c.Ping(); err != nil {
		t.Errorf("Ping() after rejection error = %v", err)
	}
}

func TestClientHelp(t *testing.T) {
	c, _, _ := newLoopback(t)

	lines, err := c.Help()
	if err != nil {
		t.Fatalf("Help() error = %v", err)
	}
	if len(lines) != 7 {
		t.Errorf("Expected 7 usage lines, got %q", lines)
	}
	if lines[0] != "R" {
		t.Errorf("Expected R first, got %q", lines[0])
	}
}

func TestClientNoReply(t *testing.T) {
	c, _, _ := newLoopback(t)

	// GO sends nothing back, so reading a reply hits EOF
	if _, err := c.Exec("GO"); err == nil {
		t.Error("Expected an error when the device sends no reply")
	}
}

func TestClientClose(t *testing.T) {
	c, port, _ := newLoopback(t)

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !port.closed || c.IsConnected() {
		t.Error("Close did not close the port")
	}
	if err := c.Ping(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Ping() after Close error = %v, want ErrNotConnected", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Second Close() error = %v", err)
	}
}

func TestClientTrace(t *testing.T) {
	c, _, _ := newLoopback(t)
	var trace bytes.Buffer
	c.Trace = &trace

	c.Ping()
	if trace.String() != "> R\n< R\n" {
		t.Errorf("Unexpected trace %q", trace.String())
	}
}
