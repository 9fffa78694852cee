// Package client talks to the pulse generator firmware over its line
// protocol.
package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"pulsetrain/host/serial"
	"pulsetrain/protocol"
	"pulsetrain/pulse"
)

// RejectedError is returned when the device answers a request with ERR
type RejectedError struct {
	Command string
	Reason  string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("device rejected %q: %s", e.Command, e.Reason)
}

// ErrNotConnected is returned after Close
var ErrNotConnected = errors.New("not connected to device")

// Client is a request/response connection to one device.
// It is not safe for concurrent use.
type Client struct {
	port      serial.Port
	reader    *bufio.Reader
	connected bool

	// Trace, when set, receives every line sent and received
	Trace io.Writer
}

// New wraps an already open port
func New(port serial.Port) *Client {
	return &Client{
		port:      port,
		reader:    bufio.NewReader(port),
		connected: true,
	}
}

// Connect opens the serial port described by cfg and checks the device
// answers a ping
func Connect(cfg *serial.Config) (*Client, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}

	c := New(port)

	// Give the device time to enumerate if it just powered on
	time.Sleep(100 * time.Millisecond)
	if err := port.Flush(); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to flush serial port: %w", err)
	}

	if err := c.Ping(); err != nil {
		port.Close()
		return nil, fmt.Errorf("device did not answer ping: %w", err)
	}
	return c, nil
}

// Close closes the connection
func (c *Client) Close() error {
	if !c.connected {
		return nil
	}
	c.connected = false
	return c.port.Close()
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	return c.connected
}

// Ping sends R and waits for the echo
func (c *Client) Ping() error {
	reply, err := c.request("R")
	if err != nil {
		return err
	}
	if reply != protocol.ReplyPing {
		return fmt.Errorf("unexpected ping reply %q", reply)
	}
	return nil
}

// Configure sends every field of cfg and returns the values the device
// resolved them to
func (c *Client) Configure(cfg pulse.Config) (pulse.Config, error) {
	line := fmt.Sprintf("CFG %d %d %d %d %d %d %d",
		cfg.PulseUS, cfg.IPIUS, cfg.PulsesPerTrain, cfg.ITIUS,
		cfg.DutyPercent, cfg.CarrierHz, cfg.Trains)

	reply, err := c.request(line)
	if err != nil {
		return pulse.Config{}, err
	}
	resolved, err := protocol.ParseConfigReply(reply)
	if err != nil {
		return pulse.Config{}, fmt.Errorf("failed to parse %q: %w", reply, err)
	}
	return resolved, nil
}

// Go starts a run. The device sends no reply.
func (c *Client) Go() error {
	return c.send("GO")
}

// Stop ends the run. The device sends no reply.
func (c *Client) Stop() error {
	return c.send("STOP")
}

// Count returns the trains completed since the last Go
func (c *Client) Count() (uint32, error) {
	reply, err := c.request("COUNT")
	if err != nil {
		return 0, err
	}
	n, err := protocol.ParseCountReply(reply)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %q: %w", reply, err)
	}
	return n, nil
}

// State returns the device phase, running flag and completed count
func (c *Client) State() (protocol.State, error) {
	reply, err := c.request("STATE")
	if err != nil {
		return protocol.State{}, err
	}
	st, err := protocol.ParseStateReply(reply)
	if err != nil {
		return protocol.State{}, fmt.Errorf("failed to parse %q: %w", reply, err)
	}
	return st, nil
}

// Help returns the device's command usage lines
func (c *Client) Help() ([]string, error) {
	if err := c.send("HELP"); err != nil {
		return nil, err
	}

	var lines []string
	for {
		line, err := c.readReply("HELP")
		if err != nil {
			return nil, err
		}
		if line == protocol.ReplyOK {
			return lines, nil
		}
		lines = append(lines, line)
	}
}

// Exec sends a raw protocol line and returns the single reply line
func (c *Client) Exec(line string) (string, error) {
	return c.request(line)
}

func (c *Client) request(line string) (string, error) {
	if err := c.send(line); err != nil {
		return "", err
	}
	return c.readReply(line)
}

func (c *Client) send(line string) error {
	if !c.connected {
		return ErrNotConnected
	}
	c.trace("> " + line)
	if _, err := io.WriteString(c.port, line+"\n"); err != nil {
		return fmt.Errorf("failed to send %q: %w", line, err)
	}
	return nil
}

// readReply returns the next non-empty line, mapping ERR replies to
// RejectedError
func (c *Client) readReply(command string) (string, error) {
	for {
		raw, err := c.reader.ReadString('\n')
		line := strings.TrimSpace(raw)
		if line == "" {
			if err != nil {
				return "", fmt.Errorf("failed to read reply to %q: %w", command, err)
			}
			continue
		}
		c.trace("< " + line)

		if reason, ok := strings.CutPrefix(line, protocol.ReplyErr); ok {
			return "", &RejectedError{Command: command, Reason: strings.TrimSpace(reason)}
		}
		return line, nil
	}
}

func (c *Client) trace(line string) {
	if c.Trace != nil {
		fmt.Fprintln(c.Trace, line)
	}
}
