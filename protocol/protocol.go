// Package protocol implements the ASCII line protocol spoken between the
// pulse generator firmware and its host.
package protocol

import "errors"

// Version is the protocol version the host console announces
const Version = "0.1.0"

// Protocol constants
const (
	LineMax  = 96  // Longest accepted line, terminator excluded
	ReplyMax = 512 // Output scratch for the replies to one line
	FifoSize = 256 // Receive FIFO capacity

	// Argument counts for CFG
	CfgRequiredArgs = 5
	CfgMaxArgs      = 7
)

// Errors reported to the host as "ERR <message>"
var (
	ErrLineTooLong     = errors.New("line too long")
	ErrMissingArgument = errors.New("missing argument")
	ErrTooManyArgs     = errors.New("too many arguments")
	ErrBadNumber       = errors.New("bad number")
)

// ErrMalformed is returned by the reply parsers
var ErrMalformed = errors.New("malformed reply")
