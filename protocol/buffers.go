package protocol

// ScratchOutput is a fixed-size reply buffer. Writes past capacity are
// dropped.
type ScratchOutput struct {
	buf [ReplyMax]byte
	pos int
}

// NewScratchOutput creates a new ScratchOutput
func NewScratchOutput() *ScratchOutput {
	return &ScratchOutput{pos: 0}
}

// Output appends data to the buffer
func (s *ScratchOutput) Output(data []byte) {
	n := copy(s.buf[s.pos:], data)
	s.pos += n
}

// OutputString appends a string to the buffer
func (s *ScratchOutput) OutputString(str string) {
	n := copy(s.buf[s.pos:], str)
	s.pos += n
}

// CurPosition returns the current write position
func (s *ScratchOutput) CurPosition() int {
	return s.pos
}

// Truncate discards everything written after pos
func (s *ScratchOutput) Truncate(pos int) {
	if pos >= 0 && pos < s.pos {
		s.pos = pos
	}
}

// Result returns the accumulated output data
func (s *ScratchOutput) Result() []byte {
	return s.buf[:s.pos]
}

// Reset clears the buffer
func (s *ScratchOutput) Reset() {
	s.pos = 0
}

// FifoBuffer is a circular buffer for serial I/O
type FifoBuffer struct {
	buf   []byte
	read  int
	write int
	size  int
}

// NewFifoBuffer creates a new FifoBuffer with the specified capacity
func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{
		buf:  make([]byte, capacity),
		size: capacity,
	}
}

// Write appends data to the FIFO buffer
func (f *FifoBuffer) Write(data []byte) int {
	written := 0
	for _, b := range data {
		nextWrite := (f.write + 1) % f.size
		if nextWrite == f.read {
			// Buffer full
			break
		}
		f.buf[f.write] = b
		f.write = nextWrite
		written++
	}
	return written
}

// ReadByte removes and returns the oldest byte
func (f *FifoBuffer) ReadByte() (byte, bool) {
	if f.read == f.write {
		return 0, false
	}
	b := f.buf[f.read]
	f.read = (f.read + 1) % f.size
	return b, true
}

// Available returns the number of bytes available for reading
func (f *FifoBuffer) Available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return f.size - f.read + f.write
}

// Free returns the number of bytes available for writing
func (f *FifoBuffer) Free() int {
	return f.size - f.Available() - 1
}

// IsEmpty returns true if the buffer is empty
func (f *FifoBuffer) IsEmpty() bool {
	return f.read == f.write
}

// Reset clears the buffer
func (f *FifoBuffer) Reset() {
	f.read = 0
	f.write = 0
}

// LineBuffer frames received bytes into newline or carriage return
// terminated lines. Lines longer than LineMax are discarded and reported
// once, when their terminator arrives.
type LineBuffer struct {
	fifo     *FifoBuffer
	line     [LineMax]byte
	n        int
	overflow bool
}

// NewLineBuffer creates a LineBuffer with a FifoSize receive FIFO
func NewLineBuffer() *LineBuffer {
	return &LineBuffer{fifo: NewFifoBuffer(FifoSize)}
}

// Write queues received bytes and returns how many fit
func (l *LineBuffer) Write(data []byte) int {
	return l.fifo.Write(data)
}

// Free returns the receive space left
func (l *LineBuffer) Free() int {
	return l.fifo.Free()
}

// Next returns the next complete non-empty line. ok is false when no
// complete line is buffered yet. The returned slice is only valid until
// the next call.
func (l *LineBuffer) Next() (line []byte, ok bool, err error) {
	for {
		b, more := l.fifo.ReadByte()
		if !more {
			return nil, false, nil
		}

		if b == '\n' || b == '\r' {
			n, overflow := l.n, l.overflow
			l.n = 0
			l.overflow = false
			if overflow {
				return nil, true, ErrLineTooLong
			}
			if n == 0 {
				continue
			}
			return l.line[:n], true, nil
		}

		if l.overflow {
			continue
		}
		if l.n == len(l.line) {
			l.overflow = true
			continue
		}
		l.line[l.n] = b
		l.n++
	}
}

// Reset drops any partial line and queued bytes
func (l *LineBuffer) Reset() {
	l.fifo.Reset()
	l.n = 0
	l.overflow = false
}
