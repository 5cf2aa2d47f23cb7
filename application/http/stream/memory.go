package stream

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// Memory is an in-memory [Resource] which behaves like a temporary file.
// Writes overwrite bytes at the current offset, growing the buffer if needed.
type Memory struct {
	buf    []byte
	off    int64
	closed bool
}

func NewMemory(initial []byte) *Memory {
	return &Memory{buf: initial}
}

func (m *Memory) Read(p []byte) (n int, err error) {
	if m.closed {
		return 0, os.ErrClosed
	}
	if m.off >= int64(len(m.buf)) {
		return 0, io.EOF
	}

	n = copy(p, m.buf[m.off:])
	m.off += int64(n)
	return n, nil
}

func (m *Memory) Write(p []byte) (n int, err error) {
	if m.closed {
		return 0, os.ErrClosed
	}

	end := m.off + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}

	n = copy(m.buf[m.off:end], p)
	m.off = end
	return n, nil
}

func (m *Memory) Seek(offset int64, whence int) (int64, error) {
	if m.closed {
		return 0, os.ErrClosed
	}

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = m.off + offset
	case io.SeekEnd:
		abs = int64(len(m.buf)) + offset
	default:
		return 0, errors.Errorf("invalid whence: %d", whence)
	}

	if abs < 0 {
		return 0, errors.New("negative position")
	}

	m.off = abs
	return abs, nil
}

func (m *Memory) Size() int64 { return int64(len(m.buf)) }

func (m *Memory) Close() error {
	if m.closed {
		return os.ErrClosed
	}
	m.closed = true
	m.buf = nil
	return nil
}
