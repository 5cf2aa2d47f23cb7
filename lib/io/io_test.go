package iolib

import (
	"bytes"
	"io"
	"net"
	"syscall"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type chunkWriter struct {
	w     io.Writer
	limit int
	err   error
}

func (cw *chunkWriter) Write(p []byte) (int, error) {
	if cw.err != nil {
		return 0, cw.err
	}
	if len(p) > cw.limit {
		p = p[:cw.limit]
	}
	return cw.w.Write(p)
}

func TestWriteFull(t *testing.T) {
	data := []byte("Hello, World!")
	var buf bytes.Buffer

	written, err := WriteFull(&buf, data)
	assert.NoError(t, err)
	assert.Equal(t, len(data), written)
	assert.Equal(t, data, buf.Bytes())
}

func TestWriteFullPartialWrites(t *testing.T) {
	data := []byte("Hello, World!")
	var buf bytes.Buffer

	written, err := WriteFull(&chunkWriter{w: &buf, limit: 3}, data)
	assert.NoError(t, err)
	assert.Equal(t, len(data), written)
	assert.Equal(t, data, buf.Bytes())
}

func TestWriteFullError(t *testing.T) {
	_, err := WriteFull(&chunkWriter{err: io.ErrClosedPipe}, []byte("a"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)

	_, err = WriteFull(&chunkWriter{w: io.Discard, limit: 0}, []byte("a"))
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

func TestIsPeerGone(t *testing.T) {
	testcases := []struct {
		desc     string
		err      error
		expected bool
	}{
		{desc: "nil", err: nil, expected: false},
		{desc: "closed pipe", err: io.ErrClosedPipe, expected: true},
		{desc: "closed conn", err: net.ErrClosed, expected: true},
		{desc: "broken pipe", err: syscall.EPIPE, expected: true},
		{desc: "wrapped reset", err: errors.Wrap(syscall.ECONNRESET, "writing"), expected: true},
		{desc: "other", err: io.ErrUnexpectedEOF, expected: false},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsPeerGone(tc.err))
		})
	}
}
