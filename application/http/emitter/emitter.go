package emitter

import (
	"io"
	"log/slog"
	"strconv"

	"github.com/the-limbo/http/application/http/semantic"
	"github.com/the-limbo/http/application/http/stream"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// Output is where a response is emitted to, such as a connection to the client.
type Output interface {
	// HeadersSent reports whether the status line and headers are already sent.
	HeadersSent() bool
	WriteStatusLine(line string) error
	// WriteHeaderLine adds a header line.
	// If replace is true, previous lines with the same field name are dropped.
	WriteHeaderLine(line string, replace bool) error
	Write(p []byte) (int, error)
	// Connected reports whether the peer is still there.
	Connected() bool
}

type flusher interface {
	Flush() error
}

type Options struct {
	// BufferSize is the maximum size of a chunk read from the body at once.
	BufferSize int
	// AddDateHeader adds Date header to responses which don't have a valid one.
	// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-6.6.1
	AddDateHeader bool
}

var DefaultOptions = Options{
	BufferSize:    4096,
	AddDateHeader: false,
}

type Emitter struct {
	out    Output
	logger *slog.Logger
	clock  clock.Clock
	opts   Options
}

func New(out Output, logger *slog.Logger, clk clock.Clock, opts Options) *Emitter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if clk == nil {
		clk = clock.New()
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultOptions.BufferSize
	}

	return &Emitter{
		out:    out,
		logger: logger,
		clock:  clk,
		opts:   opts,
	}
}

// IsEmptyResponse reports whether r has nothing to be sent as its body.
// Seekable body is probed by reading a byte, then rewound.
func IsEmptyResponse(r *semantic.Response) bool {
	switch r.StatusCode() {
	case 204, 205, 304:
		return true
	}

	body := r.Body()
	if body == nil {
		return true
	}

	if !body.IsSeekable() {
		return body.Eof()
	}

	if err := body.Rewind(); err != nil {
		return true
	}
	n, _ := body.Read(make([]byte, 1))
	if err := body.Rewind(); err != nil {
		return true
	}

	return n == 0
}

// Emit sends r to the output.
// Status line and headers are skipped if the output already sent them.
//
// If the peer goes away while sending the body, it stops without an error.
func (e *Emitter) Emit(r *semantic.Response) error {
	if e.opts.AddDateHeader && !hasValidDate(r) {
		var err error
		r, err = r.WithoutHeader("Date").WithHeader("Date", semantic.FormatDate(e.clock.Now()))
		if err != nil {
			return errors.Wrap(err, "adding date header")
		}
	}

	empty := IsEmptyResponse(r)

	if !e.out.HeadersSent() {
		if err := e.emitStatusLine(r); err != nil {
			return errors.Wrap(err, "emitting status line")
		}
		if err := e.emitHeaders(r); err != nil {
			return errors.Wrap(err, "emitting headers")
		}
	}

	if !empty {
		if err := e.emitBody(r); err != nil {
			return errors.Wrap(err, "emitting body")
		}
	}

	if f, ok := e.out.(flusher); ok && e.out.Connected() {
		if err := f.Flush(); err != nil && e.out.Connected() {
			return errors.Wrap(err, "flushing output")
		}
	}

	return nil
}

// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-6.6.1
func hasValidDate(r *semantic.Response) bool {
	values := r.Header("Date")
	if len(values) != 1 {
		return false
	}
	_, err := semantic.ParseDate(values[0])
	return err == nil
}

// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-4
func (e *Emitter) emitStatusLine(r *semantic.Response) error {
	line := "HTTP/" + r.ProtocolVersion() + " " + strconv.Itoa(r.StatusCode()) + " " + r.ReasonPhrase()
	return e.out.WriteStatusLine(line)
}

// emitHeaders writes a line per value, so that values are never merged into one line.
// Set-Cookie lines never replace the ones already added to the output.
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.3-6
func (e *Emitter) emitHeaders(r *semantic.Response) error {
	headers := r.Headers()
	for _, name := range headers.Names() {
		replace := name != "set-cookie"
		for _, value := range headers.Values(name) {
			if err := e.out.WriteHeaderLine(name+": "+value, replace); err != nil {
				return errors.Wrapf(err, "writing %q", name)
			}
			replace = false
		}
	}
	return nil
}

func (e *Emitter) emitBody(r *semantic.Response) error {
	body := r.Body()
	if body.IsSeekable() {
		if err := body.Rewind(); err != nil {
			return err
		}
	}

	target := bodyLength(r, body)
	buf := make([]byte, e.opts.BufferSize)

	var sent int64
	for !body.Eof() {
		chunk := buf
		if target > 0 {
			remaining := target - sent
			if remaining <= 0 {
				break
			}
			if remaining < int64(len(chunk)) {
				chunk = chunk[:remaining]
			}
		}

		n, readErr := body.Read(chunk)
		if n > 0 {
			if _, err := e.out.Write(chunk[:n]); err != nil {
				if !e.out.Connected() {
					e.logger.Debug("peer disconnected while writing body", "sent", sent, "target", target)
					return nil
				}
				return errors.Wrap(err, "writing body")
			}
			sent += int64(n)
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return errors.Wrap(readErr, "reading body")
		}

		if !e.out.Connected() {
			e.logger.Debug("peer disconnected", "sent", sent, "target", target)
			return nil
		}
	}

	e.logger.Debug("emitted body", "status", r.StatusCode(), "sent", sent)
	return nil
}

// bodyLength returns the number of bytes to be sent, or 0 if it's unknown.
// Declared Content-Length takes precedence over the size of the body.
func bodyLength(r *semantic.Response, body *stream.Stream) int64 {
	if v, ok := r.Headers().Get("Content-Length"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}

	if size, ok := body.Size(); ok && size > 0 {
		return size
	}
	return 0
}
