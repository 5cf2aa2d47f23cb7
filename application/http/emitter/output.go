package emitter

import (
	"bufio"
	"io"
	"strings"

	"github.com/the-limbo/http/application/util/rule"
	iolib "github.com/the-limbo/http/lib/io"

	"github.com/pkg/errors"
)

var (
	ErrHeadersSent     = errors.New("headers are already sent")
	ErrMalformedHeader = errors.New("header line has no colon")
)

const defaultStatusLine = "HTTP/1.1 200 OK"

type OutputOptions struct {
	// UseSoleLF specifies wheter a single LF character should be used as a line terminator.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-3
	UseSoleLF bool
}

var DefaultOutputOptions = OutputOptions{
	UseSoleLF: false,
}

// WriterOutput is an [Output] writing HTTP/1 message to w.
// Status line and headers are held until the first write of the body, or Flush.
type WriterOutput struct {
	bw   *bufio.Writer
	opts OutputOptions

	statusLine  string
	headerLines []string
	headersSent bool

	disconnected bool
}

var _ Output = (*WriterOutput)(nil)

func NewWriterOutput(w io.Writer, opts OutputOptions) *WriterOutput {
	return &WriterOutput{
		bw:   bufio.NewWriter(w),
		opts: opts,
	}
}

func (o *WriterOutput) HeadersSent() bool { return o.headersSent }

func (o *WriterOutput) Connected() bool { return !o.disconnected }

func (o *WriterOutput) WriteStatusLine(line string) error {
	if o.headersSent {
		return ErrHeadersSent
	}
	o.statusLine = line
	return nil
}

func (o *WriterOutput) WriteHeaderLine(line string, replace bool) error {
	if o.headersSent {
		return ErrHeadersSent
	}

	name, _, ok := strings.Cut(line, ":")
	if !ok {
		return errors.Wrapf(ErrMalformedHeader, "%q", line)
	}

	if replace {
		kept := o.headerLines[:0]
		for _, l := range o.headerLines {
			if n, _, _ := strings.Cut(l, ":"); !strings.EqualFold(n, name) {
				kept = append(kept, l)
			}
		}
		o.headerLines = kept
	}

	o.headerLines = append(o.headerLines, line)
	return nil
}

func (o *WriterOutput) Write(p []byte) (int, error) {
	if err := o.sendHeaders(); err != nil {
		return 0, err
	}

	n, err := o.bw.Write(p)
	return n, o.check(err)
}

// Flush sends headers if not yet, and everything buffered.
func (o *WriterOutput) Flush() error {
	if err := o.sendHeaders(); err != nil {
		return err
	}
	return o.check(o.bw.Flush())
}

func (o *WriterOutput) sendHeaders() error {
	if o.headersSent {
		return nil
	}
	o.headersSent = true

	statusLine := o.statusLine
	if statusLine == "" {
		statusLine = defaultStatusLine
	}
	if err := o.writeLine([]byte(statusLine)); err != nil {
		return errors.Wrap(err, "writing status line")
	}

	for _, line := range o.headerLines {
		if err := o.writeLine([]byte(line)); err != nil {
			return errors.Wrap(err, "writing field")
		}
	}

	// Write a empty line as all the headers are written.
	if err := o.writeLine(nil); err != nil {
		return errors.Wrap(err, "writing line terminator")
	}

	return nil
}

func (o *WriterOutput) writeLine(line []byte) error {
	if _, err := o.bw.Write(line); err != nil {
		return o.check(errors.Wrap(err, "writing line"))
	}

	term := rule.CRLF
	if o.opts.UseSoleLF {
		term = term[1:]
	}

	if _, err := o.bw.Write(term); err != nil {
		return o.check(errors.Wrap(err, "writing line terminator"))
	}

	return nil
}

// check marks the output disconnected if err says the peer is gone.
func (o *WriterOutput) check(err error) error {
	if iolib.IsPeerGone(err) {
		o.disconnected = true
	}
	return err
}
