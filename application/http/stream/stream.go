package stream

import (
	"io"
	"os"

	iolib "github.com/the-limbo/http/lib/io"

	"github.com/pkg/errors"
)

// Resource is an underlying handle of [Stream].
// What Stream can do with it is discovered from [io.Reader], [io.Writer] and [io.Seeker],
// together with the mode it was opened with.
type Resource interface {
	io.Closer
}

type sizer interface{ Size() int64 }
type stater interface{ Stat() (os.FileInfo, error) }

// Stream wraps a Resource.
// Once detached or closed, every operation fails as if there were no resource.
//
// Stream is not safe for concurrent use.
type Stream struct {
	res  Resource
	mode Mode

	// eof is set when a read reached the end of the resource.
	eof bool
}

func FromResource(res Resource, mode Mode) *Stream {
	return &Stream{res: res, mode: mode}
}

// New creates a readable and writable in-memory stream which contains content.
// Its position is at the beginning.
func New(content string) *Stream {
	return FromResource(NewMemory([]byte(content)), ModeReadWrite)
}

// Open opens the named file with the fopen style mode.
func Open(filename string, mode Mode) (*Stream, error) {
	flags, err := mode.flags()
	if err != nil {
		return nil, newError(ErrUnopenable, ErrUnsupported, err)
	}

	f, err := os.OpenFile(filename, flags, 0o644)
	if err != nil {
		return nil, newError(ErrUnopenable, nil, err)
	}

	return FromResource(f, mode), nil
}

func (s *Stream) Mode() Mode { return s.mode }

func (s *Stream) IsReadable() bool {
	if s.res == nil || !s.mode.Readable() {
		return false
	}
	_, ok := s.res.(io.Reader)
	return ok
}

func (s *Stream) IsWritable() bool {
	if s.res == nil || !s.mode.Writable() {
		return false
	}
	_, ok := s.res.(io.Writer)
	return ok
}

// IsSeekable reports whether the resource can change its position.
// Some resources implement [io.Seeker] without supporting it (e.g. pipes), so it's probed.
func (s *Stream) IsSeekable() bool {
	seeker, ok := s.res.(io.Seeker)
	if !ok {
		return false
	}
	_, err := seeker.Seek(0, io.SeekCurrent)
	return err == nil
}

// Size returns the size of the resource, and false if it's unknown.
func (s *Stream) Size() (int64, bool) {
	switch r := s.res.(type) {
	case sizer:
		return r.Size(), true
	case stater:
		info, err := r.Stat()
		if err != nil {
			return 0, false
		}
		return info.Size(), true
	}
	return 0, false
}

func (s *Stream) Tell() (int64, error) {
	if s.res == nil {
		return 0, newError(ErrUntellable, ErrDetached, nil)
	}

	seeker, ok := s.res.(io.Seeker)
	if !ok {
		return 0, newError(ErrUntellable, ErrUnsupported, nil)
	}

	pos, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, newError(ErrUntellable, nil, err)
	}

	return pos, nil
}

// Eof reports whether the position is at the end of the stream.
// When the position or the size is unknown, it reports whether a read has reached the end.
func (s *Stream) Eof() bool {
	if s.res == nil {
		return true
	}
	if s.eof {
		return true
	}

	size, ok := s.Size()
	if !ok {
		return false
	}
	pos, err := s.Tell()
	if err != nil {
		return false
	}

	return pos >= size
}

func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	if s.res == nil {
		return 0, newError(ErrUnseekable, ErrDetached, nil)
	}
	if !s.IsSeekable() {
		return 0, newError(ErrUnseekable, ErrUnsupported, nil)
	}

	pos, err := s.res.(io.Seeker).Seek(offset, whence)
	if err != nil {
		return 0, newError(ErrUnseekable, nil, err)
	}

	s.eof = false
	return pos, nil
}

func (s *Stream) Rewind() error {
	_, err := s.Seek(0, io.SeekStart)
	return err
}

// Read reads up to len(p) bytes from the resource.
// Reaching the end is reported with bare [io.EOF], so Stream can be used as [io.Reader].
func (s *Stream) Read(p []byte) (int, error) {
	if s.res == nil {
		return 0, newError(ErrUnreadable, ErrDetached, nil)
	}
	if !s.IsReadable() {
		return 0, newError(ErrUnreadable, ErrUnsupported, nil)
	}

	n, err := s.res.(io.Reader).Read(p)
	if err == io.EOF {
		s.eof = true
		return n, io.EOF
	}
	if err != nil {
		return n, newError(ErrUnreadable, nil, err)
	}

	return n, nil
}

func (s *Stream) Write(p []byte) (int, error) {
	if s.res == nil {
		return 0, newError(ErrUnwritable, ErrDetached, nil)
	}
	if !s.IsWritable() {
		return 0, newError(ErrUnwritable, ErrUnsupported, nil)
	}

	n, err := iolib.WriteFull(s.res.(io.Writer), p)
	if err != nil {
		return n, newError(ErrUnwritable, nil, err)
	}

	return n, nil
}

func (s *Stream) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

// Contents reads the remainder of the stream.
func (s *Stream) Contents() (string, error) {
	if s.res == nil {
		return "", newError(ErrUnreadable, ErrDetached, nil)
	}
	if !s.IsReadable() {
		return "", newError(ErrUnreadable, ErrUnsupported, nil)
	}

	b, err := io.ReadAll(s.res.(io.Reader))
	if err != nil {
		return "", newError(ErrUnreadable, nil, err)
	}
	s.eof = true

	return string(b), nil
}

// Detach returns the resource and separates it from the stream.
// The stream is unusable afterwards.
func (s *Stream) Detach() Resource {
	res := s.res
	s.res = nil
	return res
}

// Close detaches the resource and closes it.
func (s *Stream) Close() error {
	res := s.Detach()
	if res == nil {
		return nil
	}
	return errors.Wrap(res.Close(), "closing resource")
}

// String reads the whole stream from the beginning.
// It never fails: empty string is returned instead.
func (s *Stream) String() string {
	if !s.IsReadable() {
		return ""
	}
	if s.IsSeekable() {
		if err := s.Rewind(); err != nil {
			return ""
		}
	}

	contents, err := s.Contents()
	if err != nil {
		return ""
	}
	return contents
}
