package semantic

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/the-limbo/http/application/http/stream"

	"github.com/pkg/errors"
)

// UploadErr tells whether a file was uploaded successfully.
// Values are compatible with the ones CGI style environments report.
type UploadErr int

const (
	UploadErrOK UploadErr = iota
	UploadErrIniSize
	UploadErrFormSize
	UploadErrPartial
	UploadErrNoFile
	_
	UploadErrNoTmpDir
	UploadErrCantWrite
	UploadErrExtension
)

func (e UploadErr) String() string {
	switch e {
	case UploadErrOK:
		return "ok"
	case UploadErrIniSize:
		return "exceeds server size limit"
	case UploadErrFormSize:
		return "exceeds form size limit"
	case UploadErrPartial:
		return "partially uploaded"
	case UploadErrNoFile:
		return "no file"
	case UploadErrNoTmpDir:
		return "missing temporary directory"
	case UploadErrCantWrite:
		return "failed to write to disk"
	case UploadErrExtension:
		return "stopped by extension"
	}
	return fmt.Sprintf("upload error(%d)", int(e))
}

const moveChunkSize = 4096

// UploadedFile is a file received with a request.
// Its stream can be consumed once by [UploadedFile.MoveTo].
type UploadedFile struct {
	stream *stream.Stream
	moved  bool

	size            int64
	err             UploadErr
	clientFilename  string
	clientMediaType string
}

// NewUploadedFile creates UploadedFile with stream s.
// Negative size means it should be taken from the stream.
func NewUploadedFile(
	s *stream.Stream,
	size int64,
	errCode UploadErr,
	clientFilename, clientMediaType string,
) *UploadedFile {
	if size < 0 {
		size = -1
		if n, ok := s.Size(); ok {
			size = n
		}
	}

	return &UploadedFile{
		stream:          s,
		size:            size,
		err:             errCode,
		clientFilename:  clientFilename,
		clientMediaType: clientMediaType,
	}
}

func (f *UploadedFile) Stream() (*stream.Stream, error) {
	if f.moved {
		return nil, ErrFileMoved
	}
	return f.stream, nil
}

// MoveTo writes the content into the file at targetPath, and closes the stream.
// The directory of targetPath should exist.
func (f *UploadedFile) MoveTo(targetPath string) error {
	if f.moved {
		return ErrFileMoved
	}
	if f.err != UploadErrOK {
		return errors.Wrapf(ErrUploadFailed, "cannot move file: %s", f.err)
	}

	dir := filepath.Dir(targetPath)
	info, err := os.Stat(dir)
	if err != nil {
		return errors.Wrapf(err, "checking directory %q", dir)
	}
	if !info.IsDir() {
		return errors.Errorf("%q is not a directory", dir)
	}

	target, err := stream.Open(targetPath, "wb")
	if err != nil {
		return errors.Wrap(err, "opening target")
	}
	defer target.Close()

	if f.stream.IsSeekable() {
		if err := f.stream.Rewind(); err != nil {
			return errors.Wrap(err, "rewinding uploaded file")
		}
	}

	if _, err := io.CopyBuffer(target, f.stream, make([]byte, moveChunkSize)); err != nil {
		return errors.Wrap(err, "copying uploaded file")
	}

	if err := f.stream.Close(); err != nil {
		return errors.Wrap(err, "closing uploaded file")
	}
	f.moved = true
	f.stream = nil

	return errors.Wrap(target.Close(), "closing target")
}

// Size returns the size in bytes, or -1 if it's unknown.
func (f *UploadedFile) Size() int64 { return f.size }

func (f *UploadedFile) ErrorCode() UploadErr { return f.err }

func (f *UploadedFile) ClientFilename() string  { return f.clientFilename }
func (f *UploadedFile) ClientMediaType() string { return f.clientMediaType }
