package semantic

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidHeaderName             = errors.New("invalid header name")
	ErrInvalidHeaderValue            = errors.New("invalid header value")
	ErrInvalidProtocolVersion        = errors.New("invalid protocol version")
	ErrInvalidStatusCode             = errors.New("invalid status code")
	ErrInvalidReasonPhrase           = errors.New("invalid reason phrase")
	ErrInvalidUploadedFilesStructure = errors.New("invalid uploaded files structure")
	ErrInvalidMethod                 = errors.New("invalid method")
	ErrInvalidRequestTarget          = errors.New("invalid request target")
	ErrFileMoved                     = errors.New("uploaded file is already moved")
	ErrUploadFailed                  = errors.New("uploaded file has an upload error")
	ErrJSONEncode                    = errors.New("failed to encode JSON")
)

// JSONError is returned when a value can't be serialized into JSON.
// It matches [ErrJSONEncode].
type JSONError struct {
	Code int
	Msg  string

	cause error
}

const (
	JSONErrUnsupportedType = 1 + iota
	JSONErrUnsupportedValue
	JSONErrMarshaler
	JSONErrUnknown
)

func (e *JSONError) Error() string {
	return fmt.Sprintf("%s (code %d): %s", ErrJSONEncode, e.Code, e.Msg)
}

func (e *JSONError) Cause() error  { return e.cause }
func (e *JSONError) Unwrap() error { return e.cause }

func (e *JSONError) Is(target error) bool { return target == ErrJSONEncode }
