package semantic

import (
	"io"
	"strconv"
	"strings"

	"github.com/the-limbo/http/application/http/semantic/status"
	"github.com/the-limbo/http/application/http/stream"
	"github.com/the-limbo/http/application/util/rule"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Response is a HTTP response to be emitted.
// Every With method returns a modified copy and leaves the receiver untouched.
// Writing to the body is visible to every copy sharing it.
type Response struct {
	Message

	statusCode   int
	reasonPhrase string
}

// NewResponse creates 200 OK response with an empty in-memory body.
func NewResponse() *Response {
	r := &Response{statusCode: status.OK.Code}
	r.Message = r.Message.WithBody(stream.FromResource(stream.NewMemory(nil), "w+b"))
	return r
}

func (r *Response) clone() *Response {
	c := *r
	return &c
}

func (r *Response) WithProtocolVersion(version string) (*Response, error) {
	msg, err := r.Message.WithProtocolVersion(version)
	if err != nil {
		return nil, err
	}
	c := r.clone()
	c.Message = msg
	return c, nil
}

// WithHeader appends values to the field, just like [Response.WithAddedHeader].
func (r *Response) WithHeader(name string, values ...string) (*Response, error) {
	msg, err := r.Message.WithHeader(name, values...)
	if err != nil {
		return nil, err
	}
	c := r.clone()
	c.Message = msg
	return c, nil
}

func (r *Response) WithAddedHeader(name string, values ...string) (*Response, error) {
	return r.WithHeader(name, values...)
}

func (r *Response) WithoutHeader(name string) *Response {
	c := r.clone()
	c.Message = r.Message.WithoutHeader(name)
	return c
}

func (r *Response) WithBody(body *stream.Stream) *Response {
	c := r.clone()
	c.Message = r.Message.WithBody(body)
	return c
}

// StatusCode returns the status code. Default is 200.
func (r *Response) StatusCode() int {
	if r.statusCode == 0 {
		return status.OK.Code
	}
	return r.statusCode
}

// ReasonPhrase returns the phrase given with [Response.WithStatus],
// or the registered phrase of the status code if it was empty.
func (r *Response) ReasonPhrase() string {
	if r.reasonPhrase != "" {
		return r.reasonPhrase
	}
	s, _ := status.FromCode(r.StatusCode())
	return s.ReasonPhrase
}

// WithStatus sets the status code and the reason phrase.
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-4
func (r *Response) WithStatus(code int, reasonPhrase string) (*Response, error) {
	if !status.Valid(code) {
		return nil, errors.Wrapf(ErrInvalidStatusCode, "%d is out of range", code)
	}
	if rule.ContainsCRLF(reasonPhrase) {
		return nil, errors.Wrapf(ErrInvalidReasonPhrase, "%q contains CR or LF", reasonPhrase)
	}

	c := r.clone()
	c.statusCode = code
	c.reasonPhrase = reasonPhrase
	return c, nil
}

// WithRedirect sets Location header with the status, which is 302 Found if not given.
func (r *Response) WithRedirect(url string, statusCode ...int) (*Response, error) {
	code := status.Found.Code
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	c, err := r.WithHeader("Location", url)
	if err != nil {
		return nil, err
	}
	return c.WithStatus(code, "")
}

// WithJSON writes data encoded in JSON into the body and sets Content-Type header.
// The status is set only if given.
// Nothing is written when the status or the data is invalid.
func (r *Response) WithJSON(data any, statusCode ...int) (*Response, error) {
	if len(statusCode) > 0 && !status.Valid(statusCode[0]) {
		return nil, errors.Wrapf(ErrInvalidStatusCode, "%d is out of range", statusCode[0])
	}

	b, err := json.Marshal(data)
	if err != nil {
		return nil, newJSONError(err)
	}

	if _, err := r.Write(b); err != nil {
		return nil, errors.Wrap(err, "writing JSON into body")
	}

	c := r.clone()
	c.Message = c.Message.withTrustedHeader("Content-Type", contentTypeJSON)
	if len(statusCode) > 0 {
		return c.WithStatus(statusCode[0], "")
	}
	return c, nil
}

func newJSONError(err error) *JSONError {
	code := JSONErrUnknown
	var (
		typeErr      *json.UnsupportedTypeError
		valueErr     *json.UnsupportedValueError
		marshalerErr *json.MarshalerError
	)
	switch {
	case errors.As(err, &typeErr):
		code = JSONErrUnsupportedType
	case errors.As(err, &valueErr):
		code = JSONErrUnsupportedValue
	case errors.As(err, &marshalerErr):
		code = JSONErrMarshaler
	}

	return &JSONError{Code: code, Msg: err.Error(), cause: err}
}

// Write writes p into the body.
// Since the body is shared, every copy of r sees the change.
func (r *Response) Write(p []byte) (int, error) {
	if r.Body() == nil {
		return 0, errors.Wrap(stream.ErrUnwritable, "response has no body")
	}
	return r.Body().Write(p)
}

// String composes the response in HTTP/1 message format.
// Reading the body rewinds it.
func (r *Response) String() string {
	b := new(strings.Builder)
	r.writeTo(b)
	return b.String()
}

func (r *Response) writeTo(w io.StringWriter) {
	w.WriteString("HTTP/" + r.ProtocolVersion() + " ")
	w.WriteString(strconv.Itoa(r.StatusCode()) + " " + r.ReasonPhrase())
	w.WriteString(string(rule.CRLF))

	for _, name := range r.headers.Names() {
		w.WriteString(name + ": " + r.HeaderLine(name))
		w.WriteString(string(rule.CRLF))
	}
	w.WriteString(string(rule.CRLF))

	if body := r.Body(); body != nil {
		w.WriteString(body.String())
	}
}
