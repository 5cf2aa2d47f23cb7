package semantic

import (
	"github.com/the-limbo/http/application/http/stream"

	"github.com/pkg/errors"
)

const DefaultProtocolVersion = "1.1"

// HTTP/1 uses "<major>.<minor>" while HTTP/2 doesn't.
var protocolVersions = map[string]struct{}{
	"1.0": {},
	"1.1": {},
	"2":   {},
}

// Message is the part shared by Request and Response.
// Every With method returns a modified copy and leaves the receiver untouched.
// Headers are deep-copied, while the body stream is shared between copies.
//
// Zero value is a HTTP/1.1 message without headers and body.
type Message struct {
	version string
	headers Headers
	body    *stream.Stream
}

func (m Message) ProtocolVersion() string {
	if m.version == "" {
		return DefaultProtocolVersion
	}
	return m.version
}

func (m Message) WithProtocolVersion(version string) (Message, error) {
	if _, ok := protocolVersions[version]; !ok {
		return Message{}, errors.Wrapf(ErrInvalidProtocolVersion, "unsupported version %q", version)
	}
	m.version = version
	return m, nil
}

// Headers returns a copy of the headers.
func (m Message) Headers() Headers { return m.headers.clone() }

func (m Message) HasHeader(name string) bool { return m.headers.Has(name) }

// Header returns the values of the field. It never returns nil.
func (m Message) Header(name string) []string { return m.headers.Values(name) }

func (m Message) HeaderLine(name string) string { return m.headers.Line(name) }

// WithHeader appends values to the field.
// Existing values are kept, so it's identical to [Message.WithAddedHeader].
func (m Message) WithHeader(name string, values ...string) (Message, error) {
	headers := m.headers.clone()
	if err := headers.add(name, values...); err != nil {
		return Message{}, err
	}
	m.headers = headers
	return m, nil
}

func (m Message) WithAddedHeader(name string, values ...string) (Message, error) {
	return m.WithHeader(name, values...)
}

func (m Message) WithoutHeader(name string) Message {
	m.headers = m.headers.clone()
	m.headers.del(name)
	return m
}

// Body returns the body stream, which is nil if it was never set.
func (m Message) Body() *stream.Stream { return m.body }

func (m Message) WithBody(body *stream.Stream) Message {
	m.body = body
	return m
}

// withTrustedHeader appends values which are known to be valid.
func (m Message) withTrustedHeader(name string, values ...string) Message {
	m.headers = m.headers.clone()
	m.headers.append(name, values...)
	return m
}
