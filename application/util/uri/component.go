package uri

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidComponent = errors.New("invalid URI component")

type Kind uint8

const (
	KindScheme Kind = 1 + iota
	KindUser
	KindPass
	KindUserInfo
	KindHost
	KindPort
	KindPath
	KindQuery
	KindFragment
)

func (k Kind) String() string {
	switch k {
	case KindScheme:
		return "scheme"
	case KindUser:
		return "user"
	case KindPass:
		return "pass"
	case KindUserInfo:
		return "userinfo"
	case KindHost:
		return "host"
	case KindPort:
		return "port"
	case KindPath:
		return "path"
	case KindQuery:
		return "query"
	case KindFragment:
		return "fragment"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ComponentError is returned when a raw value doesn't satisfy the grammar of its component.
// It matches [ErrInvalidComponent].
type ComponentError struct {
	Kind  Kind
	Value string
	cause error
}

func newComponentError(kind Kind, value string, cause error) *ComponentError {
	return &ComponentError{Kind: kind, Value: value, cause: cause}
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("invalid URI %s %q: %s", e.Kind, e.Value, e.cause)
}

func (e *ComponentError) Cause() error  { return e.cause }
func (e *ComponentError) Unwrap() error { return e.cause }

func (e *ComponentError) Is(target error) bool { return target == ErrInvalidComponent }

// Component is a validated subcomponent of URI.
// String returns its canonical form.
type Component interface {
	Kind() Kind
	String() string
}

var (
	_ Component = Scheme{}
	_ Component = User{}
	_ Component = Pass{}
	_ Component = UserInfo{}
	_ Component = Host{}
	_ Component = Port{}
	_ Component = Path{}
	_ Component = Query{}
	_ Component = Fragment{}
)

type Scheme struct{ value string }

// NewScheme validates raw with the scheme rule and lowercases it.
// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.1
func NewScheme(raw string) (Scheme, error) {
	if raw == "" {
		return Scheme{}, nil
	}
	if err := assertValidScheme(raw); err != nil {
		return Scheme{}, newComponentError(KindScheme, raw, err)
	}
	return Scheme{value: strings.ToLower(raw)}, nil
}

func (s Scheme) Kind() Kind { return KindScheme }
func (s Scheme) String() string { return s.value }

type User struct{ value string }

func NewUser(raw string) User { return User{value: normalize(raw, encodeUser)} }

func (u User) Kind() Kind { return KindUser }
func (u User) String() string { return u.value }

type Pass struct{ value string }

func NewPass(raw string) Pass { return Pass{value: normalize(raw, encodeUser)} }

func (p Pass) Kind() Kind { return KindPass }
func (p Pass) String() string { return p.value }

// UserInfo is composed as "user[:pass]".
// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.2.1
type UserInfo struct{ value string }

// NewUserInfo creates UserInfo from user and optional password.
// Only the first password is used.
func NewUserInfo(user string, password ...string) UserInfo {
	value := NewUser(user).String()
	if len(password) > 0 {
		value += ":" + NewPass(password[0]).String()
	}
	return UserInfo{value: value}
}

func (u UserInfo) Kind() Kind { return KindUserInfo }
func (u UserInfo) String() string { return u.value }

type Host struct{ value string }

// NewHost encodes raw as either IP Literal or reg-name, and lowercases it.
// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.2.2
func NewHost(raw string) Host {
	mode := encodeHost
	if isIPLiteral(raw) {
		mode = encodeIPLiteral
	}
	return Host{value: foldCase(normalize(raw, mode))}
}

func (h Host) Kind() Kind { return KindHost }
func (h Host) String() string { return h.value }

// Port of value 0 stands for absent port.
type Port struct{ value uint16 }

const (
	minPort = 1
	maxPort = 1 << 16 // exclusive
)

func NewPort(port int) (Port, error) {
	if port < minPort || port >= maxPort {
		return Port{}, newComponentError(
			KindPort, strconv.Itoa(port),
			errors.Errorf("port should be in range of [%d, %d)", minPort, maxPort),
		)
	}
	return Port{value: uint16(port)}, nil
}

func (p Port) Kind() Kind { return KindPort }

// Int returns the port number, and false if port is absent.
func (p Port) Int() (uint16, bool) { return p.value, p.value != 0 }

func (p Port) String() string {
	if p.value == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(p.value), 10)
}

type Path struct{ value string }

func NewPath(raw string) Path { return Path{value: normalize(raw, encodePath)} }

func (p Path) Kind() Kind { return KindPath }
func (p Path) String() string { return p.value }

type Query struct{ value string }

func NewQuery(raw string) Query { return Query{value: normalize(raw, encodeQuery)} }

func (q Query) Kind() Kind { return KindQuery }
func (q Query) String() string { return q.value }

type Fragment struct{ value string }

func NewFragment(raw string) Fragment { return Fragment{value: normalize(raw, encodeFragment)} }

func (f Fragment) Kind() Kind { return KindFragment }
func (f Fragment) String() string { return f.value }
