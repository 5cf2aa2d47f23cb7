package uri

import (
	"strings"
)

// URI is an immutable URI reference.
// Every field holds the canonical form of its component, so URI is always valid.
// Zero value is an empty relative reference.
type URI struct {
	scheme   string
	userInfo string
	host     string
	port     uint16 // 0 if absent.
	path     string
	query    string
	fragment string
}

// Parse parses raw into URI.
// Empty raw results in zero value without being parsed.
func Parse(raw string) (URI, error) {
	if raw == "" {
		return URI{}, nil
	}

	c, err := ParseComponents(raw)
	if err != nil {
		return URI{}, err
	}

	return FromComponents(c), nil
}

func FromComponents(c Components) URI {
	port, _ := c.Port.Int()
	return URI{
		scheme:   c.Scheme.String(),
		userInfo: c.UserInfo.String(),
		host:     c.Host.String(),
		port:     port,
		path:     c.Path.String(),
		query:    c.Query.String(),
		fragment: c.Fragment.String(),
	}
}

func (u URI) Scheme() string   { return u.scheme }
func (u URI) UserInfo() string { return u.userInfo }
func (u URI) Host() string     { return u.host }
func (u URI) Path() string     { return u.path }
func (u URI) Query() string    { return u.query }
func (u URI) Fragment() string { return u.fragment }

// Port returns the port, and false if it's absent.
// Port equal to the default port of the scheme is reported as absent.
func (u URI) Port() (uint16, bool) {
	if u.port == 0 || u.port == defaultPort(u.scheme) {
		return 0, false
	}
	return u.port, true
}

// Authority returns "[userinfo@]host[:port]", or empty string if host is empty.
// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.2
func (u URI) Authority() string {
	if u.host == "" {
		return ""
	}

	b := new(strings.Builder)
	if u.userInfo != "" {
		b.WriteString(u.userInfo)
		b.WriteByte('@')
	}
	b.WriteString(u.host)
	if port, ok := u.Port(); ok {
		b.WriteByte(':')
		b.WriteString(Port{value: port}.String())
	}

	return b.String()
}

func (u URI) WithScheme(scheme string) (URI, error) {
	s, err := NewScheme(scheme)
	if err != nil {
		return URI{}, err
	}
	u.scheme = s.String()
	return u, nil
}

// WithUserInfo replaces userinfo. Password is only set if given.
func (u URI) WithUserInfo(user string, password ...string) URI {
	u.userInfo = NewUserInfo(user, password...).String()
	return u
}

func (u URI) WithHost(host string) URI {
	u.host = NewHost(host).String()
	return u
}

func (u URI) WithPort(port int) (URI, error) {
	p, err := NewPort(port)
	if err != nil {
		return URI{}, err
	}
	u.port, _ = p.Int()
	return u, nil
}

func (u URI) WithoutPort() URI {
	u.port = 0
	return u
}

func (u URI) WithPath(path string) URI {
	u.path = NewPath(path).String()
	return u
}

func (u URI) WithQuery(query string) URI {
	u.query = NewQuery(query).String()
	return u
}

func (u URI) WithFragment(fragment string) URI {
	u.fragment = NewFragment(fragment).String()
	return u
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-5.3
func (u URI) String() string {
	b := new(strings.Builder)
	b.WriteString(u.BaseURL())

	b.WriteString(u.path)

	if u.query != "" {
		b.WriteByte('?')
		b.WriteString(u.query)
	}

	if u.fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.fragment)
	}

	return b.String()
}

// BaseURL returns scheme and authority part of the URI. It never has a trailing slash.
// Empty authority is kept when the path begins with "//".
// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.3
func (u URI) BaseURL() string {
	b := new(strings.Builder)
	if u.scheme != "" {
		b.WriteString(u.scheme)
		b.WriteByte(':')
	}

	if authority := u.Authority(); authority != "" || strings.HasPrefix(u.path, "//") {
		b.WriteString("//")
		b.WriteString(authority)
	}

	return b.String()
}
