package uri

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidURI = errors.New("invalid URI")

// Components holds every validated subcomponent of a URI reference.
type Components struct {
	Scheme   Scheme
	User     User
	Pass     Pass
	UserInfo UserInfo
	Host     Host
	Port     Port
	Path     Path
	Query    Query
	Fragment Fragment
}

// ParseComponents splits raw into subcomponents and validates each of them.
// Splitting follows the generic algorithm of RFC 3986, so raw can be either absolute or relative.
// Reference: https://datatracker.ietf.org/doc/html/rfc3986#appendix-B
func ParseComponents(raw string) (Components, error) {
	if containsCTL(raw) {
		return Components{}, errors.Wrap(ErrInvalidURI, "URI should not contain CTL bytes")
	}

	var c Components
	var err error

	scheme, rest := cutScheme(raw)
	if c.Scheme, err = NewScheme(scheme); err != nil {
		return Components{}, err
	}

	if strings.HasPrefix(rest, "//") {
		var authorityRaw string
		authorityRaw, rest = rest[2:], ""
		if i := strings.IndexAny(authorityRaw, "/?#"); i >= 0 {
			authorityRaw, rest = authorityRaw[:i], authorityRaw[i:]
		}

		if err := c.parseAuthority(authorityRaw); err != nil {
			return Components{}, errors.Wrap(err, "parsing authority")
		}
	}

	path, query, frag := splitPathQueryFrag(rest)
	c.Path = NewPath(path)
	c.Query = NewQuery(query)
	c.Fragment = NewFragment(frag)

	return c, nil
}

// cutScheme cuts scheme from raw.
// Scheme only exists if ':' appears before any of '/', '?', '#'.
func cutScheme(raw string) (scheme, rest string) {
	for idx := 0; idx < len(raw); idx++ {
		switch raw[idx] {
		case ':':
			if idx == 0 {
				return "", raw
			}
			return raw[:idx], raw[idx+1:]
		case '/', '?', '#':
			return "", raw
		}
	}

	// If seperator is not found, scheme doesn't exist.
	return "", raw
}

func (c *Components) parseAuthority(raw string) error {
	var userInfo, hostPort string
	hasUserInfo := false
	if i := strings.LastIndex(raw, "@"); i >= 0 {
		userInfo, hostPort = raw[:i], raw[i+1:]
		hasUserInfo = true
	} else {
		hostPort = raw
	}

	host, portPart, err := getHostPort(hostPort)
	if err != nil {
		return err
	}

	port, hasPort, err := parsePort(portPart)
	if err != nil {
		return err
	}

	if host == "" && (hasUserInfo || hasPort) {
		return errors.Wrap(ErrInvalidURI, "authority with userinfo or port requires host")
	}

	if hasUserInfo {
		if user, pass, found := strings.Cut(userInfo, ":"); found {
			c.User, c.Pass = NewUser(user), NewPass(pass)
			c.UserInfo = NewUserInfo(user, pass)
		} else {
			c.User = NewUser(user)
			c.UserInfo = NewUserInfo(user)
		}
	}

	c.Host = NewHost(host)

	if hasPort {
		if c.Port, err = NewPort(port); err != nil {
			return err
		}
	}

	return nil
}

func getHostPort(raw string) (host string, portPart string, err error) {
	if strings.HasPrefix(raw, "[") {
		// This is IP Literal.
		idx := strings.LastIndex(raw, "]")
		if idx < 0 {
			return "", "", errors.Wrap(ErrInvalidURI, "missing ']' in IP Literal")
		}

		host = raw[:idx+1]
		portPart = raw[idx+1:]
		if portPart != "" && portPart[0] != ':' {
			return "", "", errors.Wrapf(ErrInvalidURI, "unexpected %q after IP Literal", portPart)
		}
	} else {
		// ipv4 or reg-name.
		host = raw
		if idx := strings.LastIndex(raw, ":"); idx >= 0 {
			host = raw[:idx]
			portPart = raw[idx:]
		}
	}

	return host, portPart, nil
}

// parsePort parses port part of authority, including the leading colon.
// Empty port is treated as absent.
// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.2.3
func parsePort(s string) (port int, hasPort bool, err error) {
	s = strings.TrimPrefix(s, ":")
	if s == "" {
		return 0, false, nil
	}

	for idx := 0; idx < len(s); idx++ {
		if s[idx] < '0' || s[idx] > '9' {
			return 0, false, errors.Wrapf(ErrInvalidURI, "port is not a number: %q", s)
		}
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, errors.Wrapf(ErrInvalidURI, "port is too large: %q", s)
	}

	return n, true, nil
}

// splitPathQueryFrag splits raw into path, query and fragment.
// Delimiters are not included in query and fragment.
func splitPathQueryFrag(raw string) (path, query, frag string) {
	if idx := strings.IndexByte(raw, '#'); idx >= 0 {
		frag = raw[idx+1:]
		raw = raw[:idx]
	}

	if idx := strings.IndexByte(raw, '?'); idx >= 0 {
		query = raw[idx+1:]
		raw = raw[:idx]
	}

	path = raw
	return
}
