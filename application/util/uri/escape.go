package uri

import (
	"strings"
)

type encodeMode uint

const (
	encodeUser encodeMode = 1 + iota // Also used for password.
	encodeHost
	encodeIPLiteral
	encodePath
	encodeQuery
	encodeFragment
)

func hex(c byte) (h [2]byte) {
	const hexSet = "0123456789ABCDEF"
	h[0] = hexSet[c>>4]
	h[1] = hexSet[c&0xF]
	return
}

// normalize percent-encodes every byte of s which is not allowed in given mode.
// Percent-encoded triplets which are already well-formed are written as they are.
func normalize(s string, mode encodeMode) string {
	b := new(strings.Builder)
	b.Grow(len(s))

	for idx := 0; idx < len(s); idx++ {
		c := s[idx]
		if c == '%' && idx+2 < len(s) && isPercentEncoded(s[idx:idx+3]) {
			b.WriteString(s[idx : idx+3])
			idx += 2
			continue
		}

		if shouldEscape(c, mode) {
			hex := hex(c)
			b.Write([]byte{'%', hex[0], hex[1]})
		} else {
			b.WriteByte(c)
		}
	}

	return b.String()
}

func shouldEscape(c byte, mode encodeMode) bool {
	if isUnreserved(c) {
		return false
	}

	if isReserved(c) {
		if isSubDelim(c) {
			// Every component accepts sub-delims.
			return false
		}

		switch mode {
		case encodeUser:
			// ':' seperates user from password, so it can't be a part of either.
			// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.2.1
			return true
		case encodeHost:
			// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.2.2
			return true
		case encodeIPLiteral:
			return !(c == '[' || c == ']' || c == ':')
		case encodePath:
			// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.3
			return !(c == ':' || c == '@' || c == '/')
		case encodeFragment, encodeQuery:
			// Reference:
			// https://datatracker.ietf.org/doc/html/rfc3986#section-3.4
			// https://datatracker.ietf.org/doc/html/rfc3986#section-3.5
			return !(c == ':' || c == '@' || c == '/' || c == '?')
		}
	}

	return true
}

// foldCase lowercases s, except for the hex digits of percent-encoded triplets
// which are uppercased instead.
// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-6.2.2.1
func foldCase(s string) string {
	b := []byte(s)
	for idx := 0; idx < len(b); idx++ {
		c := b[idx]
		if c == '%' && idx+2 < len(b) && isPercentEncoded(string(b[idx:idx+3])) {
			b[idx+1] = upper(b[idx+1])
			b[idx+2] = upper(b[idx+2])
			idx += 2
			continue
		}
		if 'A' <= c && c <= 'Z' {
			b[idx] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func upper(c byte) byte {
	if 'a' <= c && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
