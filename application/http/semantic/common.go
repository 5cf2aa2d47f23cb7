package semantic

import (
	"slices"
	"time"

	"github.com/pkg/errors"
)

// Method is a request method token in upper case.
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-9
type Method string

const (
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH" // RFC 5789
	MethodDelete  Method = "DELETE"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
)

// DefaultSafeMethods returns the methods which are read-only by definition.
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-9.2.1
func DefaultSafeMethods() []Method {
	return []Method{MethodGet, MethodHead, MethodOptions, MethodTrace}
}

// IsSafe reports whether m is one of [DefaultSafeMethods].
func (m Method) IsSafe() bool {
	return slices.Contains(DefaultSafeMethods(), m)
}

// IMF-fixdate, with its zone fixed to GMT.
const httpDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// Recipients should accept the obsolete forms too.
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.7
var dateLayouts = []string{
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
}

// ParseDate parses HTTP-date in any of its three forms.
// asctime has no zone, so the result is in UTC.
func ParseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("%q is not a HTTP-date", raw)
}

// FormatDate formats t as IMF-fixdate.
func FormatDate(t time.Time) string {
	return t.UTC().Format(httpDateLayout)
}
