package semantic

import (
	"maps"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/http/httpguts"
)

// Headers holds header fields by lowercased name.
// Names keep the order they first appeared in.
//
// Zero value is an empty Headers.
type Headers struct {
	names      []string
	underlying map[string][]string
}

// NewHeaders creates Headers from initial, validating every name and value.
// Names are visited in sorted order since map has no order.
func NewHeaders(initial map[string][]string) (Headers, error) {
	var h Headers
	for _, name := range slices.Sorted(maps.Keys(initial)) {
		if err := h.add(name, initial[name]...); err != nil {
			return Headers{}, err
		}
	}
	return h, nil
}

// Names returns lowercased field names in order.
func (h Headers) Names() []string {
	names := make([]string, len(h.names))
	copy(names, h.names)
	return names
}

func (h Headers) Len() int { return len(h.names) }

func (h Headers) Has(name string) bool {
	return len(h.underlying[canonical(name)]) > 0
}

// Get assumes the field is a singleton field.
// Even if key has multiple values, it will only return the first element of values.
// For list-based field, use [Headers.Values].
func (h Headers) Get(name string) (value string, ok bool) {
	v := h.underlying[canonical(name)]
	if len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// Values returns a copy of the values of the field, or empty slice if it doesn't exist.
func (h Headers) Values(name string) []string {
	v := h.underlying[canonical(name)]
	values := make([]string, len(v))
	copy(values, v)
	return values
}

// Line joins the values of the field with a comma.
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.3
func (h Headers) Line(name string) string {
	return strings.Join(h.underlying[canonical(name)], ",")
}

// Fields returns all the key-values in the header.
func (h Headers) Fields() map[string][]string {
	return h.clone().underlying
}

func (h Headers) clone() Headers {
	c := Headers{
		names:      make([]string, len(h.names)),
		underlying: make(map[string][]string, len(h.underlying)),
	}
	copy(c.names, h.names)
	for k, v := range h.underlying {
		sliceClone := make([]string, len(v))
		copy(sliceClone, v)

		c.underlying[k] = sliceClone
	}
	return c
}

// add validates and appends values to the field.
// h should be owned by the caller, since it's modified in place.
func (h *Headers) add(name string, values ...string) error {
	if err := validateField(name, values); err != nil {
		return err
	}
	h.append(name, values...)
	return nil
}

func (h *Headers) append(name string, values ...string) {
	if h.underlying == nil {
		h.underlying = make(map[string][]string)
	}

	name = canonical(name)
	if _, ok := h.underlying[name]; !ok {
		h.names = append(h.names, name)
	}
	h.underlying[name] = append(h.underlying[name], values...)
}

func (h *Headers) del(name string) {
	name = canonical(name)
	if _, ok := h.underlying[name]; !ok {
		return
	}

	delete(h.underlying, name)
	for idx, n := range h.names {
		if n == name {
			h.names = append(h.names[:idx:idx], h.names[idx+1:]...)
			break
		}
	}
}

// Field names are case-insensitive.
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.1-3
func canonical(name string) string {
	return strings.ToLower(name)
}

// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.5
func validateField(name string, values []string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return errors.Wrapf(ErrInvalidHeaderName, "%q is not a token", name)
	}
	if len(values) == 0 {
		return errors.Wrapf(ErrInvalidHeaderValue, "no value given for %q", name)
	}
	for _, v := range values {
		if !httpguts.ValidHeaderFieldValue(v) {
			return errors.Wrapf(ErrInvalidHeaderValue, "%q has invalid value %q", name, v)
		}
	}
	return nil
}
