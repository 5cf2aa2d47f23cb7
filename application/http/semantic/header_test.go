package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHeaders(t *testing.T) {
	initial := map[string][]string{
		"Hello":     {"world!"},
		"some-Word": {"A", "B"},
	}

	headers, err := NewHeaders(initial)
	require.NoError(t, err)

	assert.Equal(t, []string{"hello", "some-word"}, headers.Names())
	assert.Equal(t, []string{"A", "B"}, headers.Values("Some-Word"))

	initial["Hello"][0] = "there"
	assert.Equal(t, []string{"world!"}, headers.Values("hello"))
}

func TestNewHeadersInvalid(t *testing.T) {
	testcases := []struct {
		desc    string
		initial map[string][]string
		target  error
	}{
		{
			desc:    "name with space",
			initial: map[string][]string{"Content Type": {"a"}},
			target:  ErrInvalidHeaderName,
		},
		{
			desc:    "empty name",
			initial: map[string][]string{"": {"a"}},
			target:  ErrInvalidHeaderName,
		},
		{
			desc:    "no values",
			initial: map[string][]string{"A": {}},
			target:  ErrInvalidHeaderValue,
		},
		{
			desc:    "value with CRLF",
			initial: map[string][]string{"A": {"a\r\nB: b"}},
			target:  ErrInvalidHeaderValue,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := NewHeaders(tc.initial)
			assert.ErrorIs(t, err, tc.target)
		})
	}
}

func TestHeadersCaseInsensitive(t *testing.T) {
	var h Headers
	require.NoError(t, h.add("Content-Type", "text/plain"))

	for _, name := range []string{"Content-Type", "content-type", "CONTENT-TYPE"} {
		assert.True(t, h.Has(name))
		assert.Equal(t, []string{"text/plain"}, h.Values(name))

		v, ok := h.Get(name)
		assert.True(t, ok)
		assert.Equal(t, "text/plain", v)
	}
}

func TestHeadersOrder(t *testing.T) {
	var h Headers
	h.append("B", "1")
	h.append("A", "2")
	h.append("b", "3")

	assert.Equal(t, []string{"b", "a"}, h.Names())
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, "1,3", h.Line("B"))

	h.del("B")
	assert.Equal(t, []string{"a"}, h.Names())
	assert.False(t, h.Has("b"))

	h.del("missing")
	assert.Equal(t, 1, h.Len())
}

func TestHeadersMissing(t *testing.T) {
	var h Headers

	assert.False(t, h.Has("a"))
	assert.Equal(t, "", h.Line("a"))
	assert.NotNil(t, h.Values("a"))
	assert.Empty(t, h.Values("a"))

	v, ok := h.Get("a")
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestHeadersClone(t *testing.T) {
	var h Headers
	h.append("A", "a")

	c := h.clone()
	c.append("A", "b")
	c.append("C", "c")

	assert.Equal(t, []string{"a"}, h.Values("A"))
	assert.False(t, h.Has("C"))

	fields := h.Fields()
	fields["a"][0] = "modified"
	assert.Equal(t, "a", h.Line("A"))
}

func TestValidateField(t *testing.T) {
	testcases := []struct {
		desc    string
		name    string
		values  []string
		wantErr error
	}{
		{desc: "token name", name: "X-Custom_Header.1", values: []string{"v"}},
		{desc: "empty value", name: "A", values: []string{""}},
		{desc: "value with whitespaces", name: "A", values: []string{" a\tb "}},
		{desc: "obs-text", name: "A", values: []string{"caf\xe9"}},
		{desc: "name with colon", name: "A:", values: []string{"v"}, wantErr: ErrInvalidHeaderName},
		{desc: "non-ascii name", name: "é", values: []string{"v"}, wantErr: ErrInvalidHeaderName},
		{desc: "nil values", name: "A", wantErr: ErrInvalidHeaderValue},
		{desc: "NUL in value", name: "A", values: []string{"a\x00"}, wantErr: ErrInvalidHeaderValue},
		{desc: "DEL in value", name: "A", values: []string{"a\x7f"}, wantErr: ErrInvalidHeaderValue},
		{desc: "LF in second value", name: "A", values: []string{"a", "b\n"}, wantErr: ErrInvalidHeaderValue},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			err := validateField(tc.name, tc.values)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
