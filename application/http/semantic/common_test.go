package semantic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateForms(t *testing.T) {
	want := time.Date(1994, 11, 6, 8, 49, 37, 0, time.UTC)

	testcases := []struct {
		desc    string
		raw     string
		wantErr bool
	}{
		{desc: "IMF-fixdate", raw: "Sun, 06 Nov 1994 08:49:37 GMT"},
		{desc: "RFC 850", raw: "Sunday, 06-Nov-94 08:49:37 GMT"},
		{desc: "asctime", raw: "Sun Nov  6 08:49:37 1994"},
		{desc: "ISO 8601", raw: "1994-11-06T08:49:37Z", wantErr: true},
		{desc: "empty", raw: "", wantErr: true},
		{desc: "garbage", raw: "yesterday", wantErr: true},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := ParseDate(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}
}

func TestFormatDate(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	tm := time.Date(1994, 11, 6, 17, 49, 37, 0, seoul)

	formatted := FormatDate(tm)
	assert.Equal(t, "Sun, 06 Nov 1994 08:49:37 GMT", formatted)

	parsed, err := ParseDate(formatted)
	require.NoError(t, err)
	assert.True(t, tm.Equal(parsed))
}

func TestMethodIsSafe(t *testing.T) {
	for _, m := range DefaultSafeMethods() {
		assert.True(t, m.IsSafe(), m)
	}
	for _, m := range []Method{MethodPost, MethodPut, MethodPatch, MethodDelete, "CONNECT", "get"} {
		assert.False(t, m.IsSafe(), m)
	}
}
