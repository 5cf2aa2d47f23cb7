package emitter

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/the-limbo/http/application/http/semantic"
	"github.com/the-limbo/http/application/http/stream"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type headerLine struct {
	line    string
	replace bool
}

type recordingOutput struct {
	statusLine  string
	headerLines []headerLine
	body        bytes.Buffer
	headersSent bool

	writes          int
	disconnectAfter int // Number of writes until the peer leaves. 0 means never.
	writeErr        error
	flushed         bool
}

func (o *recordingOutput) HeadersSent() bool { return o.headersSent }

func (o *recordingOutput) WriteStatusLine(line string) error {
	o.statusLine = line
	return nil
}

func (o *recordingOutput) WriteHeaderLine(line string, replace bool) error {
	o.headerLines = append(o.headerLines, headerLine{line, replace})
	return nil
}

func (o *recordingOutput) Write(p []byte) (int, error) {
	o.headersSent = true
	if o.writeErr != nil {
		return 0, o.writeErr
	}
	o.writes++
	return o.body.Write(p)
}

func (o *recordingOutput) Connected() bool {
	return o.disconnectAfter == 0 || o.writes < o.disconnectAfter
}

func (o *recordingOutput) Flush() error {
	o.flushed = true
	return nil
}

// countingMemory counts reads from the body.
type countingMemory struct {
	*stream.Memory
	reads int
}

func (c *countingMemory) Read(p []byte) (int, error) {
	c.reads++
	return c.Memory.Read(p)
}

func mustResponse(t *testing.T, body string, headers ...string) *semantic.Response {
	t.Helper()

	res := semantic.NewResponse().WithBody(stream.New(body))
	for idx := 0; idx+1 < len(headers); idx += 2 {
		var err error
		res, err = res.WithHeader(headers[idx], headers[idx+1])
		require.NoError(t, err)
	}
	return res
}

func withStatus(t *testing.T, res *semantic.Response, code int) *semantic.Response {
	t.Helper()

	res, err := res.WithStatus(code, "")
	require.NoError(t, err)
	return res
}

type EmitterTestSuite struct {
	suite.Suite

	out     *recordingOutput
	clock   *clock.Mock
	emitter *Emitter
}

func TestEmitterTestSuite(t *testing.T) {
	suite.Run(t, new(EmitterTestSuite))
}

func (s *EmitterTestSuite) SetupTest() {
	s.out = &recordingOutput{}
	s.clock = clock.NewMock()
	s.emitter = New(s.out, nil, s.clock, DefaultOptions)
}

func (s *EmitterTestSuite) TestEmit() {
	res := mustResponse(s.T(), "Hello, World!", "Content-Type", "text/plain", "X-Multi", "a")
	res, err := res.WithHeader("x-multi", "b")
	s.Require().NoError(err)

	s.Require().NoError(s.emitter.Emit(res))

	s.Equal("HTTP/1.1 200 OK", s.out.statusLine)
	s.Equal([]headerLine{
		{"content-type: text/plain", true},
		{"x-multi: a", true},
		{"x-multi: b", false},
	}, s.out.headerLines)
	s.Equal("Hello, World!", s.out.body.String())
	s.True(s.out.flushed)
}

func (s *EmitterTestSuite) TestEmitSetCookie() {
	res := mustResponse(s.T(), "", "Set-Cookie", "a=1", "Set-Cookie", "b=2")

	s.Require().NoError(s.emitter.Emit(res))

	s.Equal([]headerLine{
		{"set-cookie: a=1", false},
		{"set-cookie: b=2", false},
	}, s.out.headerLines)
}

func (s *EmitterTestSuite) TestEmitHeadersAlreadySent() {
	s.out.headersSent = true

	s.Require().NoError(s.emitter.Emit(mustResponse(s.T(), "body", "A", "a")))

	s.Empty(s.out.statusLine)
	s.Empty(s.out.headerLines)
	s.Equal("body", s.out.body.String())
}

func (s *EmitterTestSuite) TestEmitEmptyResponse() {
	for _, code := range []int{204, 205, 304} {
		s.SetupTest()
		res := withStatus(s.T(), mustResponse(s.T(), "ignored"), code)

		s.Require().NoError(s.emitter.Emit(res))

		s.Equal("HTTP/1.1 "+strconv.Itoa(code)+" "+res.ReasonPhrase(), s.out.statusLine)
		s.Zero(s.out.writes)
		s.Empty(s.out.body.String())
	}
}

func (s *EmitterTestSuite) TestEmitRespectsContentLength() {
	res := mustResponse(s.T(), "0123456789", "Content-Length", "4")

	s.Require().NoError(s.emitter.Emit(res))

	s.Equal("0123", s.out.body.String())
}

func (s *EmitterTestSuite) TestEmitRewindsBody() {
	res := mustResponse(s.T(), "rewound")
	_, err := io.ReadAll(res.Body())
	s.Require().NoError(err)

	s.Require().NoError(s.emitter.Emit(res))

	s.Equal("rewound", s.out.body.String())
}

func (s *EmitterTestSuite) TestEmitUnknownLength() {
	body := stream.FromResource(io.NopCloser(strings.NewReader(strings.Repeat("a", 10000))), stream.ModeRead)
	res := semantic.NewResponse().WithBody(body)

	s.Require().NoError(s.emitter.Emit(res))

	s.Equal(10000, s.out.body.Len())
	s.Equal(3, s.out.writes)
}

func (s *EmitterTestSuite) TestEmitStopsOnDisconnect() {
	s.out.disconnectAfter = 2
	res := mustResponse(s.T(), strings.Repeat("a", 100000))

	s.Require().NoError(s.emitter.Emit(res))

	s.Equal(2, s.out.writes)
	s.Equal(2*4096, s.out.body.Len())
}

func (s *EmitterTestSuite) TestEmitWriteError() {
	res := mustResponse(s.T(), "body")

	// Peer is still there, so it's a real failure.
	s.out.writeErr = errors.New("disk is full")
	s.Error(s.emitter.Emit(res))

	// Peer is gone, so it's not.
	s.SetupTest()
	s.out.writeErr = io.ErrClosedPipe
	s.out.disconnectAfter = -1
	s.NoError(s.emitter.Emit(res))
}

func (s *EmitterTestSuite) TestEmitDateHeader() {
	s.clock.Set(time.Date(1994, 11, 6, 8, 49, 37, 0, time.UTC))
	s.emitter = New(s.out, nil, s.clock, Options{AddDateHeader: true})

	res := mustResponse(s.T(), "")
	s.Require().NoError(s.emitter.Emit(res))

	s.Contains(s.out.headerLines, headerLine{"date: Sun, 06 Nov 1994 08:49:37 GMT", true})
	s.False(res.HasHeader("Date"))

	// Valid one is kept.
	s.SetupTest()
	s.emitter = New(s.out, nil, s.clock, Options{AddDateHeader: true})
	s.Require().NoError(s.emitter.Emit(mustResponse(s.T(), "", "Date", "Mon, 07 Nov 1994 08:49:37 GMT")))
	s.Equal([]headerLine{{"date: Mon, 07 Nov 1994 08:49:37 GMT", true}}, s.out.headerLines)

	// Invalid one is replaced.
	s.SetupTest()
	s.clock.Set(time.Date(1994, 11, 6, 8, 49, 37, 0, time.UTC))
	s.emitter = New(s.out, nil, s.clock, Options{AddDateHeader: true})
	s.Require().NoError(s.emitter.Emit(mustResponse(s.T(), "", "Date", "yesterday")))
	s.Equal([]headerLine{{"date: Sun, 06 Nov 1994 08:49:37 GMT", true}}, s.out.headerLines)
}

func (s *EmitterTestSuite) TestEmitDateHeaderWithoutClock() {
	s.emitter = New(s.out, nil, nil, Options{AddDateHeader: true})
	s.Require().NoError(s.emitter.Emit(mustResponse(s.T(), "")))

	s.Require().Len(s.out.headerLines, 1)
	line := s.out.headerLines[0]
	s.True(line.replace)

	date, ok := strings.CutPrefix(line.line, "date: ")
	s.Require().True(ok)
	_, err := semantic.ParseDate(date)
	s.NoError(err)
}

func TestEmitReadCount(t *testing.T) {
	const size = 1000000

	mem := &countingMemory{Memory: stream.NewMemory(bytes.Repeat([]byte("a"), size))}
	res := semantic.NewResponse().WithBody(stream.FromResource(mem, stream.ModeReadWrite))
	res, err := res.WithHeader("Content-Length", "1000000")
	require.NoError(t, err)

	out := &recordingOutput{}
	require.NoError(t, New(out, nil, clock.New(), Options{BufferSize: 4096}).Emit(res))

	// The first read is the probe of IsEmptyResponse.
	assert.Equal(t, (size+4095)/4096, mem.reads-1)
	assert.Equal(t, size, out.body.Len())
}

func TestIsEmptyResponse(t *testing.T) {
	drained := stream.FromResource(io.NopCloser(strings.NewReader("")), stream.ModeRead)
	_, err := io.ReadAll(drained)
	require.NoError(t, err)

	testcases := []struct {
		desc     string
		res      *semantic.Response
		expected bool
	}{
		{desc: "no content", res: withStatus(t, mustResponse(t, "body"), 204), expected: true},
		{desc: "reset content", res: withStatus(t, mustResponse(t, "body"), 205), expected: true},
		{desc: "not modified", res: withStatus(t, mustResponse(t, "body"), 304), expected: true},
		{desc: "empty body", res: mustResponse(t, ""), expected: true},
		{desc: "nil body", res: new(semantic.Response), expected: true},
		{desc: "drained pipe", res: semantic.NewResponse().WithBody(drained), expected: true},
		{desc: "body", res: mustResponse(t, "body"), expected: false},
		{
			desc:     "fresh pipe",
			res:      semantic.NewResponse().WithBody(stream.FromResource(io.NopCloser(strings.NewReader("a")), stream.ModeRead)),
			expected: false,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsEmptyResponse(tc.res))
		})
	}
}

func TestIsEmptyResponseRewinds(t *testing.T) {
	res := mustResponse(t, "body")
	_, err := res.Body().Seek(2, io.SeekStart)
	require.NoError(t, err)

	assert.False(t, IsEmptyResponse(res))

	pos, err := res.Body().Tell()
	require.NoError(t, err)
	assert.EqualValues(t, 0, pos)
}
