package httpparser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type request struct {
	Method   string
	Path     string
	Protocol string
	Headers  map[string]string
	Body     string
}

type recorder struct {
	requests []*request
	current  *request
	begun    int
}

func (r *recorder) OnMessageBegin() error {
	r.current = &request{Headers: make(map[string]string)}
	r.begun++

	return nil
}

func (r *recorder) OnMethod(method []byte) error {
	r.current.Method = string(method)

	return nil
}

func (r *recorder) OnPath(path []byte) error {
	r.current.Path = string(path)

	return nil
}

func (r *recorder) OnProtocol(proto []byte) error {
	r.current.Protocol = string(proto)

	return nil
}

func (r *recorder) OnHeadersBegin() error { return nil }

func (r *recorder) OnHeader(key, value []byte) error {
	r.current.Headers[string(key)] = string(value)

	return nil
}

func (r *recorder) OnHeadersComplete() error { return nil }

func (r *recorder) OnBody(chunk []byte) error {
	r.current.Body += string(chunk)

	return nil
}

func (r *recorder) OnMessageComplete() error {
	r.requests = append(r.requests, r.current)

	return nil
}

func feedParser(parser *HTTPRequestParser, data []byte, chunksSize int) error {
	for i := 0; i < len(data); i += chunksSize {
		end := i + chunksSize

		if end > len(data) {
			end = len(data)
		}

		if err := parser.Feed(data[i:end]); err != nil {
			return err
		}
	}

	return nil
}

func newTestParser(t *testing.T, settings Settings) (*HTTPRequestParser, *recorder) {
	t.Helper()

	rec := &recorder{}
	parser, err := NewHTTPRequestParser(rec, settings)
	require.NoError(t, err)

	return parser, rec
}

var chunkSizes = []int{1, 2, 5, 1 << 16}

func TestOrdinaryGETRequestParse(t *testing.T) {
	data := []byte("GET / HTTP/1.1\r\nContent-Type: some content type\r\nHost: rush.dev\r\n\r\n")

	for _, chunkSize := range chunkSizes {
		parser, rec := newTestParser(t, Settings{})
		require.NoError(t, feedParser(parser, data, chunkSize))
		require.Len(t, rec.requests, 1, "chunk size %d", chunkSize)

		req := rec.requests[0]
		assert.Equal(t, "GET", req.Method)
		assert.Equal(t, "/", req.Path)
		assert.Equal(t, "HTTP/1.1", req.Protocol)
		assert.Equal(t, map[string]string{
			"Content-Type": "some content type",
			"Host":         "rush.dev",
		}, req.Headers)
		assert.Empty(t, req.Body)
	}
}

func TestOrdinaryPOSTRequestParse(t *testing.T) {
	data := []byte("POST / HTTP/1.1\r\nContent-Type: some content type\r\nHost: rush.dev" +
		"\r\nContent-Length: 13\r\n\r\nHello, world!")

	for _, chunkSize := range chunkSizes {
		parser, rec := newTestParser(t, Settings{})
		require.NoError(t, feedParser(parser, data, chunkSize))
		require.Len(t, rec.requests, 1, "chunk size %d", chunkSize)
		assert.Equal(t, "Hello, world!", rec.requests[0].Body)
		assert.Equal(t, "13", rec.requests[0].Headers["Content-Length"])
	}
}

func TestChunkedRequestParse(t *testing.T) {
	data := []byte("POST / HTTP/1.1\r\n" +
		"Content-Type: some content type\r\n" +
		"Host: rush.dev\r\n" +
		"Transfer-Encoding: chunked\r\n" +
		"\r\nd\r\nHello, world!\r\n1a\r\nBut what's wrong with you?\r\nf\r\nFinally am here\r\n0\r\n\r\n")

	for chunkSize := 1; chunkSize <= len(data); chunkSize++ {
		parser, rec := newTestParser(t, Settings{})
		require.NoError(t, feedParser(parser, data, chunkSize))
		require.Len(t, rec.requests, 1, "chunk size %d", chunkSize)
		assert.Equal(t, "Hello, world!But what's wrong with you?Finally am here", rec.requests[0].Body)
	}
}

func TestPipelinedRequests(t *testing.T) {
	data := []byte("GET /first HTTP/1.1\r\nHost: rush.dev\r\n\r\n" +
		"POST /second HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello" +
		"POST /third HTTP/1.0\r\nTransfer-Encoding: chunked\r\n\r\n3;name=value\r\nabc\r\n0\r\nX-Trailer: 1\r\n\r\n" +
		"\r\nGET /fourth HTTP/1.1\n\n")

	for chunkSize := 1; chunkSize <= len(data); chunkSize++ {
		parser, rec := newTestParser(t, Settings{})
		require.NoError(t, feedParser(parser, data, chunkSize))
		require.Len(t, rec.requests, 4, "chunk size %d", chunkSize)

		assert.Equal(t, "/first", rec.requests[0].Path)
		assert.Equal(t, "/second", rec.requests[1].Path)
		assert.Equal(t, "hello", rec.requests[1].Body)
		assert.Equal(t, "/third", rec.requests[2].Path)
		assert.Equal(t, "HTTP/1.0", rec.requests[2].Protocol)
		assert.Equal(t, "abc", rec.requests[2].Body)
		assert.Equal(t, "/fourth", rec.requests[3].Path)
		assert.Equal(t, 5, rec.begun)
	}
}

func TestProtocolIsCaseInsensitive(t *testing.T) {
	parser, rec := newTestParser(t, Settings{})
	require.NoError(t, parser.Feed([]byte("GET / hTtP/1.1\r\n\r\n")))
	require.Len(t, rec.requests, 1)
	assert.Equal(t, "hTtP/1.1", rec.requests[0].Protocol)
}

func TestHeaderValueWhitespaceIsTrimmed(t *testing.T) {
	parser, rec := newTestParser(t, Settings{})
	require.NoError(t, parser.Feed([]byte("GET / HTTP/1.1\r\nHost: \t rush.dev \t\r\nEmpty:\r\n\r\n")))
	require.Len(t, rec.requests, 1)
	assert.Equal(t, "rush.dev", rec.requests[0].Headers["Host"])
	assert.Equal(t, "", rec.requests[0].Headers["Empty"])
}

func testInvalidRequest(t *testing.T, request string, errorWanted error) {
	t.Helper()

	parser, _ := newTestParser(t, Settings{})
	err := feedParser(parser, []byte(request), 5)

	assert.ErrorIs(t, err, errorWanted, "request %q", request)
	assert.ErrorIs(t, parser.Feed([]byte("GET / HTTP/1.1\r\n\r\n")), ErrParserIsDead)
}

func TestInvalidRequests(t *testing.T) {
	testInvalidRequest(t, "/ HTTP/1.1\r\nHost: rush.dev\r\n\r\n", ErrInvalidMethod)
	testInvalidRequest(t, " / HTTP/1.1\r\nHost: rush.dev\r\n\r\n", ErrInvalidMethod)
	testInvalidRequest(t, "GETP / HTTP/1.1\r\nHost: rush.dev\r\n\r\n", ErrInvalidMethod)
	testInvalidRequest(t, "GET/HTTP/1.1\r\nContent-Typesomecontenttype\r\nHost:rush.dev\r\n\r\n", ErrInvalidMethod)
	testInvalidRequest(t, "GET / HTTP/1.2\r\nHost: rush.dev\r\n\r\n", ErrProtocolNotSupported)
	testInvalidRequest(t, "GET / HTTP/0.9\r\n\r\n", ErrProtocolNotSupported)
	testInvalidRequest(t, "GET  HTTP/1.1\r\nHost: rush.dev\r\n\r\n", ErrInvalidPath)
	testInvalidRequest(t, "GET HTTP/1.2\r\nHost: rush.dev\r\n\r\n", ErrInvalidPath)
	testInvalidRequest(t, "GET / HTTP/1.1\r\nContent-Type some content type\r\n\r\n", ErrInvalidHeader)
	testInvalidRequest(t, "GET / HTTP/1.1\r\n: empty key\r\n\r\n", ErrInvalidHeader)
	testInvalidRequest(t, "GET / HTTP/1.1\r\nX-Folded: a\r\n b\r\n\r\n", ErrInvalidHeader)
	testInvalidRequest(t, "GET / HTTP/1.1\r\nX-Ctl: a\x01b\r\n\r\n", ErrInvalidHeader)
	testInvalidRequest(t, "GET / HTTP/1.1\rHost: rush.dev\r\n\r\n", ErrRequestSyntaxError)
	testInvalidRequest(t, "POST / HTTP/1.1\r\nContent-Length: 1x\r\n\r\n", ErrInvalidContentLength)
	testInvalidRequest(t, "POST / HTTP/1.1\r\nContent-Length: 99999999999999999999999\r\n\r\n", ErrInvalidContentLength)
	testInvalidRequest(t, "POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\nzz\r\n", ErrInvalidChunkSize)
}

func TestInvalidPOSTRequestExtraBody(t *testing.T) {
	parser, rec := newTestParser(t, Settings{})
	err := feedParser(parser, []byte("POST / HTTP/1.1\r\nHost: rush.dev\r\nContent-Length: 13\r\n\r\nHello, world! Extra body"), 5)

	// the stream goes on with the next request, and " Extra" is really an invalid method
	assert.ErrorIs(t, err, ErrInvalidMethod)
	require.Len(t, rec.requests, 1)
	assert.Equal(t, "Hello, world!", rec.requests[0].Body)
}

func TestLimits(t *testing.T) {
	parser, _ := newTestParser(t, Settings{MaxBodyLength: 5})
	assert.ErrorIs(t, parser.Feed([]byte("POST / HTTP/1.1\r\nContent-Length: 13\r\n\r\n")), ErrBodyTooBig)

	parser, _ = newTestParser(t, Settings{MaxPathLength: 4})
	assert.ErrorIs(t, parser.Feed([]byte("GET /long/path HTTP/1.1\r\n\r\n")), ErrBufferOverflow)

	parser, _ = newTestParser(t, Settings{MaxHeaderLineLength: 8})
	assert.ErrorIs(t, parser.Feed([]byte("GET / HTTP/1.1\r\nHost: rush.dev\r\n\r\n")), ErrBufferOverflow)

	parser, _ = newTestParser(t, Settings{MaxHeaders: 2})
	assert.ErrorIs(t, parser.Feed([]byte("GET / HTTP/1.1\r\nA: 1\r\nB: 2\r\nC: 3\r\n\r\n")), ErrTooManyHeaders)

	parser, _ = newTestParser(t, Settings{MaxChunkLength: 0xf})
	assert.ErrorIs(t, parser.Feed([]byte("POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n10\r\n")), ErrTooBigChunkSize)
}

func TestConnectionClose(t *testing.T) {
	body := "Hello, I have a body for you!"
	data := []byte("POST / HTTP/1.1\r\nHost: rush.dev\r\nConnection: close\r\n\r\n" + body)

	parser, rec := newTestParser(t, Settings{})
	require.NoError(t, feedParser(parser, data, 5))
	assert.Empty(t, rec.requests)
	assert.Equal(t, body, rec.current.Body)

	// reading from the socket returns no bytes once the peer closes it, and this is the
	// completion mark of such a body
	assert.ErrorIs(t, parser.Feed([]byte{}), ErrConnectionClosed)
	require.Len(t, rec.requests, 1)
	assert.Equal(t, body, rec.requests[0].Body)
	assert.ErrorIs(t, parser.Feed([]byte("x")), ErrParserIsDead)
}

func TestConnectionClosedBetweenRequests(t *testing.T) {
	parser, rec := newTestParser(t, Settings{})
	require.NoError(t, parser.Feed([]byte("GET / HTTP/1.1\r\n\r\n")))
	assert.ErrorIs(t, parser.Feed(nil), ErrConnectionClosed)
	assert.Len(t, rec.requests, 1)
}

func TestConnectionClosedInTheMiddle(t *testing.T) {
	parser, rec := newTestParser(t, Settings{})
	require.NoError(t, parser.Feed([]byte("POST / HTTP/1.1\r\nContent-Length: 10\r\n\r\nhalf")))
	assert.ErrorIs(t, parser.Feed(nil), ErrIncompleteMessage)
	assert.Empty(t, rec.requests)
}

type failingHandler struct {
	recorder
}

var errRejected = errors.New("rejected")

func (failingHandler) OnHeader(_, _ []byte) error {
	return errRejected
}

func TestHandlerErrorIsFatal(t *testing.T) {
	parser, err := NewHTTPRequestParser(&failingHandler{}, Settings{})
	require.NoError(t, err)

	assert.ErrorIs(t, parser.Feed([]byte("GET / HTTP/1.1\r\nHost: rush.dev\r\n\r\n")), errRejected)
	assert.ErrorIs(t, parser.Feed([]byte("GET")), ErrParserIsDead)
}

func TestParseUint(t *testing.T) {
	num, err := parseUint([]byte("1234567"))
	require.NoError(t, err)
	assert.Equal(t, 1234567, num)

	for _, raw := range []string{"", "-1", "+1", " 1", "1a", strings.Repeat("9", 30)} {
		_, err = parseUint([]byte(raw))
		assert.ErrorIs(t, err, ErrInvalidContentLength, "raw %q", raw)
	}
}
