package httpparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chunkedBody = "d\r\nHello, world!\r\n1a\r\nBut what's wrong with you?\r\nf\r\nFinally am here\r\n0\r\n\r\n"

type bodyCollector struct {
	body []byte
}

func (b *bodyCollector) OnBody(chunk []byte) error {
	b.body = append(b.body, chunk...)

	return nil
}

func newTestChunkedParser(collector *bodyCollector) *chunkedBodyParser {
	return NewChunkedBodyParser(collector.OnBody, maxChunkLength, maxBodyLength)
}

func TestChunkOverflow(t *testing.T) {
	parser := newTestChunkedParser(&bodyCollector{})
	done, _, err := parser.Feed([]byte("d\r\nHello, world! Overflow here\r\n0\r\n\r\n"))

	assert.True(t, done)
	assert.ErrorIs(t, err, ErrInvalidChunkSplitter)
}

func TestChunkTooSmall(t *testing.T) {
	parser := newTestChunkedParser(&bodyCollector{})
	done, _, err := parser.Feed([]byte("d\r\nHello, ...\r\n1a\r\nBut what's wrong with you?\r\n0\r\n\r\n"))

	assert.True(t, done)
	assert.ErrorIs(t, err, ErrInvalidChunkSplitter)
}

func TestMixChunkSplitters(t *testing.T) {
	collector := &bodyCollector{}
	parser := newTestChunkedParser(collector)
	done, extra, err := parser.Feed([]byte("d\r\nHello, world!\n1a\r\nBut what's wrong with you?\nf\nFinally am here\r\n0\r\n\n"))

	require.NoError(t, err)
	assert.True(t, done)
	assert.Empty(t, extra)
	assert.Equal(t, "Hello, world!But what's wrong with you?Finally am here", string(collector.body))
}

func TestChunksWithDifferentBlockSizes(t *testing.T) {
	data := []byte(chunkedBody)

	for i := 1; i <= len(data); i++ {
		collector := &bodyCollector{}
		parser := newTestChunkedParser(collector)

		for j := 0; j < len(data); j += i {
			end := min(j+i, len(data))
			done, extra, err := parser.Feed(data[j:end])

			require.NoError(t, err)
			assert.Empty(t, extra)
			assert.Equal(t, end == len(data), done, "block size %d", i)
		}

		assert.Equal(t, "Hello, world!But what's wrong with you?Finally am here", string(collector.body))
	}
}

func TestChunkExtensionsAndTrailers(t *testing.T) {
	collector := &bodyCollector{}
	parser := newTestChunkedParser(collector)
	done, extra, err := parser.Feed([]byte("5;ext=\"quoted\"\r\nhello\r\n0\r\nX-Trailer: 1\r\nX-Other: 2\r\n\r\nGET"))

	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, "GET", string(extra))
	assert.Equal(t, "hello", string(collector.body))
}

func TestChunkedParserIsReusable(t *testing.T) {
	collector := &bodyCollector{}
	parser := newTestChunkedParser(collector)

	for i := 0; i < 2; i++ {
		done, _, err := parser.Feed([]byte(chunkedBody))
		require.NoError(t, err)
		assert.True(t, done)
	}

	assert.Len(t, collector.body, 2*len("Hello, world!But what's wrong with you?Finally am here"))
}

func TestChunkSizeLimits(t *testing.T) {
	parser := NewChunkedBodyParser((&bodyCollector{}).OnBody, 0xff, 0x1ff)

	_, _, err := parser.Feed([]byte("100\r\n"))
	assert.ErrorIs(t, err, ErrTooBigChunkSize)

	parser = NewChunkedBodyParser((&bodyCollector{}).OnBody, 0xff, 0x100)
	_, _, err = parser.Feed([]byte("ff\r\n" + string(make([]byte, 0xff)) + "\r\nff\r\n"))
	assert.ErrorIs(t, err, ErrBodyTooBig)

	parser = NewChunkedBodyParser((&bodyCollector{}).OnBody, 0xff, 0x1ff)
	_, _, err = parser.Feed([]byte("\r\n"))
	assert.ErrorIs(t, err, ErrInvalidChunkSize)
}
