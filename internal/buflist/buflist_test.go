package buflist

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, b *BufList, n int) []byte {
	t.Helper()
	out := make([]byte, n)
	_, err := io.ReadFull(b, out)
	require.NoError(t, err)
	return out
}

func TestBufListReadAcrossChunks(t *testing.T) {
	var b BufList
	b.Push([]byte("hel"))
	b.Push([]byte("lo "))
	b.Push([]byte("world"))

	assert.Equal(t, 11, b.Unread())
	assert.Equal(t, 11, b.Retained())

	assert.Equal(t, []byte("hello world"), readAll(t, &b, 11))
	assert.Equal(t, 0, b.Unread())

	_, err := b.ReadByte()
	assert.Equal(t, io.EOF, err)
}

func TestBufListRollback(t *testing.T) {
	var b BufList
	b.Push([]byte("abc"))
	b.Push([]byte("def"))

	readAll(t, &b, 4)
	assert.Equal(t, 2, b.Unread())

	b.Rollback()
	assert.Equal(t, 6, b.Unread())
	assert.Equal(t, 6, b.Retained())

	// rolling back twice in a row has the same effect as once
	b.Rollback()
	assert.Equal(t, 6, b.Unread())

	assert.Equal(t, []byte("abcdef"), readAll(t, &b, 6))
}

func TestBufListCommitReleasesChunks(t *testing.T) {
	var b BufList
	b.Push([]byte("abc"))
	b.Push([]byte("def"))
	b.Push([]byte("ghi"))
	require.Equal(t, 3, b.NumChunks())

	// read past the first chunk and into the second
	readAll(t, &b, 4)
	b.Commit()

	assert.Equal(t, 2, b.NumChunks())
	assert.Equal(t, 5, b.Retained())

	// a rollback now returns to the commit position, not the start
	readAll(t, &b, 2)
	b.Rollback()
	assert.Equal(t, []byte("efghi"), readAll(t, &b, 5))
}

func TestBufListCommitMidChunk(t *testing.T) {
	var b BufList
	b.Push([]byte("abcdef"))

	readAll(t, &b, 2)
	b.Commit()

	// partially committed chunk is retained
	assert.Equal(t, 1, b.NumChunks())
	assert.Equal(t, 4, b.Retained())

	b.Rollback()
	assert.Equal(t, []byte("cdef"), readAll(t, &b, 4))
}

func TestBufListCommitAll(t *testing.T) {
	var b BufList
	b.Push([]byte("abc"))
	b.Push([]byte("def"))

	readAll(t, &b, 6)
	b.Commit()

	assert.Equal(t, 0, b.NumChunks())
	assert.Equal(t, 0, b.Retained())
	assert.Equal(t, 0, b.Unread())

	// the list is reusable after draining
	b.Push([]byte("xyz"))
	assert.Equal(t, []byte("xyz"), readAll(t, &b, 3))
}

func TestBufListBoundedRetention(t *testing.T) {
	// retained bytes always equal bytes pushed minus bytes committed
	var b BufList
	pushed := 0
	committed := 0

	for i := 0; i < 10; i++ {
		chunk := make([]byte, 7)
		b.Push(chunk)
		pushed += len(chunk)

		// consume 5 bytes per iteration, leaving a growing remainder unread
		readAll(t, &b, 5)
		b.Commit()
		committed += 5

		assert.Equal(t, pushed-committed, b.Retained())
	}
}

func TestBufListIgnoresEmptyChunks(t *testing.T) {
	var b BufList
	b.Push(nil)
	b.Push([]byte{})
	assert.Equal(t, 0, b.NumChunks())

	b.Push([]byte("a"))
	b.Push([]byte{})
	b.Push([]byte("b"))
	assert.Equal(t, []byte("ab"), readAll(t, &b, 2))
}

func TestBufListRelease(t *testing.T) {
	var b BufList
	b.Push([]byte("abc"))
	readAll(t, &b, 1)

	b.Release()
	assert.Equal(t, 0, b.NumChunks())
	assert.Equal(t, 0, b.Retained())
	_, err := b.ReadByte()
	assert.Equal(t, io.EOF, err)
}
