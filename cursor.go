package rowstream

import (
	"context"
	"io"
	"math/bits"

	"github.com/pkg/errors"

	"github.com/rowstream/rowstream-go/internal/buflist"
	rserrint "github.com/rowstream/rowstream-go/internal/errors"
	"github.com/rowstream/rowstream-go/logger"
	"github.com/rowstream/rowstream-go/rowbinary"
)

// Row is implemented by types that can decode themselves from one row of the
// native binary result stream.
type Row interface {
	DecodeRow(d *rowbinary.Decoder) error
}

// ChunkStream is a single-consumer sequence of byte chunks, typically the
// response body of a query. Next blocks until a chunk is available and
// returns io.EOF once the stream has cleanly ended. Returned chunks are owned
// by the caller and must not be reused by the stream.
type ChunkStream interface {
	Next(ctx context.Context) ([]byte, error)
}

const defaultScratchBytes = 1024

// Cursor decodes rows of type R from a chunk stream. Chunk boundaries carry
// no meaning: a row may span several chunks and one chunk may hold several
// rows. The cursor retains only the bytes of the row currently being decoded
// and hands each decode attempt a reusable scratch buffer that grows on
// demand and never shrinks.
//
// A Cursor must be pulled from a single goroutine; it performs no internal
// synchronization.
type Cursor[R Row] struct {
	stream  ChunkStream
	newRow  func() R
	pending buflist.BufList
	scratch []byte

	// terminal result, held and returned on every pull once set
	err error
}

// CursorOption tunes a Cursor at construction time.
type CursorOption func(*cursorOptions)

type cursorOptions struct {
	scratchBytes int
}

// WithScratchBytes sets the initial capacity of the scratch buffer.
func WithScratchBytes(n int) CursorOption {
	return func(o *cursorOptions) {
		if n > 0 {
			o.scratchBytes = n
		}
	}
}

// NewCursor returns a cursor over stream. newRow allocates the destination
// for each decoded row.
func NewCursor[R Row](stream ChunkStream, newRow func() R, opts ...CursorOption) *Cursor[R] {
	o := cursorOptions{scratchBytes: defaultScratchBytes}
	for _, opt := range opts {
		opt(&o)
	}

	return &Cursor[R]{
		stream:  stream,
		newRow:  newRow,
		scratch: make([]byte, o.scratchBytes),
	}
}

// Next decodes and returns the next row. It returns io.EOF after the last
// row of a cleanly ended stream. Any other error is terminal: the cursor
// produces no further rows and returns the same error on every subsequent
// call. Rows are produced in the exact order their bytes appear on the wire.
func (c *Cursor[R]) Next(ctx context.Context) (R, error) {
	var zero R
	if c.err != nil {
		return zero, c.err
	}
	if c.stream == nil {
		c.err = rserrint.NewDriverFault(ctx, rserrint.ErrNilChunkStream, nil)
		return zero, c.err
	}

	for {
		row := c.newRow()
		err := row.DecodeRow(rowbinary.New(&c.pending, c.scratch))
		if err == nil {
			c.pending.Commit()
			return row, nil
		}

		var tooSmall rowbinary.TooSmallBufferError
		switch {
		case errors.As(err, &tooSmall):
			// grow and retry immediately, growth never triggers a fetch
			c.grow(ctx, tooSmall.Need)
			c.pending.Rollback()

		case errors.Is(err, rowbinary.ErrNotEnoughData):
			c.pending.Rollback()
			chunk, serr := c.stream.Next(ctx)
			switch {
			case serr == nil:
				c.pending.Push(chunk)
			case errors.Is(serr, io.EOF):
				if c.pending.Retained() > 0 {
					c.err = rserrint.NewDecodeError(ctx, rserrint.ErrIncompleteStream, nil)
				} else {
					c.err = io.EOF
				}
				c.release()
				return zero, c.err
			default:
				c.err = rserrint.NewRequestError(ctx, rserrint.ErrChunkFetch, serr)
				c.release()
				return zero, c.err
			}

		default:
			c.err = rserrint.NewDecodeError(ctx, rserrint.ErrRowDecode, err)
			c.release()
			return zero, c.err
		}
	}
}

// Close discards the cursor's buffers. Pulling a closed cursor returns
// io.EOF. Closing does not close the underlying stream; the transport owns
// it.
func (c *Cursor[R]) Close() error {
	if c.err == nil {
		c.err = io.EOF
	}
	c.release()
	return nil
}

// grow extends the scratch buffer by at least need bytes, rounding the new
// capacity up to a power of two so reallocation cost stays amortized O(1)
// per byte.
func (c *Cursor[R]) grow(ctx context.Context, need int) {
	newLen := nextPowerOfTwo(len(c.scratch) + need)
	logger.WithContext(ctx).Debug().Msgf("rowstream: growing scratch buffer %d -> %d", len(c.scratch), newLen)
	c.scratch = make([]byte, newLen)
}

func (c *Cursor[R]) release() {
	c.pending.Release()
	c.scratch = nil
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
