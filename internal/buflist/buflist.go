package buflist

import "io"

// BufList accumulates the byte chunks received from the server and exposes
// them as one contiguous unread range without copying. Reads through the list
// are tentative: a failed decode attempt calls Rollback to make the same bytes
// readable again, a successful one calls Commit to release everything read so
// far. Chunks are owned exclusively by the list and are never mutated.
type BufList struct {
	// retained chunks in arrival order. bufs[0] may be partially committed.
	bufs [][]byte

	// commit offset within bufs[0]. Bytes before it are consumed but their
	// chunk is not yet fully superseded.
	commitOff int

	// read cursor, always at or past the commit position.
	readIdx int
	readOff int

	// unread bytes from the read cursor to the end.
	unread int

	// bytes from the commit position to the end.
	retained int
}

var _ io.Reader = (*BufList)(nil)
var _ io.ByteReader = (*BufList)(nil)

// Push appends a chunk. It never moves the read or commit position.
func (b *BufList) Push(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	b.bufs = append(b.bufs, chunk)
	b.unread += len(chunk)
	b.retained += len(chunk)
}

// Rollback moves the read cursor back to the commit position. Rolling back
// twice in a row has the same effect as once.
func (b *BufList) Rollback() {
	b.readIdx = 0
	b.readOff = b.commitOff
	b.unread = b.retained
}

// Commit moves the commit position up to the read cursor and releases every
// chunk that is now fully behind it.
func (b *BufList) Commit() {
	b.normalize()
	if b.readIdx > 0 {
		// Drop references so the backing arrays can be collected.
		for i := 0; i < b.readIdx; i++ {
			b.bufs[i] = nil
		}
		b.bufs = b.bufs[b.readIdx:]
		b.readIdx = 0
	}
	b.commitOff = b.readOff
	b.retained = b.unread
	if len(b.bufs) == 0 {
		// Reslice from a fresh backing array once everything is consumed.
		b.bufs = nil
		b.commitOff = 0
		b.readOff = 0
	}
}

// Read fills p from the unread range, advancing the read cursor. It returns
// io.EOF once all retained bytes have been read. Like any io.Reader it may
// return fewer bytes than requested; a single call never crosses a chunk
// boundary.
func (b *BufList) Read(p []byte) (int, error) {
	b.normalize()
	if b.readIdx >= len(b.bufs) {
		return 0, io.EOF
	}
	n := copy(p, b.bufs[b.readIdx][b.readOff:])
	b.readOff += n
	b.unread -= n
	return n, nil
}

// ReadByte reads and consumes one byte, returning io.EOF when no unread bytes
// remain.
func (b *BufList) ReadByte() (byte, error) {
	b.normalize()
	if b.readIdx >= len(b.bufs) {
		return 0, io.EOF
	}
	c := b.bufs[b.readIdx][b.readOff]
	b.readOff++
	b.unread--
	return c, nil
}

// Unread returns the number of bytes between the read cursor and the end.
func (b *BufList) Unread() int {
	return b.unread
}

// Retained returns the number of bytes between the commit position and the
// end, i.e. total bytes pushed minus total bytes committed.
func (b *BufList) Retained() int {
	return b.retained
}

// NumChunks returns the number of chunks currently held.
func (b *BufList) NumChunks() int {
	return len(b.bufs)
}

// Release drops all retained chunks and resets the positions.
func (b *BufList) Release() {
	b.bufs = nil
	b.commitOff = 0
	b.readIdx = 0
	b.readOff = 0
	b.unread = 0
	b.retained = 0
}

// normalize steps the read cursor past exhausted chunks so that reads and
// commits always see an in-bounds offset.
func (b *BufList) normalize() {
	for b.readIdx < len(b.bufs) && b.readOff == len(b.bufs[b.readIdx]) {
		b.readIdx++
		b.readOff = 0
	}
}
