package rowbinary

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotEnoughData reports that the source ran out of bytes mid-field. The
// cursor treats it as a signal to roll back and wait for the next chunk from
// the server; it is never a decode fault.
var ErrNotEnoughData = errors.New("rowstream: not enough data")

// TooSmallBufferError reports that the scratch buffer has insufficient free
// capacity for the field being decoded. Need is a lower bound on the
// additional capacity required; the cursor is free to over-allocate.
type TooSmallBufferError struct {
	Need int
}

func (e TooSmallBufferError) Error() string {
	return fmt.Sprintf("rowstream: scratch buffer too small, need %d more bytes", e.Need)
}
