package errors

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/rowstream/rowstream-go/driverctx"
	rserr "github.com/rowstream/rowstream-go/errors"
)

// Error messages
const (
	// Driver faults (library misuse, internal failures)
	ErrNotImplemented  = "not implemented"
	ErrCursorExhausted = "cursor has already produced a terminal result"
	ErrNilChunkStream  = "nil chunk stream"

	// Decode error messages (result stream failure)
	ErrRowDecode        = "failed to decode row"
	ErrIncompleteStream = "stream ended with an incomplete record"

	// Request error messages (connection, network errors)
	ErrChunkFetch      = "failed to fetch next chunk"
	ErrQueryRequest    = "failed to execute query request"
	ErrInvalidDSN      = "invalid DSN"
	ErrInvalidResponse = "unexpected server response"
)

type rowstreamError struct {
	err           error
	correlationId string
	connectionId  string
	errType       string
}

var _ error = (*rowstreamError)(nil)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func newRowstreamError(ctx context.Context, msg string, err error) rowstreamError {
	// create an error with the new message
	if err == nil {
		err = errors.New(msg)
	} else {
		err = errors.WithMessage(err, msg)
	}

	// if the source error does not have a stack trace in its
	// error chain add a stack trace
	var st stackTracer
	if ok := errors.As(err, &st); !ok {
		err = errors.WithStack(err)
	}

	return rowstreamError{
		err:           err,
		correlationId: driverctx.CorrelationIdFromContext(ctx),
		connectionId:  driverctx.ConnIdFromContext(ctx),
		errType:       "unknown",
	}
}

func (e rowstreamError) Error() string {
	return fmt.Sprintf("rowstream: %s: %s", e.errType, e.err.Error())
}

func (e rowstreamError) Cause() error {
	return e.err
}

func (e rowstreamError) StackTrace() errors.StackTrace {
	var st stackTracer
	if ok := errors.As(e.err, &st); ok {
		return st.StackTrace()
	}

	return nil
}

func (e rowstreamError) CorrelationId() string {
	return e.correlationId
}

func (e rowstreamError) ConnectionId() string {
	return e.connectionId
}

// driverFault are issues with the library itself, e.g. unsupported operations or invalid internal state
type driverFault struct {
	rowstreamError
	isRetryable bool
}

var _ rserr.RowstreamDriverFault = (*driverFault)(nil)

func (e driverFault) Is(err error) bool {
	return err == rserr.DriverFault
}

func (e driverFault) Unwrap() error {
	return e.err
}

func (e driverFault) IsRetryable() bool {
	return e.isRetryable
}

func NewDriverFault(ctx context.Context, msg string, err error) *driverFault {
	rsErr := newRowstreamError(ctx, msg, err)
	rsErr.errType = "driver fault"
	return &driverFault{rowstreamError: rsErr, isRetryable: false}
}

// requestError are errors caused by the request or the transport carrying it,
// e.g. connection refused, non-2xx server response
type requestError struct {
	rowstreamError
}

var _ rserr.RowstreamRequestError = (*requestError)(nil)

func (e requestError) Is(err error) bool {
	return err == rserr.RequestError
}

func (e requestError) Unwrap() error {
	return e.err
}

func NewRequestError(ctx context.Context, msg string, err error) *requestError {
	rsErr := newRowstreamError(ctx, msg, err)
	rsErr.errType = "request error"
	return &requestError{rowstreamError: rsErr}
}

// decodeError are errors produced while decoding the result stream,
// e.g. malformed bytes, a row that does not match the schema, a truncated stream
type decodeError struct {
	rowstreamError
	queryId string
}

var _ rserr.RowstreamDecodeError = (*decodeError)(nil)

func (e decodeError) Is(err error) bool {
	return err == rserr.DecodeError
}

func (e decodeError) Unwrap() error {
	return e.err
}

func (e decodeError) QueryId() string {
	return e.queryId
}

func NewDecodeError(ctx context.Context, msg string, err error) *decodeError {
	rsErr := newRowstreamError(ctx, msg, err)
	rsErr.errType = "decode error"
	return &decodeError{rowstreamError: rsErr, queryId: driverctx.QueryIdFromContext(ctx)}
}

// wraps an error and adds trace if not already present
func WrapErr(err error, msg string) error {
	var st stackTracer
	if ok := errors.As(err, &st); ok {
		// wrap passed in error in a new error with the message
		return errors.WithMessage(err, msg)
	}

	// wrap passed in error in errors with the message and a stack trace
	return errors.Wrap(err, msg)
}

// adds a stack trace if not already present
func WrapErrf(err error, format string, args ...interface{}) error {
	var st stackTracer
	if ok := errors.As(err, &st); ok {
		// wrap passed in error in a new error with the formatted message
		return errors.WithMessagef(err, format, args...)
	}

	// wrap passed in error in errors with the formatted message and a stack trace
	return errors.Wrapf(err, format, args...)
}
