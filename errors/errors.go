package errors

import "github.com/pkg/errors"

// value to be used with errors.Is() to determine if an error chain contains a request error
var RequestError error = errors.New("Request Error")

// value to be used with errors.Is() to determine if an error chain contains a decode error
var DecodeError error = errors.New("Decode Error")

// value to be used with errors.Is() to determine if an error chain contains a driver fault
var DriverFault error = errors.New("Driver Fault")

// Base interface for errors returned by this library
type StreamError interface {
	// Descriptive message describing the error
	Error() string

	// User specified id to track what happens under a request. Useful to track multiple queries in the same request.
	// Appears in log messages as field corrId. See driverctx.NewContextWithCorrelationId()
	CorrelationId() string

	// Internal id to track what happens under a client. Clients are reused so this tracks across queries.
	// Appears in log messages as field connId.
	ConnectionId() string

	// Stack trace associated with the error. May be nil.
	StackTrace() errors.StackTrace

	// Underlying causative error. May be nil.
	Cause() error
}

// An error caused by the request or the transport carrying it.
// Example: connection refused, authentication rejected, server returned a non-2xx status.
type RowstreamRequestError interface {
	StreamError
}

// An error produced while decoding the result stream: malformed or
// schema-mismatched bytes, or a stream that ended mid-record.
type RowstreamDecodeError interface {
	StreamError

	// Internal id to track what happens under a query.
	// Appears in log messages as field queryId.
	QueryId() string
}

// A fault in the library itself, e.g. unsupported operations or invalid internal state.
type RowstreamDriverFault interface {
	StreamError

	IsRetryable() bool
}
