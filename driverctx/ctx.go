// Package driverctx carries the identifiers used to correlate log messages
// and errors: a caller-supplied correlation id, a per-client connection id and
// a per-query query id.
package driverctx

import (
	"context"
)

// using a custom type for context keys to prevent key collision
type contextKey int

const (
	CorrelationIdContextKey contextKey = iota
	ConnIdContextKey
	QueryIdContextKey
)

// NewContextWithCorrelationId creates a new context with a correlationId value.
// Appears in log messages and errors as field corrId.
func NewContextWithCorrelationId(ctx context.Context, correlationId string) context.Context {
	return context.WithValue(ctx, CorrelationIdContextKey, correlationId)
}

// CorrelationIdFromContext retrieves the correlationId stored in context.
func CorrelationIdFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	corrId, ok := ctx.Value(CorrelationIdContextKey).(string)
	if !ok {
		return ""
	}
	return corrId
}

// NewContextWithConnId creates a new context with a connectionId value.
// A client can serve many queries, so this tracks across queries.
func NewContextWithConnId(ctx context.Context, connId string) context.Context {
	return context.WithValue(ctx, ConnIdContextKey, connId)
}

// ConnIdFromContext retrieves the connectionId stored in context.
func ConnIdFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	connId, ok := ctx.Value(ConnIdContextKey).(string)
	if !ok {
		return ""
	}
	return connId
}

// NewContextWithQueryId creates a new context with a queryId value.
func NewContextWithQueryId(ctx context.Context, queryId string) context.Context {
	return context.WithValue(ctx, QueryIdContextKey, queryId)
}

// QueryIdFromContext retrieves the queryId stored in context.
func QueryIdFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	queryId, ok := ctx.Value(QueryIdContextKey).(string)
	if !ok {
		return ""
	}
	return queryId
}
