package driverctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextIds(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", CorrelationIdFromContext(ctx))
	assert.Equal(t, "", ConnIdFromContext(ctx))
	assert.Equal(t, "", QueryIdFromContext(ctx))

	ctx = NewContextWithCorrelationId(ctx, "corr-1")
	ctx = NewContextWithConnId(ctx, "conn-1")
	ctx = NewContextWithQueryId(ctx, "query-1")

	assert.Equal(t, "corr-1", CorrelationIdFromContext(ctx))
	assert.Equal(t, "conn-1", ConnIdFromContext(ctx))
	assert.Equal(t, "query-1", QueryIdFromContext(ctx))
}

func TestNilContext(t *testing.T) {
	assert.Equal(t, "", CorrelationIdFromContext(nil))
	assert.Equal(t, "", ConnIdFromContext(nil))
	assert.Equal(t, "", QueryIdFromContext(nil))
}
