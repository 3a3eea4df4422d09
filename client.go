package rowstream

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/rowstream/rowstream-go/driverctx"
	"github.com/rowstream/rowstream-go/internal/config"
	rserrint "github.com/rowstream/rowstream-go/internal/errors"
	"github.com/rowstream/rowstream-go/internal/transport"
	"github.com/rowstream/rowstream-go/logger"
)

// Client issues queries to the server and exposes their results as chunk
// streams. A Client is safe to reuse across queries; each query gets its own
// stream and cursor.
type Client struct {
	cfg    *config.Config
	http   *retryablehttp.Client
	connId string
}

// NewClient builds a client from a DSN of the form
//
//	http[s]://[user[:password]@]host[:port][/database][?param=value]
func NewClient(dsn string) (*Client, error) {
	cfg, err := config.ParseDSN(dsn)
	if err != nil {
		return nil, rserrint.NewRequestError(context.Background(), rserrint.ErrInvalidDSN, err)
	}
	return newClient(cfg), nil
}

// NewClientFromEnv builds a client from the environment, loading a .env file
// first when one is present. See config.LoadEnv for the recognized
// variables.
func NewClientFromEnv() (*Client, error) {
	cfg, err := config.LoadEnv(os.Getenv)
	if err != nil {
		return nil, rserrint.NewRequestError(context.Background(), rserrint.ErrInvalidDSN, err)
	}
	return newClient(cfg), nil
}

func newClient(cfg *config.Config) *Client {
	return &Client{
		cfg:    cfg,
		http:   transport.NewClient(cfg),
		connId: uuid.New().String(),
	}
}

// QueryStream posts stmt and returns the raw chunk stream of its result
// body. Most callers want Fetch instead.
func (c *Client) QueryStream(ctx context.Context, stmt string) (ChunkStream, error) {
	ctx = driverctx.NewContextWithConnId(ctx, c.connId)
	ctx = driverctx.NewContextWithQueryId(ctx, uuid.New().String())

	logger.WithContext(ctx).Debug().Msg("rowstream: executing query")

	stream, err := transport.Query(ctx, c.http, c.cfg.DeepCopy(), stmt)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

// Fetch posts stmt and returns a cursor decoding each result row into a
// value allocated by newRow.
func Fetch[R Row](ctx context.Context, c *Client, stmt string, newRow func() R) (*Cursor[R], error) {
	stream, err := c.QueryStream(ctx, stmt)
	if err != nil {
		return nil, err
	}
	return NewCursor(stream, newRow, WithScratchBytes(c.cfg.InitialScratchBytes)), nil
}
