// Package transport fetches query results over HTTP and hands them to the
// decoder as a sequence of owned byte chunks. Retries happen at the request
// level only; once the response body is being streamed, any failure is
// surfaced to the caller as a terminal error.
package transport

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"

	"github.com/rowstream/rowstream-go/internal/config"
	rserrint "github.com/rowstream/rowstream-go/internal/errors"
	"github.com/rowstream/rowstream-go/logger"
)

// HTTPStream yields the response body of one query as byte chunks. Chunk
// boundaries follow whatever the network delivers and carry no meaning; each
// chunk is freshly allocated and never reused.
type HTTPStream struct {
	body     io.ReadCloser
	reader   io.Reader
	maxChunk int
	eof      bool
}

// NewClient returns the retrying HTTP client used to post queries.
func NewClient(cfg *config.Config) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.RetryWaitMin = cfg.RetryWaitMin
	client.RetryWaitMax = cfg.RetryWaitMax
	if cfg.QueryTimeout > 0 {
		client.HTTPClient.Timeout = cfg.QueryTimeout
	}
	client.Logger = &retryLogger{}
	return client
}

// Query posts stmt to the server and returns a stream over the native-format
// response body.
func Query(ctx context.Context, client *retryablehttp.Client, cfg *config.Config, stmt string) (*HTTPStream, error) {
	endpoint := cfg.ToEndpointURL()

	params := url.Values{}
	params.Set("database", cfg.Database)
	params.Set("default_format", "RowBinary")
	if cfg.Compression == config.CompressionLZ4 {
		params.Set("compress", config.CompressionLZ4)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", endpoint+"?"+params.Encode(), strings.NewReader(stmt))
	if err != nil {
		return nil, rserrint.NewRequestError(ctx, rserrint.ErrQueryRequest, err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent())
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if cfg.Username != "" {
		req.SetBasicAuth(cfg.Username, cfg.Password)
	}

	logger.WithContext(ctx).Debug().Msgf("rowstream: posting query to %s", endpoint)

	resp, err := client.Do(req)
	if err != nil {
		return nil, rserrint.NewRequestError(ctx, rserrint.ErrQueryRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// the server puts its error message in the body
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, rserrint.NewRequestError(ctx, rserrint.ErrInvalidResponse,
			errors.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))))
	}

	var reader io.Reader = resp.Body
	if cfg.Compression == config.CompressionLZ4 {
		reader = lz4.NewReader(resp.Body)
	}

	return &HTTPStream{
		body:     resp.Body,
		reader:   reader,
		maxChunk: cfg.MaxChunkBytes,
	}, nil
}

// Next returns the next chunk of the response body. It returns io.EOF once
// the body is exhausted and closes it; any other error is terminal.
func (s *HTTPStream) Next(ctx context.Context) ([]byte, error) {
	if s.eof {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		s.Close()
		return nil, rserrint.NewRequestError(ctx, rserrint.ErrChunkFetch, err)
	}

	buf := make([]byte, s.maxChunk)
	n, err := s.reader.Read(buf)
	if n > 0 {
		// deliver the bytes first, the next read resurfaces any error
		return buf[:n], nil
	}
	if err == io.EOF {
		s.Close()
		return nil, io.EOF
	}
	if err == nil {
		// zero-length read with no error, try again
		return s.Next(ctx)
	}
	s.Close()
	return nil, rserrint.NewRequestError(ctx, rserrint.ErrChunkFetch, err)
}

// Close releases the response body. It is safe to call more than once.
func (s *HTTPStream) Close() error {
	if s.eof {
		return nil
	}
	s.eof = true
	return s.body.Close()
}

// retryLogger routes go-retryablehttp's messages to the package logger at
// debug level.
type retryLogger struct{}

func (l *retryLogger) Printf(format string, args ...interface{}) {
	logger.Log.Debug().Msgf(format, args...)
}
