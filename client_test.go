package rowstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rserr "github.com/rowstream/rowstream-go/errors"
)

func testDSN(t *testing.T, server *httptest.Server) string {
	t.Helper()
	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	return fmt.Sprintf("http://%s/analytics?max_retries=0", u.Host)
}

func TestClientFetch(t *testing.T) {
	want := []eventRow{
		{1, "alpha"},
		{2, strings.Repeat("beta", 2000)},
		{3, "gamma"},
	}
	var payload []byte
	for _, r := range want {
		payload = append(payload, encodeEvent(r.id, r.name)...)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "analytics", r.URL.Query().Get("database"))

		flusher := w.(http.Flusher)
		// flush in small pieces so rows straddle chunk boundaries
		for _, chunk := range splitEvery(payload, 100) {
			_, _ = w.Write(chunk)
			flusher.Flush()
		}
	}))
	defer server.Close()

	client, err := NewClient(testDSN(t, server))
	require.NoError(t, err)

	cur, err := Fetch(context.Background(), client, "SELECT id, name FROM events", newEventRow)
	require.NoError(t, err)
	defer cur.Close()

	var got []eventRow
	for {
		row, err := cur.Next(context.Background())
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, *row)
	}
	assert.Equal(t, want, got)
}

func TestClientFetchTruncatedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// length prefix promises more bytes than the body delivers
		_, _ = w.Write([]byte{50, 'o', 'o', 'p', 's'})
	}))
	defer server.Close()

	client, err := NewClient(testDSN(t, server))
	require.NoError(t, err)

	cur, err := Fetch(context.Background(), client, "SELECT name FROM events", newStringRow)
	require.NoError(t, err)

	_, err = cur.Next(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, rserr.DecodeError))
}

func TestClientQueryError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unknown table events", http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewClient(testDSN(t, server))
	require.NoError(t, err)

	_, err = Fetch(context.Background(), client, "SELECT name FROM events", newStringRow)
	require.Error(t, err)
	assert.True(t, errors.Is(err, rserr.RequestError))
	assert.Contains(t, err.Error(), "Unknown table")
}

func TestNewClientInvalidDSN(t *testing.T) {
	_, err := NewClient("tcp://example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, rserr.RequestError))
}
