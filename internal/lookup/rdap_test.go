package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRDAPTestServer(t *testing.T, handler http.HandlerFunc) *RDAPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRDAPClient(RDAPConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
}

func TestRDAPClient_Fetch_Success(t *testing.T) {
	client := newRDAPTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/domain/example.com", r.URL.Path)
		w.Header().Set("Content-Type", "application/rdap+json")
		w.Write([]byte(`{"ldhName":"example.com","status":["active"]}`))
	})

	payload, err := client.Fetch(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, "example.com", payload["ldhName"])
}

func TestRDAPClient_Fetch_NotFoundWithBody(t *testing.T) {
	client := newRDAPTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errorCode":404,"title":"Not Found"}`))
	})

	// A JSON error body comes back as a payload so the classifier can read
	// its errorCode.
	payload, err := client.Fetch(context.Background(), "free.example")
	require.NoError(t, err)
	assert.Equal(t, float64(404), payload["errorCode"])
}

func TestRDAPClient_Fetch_NotFoundWithoutBody(t *testing.T) {
	client := newRDAPTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Fetch(context.Background(), "free.example")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestRDAPClient_Fetch_TooManyRequests(t *testing.T) {
	client := newRDAPTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"errorCode":429,"title":"Rate limit exceeded"}`))
	})

	_, err := client.Fetch(context.Background(), "busy.example")
	require.Error(t, err)
	assert.True(t, isRateLimitError(err.Error()), "429 must surface as a retryable error")
}

func TestRDAPClient_Fetch_ServerErrorWithoutJSON(t *testing.T) {
	client := newRDAPTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	})

	_, err := client.Fetch(context.Background(), "down.example")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestRDAPClient_Fetch_EmptySuccessBody(t *testing.T) {
	client := newRDAPTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	payload, err := client.Fetch(context.Background(), "empty.example")
	require.NoError(t, err)
	assert.Nil(t, payload)
}
