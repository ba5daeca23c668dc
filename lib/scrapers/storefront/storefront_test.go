package storefront

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	c, err := NewClient(ClientOptions{PlainTransport: true})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestFetchPage(t *testing.T) {
	var gotUserAgent string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>In Stock</body></html>"))
	}))
	defer ts.Close()

	page, err := newTestClient(t).FetchPage(context.Background(), ts.URL)
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, http.StatusOK, page.StatusCode)
	require.Contains(t, page.Body, "In Stock")
	// the shop blocks obvious bots, the client must look like a browser
	require.True(t, strings.HasPrefix(gotUserAgent, "Mozilla/5.0"), "user agent: %q", gotUserAgent)
}

func TestFetchPageBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	page, err := newTestClient(t).FetchPage(context.Background(), ts.URL)

	var bad ErrBadStatus
	require.True(t, errors.As(err, &bad))
	require.Equal(t, http.StatusServiceUnavailable, bad.StatusCode)
	require.Equal(t, http.StatusServiceUnavailable, page.StatusCode)
}

func TestFetchPageConnectionError(t *testing.T) {
	// a closed server is as good as an unreachable shop
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	_, err := newTestClient(t).FetchPage(context.Background(), ts.URL)
	require.Error(t, err)
}
