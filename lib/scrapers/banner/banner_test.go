package banner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coursewatch-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func newTestClient(t testing.TB, handler http.Handler) (*Client, func()) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/banner")

	server := httptest.NewServer(handler)
	client, err := NewClient(ClientOptions{
		BaseUrl: server.URL,
		Term:    "202601",
		Credentials: Credentials{
			"JSESSIONID":        "0000AAAA",
			"MRUB9SSBPRODREGHA": "abcdef",
		},
		Timeout: time.Second * 5,
	})
	require.NoError(t, err)

	return client, func() {
		server.Close()
		cleanup()
	}
}

func TestKeepAliveAlive(t *testing.T) {
	client, cleanup := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, keepAlivePath, r.URL.Path)
		cookie, err := r.Cookie("JSESSIONID")
		require.NoError(t, err)
		require.Equal(t, "0000AAAA", cookie.Value)
		w.Write([]byte(`{"data":"Alive"}`))
	}))
	defer cleanup()

	require.Equal(t, StatusAlive, client.KeepAlive(context.Background()))
}

func TestKeepAliveExpired(t *testing.T) {
	client, cleanup := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>Please sign in to continue</body></html>`))
	}))
	defer cleanup()

	require.Equal(t, StatusExpired, client.KeepAlive(context.Background()))
}

func TestKeepAliveUnreachable(t *testing.T) {
	client, cleanup := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer cleanup()

	require.Equal(t, StatusUnreachable, client.KeepAlive(context.Background()))
}

func TestKeepAliveConnectionRefused(t *testing.T) {
	client, cleanup := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	cleanup()

	require.Equal(t, StatusUnreachable, client.KeepAlive(context.Background()))
}

func TestSearchCourse(t *testing.T) {
	client, cleanup := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, searchPath, r.URL.Path)
		require.Equal(t, "202601", r.URL.Query().Get("txt_term"))
		require.Equal(t, "13254", r.URL.Query().Get("txt_keywordlike"))
		require.NotEmpty(t, r.URL.Query().Get("uniqueSessionId"))
		w.Write([]byte(searchReply))
	}))
	defer cleanup()

	body, err := client.SearchCourse(context.Background(), "13254")
	require.NoError(t, err)
	require.Contains(t, string(body), "13254")
}

func TestSearchCourseUnreachable(t *testing.T) {
	client, cleanup := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer cleanup()

	_, err := client.SearchCourse(context.Background(), "13254")
	require.ErrorIs(t, err, ErrUnreachable)
}

func TestPoll(t *testing.T) {
	client, cleanup := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchReply))
	}))
	defer cleanup()

	snapshot, err := client.Poll(context.Background(), "13254")
	require.NoError(t, err)
	require.Equal(t, 3, snapshot.SeatsAvailable)
	require.Equal(t, "available", snapshot.Status())
}

func TestPollSessionGone(t *testing.T) {
	client, cleanup := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>Login</body></html>`))
	}))
	defer cleanup()

	_, err := client.Poll(context.Background(), "13254")
	require.ErrorIs(t, err, ErrUnparseable)
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(ClientOptions{BaseUrl: "https://example.com"})
	require.Error(t, err)
}
