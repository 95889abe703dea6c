package upstream_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suitesync/config"
	"suitesync/infras/otel/mocks"
	"suitesync/internal/upstream"
)

func newTestClient(baseURL string, maxRetry int) upstream.Client {
	cfg := &config.Config{}
	cfg.Upstream.BaseURL = baseURL
	cfg.Upstream.APIKey = "secret-key"
	cfg.Upstream.TimeoutSeconds = 5
	cfg.Upstream.MaxRetry = maxRetry
	cfg.Upstream.BackoffSeconds = 0

	return upstream.New(cfg, mocks.NewOtel())
}

func TestClient_FetchReservations(t *testing.T) {
	from := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	t.Run("sends the api key and date range", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/reservations", r.URL.Path)
			assert.Equal(t, "secret-key", r.Header.Get("X-API-Key"))
			assert.Equal(t, "2026-03-01", r.URL.Query().Get("start_date"))
			assert.Equal(t, "2026-03-10", r.URL.Query().Get("end_date"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":[{"id":"ext-1","owner_id":"o-1","animal_id":"a-1","type_id":"t-1","start_date":"2026-03-02T00:00:00Z","end_date":"2026-03-04T00:00:00Z"}]}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 1)

		records, err := client.FetchReservations(context.Background(), from, to)

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "ext-1", records[0].ID)
		assert.Equal(t, "o-1", records[0].OwnerID)
	})

	t.Run("retries a server error and succeeds", func(t *testing.T) {
		var calls atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)

				return
			}

			_, _ = w.Write([]byte(`{"data":[]}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 3)

		_, err := client.FetchReservations(context.Background(), from, to)

		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("gives up after the retry budget", func(t *testing.T) {
		var calls atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := newTestClient(server.URL, 3)

		_, err := client.FetchReservations(context.Background(), from, to)

		require.Error(t, err)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("does not retry a client error", func(t *testing.T) {
		var calls atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := newTestClient(server.URL, 3)

		_, err := client.FetchReservations(context.Background(), from, to)

		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load(), "a 4xx is permanent and must not be retried")
	})
}

func TestClient_FetchOwners(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/owners", r.URL.Path)

		_, _ = w.Write([]byte(`{"data":[{"id":"o-1","first_name":"Dana","last_name":"Reyes"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 1)

	owners, err := client.FetchOwners(context.Background())

	require.NoError(t, err)
	require.Len(t, owners, 1)
	assert.Equal(t, "Dana", owners[0].FirstName)
}
