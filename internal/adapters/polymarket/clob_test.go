package polymarket_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchOrderBook_SortsLevels(t *testing.T) {
	// La API no garantiza orden en bids/asks
	fixture := `{
		"asset_id": "token_yes_001",
		"bids": [
			{"price": "0.68", "size": "100"},
			{"price": "0.70", "size": "50"},
			{"price": "0.69", "size": "200"}
		],
		"asks": [
			{"price": "0.74", "size": "80"},
			{"price": "0.72", "size": "120"},
			{"price": "0", "size": "999"}
		]
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/book", r.URL.Path)
		assert.Equal(t, "token_yes_001", r.URL.Query().Get("token_id"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fixture))
	}))
	defer srv.Close()

	client := newTestClient(srv, nil)
	book, err := client.FetchOrderBook(context.Background(), "token_yes_001")

	require.NoError(t, err)
	assert.Equal(t, "token_yes_001", book.TokenID)

	// Bids de mayor a menor, asks de menor a mayor
	require.Len(t, book.Bids, 3)
	assert.InDelta(t, 0.70, book.BestBid(), 0.001)
	assert.InDelta(t, 0.70, book.Bids[0].Price, 0.001)
	assert.InDelta(t, 0.68, book.Bids[2].Price, 0.001)

	// El nivel con price=0 se descarta
	require.Len(t, book.Asks, 2)
	assert.InDelta(t, 0.72, book.BestAsk(), 0.001)
}

func TestFetchOrderBook_RetriesOn500(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"asset_id": "tk", "bids": [], "asks": []}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, nil)
	book, err := client.FetchOrderBook(context.Background(), "tk")

	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Empty(t, book.Bids)
}

func TestFetchOrderBook_NoRetryOn4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(srv, nil)
	_, err := client.FetchOrderBook(context.Background(), "tk")

	require.Error(t, err)
	// Un 4xx no se reintenta
	assert.Equal(t, int32(1), calls.Load())
}
