package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIEXServer(t *testing.T, status int, body string) *IEXFetcher {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/AAPL/quote", r.URL.Path)
		assert.Equal(t, "pk_test", r.URL.Query().Get("token"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	f := NewIEXFetcher(server.URL, "pk_test", "")
	f.Client = server.Client()
	f.Now = func() time.Time { return saturday }
	return f
}

func TestIEX_FetchQuote(t *testing.T) {
	f := newIEXServer(t, http.StatusOK, `{"symbol":"AAPL","latestPrice":185.5,"change":1.5,"changePercent":0.00815,"previousClose":184}`)

	q, err := f.FetchQuote(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.InDelta(t, 185.5, q.CurrentPrice, 1e-9)
	assert.InDelta(t, 1.5, q.ChangeAmount.Float64, 1e-9)
	assert.InDelta(t, 0.00815, q.ChangeFraction.Float64, 1e-9)
	assert.Equal(t, saturday, q.FetchedAt)
}

func TestIEX_DerivesMissingChange(t *testing.T) {
	f := newIEXServer(t, http.StatusOK, `{"symbol":"AAPL","latestPrice":110,"change":null,"previousClose":100}`)

	q, err := f.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	require.True(t, q.ChangeAmount.Valid)
	assert.InDelta(t, 10.0, q.ChangeAmount.Float64, 1e-9)
	require.True(t, q.ChangeFraction.Valid)
	assert.InDelta(t, 0.1, q.ChangeFraction.Float64, 1e-9, "fraction, not percent")
}

func TestIEX_ZeroPreviousClose(t *testing.T) {
	f := newIEXServer(t, http.StatusOK, `{"symbol":"AAPL","latestPrice":5,"previousClose":0}`)

	q, err := f.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, q.ChangeAmount.Valid)
	assert.InDelta(t, 5.0, q.ChangeAmount.Float64, 1e-9)
	assert.False(t, q.ChangeFraction.Valid)
}

func TestIEX_NoPreviousClose(t *testing.T) {
	f := newIEXServer(t, http.StatusOK, `{"symbol":"AAPL","latestPrice":5}`)

	q, err := f.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.False(t, q.ChangeAmount.Valid)
	assert.False(t, q.ChangeFraction.Valid)
}

func TestIEX_Errors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		f := newIEXServer(t, http.StatusNotFound, "Unknown symbol")
		_, err := f.FetchQuote(context.Background(), "AAPL")
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	})
	t.Run("invalid json", func(t *testing.T) {
		f := newIEXServer(t, http.StatusOK, `{oops`)
		_, err := f.FetchQuote(context.Background(), "AAPL")
		assert.ErrorIs(t, err, ErrMalformed)
	})
	t.Run("no price", func(t *testing.T) {
		f := newIEXServer(t, http.StatusOK, `{"symbol":"AAPL"}`)
		_, err := f.FetchQuote(context.Background(), "AAPL")
		assert.ErrorIs(t, err, ErrMalformed)
	})
}
