package coinbase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	currencysync "go-currency-sync"
)

func TestService_Latest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		assert.True(t, strings.HasSuffix(req.URL.String(), "/exchange-rates?currency=USD"))
		response := `{
			"data": {
				"currency": "USD",
				"rates": {
					"BCH": "1000.0",
					"GBP": "1.2"
				}
			}
		}`
		_, _ = rw.Write([]byte(response))
	}))
	defer server.Close()

	s := service{
		url: server.URL,
	}

	rates, err := s.Latest(context.Background(), "USD")

	assert.Nil(t, err)
	assert.Equal(t, currencysync.Rate(1000.0), rates["BCH"])
	assert.Equal(t, currencysync.Rate(1.2), rates["GBP"])
}

func TestService_LatestBadRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		_, _ = rw.Write([]byte(`{"data": {"currency": "USD", "rates": {"GBP": "one"}}}`))
	}))
	defer server.Close()

	s := service{
		url: server.URL,
	}

	_, err := s.Latest(context.Background(), "USD")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "bad rate value [GBP]")
}

func TestService_LatestStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		rw.WriteHeader(http.StatusBadRequest)
		_, _ = rw.Write([]byte(`{"errors":[{"id":"invalid_request"}]}`))
	}))
	defer server.Close()

	s := service{
		url: server.URL,
	}

	_, err := s.Latest(context.Background(), "XXX")
	assert.ErrorIs(t, err, ErrHTTPStatus)
}

func TestService_LatestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		time.Sleep(10 * time.Millisecond)
		_, _ = rw.Write([]byte("{}"))
	}))
	defer server.Close()

	s := service{
		url: server.URL,
	}
	s.client.Timeout = 1 * time.Millisecond

	_, err := s.Latest(context.Background(), "USD")

	assert.NotNil(t, err)
	assert.True(t, strings.Contains(err.Error(), "Client.Timeout")) // fragile :-(
}
