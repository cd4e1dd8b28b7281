package coinbase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	currencysync "go-currency-sync"
	"go-currency-sync/rates"
)

const ApiUrlBase = "https://api.coinbase.com/v2"

// ErrHTTPStatus coinbase answered with a non-2xx status
var ErrHTTPStatus = errors.New("unexpected http status")

// service coinbase API
type service struct {
	// url base API url
	url string

	// client for HTTP requests
	client http.Client
}

// NewService constructs a coinbase rates.Source
func NewService(timeout time.Duration) rates.Source {
	return &service{
		url: ApiUrlBase,
		client: http.Client{
			Timeout: timeout,
		},
	}
}

// Latest loads the current exchange rates for a pivot currency.
// Coinbase rates change every minute.
func (s *service) Latest(ctx context.Context, pivot currencysync.Currency) (currencysync.Rates, error) {
	type Response struct {
		Data struct {
			Currency string
			Rates    map[string]string // maps currency codes to rates
		}
	}

	url := fmt.Sprintf("%v/exchange-rates?currency=%v", s.url, pivot)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building http request: %w", err)
	}
	httpResponse, err := s.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		return nil, fmt.Errorf("coinbase [%v]: %d: %w", pivot, httpResponse.StatusCode, ErrHTTPStatus)
	}

	bytes, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, fmt.Errorf("reading json: %w", err)
	}

	var response Response
	err = json.Unmarshal(bytes, &response)
	if err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}

	result := currencysync.Rates{}
	for k, v := range response.Data.Rates {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("bad rate value [%v]: %w", k, err)
		}
		result[currencysync.Currency(k)] = currencysync.Rate(f)
	}

	return result, nil
}
