package exchangerate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	currencysync "go-currency-sync"
)

const ApiUrlBase = "https://v6.exchangerate-api.com/v6"

var (
	// ErrMissingAPIKey no API key was configured
	ErrMissingAPIKey = errors.New("exchangerate api key is not configured")

	// ErrProvider the provider answered with "result": "error"
	ErrProvider = errors.New("exchangerate provider error")

	// ErrHTTPStatus non-2xx status without a provider error body
	ErrHTTPStatus = errors.New("unexpected http status")
)

// Service ExchangeRate-API v6 client
type Service struct {
	// url base API url
	url string

	// key API key, part of the request path
	key string

	// client for HTTP requests
	client http.Client
}

// NewService constructs a Service for the given API key. An empty url means ApiUrlBase.
func NewService(url, key string, timeout time.Duration) *Service {
	if url == "" {
		url = ApiUrlBase
	}
	return &Service{
		url: strings.TrimSuffix(url, "/"),
		key: key,
		client: http.Client{
			Timeout: timeout,
		},
	}
}

// response fields shared by the latest and pair endpoints
type response struct {
	Result          string                `json:"result"`
	ErrorType       string                `json:"error-type"`
	BaseCode        string                `json:"base_code"`
	ConversionRates map[string]float64    `json:"conversion_rates"`
	ConversionRate  float64               `json:"conversion_rate"`
	TargetCode      currencysync.Currency `json:"target_code"`
}

// Latest loads every rate published against pivot
func (s *Service) Latest(ctx context.Context, pivot currencysync.Currency) (currencysync.Rates, error) {
	var r response
	if err := s.get(ctx, fmt.Sprintf("latest/%v", pivot), &r); err != nil {
		return nil, fmt.Errorf("latest [%v]: %w", pivot, err)
	}

	rates := make(currencysync.Rates, len(r.ConversionRates))
	for code, rate := range r.ConversionRates {
		rates[currencysync.Currency(code)] = currencysync.Rate(rate)
	}
	return rates, nil
}

// Pair loads the single rate converting base into target
func (s *Service) Pair(ctx context.Context, base, target currencysync.Currency) (currencysync.Rate, error) {
	var r response
	if err := s.get(ctx, fmt.Sprintf("pair/%v/%v", base, target), &r); err != nil {
		return 0, fmt.Errorf("pair [%v/%v]: %w", base, target, err)
	}
	return currencysync.Rate(r.ConversionRate), nil
}

func (s *Service) get(ctx context.Context, path string, r *response) error {
	if s.key == "" {
		return ErrMissingAPIKey
	}

	url := fmt.Sprintf("%v/%v/%v", s.url, s.key, path)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building http request: %w", err)
	}
	httpResponse, err := s.client.Do(request)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}
	defer httpResponse.Body.Close()

	bytes, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return fmt.Errorf("reading json: %w", err)
	}

	// error responses carry a json body even on 4xx
	if err := json.Unmarshal(bytes, r); err != nil {
		if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
			return fmt.Errorf("%d: %w", httpResponse.StatusCode, ErrHTTPStatus)
		}
		return fmt.Errorf("decoding json: %w", err)
	}

	if r.Result == "error" {
		return fmt.Errorf("%v: %w", r.ErrorType, ErrProvider)
	}
	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		return fmt.Errorf("%d: %w", httpResponse.StatusCode, ErrHTTPStatus)
	}
	if r.Result != "success" {
		return fmt.Errorf("result %q: %w", r.Result, ErrProvider)
	}
	return nil
}
