package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	currencysync "go-currency-sync"
	"go-currency-sync/board"
	"go-currency-sync/engine"
	"go-currency-sync/rates"
)

type mock struct {
	t    *testing.T
	code currencysync.Currency
	text string
	err  error
}

func (m *mock) Edit(_ context.Context, code currencysync.Currency, text string) (map[currencysync.Currency]engine.Display, error) {
	assert.Equal(m.t, m.code, code, "code")
	assert.Equal(m.t, m.text, text, "text")
	if m.err != nil {
		return nil, m.err
	}
	if text == "oops" {
		return nil, nil
	}
	return map[currencysync.Currency]engine.Display{
		"USD": {Amount: "11.11", Available: true},
		"KWD": {},
	}, nil
}

func (m *mock) View(_ context.Context) (board.View, error) {
	return board.View{
		State: engine.RatesLoaded,
		Fields: engine.Snapshot{
			{Code: "USD", Display: engine.Display{Amount: "1.00", Available: true}},
			{Code: "KWD", Display: engine.Display{}},
		},
	}, m.err
}

func TestServer_Edit(t *testing.T) {
	server := NewServer(&mock{t: t, code: "EUR", text: "10"}, log.NewNopLogger())

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/fields/eur", strings.NewReader(`{"text":"10"}`))

	server.ServeHTTP(w, r)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, `{"source":"EUR","applied":true,"updated":{"KWD":{"amount":"n/a","available":false},"USD":{"amount":"11.11","available":true}}}`, strings.TrimSpace(w.Body.String()))
}

func TestServer_EditIgnored(t *testing.T) {
	server := NewServer(&mock{t: t, code: "EUR", text: "oops"}, log.NewNopLogger())

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/fields/EUR", strings.NewReader(`{"text":"oops"}`))

	server.ServeHTTP(w, r)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, `{"source":"EUR","applied":false,"updated":{}}`, strings.TrimSpace(w.Body.String()))
}

func TestServer_EditInvalidJSON(t *testing.T) {
	server := NewServer(&mock{t: t}, log.NewNopLogger())

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/fields/EUR", strings.NewReader(`{"text":`))

	server.ServeHTTP(w, r)

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, `{"error":"invalid json"}`, strings.TrimSpace(w.Body.String()))
}

func TestServer_EditTooLarge(t *testing.T) {
	server := NewServer(&mock{t: t}, log.NewNopLogger())

	w := httptest.NewRecorder()
	body := `{"text":"` + strings.Repeat("9", 2*maxEditBytes) + `"}`
	r := httptest.NewRequest("POST", "/api/fields/EUR", strings.NewReader(body))

	server.ServeHTTP(w, r)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, `{"error":"request too large"}`, strings.TrimSpace(w.Body.String()))
}

func TestServer_EditHugeExponent(t *testing.T) {
	e := engine.New()
	require.NoError(t, e.Initialize([]currencysync.Currency{"USD", "EUR", "MYR"}, "USD"))
	table, err := rates.Build("USD", currencysync.Rates{"EUR": 0.9, "MYR": 4.7})
	require.NoError(t, err)
	_, err = e.LoadRates(table, nil)
	require.NoError(t, err)

	d := board.NewDispatcher(e, log.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx, nil) }()

	server := NewServer(d, log.NewNopLogger())

	for _, text := range []string{"1e2147483640", "1e2000000"} {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/api/fields/EUR", strings.NewReader(`{"text":"`+text+`"}`))
		server.ServeHTTP(w, r)

		assert.Equal(t, 200, w.Code)
		assert.Equal(t, `{"source":"EUR","applied":false,"updated":{}}`, strings.TrimSpace(w.Body.String()))
	}

	// the dispatcher is still serving
	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("GET", "/api/fields", nil))
	assert.Equal(t, 200, w.Code)
}

func TestServer_Stopped(t *testing.T) {
	server := NewServer(&mock{t: t, code: "EUR", text: "1", err: board.ErrStopped}, log.NewNopLogger())

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/fields/EUR", strings.NewReader(`{"text":"1"}`))

	server.ServeHTTP(w, r)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestServer_Fields(t *testing.T) {
	server := NewServer(&mock{t: t}, log.NewNopLogger())

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/fields", nil)

	server.ServeHTTP(w, r)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, `{"state":"rates_loaded","fields":[{"currency":"USD","amount":"1.00","available":true},{"currency":"KWD","amount":"n/a","available":false}]}`, strings.TrimSpace(w.Body.String()))
}

func TestServer_Health(t *testing.T) {
	server := NewServer(&mock{t: t}, log.NewNopLogger())

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, `{"status":"ok"}`, strings.TrimSpace(w.Body.String()))
}

func TestServer_ServeHTTP(t *testing.T) {
	e := engine.New()
	require.NoError(t, e.Initialize([]currencysync.Currency{"USD", "EUR", "MYR"}, "USD"))
	table, err := rates.Build("USD", currencysync.Rates{"USD": 1, "EUR": 0.9, "MYR": 4.7})
	require.NoError(t, err)
	_, err = e.LoadRates(table, nil)
	require.NoError(t, err)

	d := board.NewDispatcher(e, log.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx, nil) }()

	server := NewServer(d, log.NewNopLogger())

	w := httptest.NewRecorder()
	msg := `{"text":"10"}`
	r := httptest.NewRequest("POST", "/api/fields/EUR", strings.NewReader(msg))

	server.ServeHTTP(w, r)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, `{"source":"EUR","applied":true,"updated":{"MYR":{"amount":"52.22","available":true},"USD":{"amount":"11.11","available":true}}}`, strings.TrimSpace(w.Body.String()))
}
