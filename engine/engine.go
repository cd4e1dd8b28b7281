package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	currencysync "go-currency-sync"
	"go-currency-sync/rates"
)

// UnavailableText is shown for a field whose rate is unknown or whose rates failed to load.
const UnavailableText = "n/a"

// displayPlaces fixed-point places for every displayed amount
const displayPlaces = 2

// Bounds on typed amounts. Anything outside them is treated like text that does not parse.
const (
	maxInputLen       = 64
	maxIntegerDigits  = 20
	maxFractionDigits = 20
)

var (
	ErrNotInitialized     = errors.New("engine not initialized")
	ErrAlreadyInitialized = errors.New("engine already initialized")
	ErrNoCurrencies       = errors.New("no tracked currencies")
	ErrDuplicateCurrency  = errors.New("duplicate tracked currency")
	ErrNoTable            = errors.New("no rate table")
	ErrPivotMismatch      = errors.New("rate table pivot does not match")
	ErrPassInFlight       = errors.New("propagation pass in flight")
)

// State of an engine
type State int

const (
	Uninitialized State = iota
	RatesAbsent
	RatesLoaded
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case RatesAbsent:
		return "rates_absent"
	case RatesLoaded:
		return "rates_loaded"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Display what a single field shows
type Display struct {
	Amount    string
	Available bool
}

func (d Display) String() string {
	if !d.Available {
		return UnavailableText
	}
	return d.Amount
}

// Field a tracked currency and its display, as returned in a Snapshot
type Field struct {
	Code    currencysync.Currency
	Display Display
}

// Snapshot every tracked field in display order
type Snapshot []Field

// Map the snapshot keyed by currency code
func (s Snapshot) Map() map[currencysync.Currency]Display {
	m := make(map[currencysync.Currency]Display, len(s))
	for _, f := range s {
		m[f.Code] = f.Display
	}
	return m
}

// observer is told about every field written during a propagation pass.
// It may call back into the engine; such calls are ignored while the pass runs.
type observer func(code currencysync.Currency, display Display)

// Engine keeps a set of currency fields consistent under one rate table.
// Implementations are not safe for concurrent use; callers serialize every call.
type Engine interface {
	Initialize(codes []currencysync.Currency, pivot currencysync.Currency) error
	LoadRates(table *rates.Table, fetchErr error) (Snapshot, error)
	OnFieldEdited(source currencysync.Currency, rawText string) map[currencysync.Currency]Display
	Snapshot() Snapshot
	State() State
}

type field struct {
	code      currencysync.Currency
	amount    decimal.Decimal
	available bool
}

func (f *field) display() Display {
	if !f.available {
		return Display{}
	}
	return Display{Amount: f.amount.StringFixed(displayPlaces), Available: true}
}

// SyncEngine the Engine implementation
type SyncEngine struct {
	pivot currencysync.Currency

	// fields in display order; index maps a code to its position
	fields []field
	index  map[currencysync.Currency]int

	// table is nil whenever rates are absent
	table *rates.Table
	state State

	// suppressing is only true inside OnFieldEdited
	suppressing bool

	observer observer
}

// New constructs an uninitialized SyncEngine
func New() *SyncEngine {
	return &SyncEngine{}
}

// setObserver registers o to be told about field writes. A nil o removes it.
func (e *SyncEngine) setObserver(o observer) {
	e.observer = o
}

// Initialize creates one field per code, in order, each showing zero.
// It may only be called once.
func (e *SyncEngine) Initialize(codes []currencysync.Currency, pivot currencysync.Currency) error {
	if e.state != Uninitialized {
		return ErrAlreadyInitialized
	}
	if len(codes) == 0 {
		return ErrNoCurrencies
	}

	fields := make([]field, 0, len(codes))
	index := make(map[currencysync.Currency]int, len(codes))
	for _, code := range codes {
		code = code.Normalize()
		if _, ok := index[code]; ok {
			return fmt.Errorf("initialize [%v]: %w", code, ErrDuplicateCurrency)
		}
		index[code] = len(fields)
		fields = append(fields, field{code: code, amount: decimal.Zero, available: true})
	}

	e.pivot = pivot.Normalize()
	e.fields = fields
	e.index = index
	e.state = RatesAbsent
	return nil
}

// LoadRates installs the outcome of a rate fetch.
//
// A fetch failure clears the table and marks every field unavailable.
// A snapshot rejected as invalid rate data, or built for another pivot, leaves
// the engine exactly as it was and is returned as an error.
// A good table replaces the old one and seeds every field with one unit of the pivot.
func (e *SyncEngine) LoadRates(table *rates.Table, fetchErr error) (Snapshot, error) {
	if e.state == Uninitialized {
		return nil, ErrNotInitialized
	}
	if e.suppressing {
		return nil, ErrPassInFlight
	}

	if errors.Is(fetchErr, rates.ErrInvalidRateData) {
		return e.Snapshot(), fmt.Errorf("load rates: %w", fetchErr)
	}
	if fetchErr == nil && table == nil {
		fetchErr = ErrNoTable
	}
	if fetchErr != nil {
		e.table = nil
		e.state = RatesAbsent
		for i := range e.fields {
			e.fields[i].available = false
		}
		return e.Snapshot(), nil
	}

	if table.Pivot() != e.pivot {
		return e.Snapshot(), fmt.Errorf("load rates [%v != %v]: %w", table.Pivot(), e.pivot, ErrPivotMismatch)
	}

	e.table = table
	e.state = RatesLoaded
	for i := range e.fields {
		f := &e.fields[i]
		rate, ok := table.RateOf(f.code)
		if !ok {
			f.available = false
			continue
		}
		f.amount = decimal.NewFromFloat(float64(rate)).Round(displayPlaces)
		f.available = true
	}
	return e.Snapshot(), nil
}

// OnFieldEdited converts the text typed into source to every other field.
//
// The result holds every field except source. It is nil when the edit changed
// nothing: rates absent, source unknown or without a rate, text not a finite
// number, or a pass already running.
func (e *SyncEngine) OnFieldEdited(source currencysync.Currency, rawText string) map[currencysync.Currency]Display {
	if e.suppressing || e.table == nil {
		return nil
	}
	source = source.Normalize()
	idx, ok := e.index[source]
	if !ok {
		return nil
	}
	amount, ok := parseAmount(rawText)
	if !ok {
		return nil
	}
	rate, ok := e.table.RateOf(source)
	if !ok {
		return nil
	}

	pivotAmount := amount.Div(decimal.NewFromFloat(float64(rate)))

	e.suppressing = true
	defer func() { e.suppressing = false }()

	e.fields[idx].amount = amount
	e.fields[idx].available = true

	updated := make(map[currencysync.Currency]Display, len(e.fields)-1)
	for i := range e.fields {
		f := &e.fields[i]
		if f.code == source {
			continue
		}
		r, ok := e.table.RateOf(f.code)
		if !ok {
			updated[f.code] = f.display()
			continue
		}
		f.amount = pivotAmount.Mul(decimal.NewFromFloat(float64(r))).Round(displayPlaces)
		f.available = true
		d := f.display()
		updated[f.code] = d
		if e.observer != nil {
			e.observer(f.code, d)
		}
	}
	return updated
}

// Snapshot every field in display order
func (e *SyncEngine) Snapshot() Snapshot {
	snapshot := make(Snapshot, 0, len(e.fields))
	for i := range e.fields {
		snapshot = append(snapshot, Field{Code: e.fields[i].code, Display: e.fields[i].display()})
	}
	return snapshot
}

// State the engine's current state
func (e *SyncEngine) State() State {
	return e.state
}

// parseAmount accepts finite decimal text only; exponents are allowed, NaN and Inf are not.
// Amounts with more than maxIntegerDigits before the point or maxFractionDigits after it are rejected.
func parseAmount(rawText string) (decimal.Decimal, bool) {
	text := strings.TrimSpace(rawText)
	if text == "" || len(text) > maxInputLen {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, false
	}
	exp := int64(d.Exponent())
	if exp < -maxFractionDigits || int64(d.NumDigits())+exp > maxIntegerDigits {
		return decimal.Decimal{}, false
	}
	return d, true
}
