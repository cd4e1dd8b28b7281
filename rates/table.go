package rates

import (
	"errors"
	"fmt"
	"math"
	"sort"

	currencysync "go-currency-sync"
)

// ErrInvalidRateData a rate snapshot was empty or carried a rate that is not a positive finite number
var ErrInvalidRateData = errors.New("invalid rate data")

// pivotTolerance how far a published pivot rate may drift from 1
const pivotTolerance = 1e-9

// Table an immutable snapshot of rates, all relative to one pivot currency.
// A currency missing from the table has an unknown rate, which is not an error.
type Table struct {
	pivot currencysync.Currency
	rates currencysync.Rates
}

// Build validates raw and constructs a Table. The raw map is copied.
func Build(pivot currencysync.Currency, raw currencysync.Rates) (*Table, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("build [%v]: empty rates: %w", pivot, ErrInvalidRateData)
	}

	pivot = pivot.Normalize()
	rates := make(currencysync.Rates, len(raw))
	for code, rate := range raw {
		f := float64(rate)
		if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
			return nil, fmt.Errorf("build [%v]: rate for %v is %v: %w", pivot, code, f, ErrInvalidRateData)
		}
		rates[code.Normalize()] = rate
	}

	if r, ok := rates[pivot]; ok && math.Abs(float64(r)-1) > pivotTolerance {
		return nil, fmt.Errorf("build [%v]: pivot rate is %v: %w", pivot, r, ErrInvalidRateData)
	}

	return &Table{pivot: pivot, rates: rates}, nil
}

// Pivot the currency every rate is expressed against
func (t *Table) Pivot() currencysync.Currency {
	return t.pivot
}

// RateOf looks up the rate for code. The bool is false when the rate is unknown.
// The pivot currency always has a rate of 1, published or not.
func (t *Table) RateOf(code currencysync.Currency) (currencysync.Rate, bool) {
	code = code.Normalize()
	if code == t.pivot {
		return 1, true
	}
	rate, ok := t.rates[code]
	return rate, ok
}

// Len number of published rates
func (t *Table) Len() int {
	return len(t.rates)
}

// Codes the published currency codes, sorted
func (t *Table) Codes() []currencysync.Currency {
	codes := make([]currencysync.Currency, 0, len(t.rates))
	for code := range t.rates {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
