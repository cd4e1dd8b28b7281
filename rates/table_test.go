package rates

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	currencysync "go-currency-sync"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		raw     currencysync.Rates
		wantErr bool
	}{
		{"valid", currencysync.Rates{"USD": 1, "EUR": 0.9, "MYR": 4.7}, false},
		{"pivot absent", currencysync.Rates{"EUR": 0.9}, false},
		{"empty", currencysync.Rates{}, true},
		{"nil", nil, true},
		{"zero rate", currencysync.Rates{"EUR": 0}, true},
		{"negative rate", currencysync.Rates{"EUR": -0.9}, true},
		{"nan rate", currencysync.Rates{"EUR": currencysync.Rate(math.NaN())}, true},
		{"infinite rate", currencysync.Rates{"EUR": currencysync.Rate(math.Inf(1))}, true},
		{"pivot not one", currencysync.Rates{"USD": 1.1, "EUR": 0.9}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Build("USD", tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRateData)
				assert.Nil(t, table)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, table)
		})
	}
}

func TestTable_RateOf(t *testing.T) {
	table, err := Build("usd", currencysync.Rates{"EUR": 0.9, "myr": 4.7})
	require.NoError(t, err)

	rate, ok := table.RateOf("EUR")
	assert.True(t, ok)
	assert.Equal(t, currencysync.Rate(0.9), rate)

	rate, ok = table.RateOf("MYR")
	assert.True(t, ok)
	assert.Equal(t, currencysync.Rate(4.7), rate)

	rate, ok = table.RateOf("USD")
	assert.True(t, ok, "pivot is always known")
	assert.Equal(t, currencysync.Rate(1), rate)

	rate, ok = table.RateOf("KWD")
	assert.False(t, ok)
	assert.Zero(t, rate)

	assert.Equal(t, currencysync.Currency("USD"), table.Pivot())
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []currencysync.Currency{"EUR", "MYR"}, table.Codes())
}

func TestBuild_CopiesInput(t *testing.T) {
	raw := currencysync.Rates{"EUR": 0.9}
	table, err := Build("USD", raw)
	require.NoError(t, err)

	raw["EUR"] = 2
	rate, _ := table.RateOf("EUR")
	assert.Equal(t, currencysync.Rate(0.9), rate)
}
