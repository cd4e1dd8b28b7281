package currencysync

import "strings"

// Currency a currency code, e.g. USD
type Currency string

// Normalize upper-cases and trims a currency code
func (c Currency) Normalize() Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(string(c))))
}

// Rate units of a currency per one unit of the pivot currency
type Rate float64

// Rates maps a currency code to its rate against some pivot
type Rates map[Currency]Rate

// ParseCurrencies splits a comma separated list of currency codes, dropping empty entries
func ParseCurrencies(list string) []Currency {
	var codes []Currency
	for _, part := range strings.Split(list, ",") {
		code := Currency(part).Normalize()
		if code == "" {
			continue
		}
		codes = append(codes, code)
	}
	return codes
}
