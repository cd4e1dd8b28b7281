package rates

import (
	"context"
	"fmt"

	currencysync "go-currency-sync"
)

// Source fetches every rate a provider publishes for a pivot currency
type Source interface {
	Latest(ctx context.Context, pivot currencysync.Currency) (currencysync.Rates, error)
}

// Fetch loads rates from s and builds a Table from them
func Fetch(ctx context.Context, s Source, pivot currencysync.Currency) (*Table, error) {
	raw, err := s.Latest(ctx, pivot)
	if err != nil {
		return nil, fmt.Errorf("fetch [%v]: %w", pivot, err)
	}
	return Build(pivot, raw)
}
