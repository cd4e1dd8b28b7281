package board

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	currencysync "go-currency-sync"
	"go-currency-sync/rates"
)

// Outcome of one rate fetch. Exactly one of Table and Err is set.
type Outcome struct {
	Table *rates.Table
	Err   error
}

// Poller fetches a rate table on a fixed schedule and hands every outcome,
// good or bad, to whoever owns the engine.
type Poller struct {
	// source the rate provider
	source rates.Source

	// pivot currency the rates are fetched against
	pivot currencysync.Currency

	// updateFrequency how often to refetch
	updateFrequency time.Duration

	logger log.Logger
}

// NewPoller returns a new Poller
func NewPoller(source rates.Source, pivot currencysync.Currency, updateFrequency time.Duration, logger log.Logger) *Poller {
	return &Poller{
		source:          source,
		pivot:           pivot,
		updateFrequency: updateFrequency,
		logger:          logger,
	}
}

// Run fetches immediately and then every updateFrequency, sending each outcome on out.
// It returns when ctx is done; outcomes are never dropped while ctx is live.
// Run is expected to be called from its own go-routine.
func (p *Poller) Run(ctx context.Context, out chan<- Outcome) {
	for {
		if !p.refreshNow(ctx, out) {
			return
		}
		select {
		case <-time.After(p.updateFrequency):
		case <-ctx.Done():
			level.Debug(p.logger).Log("msg", "shutting down periodic refresh", "pivot", p.pivot)
			return
		}
	}
}

// refreshNow fetches once and delivers the outcome. It reports false once ctx is done.
func (p *Poller) refreshNow(ctx context.Context, out chan<- Outcome) bool {
	table, err := rates.Fetch(ctx, p.source, p.pivot)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		// Don't stop, the next tick may succeed
		level.Warn(p.logger).Log("msg", "refresh failed", "pivot", p.pivot, "err", err)
	}

	select {
	case out <- Outcome{Table: table, Err: err}:
		return true
	case <-ctx.Done():
		return false
	}
}
