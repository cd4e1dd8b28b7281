package engine

import (
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	currencysync "go-currency-sync"
	"go-currency-sync/rates"
)

// loggingEngine decorates an Engine with logging
type loggingEngine struct {
	logger log.Logger
	next   Engine
}

// NewLoggingEngine returns a new instance of a logging Engine
func NewLoggingEngine(logger log.Logger, e Engine) Engine {
	return &loggingEngine{
		next:   e,
		logger: logger,
	}
}

func (e *loggingEngine) Initialize(codes []currencysync.Currency, pivot currencysync.Currency) (err error) {
	defer func() {
		level.Info(e.logger).Log(
			"method", "initialize",
			"currencies", len(codes),
			"pivot", pivot,
			"err", err,
		)
	}()
	return e.next.Initialize(codes, pivot)
}

func (e *loggingEngine) LoadRates(table *rates.Table, fetchErr error) (snapshot Snapshot, err error) {
	defer func(begin time.Time) {
		logger := level.Info(e.logger)
		if fetchErr != nil || err != nil {
			logger = level.Warn(e.logger)
		}
		published := 0
		if table != nil {
			published = table.Len()
		}
		logger.Log(
			"method", "load_rates",
			"published", published,
			"fetch_err", fetchErr,
			"state", e.next.State(),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.LoadRates(table, fetchErr)
}

func (e *loggingEngine) OnFieldEdited(source currencysync.Currency, rawText string) (updated map[currencysync.Currency]Display) {
	defer func(begin time.Time) {
		level.Debug(e.logger).Log(
			"method", "on_field_edited",
			"source", source,
			"text", rawText,
			"updated", len(updated),
			"took", time.Since(begin),
		)
	}(time.Now())
	return e.next.OnFieldEdited(source, rawText)
}

func (e *loggingEngine) Snapshot() Snapshot {
	return e.next.Snapshot()
}

func (e *loggingEngine) State() State {
	return e.next.State()
}
