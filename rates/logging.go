package rates

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	currencysync "go-currency-sync"
)

// loggingSource decorates a Source with logging
type loggingSource struct {
	next   Source
	logger log.Logger
}

// NewLoggingSource return a new logging Source
func NewLoggingSource(logger log.Logger, s Source) Source {
	return &loggingSource{
		next:   s,
		logger: logger,
	}
}

func (s *loggingSource) Latest(ctx context.Context, pivot currencysync.Currency) (rates currencysync.Rates, err error) {
	defer func(begin time.Time) {
		logger := level.Info(s.logger)
		if err != nil {
			logger = level.Error(s.logger)
		}
		logger.Log(
			"method", "latest",
			"pivot", pivot,
			"rates", len(rates),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Latest(ctx, pivot)
}
