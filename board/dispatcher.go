package board

import (
	"context"
	"errors"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	currencysync "go-currency-sync"
	"go-currency-sync/engine"
)

// ErrStopped the dispatcher is no longer running
var ErrStopped = errors.New("dispatcher stopped")

// View what a presentation layer renders
type View struct {
	State  engine.State
	Fields engine.Snapshot
}

type editRequest struct {
	code  currencysync.Currency
	text  string
	reply chan map[currencysync.Currency]engine.Display
}

// Dispatcher is the single event-dispatch go-routine that owns an engine.
// Edits, view requests and fetch outcomes are all applied from Run, one at a time,
// so the engine itself never sees concurrent calls.
type Dispatcher struct {
	engine engine.Engine

	edits chan editRequest
	views chan chan View

	// done is closed when Run returns
	done chan struct{}

	logger log.Logger
}

// NewDispatcher returns a Dispatcher for an initialized engine
func NewDispatcher(e engine.Engine, logger log.Logger) *Dispatcher {
	return &Dispatcher{
		engine: e,
		edits:  make(chan editRequest),
		views:  make(chan chan View),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Run applies requests and fetch outcomes until ctx is done.
// A nil outcomes channel means rates are never loaded.
func (d *Dispatcher) Run(ctx context.Context, outcomes <-chan Outcome) error {
	defer close(d.done)
	for {
		select {
		case o := <-outcomes:
			if _, err := d.engine.LoadRates(o.Table, o.Err); err != nil {
				level.Warn(d.logger).Log("msg", "rates rejected", "err", err)
			}
		case req := <-d.edits:
			req.reply <- d.engine.OnFieldEdited(req.code, req.text)
		case reply := <-d.views:
			reply <- d.view()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Edit applies one field edit and returns the fields it changed, nil when it was ignored
func (d *Dispatcher) Edit(ctx context.Context, code currencysync.Currency, text string) (map[currencysync.Currency]engine.Display, error) {
	req := editRequest{code: code, text: text, reply: make(chan map[currencysync.Currency]engine.Display, 1)}
	select {
	case d.edits <- req:
	case <-d.done:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case updated := <-req.reply:
		return updated, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// View returns the current state and every field
func (d *Dispatcher) View(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	select {
	case d.views <- reply:
	case <-d.done:
		return View{}, ErrStopped
	case <-ctx.Done():
		return View{}, ctx.Err()
	}

	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

func (d *Dispatcher) view() View {
	return View{State: d.engine.State(), Fields: d.engine.Snapshot()}
}
