package agent

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/looplab/fsm"

	"github.com/balaji-balu/lizzy-client/pkg/model"
)

const (
	DefaultRetries  = 3
	DefaultInterval = 10 * time.Second
)

// Poller states.
const (
	StatePolling        = "polling"
	StateTransientError = "transient_error"
	StateSucceeded      = "succeeded"
	StateFailed         = "failed"
)

const (
	eventObserve  = "observe"
	eventError    = "error"
	eventComplete = "complete"
	eventFail     = "fail"
	eventExhaust  = "exhaust"
)

// StackGetter is the part of the agent client the poller needs.
type StackGetter interface {
	GetStack(ctx context.Context, stackID, region string) (*model.Stack, error)
}

// Observation is one item of a deployment poll: either a status reported by
// the agent or a failed attempt.
type Observation struct {
	Status      string
	Err         error
	RetriesLeft int
}

// Failed reports a synthetic observation for a failed attempt.
func (o Observation) Failed() bool {
	return o.Err != nil
}

// Terminal reports a real status that ends the deployment.
func (o Observation) Terminal() bool {
	return o.Err == nil && IsTerminal(o.Status)
}

func (o Observation) String() string {
	if o.Err != nil {
		return fmt.Sprintf("Failed to get stack (%d retries left): %v.", o.RetriesLeft, o.Err)
	}
	return o.Status
}

// Poller follows one stack until it reaches a terminal status or the retry
// budget for consecutive failures is spent. A Poller is consumed once.
type Poller struct {
	getter   StackGetter
	stackID  string
	region   string
	interval time.Duration
	retries  int

	machine *fsm.FSM
	started bool
	done    bool
	last    Observation
	err     error
}

// NewPoller creates a poller for stackID. A non-positive interval selects
// DefaultInterval.
func NewPoller(getter StackGetter, stackID, region string, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	active := []string{StatePolling, StateTransientError}
	return &Poller{
		getter:   getter,
		stackID:  stackID,
		region:   region,
		interval: interval,
		retries:  DefaultRetries,
		machine: fsm.NewFSM(
			StatePolling,
			fsm.Events{
				{Name: eventObserve, Src: active, Dst: StatePolling},
				{Name: eventError, Src: active, Dst: StateTransientError},
				{Name: eventComplete, Src: active, Dst: StateSucceeded},
				{Name: eventFail, Src: active, Dst: StateFailed},
				{Name: eventExhaust, Src: []string{StateTransientError}, Dst: StateFailed},
			},
			fsm.Callbacks{},
		),
	}
}

// Next performs the next attempt and returns its observation. The second
// result is false once the poll is over: after a terminal status, after the
// retries are exhausted, or when ctx is done.
func (p *Poller) Next(ctx context.Context) (Observation, bool) {
	if p.done {
		return Observation{}, false
	}

	if p.started {
		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.stop(ctx.Err())
			return Observation{}, false
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		p.stop(err)
		return Observation{}, false
	}
	p.started = true

	obs := p.attempt(ctx)
	if errors.Is(obs.Err, context.Canceled) || errors.Is(obs.Err, context.DeadlineExceeded) {
		if ctx.Err() != nil {
			p.stop(ctx.Err())
			return Observation{}, false
		}
	}
	p.last = obs

	switch {
	case obs.Failed():
		p.transition(eventError)
		if obs.RetriesLeft == 0 {
			p.transition(eventExhaust)
			p.done = true
		}
	case obs.Terminal():
		if Classify(obs.Status) == Success {
			p.transition(eventComplete)
		} else {
			p.transition(eventFail)
		}
		p.done = true
	default:
		p.transition(eventObserve)
	}
	return obs, true
}

func (p *Poller) attempt(ctx context.Context) Observation {
	stack, err := p.getter.GetStack(ctx, p.stackID, p.region)
	if err == nil && stack.Status == "" {
		err = ErrStatusMissing
	}
	if err != nil {
		p.retries--
		return Observation{Err: err, RetriesLeft: p.retries}
	}
	p.retries = DefaultRetries
	return Observation{Status: stack.Status, RetriesLeft: p.retries}
}

func (p *Poller) transition(event string) {
	err := p.machine.Event(context.Background(), event)
	var noTransition fsm.NoTransitionError
	if err != nil && !errors.As(err, &noTransition) {
		// Only reachable through a wrong event table.
		panic(fmt.Sprintf("poller: %s from %s: %v", event, p.machine.Current(), err))
	}
}

func (p *Poller) stop(err error) {
	p.done = true
	p.err = err
}

// Observations yields every observation until the poll is over.
func (p *Poller) Observations(ctx context.Context) iter.Seq[Observation] {
	return func(yield func(Observation) bool) {
		for {
			obs, ok := p.Next(ctx)
			if !ok || !yield(obs) {
				return
			}
		}
	}
}

// Statuses yields the observations rendered as status lines.
func (p *Poller) Statuses(ctx context.Context) iter.Seq[string] {
	return func(yield func(string) bool) {
		for obs := range p.Observations(ctx) {
			if !yield(obs.String()) {
				return
			}
		}
	}
}

// State is the current state of the poll.
func (p *Poller) State() string {
	return p.machine.Current()
}

// Exhausted reports that the poll ended because of consecutive failures
// rather than a terminal status.
func (p *Poller) Exhausted() bool {
	return p.done && p.last.Failed() && p.last.RetriesLeft == 0
}

// Last is the last observation returned by Next.
func (p *Poller) Last() Observation {
	return p.last
}

// Err is the context error that interrupted the poll, if any.
func (p *Poller) Err() error {
	return p.err
}
