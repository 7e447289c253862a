package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	apperrors "github.com/allisson/cardtoken/internal/errors"
	tokenizationDomain "github.com/allisson/cardtoken/internal/tokenization/domain"
)

// ErrAbandoned is returned by Attempt.Wait once the host abandoned the attempt.
var ErrAbandoned = apperrors.Wrap(apperrors.ErrConflict, "tokenization attempt abandoned")

// Callbacks are the host notifications for one attempt. Exactly one of OnSuccess and
// OnError is invoked, unless the attempt is abandoned first, in which case neither is.
// Both run on the attempt goroutine and must not block on the attempt itself.
type Callbacks struct {
	OnSuccess func(result *tokenizationDomain.TokenizationResult)
	OnError   func(err *tokenizationDomain.TokenizationError)
	// OnStateChange, if set, observes the states the attempt enters, one call at a time
	// and never after a terminal state. The abandoned state is reported on the goroutine
	// that called Abandon.
	OnStateChange func(state tokenizationDomain.State)
}

// Attempt is a single tokenization run. It settles exactly once.
type Attempt struct {
	id     uuid.UUID
	state  atomic.Int32
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	settled   bool
	abandoned bool
	result    *tokenizationDomain.TokenizationResult
	err       error

	onState func(tokenizationDomain.State)

	notifyMu sync.Mutex
	pending  []tokenizationDomain.State
	draining bool
	terminal bool
}

func newAttempt(cancel context.CancelFunc, onState func(tokenizationDomain.State)) *Attempt {
	return &Attempt{
		id:      uuid.Must(uuid.NewV7()),
		cancel:  cancel,
		done:    make(chan struct{}),
		onState: onState,
	}
}

// ID identifies the attempt in logs.
func (a *Attempt) ID() uuid.UUID {
	return a.id
}

// State returns the attempt's current state.
func (a *Attempt) State() tokenizationDomain.State {
	return tokenizationDomain.State(a.state.Load())
}

// Done is closed once the attempt goroutine has exited and any callback has returned.
func (a *Attempt) Done() <-chan struct{} {
	return a.done
}

// Wait blocks until the attempt resolves or ctx ends. A failed attempt returns a
// *TokenizationError; an abandoned one returns ErrAbandoned. If ctx ends first, Wait
// returns a KindNetwork *TokenizationError wrapping ctx.Err() and the attempt keeps
// running.
func (a *Attempt) Wait(ctx context.Context) (*tokenizationDomain.TokenizationResult, error) {
	select {
	case <-a.done:
	default:
		select {
		case <-a.done:
		case <-ctx.Done():
			return nil, contextFailure(ctx.Err())
		}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.abandoned {
		return nil, ErrAbandoned
	}
	return a.result, a.err
}

// contextFailure classifies a caller context that ended before the attempt resolved.
// Deadlines and cancellations both report KindNetwork: the only waits are issuer calls.
func contextFailure(err error) *tokenizationDomain.TokenizationError {
	return &tokenizationDomain.TokenizationError{
		Kind: tokenizationDomain.KindNetwork,
		Err:  fmt.Errorf("%w: %w", tokenizationDomain.ErrNetwork, err),
	}
}

// Abandon stops the attempt cooperatively. After Abandon returns true no callback will
// fire. It returns false when the attempt had already resolved.
func (a *Attempt) Abandon() bool {
	a.mu.Lock()
	if a.settled || a.abandoned {
		a.mu.Unlock()
		return false
	}
	a.abandoned = true
	a.state.Store(int32(tokenizationDomain.StateAbandoned))
	a.mu.Unlock()

	a.cancel()
	a.notifyState(tokenizationDomain.StateAbandoned)
	return true
}

// advance moves the attempt into s unless it already resolved.
func (a *Attempt) advance(s tokenizationDomain.State) bool {
	for {
		current := tokenizationDomain.State(a.state.Load())
		if current.IsResolved() {
			return false
		}
		if a.state.CompareAndSwap(int32(current), int32(s)) {
			a.notifyState(s)
			return true
		}
	}
}

// settle records the outcome. It reports false when the attempt was abandoned, in
// which case the outcome is discarded and no callback may fire.
func (a *Attempt) settle(result *tokenizationDomain.TokenizationResult, failure *tokenizationDomain.TokenizationError) bool {
	a.mu.Lock()
	if a.abandoned || a.settled {
		a.mu.Unlock()
		return false
	}
	a.settled = true
	final := tokenizationDomain.StateSucceeded
	if failure != nil {
		final = tokenizationDomain.StateFailed
		a.err = failure
	} else {
		a.result = result
	}
	a.state.Store(int32(final))
	a.mu.Unlock()

	a.notifyState(final)
	return true
}

// notifyState queues s for the host. The first caller drains the queue; a caller that
// finds a drain in progress, including a state callback re-entering the attempt, only
// enqueues. States queued after a terminal one are dropped.
func (a *Attempt) notifyState(s tokenizationDomain.State) {
	if a.onState == nil {
		return
	}

	a.notifyMu.Lock()
	a.pending = append(a.pending, s)
	if a.draining {
		a.notifyMu.Unlock()
		return
	}
	a.draining = true
	for len(a.pending) > 0 {
		next := a.pending[0]
		a.pending = a.pending[1:]
		if a.terminal {
			continue
		}
		a.terminal = next.IsResolved()

		a.notifyMu.Unlock()
		a.deliverState(next)
		a.notifyMu.Lock()
	}
	a.draining = false
	a.notifyMu.Unlock()
}

func (a *Attempt) deliverState(s tokenizationDomain.State) {
	defer func() { _ = recover() }()
	a.onState(s)
}
