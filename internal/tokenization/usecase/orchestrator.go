package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tokenizationDomain "github.com/allisson/cardtoken/internal/tokenization/domain"
)

// Orchestrator runs tokenization attempts. It holds no key material between attempts.
type Orchestrator struct {
	sessions  SessionProvider
	encryptor EnvelopeEncryptor
	client    TokenizeClient
	origin    string
	logger    *slog.Logger
}

// NewOrchestrator creates an orchestrator whose sessions are bound to origin.
func NewOrchestrator(
	sessions SessionProvider,
	encryptor EnvelopeEncryptor,
	client TokenizeClient,
	origin string,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{
		sessions:  sessions,
		encryptor: encryptor,
		client:    client,
		origin:    origin,
		logger:    logger,
	}
}

// Start launches one attempt on its own goroutine and returns immediately.
// Cancelling ctx fails the attempt; Attempt.Abandon silences it instead.
func (o *Orchestrator) Start(
	ctx context.Context,
	form tokenizationDomain.UpstreamFormData,
	callbacks Callbacks,
) *Attempt {
	attemptCtx, cancel := context.WithCancel(ctx)
	attempt := newAttempt(cancel, callbacks.OnStateChange)

	go func() {
		defer close(attempt.done)
		defer cancel()

		start := time.Now()
		result, err := o.run(attemptCtx, attempt, form)

		var failure *tokenizationDomain.TokenizationError
		if err != nil {
			failure = tokenizationDomain.NewTokenizationError(err)
		}
		if !attempt.settle(result, failure) {
			o.logger.Info("tokenization attempt abandoned",
				slog.String("attempt_id", attempt.ID().String()),
				slog.Duration("duration", time.Since(start)),
			)
			return
		}

		if failure != nil {
			o.logger.Warn("tokenization attempt failed",
				slog.String("attempt_id", attempt.ID().String()),
				slog.String("kind", string(failure.Kind)),
				slog.Duration("duration", time.Since(start)),
			)
		} else {
			o.logger.Info("tokenization attempt succeeded",
				slog.String("attempt_id", attempt.ID().String()),
				slog.Duration("duration", time.Since(start)),
			)
		}
		o.notify(attempt, callbacks, result, failure)
	}()

	return attempt
}

// Tokenize runs one attempt and waits for it. If ctx ends first the attempt is
// abandoned and, unless it had already succeeded, the failure is KindNetwork wrapping
// ctx.Err(), for cancellation as well as deadlines.
func (o *Orchestrator) Tokenize(
	ctx context.Context,
	form tokenizationDomain.UpstreamFormData,
) (*tokenizationDomain.TokenizationResult, error) {
	attempt := o.Start(ctx, form, Callbacks{})
	result, err := attempt.Wait(ctx)
	if err == nil || ctx.Err() == nil {
		return result, err
	}

	attempt.Abandon()
	<-attempt.Done()
	if result, err := attempt.Wait(context.WithoutCancel(ctx)); err == nil {
		return result, nil
	}
	return nil, contextFailure(ctx.Err())
}

// run executes the stages in order. The first failure ends the attempt; a panic is
// classified by the stage it happened in.
func (o *Orchestrator) run(
	ctx context.Context,
	attempt *Attempt,
	form tokenizationDomain.UpstreamFormData,
) (result *tokenizationDomain.TokenizationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			stage := attempt.State()
			o.logger.Error("tokenization stage panicked",
				slog.String("attempt_id", attempt.ID().String()),
				slog.String("stage", stage.String()),
				slog.Any("panic", r),
			)
			result, err = nil, stageError(stage, fmt.Errorf("panic during %s: %v", stage, r))
		}
	}()

	if !attempt.advance(tokenizationDomain.StateValidating) {
		return nil, nil
	}
	if err := form.CheckSentinels(); err != nil {
		return nil, err
	}
	if err := form.CheckRequired(); err != nil {
		return nil, err
	}

	if !attempt.advance(tokenizationDomain.StateKeyAcquisition) {
		return nil, nil
	}
	session, err := o.sessions.Acquire(ctx, o.origin)
	if err != nil {
		return nil, stageError(tokenizationDomain.StateKeyAcquisition, err)
	}
	if session == nil {
		return nil, stageError(tokenizationDomain.StateKeyAcquisition, fmt.Errorf("no session returned"))
	}

	if !attempt.advance(tokenizationDomain.StateEncrypting) {
		return nil, nil
	}
	envelope, err := o.encryptor.Encrypt(session, form.Payload())
	if err != nil {
		return nil, stageError(tokenizationDomain.StateEncrypting, err)
	}

	if !attempt.advance(tokenizationDomain.StateSubmitting) {
		return nil, nil
	}
	result, err = o.client.Tokenize(ctx, envelope)
	if err != nil {
		return nil, stageError(tokenizationDomain.StateSubmitting, err)
	}
	if result == nil || result.Token == "" {
		return nil, stageError(tokenizationDomain.StateSubmitting, fmt.Errorf("empty token"))
	}
	return result, nil
}

// notify invokes exactly one callback. A panicking callback is logged and swallowed so
// the other callback is never reached.
func (o *Orchestrator) notify(
	attempt *Attempt,
	callbacks Callbacks,
	result *tokenizationDomain.TokenizationResult,
	failure *tokenizationDomain.TokenizationError,
) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("tokenization callback panicked",
				slog.String("attempt_id", attempt.ID().String()),
				slog.Any("panic", r),
			)
		}
	}()

	if failure != nil {
		if callbacks.OnError != nil {
			callbacks.OnError(failure)
		}
		return
	}
	if callbacks.OnSuccess != nil {
		callbacks.OnSuccess(result)
	}
}

// stageError tags err with the stage's error kind unless it already carries one.
func stageError(stage tokenizationDomain.State, err error) error {
	if tokenizationDomain.KindOf(err) != tokenizationDomain.KindUnknown {
		return err
	}
	sentinel := stage.Sentinel()
	if sentinel == nil {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
