package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	tokenizationDomain "github.com/allisson/cardtoken/internal/tokenization/domain"
	tokenizationMocks "github.com/allisson/cardtoken/internal/tokenization/usecase/mocks"
)

func TestHostedFields_Tokenize(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		orchestrator, m := newTestOrchestrator(t)
		formSource := tokenizationMocks.NewMockFormSource(t)
		form := validForm()

		formSource.On("Collect", mock.Anything).Return(&form, nil).Once()
		m.sessions.On("Acquire", mock.Anything, testOrigin).Return(testSession(), nil).Once()
		m.encryptor.On("Encrypt", testSession(), form.Payload()).Return(testEnvelope(), nil).Once()
		m.client.On("Tokenize", mock.Anything, testEnvelope()).
			Return(&tokenizationDomain.TokenizationResult{Token: "tok_123"}, nil).
			Once()

		rec := &recorder{}
		fields := NewHostedFields(formSource, orchestrator, rec.callbacks())
		attempt, err := fields.Tokenize(context.Background())
		require.NoError(t, err)

		result, err := waitAttempt(t, attempt)
		require.NoError(t, err)
		assert.Equal(t, "tok_123", result.Token)
		assert.Equal(t, int32(1), rec.successes.Load())
		assert.Same(t, attempt, fields.Current())
	})

	t.Run("CollectFailure", func(t *testing.T) {
		orchestrator, _ := newTestOrchestrator(t)
		formSource := tokenizationMocks.NewMockFormSource(t)
		formSource.On("Collect", mock.Anything).Return(nil, errors.New("fields not mounted")).Once()

		fields := NewHostedFields(formSource, orchestrator, Callbacks{})
		attempt, err := fields.Tokenize(context.Background())

		assert.Nil(t, attempt)
		assert.ErrorIs(t, err, tokenizationDomain.ErrUpstreamValidation)
		assert.Nil(t, fields.Current())
	})

	t.Run("NewAttemptAbandonsPrevious", func(t *testing.T) {
		orchestrator, m := newTestOrchestrator(t)
		formSource := tokenizationMocks.NewMockFormSource(t)
		form := validForm()
		formSource.On("Collect", mock.Anything).Return(&form, nil).Twice()

		entered := make(chan struct{})
		var calls atomic.Int32
		m.sessions.On("Acquire", mock.Anything, testOrigin).
			Run(func(args mock.Arguments) {
				if calls.Add(1) == 1 {
					close(entered)
					<-args.Get(0).(context.Context).Done()
				}
			}).
			Return(testSession(), nil).
			Twice()
		m.encryptor.On("Encrypt", testSession(), form.Payload()).Return(testEnvelope(), nil).Once()
		m.client.On("Tokenize", mock.Anything, testEnvelope()).
			Return(&tokenizationDomain.TokenizationResult{Token: "tok_456"}, nil).
			Once()

		rec := &recorder{}
		fields := NewHostedFields(formSource, orchestrator, rec.callbacks())

		first, err := fields.Tokenize(context.Background())
		require.NoError(t, err)
		<-entered

		second, err := fields.Tokenize(context.Background())
		require.NoError(t, err)

		_, err = waitAttempt(t, first)
		assert.ErrorIs(t, err, ErrAbandoned)
		result, err := waitAttempt(t, second)
		require.NoError(t, err)
		assert.Equal(t, "tok_456", result.Token)
		assert.Equal(t, int32(1), rec.successes.Load())
		assert.Equal(t, int32(0), rec.failures.Load())
	})
}

func TestHostedFields_Reset(t *testing.T) {
	orchestrator, m := newTestOrchestrator(t)
	formSource := tokenizationMocks.NewMockFormSource(t)
	form := validForm()
	formSource.On("Collect", mock.Anything).Return(&form, nil).Once()
	formSource.On("Reset", mock.Anything).Return(nil).Once()
	entered := blockingAcquire(m)

	rec := &recorder{}
	fields := NewHostedFields(formSource, orchestrator, rec.callbacks())
	attempt, err := fields.Tokenize(context.Background())
	require.NoError(t, err)
	<-entered

	require.NoError(t, fields.Reset(context.Background()))

	_, err = waitAttempt(t, attempt)
	assert.ErrorIs(t, err, ErrAbandoned)
	assert.Nil(t, fields.Current())
	assert.Equal(t, int32(0), rec.successes.Load()+rec.failures.Load())
}

func TestHostedFields_StateCallbackReentersOnAbandon(t *testing.T) {
	orchestrator, m := newTestOrchestrator(t)
	formSource := tokenizationMocks.NewMockFormSource(t)
	form := validForm()
	formSource.On("Collect", mock.Anything).Return(&form, nil).Once()
	formSource.On("Reset", mock.Anything).Return(nil).Once()
	entered := blockingAcquire(m)

	var fields *HostedFields
	var currentOnAbandon atomic.Bool
	fields = NewHostedFields(formSource, orchestrator, Callbacks{
		OnStateChange: func(state tokenizationDomain.State) {
			if state == tokenizationDomain.StateAbandoned {
				currentOnAbandon.Store(fields.Current() == nil)
			}
		},
	})

	attempt, err := fields.Tokenize(context.Background())
	require.NoError(t, err)
	<-entered

	resetDone := make(chan error, 1)
	go func() {
		resetDone <- fields.Reset(context.Background())
	}()

	select {
	case err := <-resetDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Reset did not return while the state callback read Current")
	}

	_, err = waitAttempt(t, attempt)
	assert.ErrorIs(t, err, ErrAbandoned)
	assert.True(t, currentOnAbandon.Load())
}
