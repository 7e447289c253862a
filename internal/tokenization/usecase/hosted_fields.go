package usecase

import (
	"context"
	"fmt"
	"sync"

	tokenizationDomain "github.com/allisson/cardtoken/internal/tokenization/domain"
)

// AttemptStarter launches tokenization attempts. *Orchestrator satisfies it.
type AttemptStarter interface {
	Start(ctx context.Context, form tokenizationDomain.UpstreamFormData, callbacks Callbacks) *Attempt
}

// HostedFields binds a form source to the orchestrator. Starting a new attempt abandons
// the previous one if it is still running. Abandonment happens outside the lock, so
// callbacks may call back into HostedFields.
type HostedFields struct {
	form      FormSource
	starter   AttemptStarter
	callbacks Callbacks

	mu      sync.Mutex
	current *Attempt
}

// NewHostedFields creates a hosted-fields session that reports through callbacks.
func NewHostedFields(form FormSource, starter AttemptStarter, callbacks Callbacks) *HostedFields {
	return &HostedFields{
		form:      form,
		starter:   starter,
		callbacks: callbacks,
	}
}

// Tokenize collects the form and starts an attempt. A collection failure wraps
// ErrUpstreamValidation and starts nothing.
func (h *HostedFields) Tokenize(ctx context.Context) (*Attempt, error) {
	data, err := h.form.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tokenizationDomain.ErrUpstreamValidation, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: form source returned no data", tokenizationDomain.ErrUpstreamValidation)
	}

	h.mu.Lock()
	previous := h.current
	h.current = nil
	h.mu.Unlock()
	if previous != nil {
		previous.Abandon()
	}

	attempt := h.starter.Start(ctx, *data, h.callbacks)

	// A concurrent Tokenize may have installed its attempt meanwhile; the newest wins.
	h.mu.Lock()
	displaced := h.current
	h.current = attempt
	h.mu.Unlock()
	if displaced != nil {
		displaced.Abandon()
	}
	return attempt, nil
}

// Reset abandons the live attempt, if any, and clears the form.
func (h *HostedFields) Reset(ctx context.Context) error {
	h.mu.Lock()
	previous := h.current
	h.current = nil
	h.mu.Unlock()

	if previous != nil {
		previous.Abandon()
	}
	return h.form.Reset(ctx)
}

// Current returns the most recent attempt, or nil.
func (h *HostedFields) Current() *Attempt {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}
