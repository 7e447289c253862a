// Package mocks provides testify mocks for the tokenization use case collaborators.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	tokenizationDomain "github.com/allisson/cardtoken/internal/tokenization/domain"
)

type cleanupT interface {
	mock.TestingT
	Cleanup(func())
}

// MockSessionProvider mocks usecase.SessionProvider.
type MockSessionProvider struct {
	mock.Mock
}

// NewMockSessionProvider creates a mock that asserts its expectations on cleanup.
func NewMockSessionProvider(t cleanupT) *MockSessionProvider {
	m := &MockSessionProvider{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSessionProvider) Acquire(ctx context.Context, origin string) (*tokenizationDomain.SessionContext, error) {
	args := m.Called(ctx, origin)
	session, _ := args.Get(0).(*tokenizationDomain.SessionContext)
	return session, args.Error(1)
}

// MockEnvelopeEncryptor mocks usecase.EnvelopeEncryptor.
type MockEnvelopeEncryptor struct {
	mock.Mock
}

// NewMockEnvelopeEncryptor creates a mock that asserts its expectations on cleanup.
func NewMockEnvelopeEncryptor(t cleanupT) *MockEnvelopeEncryptor {
	m := &MockEnvelopeEncryptor{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockEnvelopeEncryptor) Encrypt(
	session *tokenizationDomain.SessionContext,
	payload tokenizationDomain.CardPayload,
) (*tokenizationDomain.EnvelopeRequest, error) {
	args := m.Called(session, payload)
	envelope, _ := args.Get(0).(*tokenizationDomain.EnvelopeRequest)
	return envelope, args.Error(1)
}

// MockTokenizeClient mocks usecase.TokenizeClient.
type MockTokenizeClient struct {
	mock.Mock
}

// NewMockTokenizeClient creates a mock that asserts its expectations on cleanup.
func NewMockTokenizeClient(t cleanupT) *MockTokenizeClient {
	m := &MockTokenizeClient{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTokenizeClient) Tokenize(
	ctx context.Context,
	envelope *tokenizationDomain.EnvelopeRequest,
) (*tokenizationDomain.TokenizationResult, error) {
	args := m.Called(ctx, envelope)
	result, _ := args.Get(0).(*tokenizationDomain.TokenizationResult)
	return result, args.Error(1)
}

// MockFormSource mocks usecase.FormSource.
type MockFormSource struct {
	mock.Mock
}

// NewMockFormSource creates a mock that asserts its expectations on cleanup.
func NewMockFormSource(t cleanupT) *MockFormSource {
	m := &MockFormSource{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockFormSource) Collect(ctx context.Context) (*tokenizationDomain.UpstreamFormData, error) {
	args := m.Called(ctx)
	form, _ := args.Get(0).(*tokenizationDomain.UpstreamFormData)
	return form, args.Error(1)
}

func (m *MockFormSource) Reset(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockTokenizationUseCase mocks usecase.TokenizationUseCase.
type MockTokenizationUseCase struct {
	mock.Mock
}

// NewMockTokenizationUseCase creates a mock that asserts its expectations on cleanup.
func NewMockTokenizationUseCase(t cleanupT) *MockTokenizationUseCase {
	m := &MockTokenizationUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTokenizationUseCase) Tokenize(
	ctx context.Context,
	form tokenizationDomain.UpstreamFormData,
) (*tokenizationDomain.TokenizationResult, error) {
	args := m.Called(ctx, form)
	result, _ := args.Get(0).(*tokenizationDomain.TokenizationResult)
	return result, args.Error(1)
}
