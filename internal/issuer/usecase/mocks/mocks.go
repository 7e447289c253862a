// Package mocks provides testify mocks for the issuer use case.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	issuerUseCase "github.com/allisson/cardtoken/internal/issuer/usecase"
	tokenizationDomain "github.com/allisson/cardtoken/internal/tokenization/domain"
)

// MockIssuerUseCase mocks usecase.IssuerUseCase.
type MockIssuerUseCase struct {
	mock.Mock
}

// NewMockIssuerUseCase creates a mock that asserts its expectations on cleanup.
func NewMockIssuerUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockIssuerUseCase {
	m := &MockIssuerUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockIssuerUseCase) CreateSession(ctx context.Context, origin string) (*issuerUseCase.SessionKey, error) {
	args := m.Called(ctx, origin)
	key, _ := args.Get(0).(*issuerUseCase.SessionKey)
	return key, args.Error(1)
}

func (m *MockIssuerUseCase) Tokenize(ctx context.Context, envelope *tokenizationDomain.EnvelopeRequest) (string, error) {
	args := m.Called(ctx, envelope)
	return args.String(0), args.Error(1)
}

func (m *MockIssuerUseCase) Ready(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
