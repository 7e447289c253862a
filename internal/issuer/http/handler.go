package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/cardtoken/internal/httputil"
	issuerUseCase "github.com/allisson/cardtoken/internal/issuer/usecase"
	"github.com/allisson/cardtoken/internal/tokenization/http/dto"
	customValidation "github.com/allisson/cardtoken/internal/validation"
)

// IssuerHandler handles the session and tokenize endpoints.
type IssuerHandler struct {
	issuerUseCase issuerUseCase.IssuerUseCase
	logger        *slog.Logger
}

// NewIssuerHandler creates a new issuer handler.
func NewIssuerHandler(useCase issuerUseCase.IssuerUseCase, logger *slog.Logger) *IssuerHandler {
	return &IssuerHandler{
		issuerUseCase: useCase,
		logger:        logger,
	}
}

// CreateSessionHandler mints session key material for an origin.
// POST /v1/sessions - Returns 201 Created with keyId, publicKeyPem and sessionId.
func (h *IssuerHandler) CreateSessionHandler(c *gin.Context) {
	var req dto.CreateSessionRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	key, err := h.issuerUseCase.CreateSession(c.Request.Context(), req.Origin)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	expiresAt := key.Session.ExpiresAt
	c.JSON(http.StatusCreated, dto.CreateSessionResponse{
		KeyID:        key.Session.KeyID,
		PublicKeyPEM: key.PublicKeyPEM,
		SessionID:    key.Session.ID,
		ExpiresAt:    &expiresAt,
	})
}

// TokenizeHandler exchanges a sealed envelope for a payment token.
// POST /v1/tokenize - Returns 200 OK with {"result":{"token":...}}.
func (h *IssuerHandler) TokenizeHandler(c *gin.Context) {
	var req dto.TokenizeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	token, err := h.issuerUseCase.Tokenize(c.Request.Context(), req.ToEnvelope())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewTokenizeResponse(token))
}
