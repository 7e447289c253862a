/*
Package tokenization exchanges hosted-fields card data for a payment token without the
card data ever leaving the browser boundary in the clear.

# Flow

One attempt runs these stages in order, each exactly once:

  - validating: the upstream form is checked for the hosted-fields error sentinel and
    for missing fields.
  - key acquisition: POST {base}/sessions with the merchant origin returns a fresh RSA
    public key, its key id and a single-use session id.
  - encrypting: a random 32-byte key seals the canonical JSON card payload with AES-GCM
    (or ChaCha20-Poly1305) under a 12-byte nonce. The associated data is
    "sessionId|origin". The key is then wrapped with RSA-OAEP-256 and zeroed.
  - submitting: POST {base}/tokenize with {kid, iv, wrappedKey, cipherText, sessionId}
    returns {"result":{"token":...}}.

Any failure ends the attempt with a *domain.TokenizationError whose Kind names the
stage that failed. A session is never reused across attempts.

# Layout

  - domain: form, payload, session and envelope types, states and error kinds.
  - service: envelope encryption for the client and envelope opening for the issuer.
  - gateway: HTTP clients for the session and tokenize endpoints.
  - usecase: the orchestrator, single-settlement attempts and the hosted-fields facade.
  - http/dto: wire types shared by the gateway and the issuer handlers.

# Example

	orchestrator := usecase.NewOrchestrator(sessions, encryptor, client, "https://shop.example", logger)
	attempt := orchestrator.Start(ctx, form, usecase.Callbacks{
		OnSuccess: func(r *domain.TokenizationResult) { submitOrder(r.Token) },
		OnError:   func(e *domain.TokenizationError) { showError(e.Kind) },
	})
	result, err := attempt.Wait(ctx)
*/
package tokenization
