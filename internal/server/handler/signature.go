// Package handler provides the HTTP handlers for the webhook service.
package handler

import (
	"log/slog"

	"github.com/google/go-github/v73/github"
)

// SignatureVerifier validates webhook payload signatures against a shared
// secret. An empty secret disables verification entirely; that is an explicit
// operator opt-out, logged as insecure on construction and on every accepted
// delivery.
type SignatureVerifier struct {
	secret string
	logger *slog.Logger
}

// NewSignatureVerifier creates a verifier for the given shared secret.
func NewSignatureVerifier(secret string, logger *slog.Logger) *SignatureVerifier {
	if secret == "" {
		logger.Warn("webhook secret not configured, signature verification disabled (insecure mode)")
	}
	return &SignatureVerifier{secret: secret, logger: logger}
}

// Verify checks an X-Hub-Signature-256 style header value, expected in
// "<algorithm>=<hex-digest>" form, against the raw request body. The digest
// comparison is constant-time.
func (v *SignatureVerifier) Verify(payload []byte, signatureHeader string) bool {
	if v.secret == "" {
		v.logger.Warn("accepting unverified webhook payload (insecure mode)")
		return true
	}
	if signatureHeader == "" {
		return false
	}
	return github.ValidateSignature(signatureHeader, payload, []byte(v.secret)) == nil
}
