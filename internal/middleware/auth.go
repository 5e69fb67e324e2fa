// file: internal/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"

	"github.com/mcpcore/mcpcore/internal/mcperr"
)

// credentialsKey is the context key under which an inbound bearer token is
// stashed by whatever wires up the transport (e.g. an HTTP-framing layer
// reading an Authorization header). The endpoint core is transport-agnostic
// and never populates this itself.
type credentialsKey struct{}

// WithCredentials attaches a bearer token to ctx for AuthHook to read.
func WithCredentials(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, credentialsKey{}, token)
}

// credentialsFromContext returns the bearer token stashed by WithCredentials
// and whether one was present at all.
func credentialsFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(credentialsKey{}).(string)
	return token, ok
}

// AuthConfig configures AuthHook.
type AuthConfig struct {
	// APIKeys is the set of tokens accepted verbatim.
	APIKeys []string
	// AllowAnonymous permits requests that carry no credentials at all.
	AllowAnonymous bool
	// CustomValidator, if set, is consulted instead of APIKeys.
	CustomValidator func(token string) error
	// OnReject, if set, is called once per rejected request (e.g. to feed a
	// metrics counter). Never called on success.
	OnReject func()
}

// AuthHook rejects requests whose bearer token doesn't match APIKeys or pass
// CustomValidator, unless AllowAnonymous permits the absence of credentials.
type AuthHook struct {
	config AuthConfig
}

// NewAuthHook builds an AuthHook from config.
func NewAuthHook(config AuthConfig) *AuthHook {
	return &AuthHook{config: config}
}

// PreDispatch implements Hook.
func (h *AuthHook) PreDispatch(ctx context.Context, _ string, _ json.RawMessage) error {
	token, present := credentialsFromContext(ctx)
	if !present {
		if h.config.AllowAnonymous {
			return nil
		}
		return h.reject("missing credentials")
	}

	if h.config.CustomValidator != nil {
		if err := h.config.CustomValidator(token); err != nil {
			return h.reject(err.Error())
		}
		return nil
	}

	for _, key := range h.config.APIKeys {
		if key == token {
			return nil
		}
	}
	return h.reject("credential mismatch")
}

func (h *AuthHook) reject(reason string) error {
	if h.config.OnReject != nil {
		h.config.OnReject()
	}
	return mcperr.NewPermissionDenied(reason)
}
