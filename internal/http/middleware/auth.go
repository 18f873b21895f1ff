package middlewarex

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

// WebhookValidator checks a provider signature header against a raw body.
type WebhookValidator interface {
	WebhookVerificationEnabled() bool
	ValidateWebhook(body []byte, header string) error
}

// WebhookAuth rejects callbacks whose signature header does not match the
// body. It is a pass-through when the validator has no key configured.
func WebhookAuth(v WebhookValidator, header string, maxBody int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !v.WebhookVerificationEnabled() {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
			if err != nil {
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
					return
				}
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}
			if err := v.ValidateWebhook(body, r.Header.Get(header)); err != nil {
				log.Ctx(r.Context()).Warn().Err(err).Msg("webhook signature rejected")
				http.Error(w, "invalid signature", http.StatusForbidden)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
