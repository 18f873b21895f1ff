package handlers

import (
	"net/http"

	"payrelay/internal/domain/notification"
	"payrelay/internal/services/payment"

	"github.com/rs/zerolog/log"
)

// Notify receives PayU status callbacks. Any non-2xx answer makes PayU
// re-deliver the notification.
func Notify(svc *payment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(w, r)
		if err != nil {
			rejectBody(w, err)
			return
		}

		n, err := notification.Parse(body)
		if err != nil {
			log.Ctx(r.Context()).Warn().Err(err).Msg("undecodable notification")
			http.Error(w, "bad payload", http.StatusBadRequest)
			return
		}

		if err := svc.Notify(r.Context(), n); err != nil {
			writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}
