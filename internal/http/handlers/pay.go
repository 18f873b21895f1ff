package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"payrelay/internal/services/payment"

	"github.com/rs/zerolog/log"
)

// SignatureHeader is the header carrying the storefront's payload signature.
const SignatureHeader = "x-ecwid-signature"

// MaxBodyBytes caps inbound payloads.
const MaxBodyBytes = 1 << 20

// Pay relays a storefront checkout to the processor and returns the buyer
// redirect URL.
func Pay(svc *payment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(w, r)
		if err != nil {
			rejectBody(w, err)
			return
		}

		out, err := svc.Checkout(r.Context(), body, r.Header.Get(SignatureHeader))
		if err != nil {
			writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
}

func rejectBody(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		return
	}
	http.Error(w, "bad request", http.StatusBadRequest)
}

// writeError maps relay failures to HTTP responses. Bodies stay generic;
// details go to the log only.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch payment.KindOf(err) {
	case payment.KindUnauthorized:
		http.Error(w, "invalid signature", http.StatusForbidden)
	case payment.KindInvalidCheckout:
		http.Error(w, "invalid order", http.StatusBadRequest)
	case payment.KindMalformedNotification:
		http.Error(w, "missing extOrderId", http.StatusBadRequest)
	case payment.KindUpstreamAuth, payment.KindUpstreamOrder:
		http.Error(w, "Payment error", http.StatusInternalServerError)
	case payment.KindDownstreamUpdate:
		http.Error(w, "Update error", http.StatusInternalServerError)
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg("unclassified error")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
