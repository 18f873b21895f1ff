package handlers

import (
	"encoding/json"
	"net/http"
)

// Info answers the liveness probe at the root path.
func Info(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Ecwid to PayU payment relay is running"))
}

func Health(env string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"env":    env,
		})
	}
}
