package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/seamosgenios/classcal/internal/calendar"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// fail writes the {success:false} envelope with a plain error message.
func fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   msg,
	})
}

// failFromError maps a gateway error onto the response taxonomy:
// authentication problems become 401 with a client-actionable needsAuth
// flag, unknown events become 404, everything else is a 500 carrying the
// raw message.
func failFromError(w http.ResponseWriter, err error) {
	switch {
	case calendar.IsAuthError(err):
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"success":   false,
			"error":     "No estás autenticado. Por favor inicia sesión.",
			"needsAuth": true,
		})
	case errors.Is(err, calendar.ErrEventNotFound):
		fail(w, http.StatusNotFound, "Evento no encontrado")
	default:
		fail(w, http.StatusInternalServerError, err.Error())
	}
}

// requestLogger logs one line per request in the servers' slog style.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
