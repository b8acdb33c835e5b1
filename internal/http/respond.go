package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/trananhvu/shoe-catalog/internal/http/apierr"
)

func respondJSON(log *slog.Logger, w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.ErrorContext(r.Context(), "error encoding response", slog.Any("error", err))
	}
}

func respondError(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	log.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.ErrorContext(r.Context(), "error encoding error response", slog.Any("error", err))
	}
}
