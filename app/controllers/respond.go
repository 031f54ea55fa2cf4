package controllers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"portfolio/app/models"
	"portfolio/app/repositories"
)

// wantsJSON reports whether the caller should get JSON instead of a rendered page.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.URL.Path, "/api")
}

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, r *http.Request, message string, status int) {
	if wantsJSON(r) {
		sendJSON(w, status, map[string]string{"error": message})
		return
	}
	http.Error(w, message, status)
}

// fail maps a service error onto a response. Anything that is not a missing record or a
// validation problem is logged and hidden behind a 500.
func fail(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, repositories.ErrNotFound) {
		sendError(w, r, "Not found", http.StatusNotFound)
		return
	}
	if ve, ok := models.IsValidationError(err); ok {
		if wantsJSON(r) {
			sendJSON(w, http.StatusUnprocessableEntity, ve)
			return
		}
		http.Error(w, ve.Error(), http.StatusUnprocessableEntity)
		return
	}
	logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	sendError(w, r, "Internal Server Error", http.StatusInternalServerError)
}

// pageParam reads ?page=, falling back to 1 for anything that is not a positive integer.
func pageParam(r *http.Request) int {
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		return p
	}
	return 1
}
