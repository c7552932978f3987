package http

import (
	"encoding/json"
	"errors"
	nethttp "net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mind-engage/mindengage-scorm/internal/course"
	"github.com/mind-engage/mindengage-scorm/internal/logger"
)

func writeJSON(w nethttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorBody(msg string) map[string]string { return map[string]string{"error": msg} }

// writeError maps store outcomes to responses: ErrNotFound is 404, a
// ValidationError is 400 with its message, anything else is logged and
// reported as 500 without detail.
func writeError(w nethttp.ResponseWriter, r *nethttp.Request, log *logger.Logger, err error) {
	var v *course.ValidationError
	switch {
	case errors.Is(err, course.ErrNotFound):
		writeJSON(w, nethttp.StatusNotFound, errorBody("not found"))
	case errors.As(err, &v):
		writeJSON(w, nethttp.StatusBadRequest, errorBody(v.Msg))
	default:
		log.Error("request failed", "err", err, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()))
		writeJSON(w, nethttp.StatusInternalServerError, errorBody("internal error"))
	}
}

// decode reads a JSON body into dst, answering 400 itself on failure.
func decode(w nethttp.ResponseWriter, r *nethttp.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, nethttp.StatusBadRequest, errorBody("bad json"))
		return false
	}
	return true
}

// idParam parses a positive integer URL parameter, answering 400 itself
// when it is malformed.
func idParam(w nethttp.ResponseWriter, r *nethttp.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, nethttp.StatusBadRequest, errorBody("invalid "+name))
		return 0, false
	}
	return id, true
}
