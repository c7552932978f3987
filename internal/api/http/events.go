package http

import (
	"context"
	nethttp "net/http"
	"strconv"

	"github.com/mind-engage/mindengage-scorm/internal/logger"
	syncx "github.com/mind-engage/mindengage-scorm/internal/sync"
)

// EventFeed reads the export event log in offset order.
type EventFeed interface {
	Since(ctx context.Context, after int64, limit int) ([]syncx.Event, error)
}

// GET /events?after=0&limit=100
// A nil feed (no database configured) answers with an empty list.
func ListEventsHandler(feed EventFeed, log *logger.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		q := r.URL.Query()
		after, err := parseIntDefault(q.Get("after"), 0)
		if err != nil || after < 0 {
			writeJSON(w, nethttp.StatusBadRequest, errorBody("invalid after"))
			return
		}
		limit, err := parseIntDefault(q.Get("limit"), 100)
		if err != nil {
			writeJSON(w, nethttp.StatusBadRequest, errorBody("invalid limit"))
			return
		}
		list := []syncx.Event{}
		if feed != nil {
			got, err := feed.Since(r.Context(), after, int(limit))
			if err != nil {
				writeError(w, r, log, err)
				return
			}
			if got != nil {
				list = got
			}
		}
		writeJSON(w, nethttp.StatusOK, list)
	}
}

func parseIntDefault(s string, def int64) (int64, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
