package http

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-scorm/internal/course"
	"github.com/mind-engage/mindengage-scorm/internal/export"
	"github.com/mind-engage/mindengage-scorm/internal/logger"
	syncx "github.com/mind-engage/mindengage-scorm/internal/sync"
)

type fakeFeed struct {
	after int64
	limit int
	err   error
}

func (f *fakeFeed) Since(_ context.Context, after int64, limit int) ([]syncx.Event, error) {
	f.after, f.limit = after, limit
	if f.err != nil {
		return nil, f.err
	}
	return []syncx.Event{{Offset: after + 1, Type: syncx.TypeCourseExported, Key: "7"}}, nil
}

func newServerWithFeed(t *testing.T, feed EventFeed) *httptest.Server {
	t.Helper()
	store := course.NewInMemoryStore()
	log := logger.Nop()
	r := chi.NewRouter()
	r.Route("/api", func(ar chi.Router) {
		Mount(ar, store, &export.Service{Tree: store, Log: log}, feed, log)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestListEvents(t *testing.T) {
	feed := &fakeFeed{}
	srv := newServerWithFeed(t, feed)

	resp, body := do(t, srv, "GET", "/api/events?after=4&limit=10", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("events: %d %s", resp.StatusCode, body)
	}
	list := decodeInto[[]syncx.Event](t, body)
	if len(list) != 1 || list[0].Offset != 5 || list[0].Key != "7" {
		t.Fatalf("list: %+v", list)
	}
	if feed.after != 4 || feed.limit != 10 {
		t.Fatalf("feed called with after=%d limit=%d", feed.after, feed.limit)
	}

	if resp, _ := do(t, srv, "GET", "/api/events?after=x", nil); resp.StatusCode != 400 {
		t.Fatalf("bad after: %d", resp.StatusCode)
	}
	if resp, _ := do(t, srv, "GET", "/api/events?after=-1", nil); resp.StatusCode != 400 {
		t.Fatalf("negative after: %d", resp.StatusCode)
	}

	feed.err = errors.New("db down")
	if resp, _ := do(t, srv, "GET", "/api/events", nil); resp.StatusCode != 500 {
		t.Fatalf("feed error: %d", resp.StatusCode)
	}
}

func TestListEvents_NoFeed(t *testing.T) {
	srv := newServerWithFeed(t, nil)
	resp, body := do(t, srv, "GET", "/api/events", nil)
	if resp.StatusCode != 200 || string(body) != "[]\n" {
		t.Fatalf("events: %d %q", resp.StatusCode, body)
	}
}
