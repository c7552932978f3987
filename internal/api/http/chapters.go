package http

import (
	nethttp "net/http"

	"github.com/mind-engage/mindengage-scorm/internal/course"
	"github.com/mind-engage/mindengage-scorm/internal/logger"
)

func AddChapterHandler(store course.Store, log *logger.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req course.NewChapter
		if !decode(w, r, &req) {
			return
		}
		ch, err := store.AddChapter(r.Context(), req)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusCreated, ch)
	}
}

func GetChapterHandler(store course.Store, log *logger.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "id")
		if !ok {
			return
		}
		ch, err := store.GetChapter(r.Context(), id)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, ch)
	}
}

func UpdateChapterHandler(store course.Store, log *logger.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "id")
		if !ok {
			return
		}
		var req course.ChapterPatch
		if !decode(w, r, &req) {
			return
		}
		ch, err := store.UpdateChapter(r.Context(), id, req)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, ch)
	}
}

func DeleteChapterHandler(store course.Store, log *logger.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "id")
		if !ok {
			return
		}
		if err := store.DeleteChapter(r.Context(), id); err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]bool{"ok": true})
	}
}
