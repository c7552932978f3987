package http

import (
	nethttp "net/http"

	"github.com/mind-engage/mindengage-scorm/internal/course"
	"github.com/mind-engage/mindengage-scorm/internal/logger"
)

// Handlers only; routes are mounted by Mount.

func CreateCourseHandler(store course.Store, log *logger.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req course.NewCourse
		if !decode(w, r, &req) {
			return
		}
		c, err := store.CreateCourse(r.Context(), req)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		log.Info("course created", "course_id", c.ID, "lessons", len(c.Lessons))
		writeJSON(w, nethttp.StatusCreated, c)
	}
}

func ListCoursesHandler(store course.Store, log *logger.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		list, err := store.ListCourses(r.Context())
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		if list == nil {
			list = []course.CourseSummary{}
		}
		writeJSON(w, nethttp.StatusOK, list)
	}
}

func GetCourseHandler(store course.Store, log *logger.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "id")
		if !ok {
			return
		}
		c, err := store.GetTree(r.Context(), id)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, c)
	}
}

func UpdateCourseHandler(store course.Store, log *logger.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "id")
		if !ok {
			return
		}
		var req course.CoursePatch
		if !decode(w, r, &req) {
			return
		}
		c, err := store.UpdateCourse(r.Context(), id, req)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, c)
	}
}

func DeleteCourseHandler(store course.Store, log *logger.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "id")
		if !ok {
			return
		}
		if err := store.DeleteCourse(r.Context(), id); err != nil {
			writeError(w, r, log, err)
			return
		}
		log.Info("course deleted", "course_id", id)
		writeJSON(w, nethttp.StatusOK, map[string]bool{"ok": true})
	}
}

func UpdateLessonHandler(store course.Store, log *logger.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "id")
		if !ok {
			return
		}
		var req course.LessonPatch
		if !decode(w, r, &req) {
			return
		}
		l, err := store.UpdateLesson(r.Context(), id, req)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, l)
	}
}
