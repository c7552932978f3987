package http

import (
	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-scorm/internal/course"
	"github.com/mind-engage/mindengage-scorm/internal/export"
	"github.com/mind-engage/mindengage-scorm/internal/logger"
)

// Mount registers the JSON API under r (normally at /api).
func Mount(r chi.Router, store course.Store, svc *export.Service, events EventFeed, log *logger.Logger) {
	r.Get("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/courses", func(cr chi.Router) {
		cr.Post("/", CreateCourseHandler(store, log))
		cr.Get("/", ListCoursesHandler(store, log))
		cr.Get("/{id}", GetCourseHandler(store, log))
		cr.Patch("/{id}", UpdateCourseHandler(store, log))
		cr.Delete("/{id}", DeleteCourseHandler(store, log))
	})

	r.Patch("/lessons/{id}", UpdateLessonHandler(store, log))

	r.Route("/chapters", func(cr chi.Router) {
		cr.Post("/add", AddChapterHandler(store, log))
		cr.Get("/{id}", GetChapterHandler(store, log))
		cr.Patch("/{id}", UpdateChapterHandler(store, log))
		cr.Delete("/{id}", DeleteChapterHandler(store, log))
	})

	r.Route("/quizzes", func(qr chi.Router) {
		qr.Post("/create-for-lesson", CreateQuizForLessonHandler(store, log))
		qr.Get("/by-lesson/{lessonID}", QuizByLessonHandler(store, log))
		qr.Post("/{quizID}/grade", GradeQuizHandler(store, log))
	})

	r.Route("/questions", func(qr chi.Router) {
		qr.Post("/add", AddQuestionHandler(store, log))
		qr.Patch("/{id}", UpdateQuestionHandler(store, log))
		qr.Delete("/{id}", DeleteQuestionHandler(store, log))
	})

	r.Route("/options", func(or chi.Router) {
		or.Post("/add", AddOptionHandler(store, log))
		or.Patch("/{id}", UpdateOptionHandler(store, log))
		or.Delete("/{id}", DeleteOptionHandler(store, log))
	})

	r.Get("/export/scorm/{courseID}", ExportSCORMHandler(svc, log))
	r.Get("/events", ListEventsHandler(events, log))
}
