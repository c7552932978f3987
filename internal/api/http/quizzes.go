package http

import (
	nethttp "net/http"

	"github.com/mind-engage/mindengage-scorm/internal/course"
	"github.com/mind-engage/mindengage-scorm/internal/grading"
	"github.com/mind-engage/mindengage-scorm/internal/logger"
	"github.com/mind-engage/mindengage-scorm/internal/scorm/hostapi"
)

func CreateQuizForLessonHandler(store course.Store, log *logger.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req struct {
			LessonID int64  `json:"lesson_id"`
			Title    string `json:"title"`
		}
		if !decode(w, r, &req) {
			return
		}
		qz, err := store.GetOrCreateQuiz(r.Context(), req.LessonID, req.Title)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, qz)
	}
}

// QuizByLessonHandler answers {"quiz": null} when the lesson has no quiz.
func QuizByLessonHandler(store course.Store, log *logger.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "lessonID")
		if !ok {
			return
		}
		qz, err := store.QuizByLesson(r.Context(), id)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]*course.Quiz{"quiz": qz})
	}
}

// GradeQuizHandler previews how the packaged quiz page would grade a set of
// answers. Nothing is stored.
func GradeQuizHandler(store course.Store, log *logger.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "quizID")
		if !ok {
			return
		}
		var req struct {
			Answers map[int64][]int64 `json:"answers"`
		}
		if !decode(w, r, &req) {
			return
		}
		qz, err := store.GetQuiz(r.Context(), id)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		s := grading.NewSession(qz, nil)
		for qid, opts := range req.Answers {
			for _, oid := range opts {
				s.Select(qid, oid, true)
			}
		}
		writeJSON(w, nethttp.StatusOK, s.Grade(hostapi.NewShim(nil)))
	}
}

func AddQuestionHandler(store course.Store, log *logger.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req course.NewQuestion
		if !decode(w, r, &req) {
			return
		}
		q, err := store.AddQuestion(r.Context(), req)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusCreated, q)
	}
}

func UpdateQuestionHandler(store course.Store, log *logger.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "id")
		if !ok {
			return
		}
		var req course.QuestionPatch
		if !decode(w, r, &req) {
			return
		}
		q, err := store.UpdateQuestion(r.Context(), id, req)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, q)
	}
}

func DeleteQuestionHandler(store course.Store, log *logger.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "id")
		if !ok {
			return
		}
		if err := store.DeleteQuestion(r.Context(), id); err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]bool{"ok": true})
	}
}

func AddOptionHandler(store course.Store, log *logger.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req course.NewOption
		if !decode(w, r, &req) {
			return
		}
		o, err := store.AddOption(r.Context(), req)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusCreated, o)
	}
}

func UpdateOptionHandler(store course.Store, log *logger.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "id")
		if !ok {
			return
		}
		var req course.OptionPatch
		if !decode(w, r, &req) {
			return
		}
		o, err := store.UpdateOption(r.Context(), id, req)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, o)
	}
}

func DeleteOptionHandler(store course.Store, log *logger.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "id")
		if !ok {
			return
		}
		if err := store.DeleteOption(r.Context(), id); err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]bool{"ok": true})
	}
}
