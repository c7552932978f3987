package http

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-scorm/internal/course"
	"github.com/mind-engage/mindengage-scorm/internal/export"
	"github.com/mind-engage/mindengage-scorm/internal/logger"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := course.NewInMemoryStore()
	log := logger.Nop()
	r := chi.NewRouter()
	r.Route("/api", func(ar chi.Router) {
		Mount(ar, store, &export.Service{Tree: store, Log: log}, nil, log)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any) (*nethttp.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req, _ := nethttp.NewRequest(method, srv.URL+path, rd)
	req.Header.Set("Content-Type", "application/json")
	resp, err := nethttp.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp, out
}

func decodeInto[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
	return v
}

func TestHealth(t *testing.T) {
	srv := newServer(t)
	resp, body := do(t, srv, "GET", "/api/health", nil)
	if resp.StatusCode != 200 || !strings.Contains(string(body), `"ok"`) {
		t.Fatalf("health: %d %s", resp.StatusCode, body)
	}
}

func TestCreateCourse_DefaultsToOneLesson(t *testing.T) {
	srv := newServer(t)
	resp, body := do(t, srv, "POST", "/api/courses", map[string]any{"title": "Go"})
	if resp.StatusCode != 201 {
		t.Fatalf("create: %d %s", resp.StatusCode, body)
	}
	if c := decodeInto[course.Course](t, body); c.LessonCount != 1 || len(c.Lessons) != 1 {
		t.Fatalf("course: %+v", c)
	}
}

func TestCourseCRUDAndErrors(t *testing.T) {
	srv := newServer(t)

	resp, body := do(t, srv, "POST", "/api/courses", map[string]any{"title": "Go", "lesson_count": 2})
	if resp.StatusCode != 201 {
		t.Fatalf("create: %d %s", resp.StatusCode, body)
	}
	c := decodeInto[course.Course](t, body)
	if len(c.Lessons) != 2 {
		t.Fatalf("lessons: %+v", c.Lessons)
	}

	resp, body = do(t, srv, "POST", "/api/courses", map[string]any{"title": "x", "lesson_count": 0})
	if resp.StatusCode != 400 || !strings.Contains(string(body), "lesson_count") {
		t.Fatalf("validation: %d %s", resp.StatusCode, body)
	}
	resp, _ = do(t, srv, "POST", "/api/courses", nil)
	if resp.StatusCode != 400 {
		t.Fatalf("empty body: %d", resp.StatusCode)
	}

	resp, body = do(t, srv, "GET", "/api/courses", nil)
	if list := decodeInto[[]course.CourseSummary](t, body); resp.StatusCode != 200 || len(list) != 1 {
		t.Fatalf("list: %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, srv, "PATCH", "/api/courses/"+itoa(c.ID), map[string]any{"title": "Go 2"})
	if got := decodeInto[course.Course](t, body); resp.StatusCode != 200 || got.Title != "Go 2" {
		t.Fatalf("patch: %d %s", resp.StatusCode, body)
	}
	resp, body = do(t, srv, "PATCH", "/api/lessons/"+itoa(c.Lessons[0].ID), map[string]any{"title": "Intro"})
	if got := decodeInto[course.Lesson](t, body); resp.StatusCode != 200 || got.Title != "Intro" {
		t.Fatalf("patch lesson: %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, srv, "GET", "/api/courses/999", nil)
	if resp.StatusCode != 404 || !strings.Contains(string(body), `"not found"`) {
		t.Fatalf("missing: %d %s", resp.StatusCode, body)
	}
	resp, _ = do(t, srv, "GET", "/api/courses/abc", nil)
	if resp.StatusCode != 400 {
		t.Fatalf("bad id: %d", resp.StatusCode)
	}

	resp, _ = do(t, srv, "DELETE", "/api/courses/"+itoa(c.ID), nil)
	if resp.StatusCode != 200 {
		t.Fatalf("delete: %d", resp.StatusCode)
	}
	resp, _ = do(t, srv, "GET", "/api/courses/"+itoa(c.ID), nil)
	if resp.StatusCode != 404 {
		t.Fatalf("after delete: %d", resp.StatusCode)
	}
}

// buildCourse creates a course with one chapter and a one-question quiz.
func buildCourse(t *testing.T, srv *httptest.Server) (course.Course, course.Quiz, course.Question, []course.Option) {
	t.Helper()
	_, body := do(t, srv, "POST", "/api/courses", map[string]any{"title": "A & B", "lesson_count": 1})
	c := decodeInto[course.Course](t, body)
	lid := c.Lessons[0].ID

	resp, body := do(t, srv, "POST", "/api/chapters/add", map[string]any{"lesson_id": lid, "title": "Intro", "html_content": "<b>bold</b>"})
	if resp.StatusCode != 201 {
		t.Fatalf("chapter: %d %s", resp.StatusCode, body)
	}
	_, body = do(t, srv, "POST", "/api/quizzes/create-for-lesson", map[string]any{"lesson_id": lid})
	qz := decodeInto[course.Quiz](t, body)
	_, body = do(t, srv, "POST", "/api/questions/add", map[string]any{"quiz_id": qz.ID, "text": "2+2?"})
	q := decodeInto[course.Question](t, body)
	var opts []course.Option
	for _, o := range []map[string]any{{"text": "4", "is_correct": true}, {"text": "5"}} {
		o["question_id"] = q.ID
		_, body = do(t, srv, "POST", "/api/options/add", o)
		opts = append(opts, decodeInto[course.Option](t, body))
	}
	return c, qz, q, opts
}

func TestQuizRoutesAndGrade(t *testing.T) {
	srv := newServer(t)

	_, body := do(t, srv, "POST", "/api/courses", map[string]any{"title": "Empty", "lesson_count": 1})
	empty := decodeInto[course.Course](t, body)
	_, body = do(t, srv, "GET", "/api/quizzes/by-lesson/"+itoa(empty.Lessons[0].ID), nil)
	if strings.TrimSpace(string(body)) != `{"quiz":null}` {
		t.Fatalf("no quiz: %s", body)
	}

	c, qz, q, opts := buildCourse(t, srv)
	_, body = do(t, srv, "GET", "/api/quizzes/by-lesson/"+itoa(c.Lessons[0].ID), nil)
	got := decodeInto[struct{ Quiz *course.Quiz }](t, body)
	if got.Quiz == nil || len(got.Quiz.Questions) != 1 || len(got.Quiz.Questions[0].Options) != 2 {
		t.Fatalf("by lesson: %s", body)
	}

	resp, body := do(t, srv, "POST", "/api/quizzes/"+itoa(qz.ID)+"/grade", map[string]any{
		"answers": map[string][]int64{itoa(q.ID): {opts[0].ID}},
	})
	res := decodeInto[struct {
		Correct int    `json:"correct"`
		Percent int    `json:"percent"`
		Passed  bool   `json:"passed"`
		Status  string `json:"status"`
	}](t, body)
	if resp.StatusCode != 200 || res.Correct != 1 || res.Percent != 100 || !res.Passed || res.Status != "passed" {
		t.Fatalf("grade: %d %s", resp.StatusCode, body)
	}
	_, body = do(t, srv, "POST", "/api/quizzes/"+itoa(qz.ID)+"/grade", map[string]any{
		"answers": map[string][]int64{itoa(q.ID): {opts[1].ID}},
	})
	if !strings.Contains(string(body), `"status":"failed"`) {
		t.Fatalf("wrong answer: %s", body)
	}

	resp, _ = do(t, srv, "PATCH", "/api/questions/"+itoa(q.ID), map[string]any{"type": "essay"})
	if resp.StatusCode != 400 {
		t.Fatalf("bad type: %d", resp.StatusCode)
	}
	resp, _ = do(t, srv, "PATCH", "/api/options/"+itoa(opts[1].ID), map[string]any{"is_correct": true})
	if resp.StatusCode != 200 {
		t.Fatalf("patch option: %d", resp.StatusCode)
	}
	resp, _ = do(t, srv, "DELETE", "/api/options/"+itoa(opts[1].ID), nil)
	if resp.StatusCode != 200 {
		t.Fatalf("delete option: %d", resp.StatusCode)
	}
	resp, _ = do(t, srv, "DELETE", "/api/questions/"+itoa(q.ID), nil)
	if resp.StatusCode != 200 {
		t.Fatalf("delete question: %d", resp.StatusCode)
	}
	resp, _ = do(t, srv, "POST", "/api/questions/add", map[string]any{"quiz_id": 999, "text": "x"})
	if resp.StatusCode != 400 {
		t.Fatalf("orphan question: %d", resp.StatusCode)
	}
}

func TestChapterRoutes(t *testing.T) {
	srv := newServer(t)
	c, _, _, _ := buildCourse(t, srv)
	_, body := do(t, srv, "GET", "/api/courses/"+itoa(c.ID), nil)
	tree := decodeInto[course.Course](t, body)
	ch := tree.Lessons[0].Chapters[0]

	resp, body := do(t, srv, "GET", "/api/chapters/"+itoa(ch.ID), nil)
	if got := decodeInto[course.Chapter](t, body); resp.StatusCode != 200 || got.HTMLContent != "<b>bold</b>" {
		t.Fatalf("get chapter: %d %s", resp.StatusCode, body)
	}
	resp, body = do(t, srv, "PATCH", "/api/chapters/"+itoa(ch.ID), map[string]any{"title": "Renamed"})
	if got := decodeInto[course.Chapter](t, body); resp.StatusCode != 200 || got.Title != "Renamed" {
		t.Fatalf("patch chapter: %d %s", resp.StatusCode, body)
	}
	resp, _ = do(t, srv, "DELETE", "/api/chapters/"+itoa(ch.ID), nil)
	if resp.StatusCode != 200 {
		t.Fatalf("delete chapter: %d", resp.StatusCode)
	}
	resp, _ = do(t, srv, "GET", "/api/chapters/"+itoa(ch.ID), nil)
	if resp.StatusCode != 404 {
		t.Fatalf("deleted chapter: %d", resp.StatusCode)
	}
}

func TestExportSCORM(t *testing.T) {
	srv := newServer(t)
	c, _, _, _ := buildCourse(t, srv)

	resp, body := do(t, srv, "GET", "/api/export/scorm/"+itoa(c.ID), nil)
	if resp.StatusCode != 200 {
		t.Fatalf("export: %d %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("content type %q", ct)
	}
	want := `attachment; filename="course-` + itoa(c.ID) + `-scorm.zip"`
	if cd := resp.Header.Get("Content-Disposition"); cd != want {
		t.Fatalf("disposition %q", cd)
	}
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	if len(zr.File) != 5 {
		t.Fatalf("entries: %d", len(zr.File))
	}

	etag := resp.Header.Get("ETag")
	req, _ := nethttp.NewRequest("GET", srv.URL+"/api/export/scorm/"+itoa(c.ID), nil)
	req.Header.Set("If-None-Match", etag)
	again, err := nethttp.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("conditional: %v", err)
	}
	again.Body.Close()
	if again.StatusCode != nethttp.StatusNotModified {
		t.Fatalf("If-None-Match: %d", again.StatusCode)
	}

	resp, _ = do(t, srv, "GET", "/api/export/scorm/999", nil)
	if resp.StatusCode != 404 {
		t.Fatalf("missing course export: %d", resp.StatusCode)
	}
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
