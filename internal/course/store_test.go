package course_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mind-engage/mindengage-scorm/internal/course"
	"github.com/mind-engage/mindengage-scorm/internal/db"
)

func openSQLite(t *testing.T) *course.SQLStore {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	dbh.SetMaxOpenConns(1)
	t.Cleanup(func() { dbh.Close() })
	return course.NewSQLStore(dbh, string(db.DriverSQLite))
}

func stores(t *testing.T) map[string]func(t *testing.T) course.Store {
	return map[string]func(t *testing.T) course.Store{
		"memory": func(*testing.T) course.Store { return course.NewInMemoryStore() },
		"sqlite": func(t *testing.T) course.Store { return openSQLite(t) },
	}
}

func ptr[T any](v T) *T { return &v }

func TestStore_CreateCourseSeedsLessons(t *testing.T) {
	for name, mk := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			st := mk(t)
			c, err := st.CreateCourse(ctx, course.NewCourse{Title: "  Go 101 ", LessonCount: 3, HasCertification: true})
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if c.Title != "Go 101" || c.LessonCount != 3 || !c.HasCertification {
				t.Fatalf("unexpected course: %+v", c)
			}
			if len(c.Lessons) != 3 {
				t.Fatalf("expected 3 lessons, got %d", len(c.Lessons))
			}
			for i, l := range c.Lessons {
				if l.Index != i+1 || l.Title != fmt.Sprintf("Leçon %d", i+1) {
					t.Fatalf("lesson %d: %+v", i, l)
				}
			}
			list, err := st.ListCourses(ctx)
			if err != nil || len(list) != 1 || list[0].ID != c.ID {
				t.Fatalf("list: %v %+v", err, list)
			}
		})
	}
}

func TestStore_Validation(t *testing.T) {
	for name, mk := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			st := mk(t)
			cases := []course.NewCourse{
				{Title: "   ", LessonCount: 1},
				{Title: "x", LessonCount: 0},
				{Title: "x", LessonCount: 101},
			}
			for _, in := range cases {
				if _, err := st.CreateCourse(ctx, in); !course.IsValidation(err) {
					t.Fatalf("CreateCourse(%+v) err = %v, want validation error", in, err)
				}
			}
			if _, err := st.AddChapter(ctx, course.NewChapter{LessonID: 999, Title: "x"}); !course.IsValidation(err) {
				t.Fatalf("AddChapter on missing lesson: %v", err)
			}
			if _, err := st.AddQuestion(ctx, course.NewQuestion{QuizID: 999, Text: "x"}); !course.IsValidation(err) {
				t.Fatalf("AddQuestion on missing quiz: %v", err)
			}
			if _, err := st.UpdateCourse(ctx, 999, course.CoursePatch{Title: ptr("t")}); !errors.Is(err, course.ErrNotFound) {
				t.Fatalf("UpdateCourse missing: %v", err)
			}
			if err := st.DeleteCourse(ctx, 999); !errors.Is(err, course.ErrNotFound) {
				t.Fatalf("DeleteCourse missing: %v", err)
			}
		})
	}
}

func TestStore_ChaptersAppendAfterLastIndex(t *testing.T) {
	for name, mk := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			st := mk(t)
			c, _ := st.CreateCourse(ctx, course.NewCourse{Title: "C", LessonCount: 1})
			lid := c.Lessons[0].ID

			a, err := st.AddChapter(ctx, course.NewChapter{LessonID: lid, Title: "A", HTMLContent: "<p>a</p>"})
			if err != nil {
				t.Fatalf("add: %v", err)
			}
			b, _ := st.AddChapter(ctx, course.NewChapter{LessonID: lid, Title: "B"})
			if a.Index != 1 || b.Index != 2 {
				t.Fatalf("indexes = %d,%d want 1,2", a.Index, b.Index)
			}
			if err := st.DeleteChapter(ctx, a.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			d, _ := st.AddChapter(ctx, course.NewChapter{LessonID: lid, Title: "D"})
			if d.Index != 3 {
				t.Fatalf("index after delete = %d, want 3", d.Index)
			}

			got, err := st.UpdateChapter(ctx, b.ID, course.ChapterPatch{HTMLContent: ptr(course.Fragment("<b>bold</b>"))})
			if err != nil || got.HTMLContent != "<b>bold</b>" || got.Title != "B" {
				t.Fatalf("update: %v %+v", err, got)
			}
			if _, err := st.UpdateChapter(ctx, b.ID, course.ChapterPatch{Title: ptr(" ")}); !course.IsValidation(err) {
				t.Fatalf("blank title accepted: %v", err)
			}
		})
	}
}

func TestStore_QuizTreeAndCascade(t *testing.T) {
	for name, mk := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			st := mk(t)
			c, _ := st.CreateCourse(ctx, course.NewCourse{Title: "C", LessonCount: 2})
			l2 := c.Lessons[1]

			if qz, err := st.QuizByLesson(ctx, l2.ID); err != nil || qz != nil {
				t.Fatalf("expected no quiz, got %v %+v", err, qz)
			}
			qz, err := st.GetOrCreateQuiz(ctx, l2.ID, "")
			if err != nil || qz.Title != "Quiz" {
				t.Fatalf("create quiz: %v %+v", err, qz)
			}
			again, _ := st.GetOrCreateQuiz(ctx, l2.ID, "Other")
			if again.ID != qz.ID {
				t.Fatalf("GetOrCreateQuiz not idempotent: %d vs %d", again.ID, qz.ID)
			}

			q1, err := st.AddQuestion(ctx, course.NewQuestion{QuizID: qz.ID, Text: "Q1"})
			if err != nil || q1.Type != course.QuestionSingle || q1.Index != 1 {
				t.Fatalf("add q1: %v %+v", err, q1)
			}
			q2, _ := st.AddQuestion(ctx, course.NewQuestion{QuizID: qz.ID, Text: "Q2", Type: course.QuestionMultiple})
			if q2.Index != 2 {
				t.Fatalf("q2 index = %d", q2.Index)
			}
			if _, err := st.AddQuestion(ctx, course.NewQuestion{QuizID: qz.ID, Text: "Q3", Type: "essay"}); !course.IsValidation(err) {
				t.Fatalf("invalid type accepted: %v", err)
			}
			o1, _ := st.AddOption(ctx, course.NewOption{QuestionID: q1.ID, Text: "yes", IsCorrect: true})
			o2, _ := st.AddOption(ctx, course.NewOption{QuestionID: q1.ID, Text: "no"})
			if _, err := st.AddOption(ctx, course.NewOption{QuestionID: q1.ID, Text: ""}); !course.IsValidation(err) {
				t.Fatalf("empty option accepted: %v", err)
			}
			upd, err := st.UpdateOption(ctx, o2.ID, course.OptionPatch{IsCorrect: ptr(true)})
			if err != nil || !upd.IsCorrect || upd.Text != "no" {
				t.Fatalf("update option: %v %+v", err, upd)
			}

			tree, err := st.GetTree(ctx, c.ID)
			if err != nil {
				t.Fatalf("tree: %v", err)
			}
			if tree.Lessons[0].Quiz != nil {
				t.Fatalf("lesson 1 should have no quiz")
			}
			got := tree.Lessons[1].Quiz
			if got == nil || len(got.Questions) != 2 {
				t.Fatalf("lesson 2 quiz: %+v", got)
			}
			if opts := got.Questions[0].Options; len(opts) != 2 || opts[0].ID != o1.ID || opts[1].ID != o2.ID {
				t.Fatalf("options order: %+v", opts)
			}
			if !tree.Lessons[1].HasQuiz() || tree.Lessons[0].HasQuiz() {
				t.Fatalf("HasQuiz mismatch")
			}

			if err := st.DeleteCourse(ctx, c.ID); err != nil {
				t.Fatalf("delete course: %v", err)
			}
			if _, err := st.GetQuiz(ctx, qz.ID); !errors.Is(err, course.ErrNotFound) {
				t.Fatalf("quiz survived cascade: %v", err)
			}
			if _, err := st.GetTree(ctx, c.ID); !errors.Is(err, course.ErrNotFound) {
				t.Fatalf("tree after delete: %v", err)
			}
		})
	}
}

func TestStore_UpdateCourseAndLesson(t *testing.T) {
	for name, mk := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			st := mk(t)
			c, _ := st.CreateCourse(ctx, course.NewCourse{Title: "C", LessonCount: 1})
			up, err := st.UpdateCourse(ctx, c.ID, course.CoursePatch{Title: ptr(" New "), HasCertification: ptr(true)})
			if err != nil || up.Title != "New" || !up.HasCertification {
				t.Fatalf("update course: %v %+v", err, up)
			}
			if _, err := st.UpdateCourse(ctx, c.ID, course.CoursePatch{Title: ptr("")}); !course.IsValidation(err) {
				t.Fatalf("blank title accepted: %v", err)
			}
			l, err := st.UpdateLesson(ctx, c.Lessons[0].ID, course.LessonPatch{Title: ptr("Intro")})
			if err != nil || l.Title != "Intro" || l.Index != 1 {
				t.Fatalf("update lesson: %v %+v", err, l)
			}
			if _, err := st.UpdateLesson(ctx, 999, course.LessonPatch{Title: ptr("x")}); !errors.Is(err, course.ErrNotFound) {
				t.Fatalf("update missing lesson: %v", err)
			}
		})
	}
}
