package course

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when the addressed record does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError carries a client-facing message for rejected input.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

const (
	MinLessonCount = 1
	MaxLessonCount = 100
	DefaultQuiz    = "Quiz"
)

type Store interface {
	CreateCourse(ctx context.Context, in NewCourse) (Course, error)
	ListCourses(ctx context.Context) ([]CourseSummary, error)
	// GetTree returns the course with its whole subtree: lessons by index,
	// chapters by index, quiz questions by index, options by id.
	GetTree(ctx context.Context, id int64) (Course, error)
	UpdateCourse(ctx context.Context, id int64, p CoursePatch) (Course, error)
	DeleteCourse(ctx context.Context, id int64) error

	UpdateLesson(ctx context.Context, id int64, p LessonPatch) (Lesson, error)

	AddChapter(ctx context.Context, in NewChapter) (Chapter, error)
	GetChapter(ctx context.Context, id int64) (Chapter, error)
	UpdateChapter(ctx context.Context, id int64, p ChapterPatch) (Chapter, error)
	DeleteChapter(ctx context.Context, id int64) error

	GetOrCreateQuiz(ctx context.Context, lessonID int64, title string) (Quiz, error)
	// QuizByLesson returns (nil, nil) when the lesson has no quiz or does not exist.
	QuizByLesson(ctx context.Context, lessonID int64) (*Quiz, error)
	GetQuiz(ctx context.Context, id int64) (Quiz, error)

	AddQuestion(ctx context.Context, in NewQuestion) (Question, error)
	UpdateQuestion(ctx context.Context, id int64, p QuestionPatch) (Question, error)
	DeleteQuestion(ctx context.Context, id int64) error

	AddOption(ctx context.Context, in NewOption) (Option, error)
	UpdateOption(ctx context.Context, id int64, p OptionPatch) (Option, error)
	DeleteOption(ctx context.Context, id int64) error
}

// ---- input normalization shared by the stores ----

func normalizeNewCourse(in NewCourse) (NewCourse, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return in, invalid("title is required")
	}
	if in.LessonCount < MinLessonCount || in.LessonCount > MaxLessonCount {
		return in, invalid("lesson_count must be between %d and %d", MinLessonCount, MaxLessonCount)
	}
	return in, nil
}

// requiredPatch trims a patched text field and rejects it if it became empty.
func requiredPatch(v *string, field string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil, invalid("%s is required", field)
	}
	return &t, nil
}

func normalizeNewQuestion(in NewQuestion) (NewQuestion, error) {
	if in.Type == "" {
		in.Type = QuestionSingle
	}
	if !in.Type.Valid() {
		return in, invalid("invalid question type %q", in.Type)
	}
	in.Text = strings.TrimSpace(in.Text)
	if in.Text == "" {
		return in, invalid("question text is required")
	}
	return in, nil
}

func normalizeQuestionPatch(p QuestionPatch) (QuestionPatch, error) {
	var err error
	if p.Text, err = requiredPatch(p.Text, "question text"); err != nil {
		return p, err
	}
	if p.Type != nil && !p.Type.Valid() {
		return p, invalid("invalid question type %q", *p.Type)
	}
	return p, nil
}

func normalizeNewOption(in NewOption) (NewOption, error) {
	in.Text = strings.TrimSpace(in.Text)
	if in.Text == "" {
		return in, invalid("option text is required")
	}
	return in, nil
}

func defaultLessonTitle(i int) string { return fmt.Sprintf("Leçon %d", i) }

func quizTitle(t string) string {
	if t = strings.TrimSpace(t); t == "" {
		return DefaultQuiz
	}
	return t
}
