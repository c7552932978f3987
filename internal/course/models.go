package course

import "encoding/json"

// Fragment is author-supplied rich text (HTML) that is trusted as already
// sanitized. Renderers insert it verbatim; plain strings are always escaped.
type Fragment string

type QuestionType string

const (
	QuestionSingle   QuestionType = "single"   // radio: exactly one correct option expected
	QuestionMultiple QuestionType = "multiple" // checkboxes: zero or more
)

func (t QuestionType) Valid() bool {
	return t == QuestionSingle || t == QuestionMultiple
}

// Course is the root of the content tree. LessonCount is what the author
// declared at creation; it is not kept in sync with len(Lessons).
type Course struct {
	ID               int64    `json:"id" yaml:"id"`
	Title            string   `json:"title" yaml:"title"`
	LessonCount      int      `json:"lesson_count" yaml:"lesson_count"`
	HasCertification bool     `json:"has_certification" yaml:"has_certification"`
	Lessons          []Lesson `json:"lessons" yaml:"lessons"`
}

// CourseSummary is the list view of a course.
type CourseSummary struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	LessonCount      int    `json:"lesson_count"`
	HasCertification bool   `json:"has_certification"`
	CreatedAt        int64  `json:"created_at"`
	UpdatedAt        int64  `json:"updated_at"`
}

type Lesson struct {
	ID       int64     `json:"id" yaml:"id"`
	CourseID int64     `json:"course_id" yaml:"course_id"`
	Index    int       `json:"index" yaml:"index"` // 1-based, display order
	Title    string    `json:"title" yaml:"title"`
	Chapters []Chapter `json:"chapters" yaml:"chapters"`
	Quiz     *Quiz     `json:"quiz,omitempty" yaml:"quiz,omitempty"`
}

// HasQuiz reports whether the lesson has a quiz with at least one question.
// An empty quiz record does not count.
func (l Lesson) HasQuiz() bool {
	return l.Quiz != nil && len(l.Quiz.Questions) > 0
}

type Chapter struct {
	ID          int64    `json:"id" yaml:"id"`
	LessonID    int64    `json:"lesson_id" yaml:"lesson_id"`
	Index       int      `json:"index" yaml:"index"`
	Title       string   `json:"title" yaml:"title"`
	HTMLContent Fragment `json:"html_content" yaml:"html_content"`
}

type Quiz struct {
	ID        int64      `json:"id" yaml:"id"`
	LessonID  int64      `json:"lesson_id" yaml:"lesson_id"`
	Title     string     `json:"title" yaml:"title"`
	Questions []Question `json:"questions" yaml:"questions"`
}

type Question struct {
	ID      int64        `json:"id" yaml:"id"`
	QuizID  int64        `json:"quiz_id" yaml:"quiz_id"`
	Index   int          `json:"index" yaml:"index"`
	Text    string       `json:"text" yaml:"text"`
	Type    QuestionType `json:"type" yaml:"type"`
	Options []Option     `json:"options" yaml:"options"` // no ordering guarantee
}

type Option struct {
	ID         int64  `json:"id" yaml:"id"`
	QuestionID int64  `json:"question_id" yaml:"question_id"`
	Text       string `json:"text" yaml:"text"`
	IsCorrect  bool   `json:"is_correct" yaml:"is_correct"`
}

// ---- write inputs ----

type NewCourse struct {
	Title            string `json:"title"`
	LessonCount      int    `json:"lesson_count"`
	HasCertification bool   `json:"has_certification"`
}

// UnmarshalJSON defaults lesson_count to one lesson when the field is
// absent. An explicit value, zero included, is kept for validation.
func (n *NewCourse) UnmarshalJSON(b []byte) error {
	type plain NewCourse
	p := plain{LessonCount: MinLessonCount}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*n = NewCourse(p)
	return nil
}

type CoursePatch struct {
	Title            *string `json:"title,omitempty"`
	HasCertification *bool   `json:"has_certification,omitempty"`
}

type LessonPatch struct {
	Title *string `json:"title,omitempty"`
}

type NewChapter struct {
	LessonID    int64    `json:"lesson_id"`
	Title       string   `json:"title"`
	HTMLContent Fragment `json:"html_content"`
}

type ChapterPatch struct {
	Title       *string   `json:"title,omitempty"`
	HTMLContent *Fragment `json:"html_content,omitempty"`
}

type NewQuestion struct {
	QuizID int64        `json:"quiz_id"`
	Text   string       `json:"text"`
	Type   QuestionType `json:"type"`
}

type QuestionPatch struct {
	Text *string       `json:"text,omitempty"`
	Type *QuestionType `json:"type,omitempty"`
}

type NewOption struct {
	QuestionID int64  `json:"question_id"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct"`
}

type OptionPatch struct {
	Text      *string `json:"text,omitempty"`
	IsCorrect *bool   `json:"is_correct,omitempty"`
}
