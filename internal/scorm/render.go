package scorm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/mind-engage/mindengage-scorm/internal/course"
	"github.com/mind-engage/mindengage-scorm/internal/grading"
	"github.com/mind-engage/mindengage-scorm/internal/scorm/hostapi"
)

const pageStyle = `
body{font-family:system-ui,-apple-system,"Segoe UI",Roboto,sans-serif;margin:0 auto;max-width:860px;padding:24px;color:#1f2933}
h1{font-size:1.6em}h2{font-size:1.25em}
.card{border:1px solid #d9e2ec;border-radius:8px;padding:16px;margin:16px 0;background:#fff}
.nav{margin-bottom:12px}
.btn{display:inline-block;padding:6px 12px;border:1px solid #334e68;border-radius:6px;background:#f0f4f8;color:#102a43;text-decoration:none;cursor:pointer}
.meta{color:#627d98}
.question{margin-bottom:14px}.prompt{font-weight:600;margin-bottom:6px}
.questions,.options{list-style:none;padding-left:0}.option{padding:2px 0}
.hint{font-weight:400;color:#627d98}
.good{color:#2f8132}.bad{color:#b42318}.mark{font-size:.85em}
`

var (
	indexTmpl = template.Must(template.New(IndexFile).Parse(`<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8" />
<title>{{.Title}} — Sommaire</title>
<style>{{.Style}}</style>
<script src="{{.Shim}}"></script>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Nombre de leçons : {{.LessonCount}}{{if .Certification}} • Certification{{end}}</p>
<div class="card">
<h2>Sommaire</h2>
<ol>
{{- range .Lessons}}
<li><b>Leçon {{.Index}} — {{.Title}}</b>
<ul>
{{- range .Chapters}}
<li><a href="{{.Href}}">Chapitre {{.Index}} : {{.Title}}</a></li>
{{- end}}
{{- if .QuizHref}}
<li><a href="{{.QuizHref}}">Quiz de la leçon</a></li>
{{- end}}
</ul>
</li>
{{- end}}
</ol>
</div>
<script>
ScormApi.init();
</script>
</body>
</html>
`))

	chapterTmpl = template.Must(template.New("chapter").Parse(`<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8" />
<title>{{.CourseTitle}} — Leçon {{.LessonIndex}} — Chapitre {{.Index}}</title>
<style>{{.Style}}</style>
<script src="{{.Shim}}"></script>
</head>
<body>
<div class="nav"><a class="btn" href="{{.Home}}">← Sommaire</a></div>
<h1>Leçon {{.LessonIndex}} — {{.LessonTitle}}</h1>
<h2>Chapitre {{.Index}} — {{.Title}}</h2>
<div class="card">
{{.Body}}
</div>
<script>
ScormApi.init();
ScormApi.set({{.StatusKey}}, {{.Status}});
ScormApi.commit();
</script>
</body>
</html>
`))

	quizTmpl = template.Must(template.New("quiz").Parse(`<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8" />
<title>{{.CourseTitle}} — Leçon {{.LessonIndex}} — {{.Title}}</title>
<style>{{.Style}}</style>
<script src="{{.Shim}}"></script>
</head>
<body>
<div class="nav"><a class="btn" href="{{.Home}}">← Sommaire</a></div>
<h1>Quiz de la leçon {{.LessonIndex}} — {{.LessonTitle}}</h1>
<h2>{{.Title}}</h2>
<div id="app" class="card"></div>
<script>
var QUESTIONS = {{.Questions}};
var PASS = {{.Pass}};
</script>
<script>
{{.Player}}
</script>
</body>
</html>
`))
)

type indexView struct {
	Title         string
	LessonCount   int
	Certification bool
	Lessons       []lessonLink
	Style         template.CSS
	Shim          string
}

type lessonLink struct {
	Index    int
	Title    string
	Chapters []chapterLink
	QuizHref string
}

type chapterLink struct {
	Index int
	Title string
	Href  string
}

type chapterView struct {
	CourseTitle string
	LessonIndex int
	LessonTitle string
	Index       int
	Title       string
	Body        template.HTML
	StatusKey   string
	Status      string
	Home        string
	Style       template.CSS
	Shim        string
}

type quizView struct {
	CourseTitle string
	LessonIndex int
	LessonTitle string
	Title       string
	Questions   template.JS
	Pass        float64
	Player      template.JS
	Home        string
	Style       template.CSS
	Shim        string
}

// quizQuestion is the data handed to the client-side player.
type quizQuestion struct {
	ID      int64        `json:"id"`
	Index   int          `json:"index"`
	Text    string       `json:"text"`
	Type    string       `json:"type"`
	Options []quizOption `json:"options"`
}

type quizOption struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// RenderIndex renders the table of contents. Every lesson is listed, with
// its chapters in order and a quiz link only when the quiz has questions.
func RenderIndex(c course.Course) ([]byte, error) {
	v := indexView{
		Title:         c.Title,
		LessonCount:   c.LessonCount,
		Certification: c.HasCertification,
		Style:         pageStyle,
		Shim:          ShimFile,
	}
	for _, l := range c.Lessons {
		ll := lessonLink{Index: l.Index, Title: l.Title}
		for _, ch := range l.Chapters {
			ll.Chapters = append(ll.Chapters, chapterLink{Index: ch.Index, Title: ch.Title, Href: ChapterFile(l.ID, ch.ID)})
		}
		if l.HasQuiz() {
			ll.QuizHref = QuizFile(l.ID)
		}
		v.Lessons = append(v.Lessons, ll)
	}
	return execute(indexTmpl, v)
}

// RenderChapter renders one chapter page. The chapter body is authored HTML
// and is emitted verbatim; every title is escaped.
func RenderChapter(c course.Course, l course.Lesson, ch course.Chapter) ([]byte, error) {
	return execute(chapterTmpl, chapterView{
		CourseTitle: c.Title,
		LessonIndex: l.Index,
		LessonTitle: l.Title,
		Index:       ch.Index,
		Title:       ch.Title,
		Body:        authored(ch.HTMLContent),
		StatusKey:   hostapi.KeyLessonStatus,
		Status:      hostapi.StatusIncomplete,
		Home:        IndexFile,
		Style:       pageStyle,
		Shim:        ShimFile,
	})
}

// RenderQuiz renders the quiz page of a lesson. Callers skip lessons whose
// quiz has no questions.
func RenderQuiz(c course.Course, l course.Lesson) ([]byte, error) {
	if !l.HasQuiz() {
		return nil, fmt.Errorf("lesson %d has no quiz questions", l.ID)
	}
	payload, err := quizPayload(*l.Quiz)
	if err != nil {
		return nil, err
	}
	return execute(quizTmpl, quizView{
		CourseTitle: c.Title,
		LessonIndex: l.Index,
		LessonTitle: l.Title,
		Title:       l.Quiz.Title,
		Questions:   template.JS(payload),
		Pass:        grading.PassThreshold,
		Player:      template.JS(quizJS),
		Home:        IndexFile,
		Style:       pageStyle,
		Shim:        ShimFile,
	})
}

// quizPayload is the QUESTIONS array handed to the quiz player.
func quizPayload(qz course.Quiz) ([]byte, error) {
	qs := make([]quizQuestion, 0, len(qz.Questions))
	for _, q := range qz.Questions {
		qq := quizQuestion{ID: q.ID, Index: q.Index, Text: q.Text, Type: string(q.Type), Options: make([]quizOption, 0, len(q.Options))}
		for _, o := range q.Options {
			qq.Options = append(qq.Options, quizOption{ID: o.ID, Text: o.Text, IsCorrect: o.IsCorrect})
		}
		qs = append(qs, qq)
	}
	return json.Marshal(qs)
}

// authored is the single place where stored chapter HTML is trusted.
func authored(f course.Fragment) template.HTML { return template.HTML(f) }

func execute(t *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
