package course

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// memoryStore keeps flat tables keyed by id and assembles trees on read.
type memoryStore struct {
	mu  sync.RWMutex
	seq int64
	now func() time.Time

	courses   map[int64]CourseSummary
	lessons   map[int64]Lesson
	chapters  map[int64]Chapter
	quizzes   map[int64]Quiz
	questions map[int64]Question
	options   map[int64]Option
}

func NewInMemoryStore() Store {
	return &memoryStore{
		now:       time.Now,
		courses:   map[int64]CourseSummary{},
		lessons:   map[int64]Lesson{},
		chapters:  map[int64]Chapter{},
		quizzes:   map[int64]Quiz{},
		questions: map[int64]Question{},
		options:   map[int64]Option{},
	}
}

func (m *memoryStore) nextID() int64 {
	m.seq++
	return m.seq
}

func (m *memoryStore) CreateCourse(_ context.Context, in NewCourse) (Course, error) {
	in, err := normalizeNewCourse(in)
	if err != nil {
		return Course{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ts := m.now().Unix()
	c := CourseSummary{ID: m.nextID(), Title: in.Title, LessonCount: in.LessonCount,
		HasCertification: in.HasCertification, CreatedAt: ts, UpdatedAt: ts}
	m.courses[c.ID] = c
	for i := 1; i <= in.LessonCount; i++ {
		l := Lesson{ID: m.nextID(), CourseID: c.ID, Index: i, Title: defaultLessonTitle(i)}
		m.lessons[l.ID] = l
	}
	return m.treeLocked(c.ID)
}

func (m *memoryStore) ListCourses(_ context.Context) ([]CourseSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]CourseSummary, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *memoryStore) GetTree(_ context.Context, id int64) (Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.treeLocked(id)
}

func (m *memoryStore) treeLocked(id int64) (Course, error) {
	cs, ok := m.courses[id]
	if !ok {
		return Course{}, ErrNotFound
	}
	c := Course{ID: cs.ID, Title: cs.Title, LessonCount: cs.LessonCount, HasCertification: cs.HasCertification}
	for _, l := range m.lessons {
		if l.CourseID != id {
			continue
		}
		l.Chapters = nil
		for _, ch := range m.chapters {
			if ch.LessonID == l.ID {
				l.Chapters = append(l.Chapters, ch)
			}
		}
		sort.Slice(l.Chapters, func(i, j int) bool {
			return byIndex(l.Chapters[i].Index, l.Chapters[i].ID, l.Chapters[j].Index, l.Chapters[j].ID)
		})
		if qz, ok := m.quizOfLessonLocked(l.ID); ok {
			full := m.quizLocked(qz)
			l.Quiz = &full
		}
		c.Lessons = append(c.Lessons, l)
	}
	sort.Slice(c.Lessons, func(i, j int) bool {
		return byIndex(c.Lessons[i].Index, c.Lessons[i].ID, c.Lessons[j].Index, c.Lessons[j].ID)
	})
	return c, nil
}

func byIndex(ai int, aid int64, bi int, bid int64) bool {
	if ai != bi {
		return ai < bi
	}
	return aid < bid
}

func (m *memoryStore) quizOfLessonLocked(lessonID int64) (Quiz, bool) {
	for _, q := range m.quizzes {
		if q.LessonID == lessonID {
			return q, true
		}
	}
	return Quiz{}, false
}

func (m *memoryStore) quizLocked(qz Quiz) Quiz {
	qz.Questions = nil
	for _, q := range m.questions {
		if q.QuizID == qz.ID {
			qz.Questions = append(qz.Questions, m.questionLocked(q))
		}
	}
	sort.Slice(qz.Questions, func(i, j int) bool {
		return byIndex(qz.Questions[i].Index, qz.Questions[i].ID, qz.Questions[j].Index, qz.Questions[j].ID)
	})
	return qz
}

func (m *memoryStore) questionLocked(q Question) Question {
	q.Options = nil
	for _, o := range m.options {
		if o.QuestionID == q.ID {
			q.Options = append(q.Options, o)
		}
	}
	sort.Slice(q.Options, func(i, j int) bool { return q.Options[i].ID < q.Options[j].ID })
	return q
}

func (m *memoryStore) UpdateCourse(_ context.Context, id int64, p CoursePatch) (Course, error) {
	title, err := requiredPatch(p.Title, "title")
	if err != nil {
		return Course{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[id]
	if !ok {
		return Course{}, ErrNotFound
	}
	changed := false
	if title != nil && *title != c.Title {
		c.Title, changed = *title, true
	}
	if p.HasCertification != nil && *p.HasCertification != c.HasCertification {
		c.HasCertification, changed = *p.HasCertification, true
	}
	if changed {
		c.UpdatedAt = m.now().Unix()
		m.courses[id] = c
	}
	return m.treeLocked(id)
}

func (m *memoryStore) DeleteCourse(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[id]; !ok {
		return ErrNotFound
	}
	delete(m.courses, id)
	for lid, l := range m.lessons {
		if l.CourseID == id {
			m.deleteLessonLocked(lid)
		}
	}
	return nil
}

func (m *memoryStore) deleteLessonLocked(id int64) {
	delete(m.lessons, id)
	for cid, ch := range m.chapters {
		if ch.LessonID == id {
			delete(m.chapters, cid)
		}
	}
	for qid, qz := range m.quizzes {
		if qz.LessonID == id {
			delete(m.quizzes, qid)
			for questionID, q := range m.questions {
				if q.QuizID == qid {
					m.deleteQuestionLocked(questionID)
				}
			}
		}
	}
}

func (m *memoryStore) deleteQuestionLocked(id int64) {
	delete(m.questions, id)
	for oid, o := range m.options {
		if o.QuestionID == id {
			delete(m.options, oid)
		}
	}
}

func (m *memoryStore) UpdateLesson(_ context.Context, id int64, p LessonPatch) (Lesson, error) {
	title, err := requiredPatch(p.Title, "lesson title")
	if err != nil {
		return Lesson{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lessons[id]
	if !ok {
		return Lesson{}, ErrNotFound
	}
	if title != nil {
		l.Title = *title
		m.lessons[id] = l
	}
	return l, nil
}

func (m *memoryStore) AddChapter(_ context.Context, in NewChapter) (Chapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lessons[in.LessonID]; !ok {
		return Chapter{}, invalid("lesson not found")
	}
	next := 0
	for _, ch := range m.chapters {
		if ch.LessonID == in.LessonID && ch.Index > next {
			next = ch.Index
		}
	}
	ch := Chapter{ID: m.nextID(), LessonID: in.LessonID, Index: next + 1,
		Title: strings.TrimSpace(in.Title), HTMLContent: in.HTMLContent}
	m.chapters[ch.ID] = ch
	return ch, nil
}

func (m *memoryStore) GetChapter(_ context.Context, id int64) (Chapter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.chapters[id]
	if !ok {
		return Chapter{}, ErrNotFound
	}
	return ch, nil
}

func (m *memoryStore) UpdateChapter(_ context.Context, id int64, p ChapterPatch) (Chapter, error) {
	title, err := requiredPatch(p.Title, "chapter title")
	if err != nil {
		return Chapter{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.chapters[id]
	if !ok {
		return Chapter{}, ErrNotFound
	}
	if title != nil {
		ch.Title = *title
	}
	if p.HTMLContent != nil {
		ch.HTMLContent = *p.HTMLContent
	}
	m.chapters[id] = ch
	return ch, nil
}

func (m *memoryStore) DeleteChapter(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.chapters[id]; !ok {
		return ErrNotFound
	}
	delete(m.chapters, id)
	return nil
}

func (m *memoryStore) GetOrCreateQuiz(_ context.Context, lessonID int64, title string) (Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lessons[lessonID]; !ok {
		return Quiz{}, invalid("lesson not found")
	}
	if qz, ok := m.quizOfLessonLocked(lessonID); ok {
		return m.quizLocked(qz), nil
	}
	qz := Quiz{ID: m.nextID(), LessonID: lessonID, Title: quizTitle(title)}
	m.quizzes[qz.ID] = qz
	return qz, nil
}

func (m *memoryStore) QuizByLesson(_ context.Context, lessonID int64) (*Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	qz, ok := m.quizOfLessonLocked(lessonID)
	if !ok {
		return nil, nil
	}
	full := m.quizLocked(qz)
	return &full, nil
}

func (m *memoryStore) GetQuiz(_ context.Context, id int64) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	qz, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, ErrNotFound
	}
	return m.quizLocked(qz), nil
}

func (m *memoryStore) AddQuestion(_ context.Context, in NewQuestion) (Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[in.QuizID]; !ok {
		return Question{}, invalid("quiz not found")
	}
	in, err := normalizeNewQuestion(in)
	if err != nil {
		return Question{}, err
	}
	next := 0
	for _, q := range m.questions {
		if q.QuizID == in.QuizID && q.Index > next {
			next = q.Index
		}
	}
	q := Question{ID: m.nextID(), QuizID: in.QuizID, Index: next + 1, Text: in.Text, Type: in.Type}
	m.questions[q.ID] = q
	return q, nil
}

func (m *memoryStore) UpdateQuestion(_ context.Context, id int64, p QuestionPatch) (Question, error) {
	p, err := normalizeQuestionPatch(p)
	if err != nil {
		return Question{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return Question{}, ErrNotFound
	}
	if p.Text != nil {
		q.Text = *p.Text
	}
	if p.Type != nil {
		q.Type = *p.Type
	}
	m.questions[id] = q
	return m.questionLocked(q), nil
}

func (m *memoryStore) DeleteQuestion(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[id]; !ok {
		return ErrNotFound
	}
	m.deleteQuestionLocked(id)
	return nil
}

func (m *memoryStore) AddOption(_ context.Context, in NewOption) (Option, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[in.QuestionID]; !ok {
		return Option{}, invalid("question not found")
	}
	in, err := normalizeNewOption(in)
	if err != nil {
		return Option{}, err
	}
	o := Option{ID: m.nextID(), QuestionID: in.QuestionID, Text: in.Text, IsCorrect: in.IsCorrect}
	m.options[o.ID] = o
	return o, nil
}

func (m *memoryStore) UpdateOption(_ context.Context, id int64, p OptionPatch) (Option, error) {
	text, err := requiredPatch(p.Text, "option text")
	if err != nil {
		return Option{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.options[id]
	if !ok {
		return Option{}, ErrNotFound
	}
	if text != nil {
		o.Text = *text
	}
	if p.IsCorrect != nil {
		o.IsCorrect = *p.IsCorrect
	}
	m.options[id] = o
	return o, nil
}

func (m *memoryStore) DeleteOption(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.options[id]; !ok {
		return ErrNotFound
	}
	delete(m.options, id)
	return nil
}
