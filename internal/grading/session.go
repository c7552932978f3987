package grading

import (
	"strconv"

	"github.com/mind-engage/mindengage-scorm/internal/course"
	"github.com/mind-engage/mindengage-scorm/internal/scorm/hostapi"
)

// Phase is the state of a quiz attempt.
type Phase int

const (
	Answering Phase = iota
	Graded
)

func (p Phase) String() string {
	if p == Graded {
		return "graded"
	}
	return "answering"
}

// Reporter receives the outcome of a graded attempt. *hostapi.Shim
// satisfies it.
type Reporter interface {
	Initialize() bool
	Set(key, value string) bool
	Commit() bool
}

// Session is one learner attempt at a quiz. It is not safe for concurrent
// use, matching the single-threaded page it models.
type Session struct {
	quiz       course.Quiz
	grader     Grader
	byID       map[int64]course.Question
	phase      Phase
	selections map[int64][]int64
	result     *Result
}

func NewSession(quiz course.Quiz, g Grader) *Session {
	if g == nil {
		g = NewDefaultGrader()
	}
	byID := make(map[int64]course.Question, len(quiz.Questions))
	for _, q := range quiz.Questions {
		byID[q.ID] = q
	}
	return &Session{quiz: quiz, grader: g, byID: byID, selections: map[int64][]int64{}}
}

func (s *Session) Phase() Phase { return s.phase }

// Result returns the last grading outcome, or nil while answering.
func (s *Session) Result() *Result { return s.result }

// Selected returns the chosen option ids of a question in selection order.
func (s *Session) Selected(questionID int64) []int64 {
	return append([]int64(nil), s.selections[questionID]...)
}

// Select records a choice. Single questions keep only the latest option;
// multiple questions toggle the option on or off. Choices made after
// grading, or for unknown questions, are ignored.
func (s *Session) Select(questionID, optionID int64, checked bool) {
	if s.phase != Answering {
		return
	}
	q, ok := s.byID[questionID]
	if !ok {
		return
	}
	if q.Type == course.QuestionSingle {
		s.selections[questionID] = []int64{optionID}
		return
	}
	cur := s.selections[questionID][:0:0]
	for _, id := range s.selections[questionID] {
		if id != optionID {
			cur = append(cur, id)
		}
	}
	if checked {
		cur = append(cur, optionID)
	}
	s.selections[questionID] = cur
}

// Grade scores the current selections, moves to Graded and reports the
// outcome. Grading twice returns the first result without reporting again.
func (s *Session) Grade(r Reporter) Result {
	if s.phase == Graded && s.result != nil {
		return *s.result
	}
	res := Score(s.grader, s.quiz, s.selections)
	s.phase = Graded
	s.result = &res
	if r != nil {
		r.Initialize()
		r.Set(hostapi.KeyScoreRaw, strconv.Itoa(res.Percent))
		r.Set(hostapi.KeyScoreMax, "100")
		r.Set(hostapi.KeyLessonStatus, res.Status)
		r.Commit()
	}
	return res
}

// Retry discards every selection and returns to Answering.
func (s *Session) Retry() {
	s.phase = Answering
	s.selections = map[int64][]int64{}
	s.result = nil
}
