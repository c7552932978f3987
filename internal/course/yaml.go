package course

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadTreeYAML decodes a course tree authored as YAML. Missing ids are
// assigned per kind in document order and missing indexes default to the
// 1-based position, so hand-written files need neither.
func LoadTreeYAML(r io.Reader) (Course, error) {
	var c Course
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Course{}, fmt.Errorf("decoding course yaml: %w", err)
	}

	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" {
		return Course{}, invalid("title is required")
	}
	if c.ID == 0 {
		c.ID = 1
	}
	if c.LessonCount == 0 {
		c.LessonCount = len(c.Lessons)
	}

	var seq struct{ lesson, chapter, quiz, question, option int64 }
	lessonIDs := map[int64]bool{}
	chapterIDs := map[int64]bool{}
	for i := range c.Lessons {
		l := &c.Lessons[i]
		l.CourseID = c.ID
		fill(&l.ID, &seq.lesson)
		if lessonIDs[l.ID] {
			return Course{}, invalid("duplicate lesson id %d", l.ID)
		}
		lessonIDs[l.ID] = true
		if l.Index == 0 {
			l.Index = i + 1
		}
		for j := range l.Chapters {
			ch := &l.Chapters[j]
			ch.LessonID = l.ID
			fill(&ch.ID, &seq.chapter)
			if chapterIDs[ch.ID] {
				return Course{}, invalid("duplicate chapter id %d", ch.ID)
			}
			chapterIDs[ch.ID] = true
			if ch.Index == 0 {
				ch.Index = j + 1
			}
		}
		if l.Quiz == nil {
			continue
		}
		qz := l.Quiz
		qz.LessonID = l.ID
		fill(&qz.ID, &seq.quiz)
		qz.Title = quizTitle(qz.Title)
		questionIDs := map[int64]bool{}
		for j := range qz.Questions {
			q := &qz.Questions[j]
			q.QuizID = qz.ID
			fill(&q.ID, &seq.question)
			if questionIDs[q.ID] {
				return Course{}, invalid("lesson %d: duplicate question id %d", l.Index, q.ID)
			}
			questionIDs[q.ID] = true
			if q.Index == 0 {
				q.Index = j + 1
			}
			if q.Type == "" {
				q.Type = QuestionSingle
			}
			if !q.Type.Valid() {
				return Course{}, invalid("lesson %d question %d: invalid question type %q", l.Index, q.Index, q.Type)
			}
			optionIDs := map[int64]bool{}
			for k := range q.Options {
				o := &q.Options[k]
				o.QuestionID = q.ID
				fill(&o.ID, &seq.option)
				if optionIDs[o.ID] {
					return Course{}, invalid("question %d: duplicate option id %d", q.ID, o.ID)
				}
				optionIDs[o.ID] = true
			}
		}
	}
	return c, nil
}

// fill assigns the next sequence value when id is unset, and keeps the
// sequence ahead of any explicit id.
func fill(id *int64, seq *int64) {
	if *id == 0 {
		*seq++
		*id = *seq
		return
	}
	if *id > *seq {
		*seq = *id
	}
}
