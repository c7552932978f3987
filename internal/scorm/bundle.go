package scorm

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/mind-engage/mindengage-scorm/internal/course"
)

// RenderError reports which entry failed to render. No archive is produced
// when one is returned.
type RenderError struct {
	Entry string
	Err   error
}

func (e *RenderError) Error() string { return fmt.Sprintf("render %s: %v", e.Entry, e.Err) }
func (e *RenderError) Unwrap() error { return e.Err }

type entry struct {
	name   string
	render func() ([]byte, error)
}

// plan lists the archive entries in write order: shim, index, chapters by
// lesson then chapter index, quizzes by lesson index, manifest last. The
// tree is walked in the order given; indexes are not re-sorted.
func plan(c course.Course) []entry {
	out := []entry{
		{ShimFile, func() ([]byte, error) { return []byte(shimJS), nil }},
		{IndexFile, func() ([]byte, error) { return RenderIndex(c) }},
	}
	for _, l := range c.Lessons {
		l := l // per-iteration copy (go.mod targets go 1.21)
		for _, ch := range l.Chapters {
			ch := ch
			out = append(out, entry{ChapterFile(l.ID, ch.ID), func() ([]byte, error) { return RenderChapter(c, l, ch) }})
		}
	}
	for _, l := range c.Lessons {
		l := l
		if !l.HasQuiz() {
			continue
		}
		out = append(out, entry{QuizFile(l.ID), func() ([]byte, error) { return RenderQuiz(c, l) }})
	}
	return append(out, entry{ManifestFile, func() ([]byte, error) { return RenderManifest(c) }})
}

// Entries returns the archive entry names BuildPackage writes for c.
func Entries(c course.Course) []string {
	p := plan(c)
	names := make([]string, len(p))
	for i, e := range p {
		names[i] = e.name
	}
	return names
}

// BuildPackage renders every page of c and returns the zipped SCORM 1.2
// package. Output is byte-identical for identical input.
func BuildPackage(c course.Course) ([]byte, error) {
	return build(plan(c))
}

// build renders entries in order and stops at the first failure.
func build(entries []entry) ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, e := range entries {
		body, err := e.render()
		if err != nil {
			return nil, &RenderError{Entry: e.name, Err: err}
		}
		// zero Modified keeps archives reproducible
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("zip %s: %w", e.name, err)
		}
		if _, err := w.Write(body); err != nil {
			return nil, fmt.Errorf("zip %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
