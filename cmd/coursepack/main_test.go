package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mind-engage/mindengage-scorm/internal/logger"
)

const doc = `
title: Offline
lessons:
  - title: One
    chapters:
      - title: Intro
        html_content: "<p>hi</p>"
`

func TestRun_WritesZipFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "course.yaml")
	if err := os.WriteFile(in, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.zip")
	if err := run(in, out, true, nil, nil, logger.Nop()); err != nil {
		t.Fatalf("run: %v", err)
	}
	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 4 || zr.File[2].Name != "lesson-1-chapter-1.html" {
		t.Fatalf("entries: %d", len(zr.File))
	}
}

func TestRun_StdinToStdout(t *testing.T) {
	var buf bytes.Buffer
	if err := run("-", "-", true, strings.NewReader(doc), &buf, logger.Nop()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len())); err != nil {
		t.Fatalf("stdout is not a zip: %v", err)
	}
}

func TestRun_Errors(t *testing.T) {
	if err := run("", "-", false, nil, nil, logger.Nop()); err == nil {
		t.Fatalf("missing -in accepted")
	}
	if err := run("-", "-", true, strings.NewReader("lessons: []\n"), &bytes.Buffer{}, logger.Nop()); err == nil {
		t.Fatalf("untitled course accepted")
	}
}
