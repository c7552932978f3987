// Command coursepack builds a SCORM 1.2 zip from a course authored as YAML,
// without a database or server.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mind-engage/mindengage-scorm/internal/course"
	"github.com/mind-engage/mindengage-scorm/internal/logger"
	"github.com/mind-engage/mindengage-scorm/internal/scorm"
)

func main() {
	in := flag.String("in", "", "course YAML file (- for stdin)")
	out := flag.String("out", "", "zip to write (- for stdout); defaults to course-{id}-scorm.zip")
	verbose := flag.Bool("v", false, "log each archive entry")
	check := flag.Bool("check", true, "verify manifest and page links before writing")
	flag.Parse()

	log := logger.Nop()
	if *verbose {
		l, err := logger.New("dev")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		log = l
	}
	defer log.Sync()

	if err := run(*in, *out, *check, os.Stdin, os.Stdout, log); err != nil {
		fmt.Fprintln(os.Stderr, "coursepack:", err)
		os.Exit(1)
	}
}

func run(in, out string, check bool, stdin io.Reader, stdout io.Writer, log *logger.Logger) error {
	if in == "" {
		return fmt.Errorf("-in is required")
	}
	src := stdin
	if in != "-" {
		f, err := os.Open(in)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}

	c, err := course.LoadTreeYAML(src)
	if err != nil {
		return err
	}
	data, err := scorm.BuildPackage(c)
	if err != nil {
		return err
	}
	for _, name := range scorm.Entries(c) {
		log.Debug("entry", "name", name)
	}
	if check {
		info, err := scorm.Inspect(data)
		if err != nil {
			return err
		}
		if len(info.Missing) > 0 {
			return fmt.Errorf("package references missing files: %v", info.Missing)
		}
	}

	if out == "" {
		out = scorm.BundleName(c.ID)
	}
	if out == "-" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	log.Info("package written", "path", out, "bytes", len(data))
	return nil
}
