// Package export turns a stored course into a downloadable SCORM bundle,
// reusing previously built archives when the course tree is unchanged.
package export

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"

	"github.com/mind-engage/mindengage-scorm/internal/course"
	"github.com/mind-engage/mindengage-scorm/internal/logger"
	"github.com/mind-engage/mindengage-scorm/internal/scorm"
	"github.com/mind-engage/mindengage-scorm/internal/storage"
	syncx "github.com/mind-engage/mindengage-scorm/internal/sync"
)

// formatVersion is mixed into the fingerprint; bump it whenever rendered
// output changes for the same tree.
const formatVersion = "scorm12/1"

// TreeLoader loads a course with its full subtree.
type TreeLoader interface {
	GetTree(ctx context.Context, id int64) (course.Course, error)
}

// EventSink records export events.
type EventSink interface {
	Append(ctx context.Context, e syncx.Event) error
}

// Service builds bundles. Blobs and Events are optional.
type Service struct {
	Tree   TreeLoader
	Blobs  storage.BlobStore
	Events EventSink
	Log    *logger.Logger
	SiteID string
}

// Bundle is one finished export.
type Bundle struct {
	Name    string
	Data    []byte
	ETag    string
	Entries []string
	Cached  bool
}

// Fingerprint hashes the tree together with the output format version.
// Identical trees yield identical fingerprints and identical archives.
func Fingerprint(c course.Course) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	io.WriteString(h, formatVersion)
	h.Write([]byte{0})
	h.Write(b)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func cacheKey(fp string) string { return "bundles/" + fp + ".zip" }

// Export loads the course, then serves the archive from the blob cache or
// builds and stores it. Cache and event failures are logged, never
// returned.
func (s *Service) Export(ctx context.Context, courseID int64) (Bundle, error) {
	c, err := s.Tree.GetTree(ctx, courseID)
	if err != nil {
		return Bundle{}, err
	}
	fp, err := Fingerprint(c)
	if err != nil {
		return Bundle{}, fmt.Errorf("fingerprint course %d: %w", courseID, err)
	}
	out := Bundle{Name: scorm.BundleName(c.ID), ETag: fp, Entries: scorm.Entries(c)}
	log := s.logger().With("course_id", c.ID, "etag", fp)

	if data, ok := s.cached(ctx, log, fp); ok {
		out.Data, out.Cached = data, true
	} else {
		data, err := scorm.BuildPackage(c)
		if err != nil {
			return Bundle{}, err
		}
		out.Data = data
		s.store(ctx, log, fp, data)
	}

	log.Info("course exported", "bytes", len(out.Data), "entries", len(out.Entries), "cached", out.Cached)
	s.record(ctx, log, out, c.ID)
	return out, nil
}

func (s *Service) cached(ctx context.Context, log *logger.Logger, fp string) ([]byte, bool) {
	if s.Blobs == nil {
		return nil, false
	}
	rc, err := s.Blobs.Get(ctx, cacheKey(fp))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warn("bundle cache read failed", "err", err)
		}
		return nil, false
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil || len(data) == 0 {
		log.Warn("bundle cache entry unreadable", "err", err)
		return nil, false
	}
	return data, true
}

func (s *Service) store(ctx context.Context, log *logger.Logger, fp string, data []byte) {
	if s.Blobs == nil {
		return
	}
	if _, err := s.Blobs.Put(ctx, cacheKey(fp), bytes.NewReader(data)); err != nil {
		log.Warn("bundle cache write failed", "err", err)
	}
}

func (s *Service) record(ctx context.Context, log *logger.Logger, b Bundle, courseID int64) {
	if s.Events == nil {
		return
	}
	ev, err := syncx.NewCourseExported(s.SiteID, syncx.CourseExported{
		CourseID: courseID,
		ETag:     b.ETag,
		Size:     len(b.Data),
		Entries:  len(b.Entries),
		Cached:   b.Cached,
	})
	if err == nil {
		err = s.Events.Append(ctx, ev)
	}
	if err != nil {
		log.Warn("export event not recorded", "err", err)
	}
}

func (s *Service) logger() *logger.Logger {
	if s.Log == nil {
		return logger.Nop()
	}
	return s.Log
}
