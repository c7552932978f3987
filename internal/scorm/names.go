package scorm

import "fmt"

// Fixed entry names. Chapter and quiz names are keyed by database ids, so
// two entries can only collide if the ids do.
const (
	ShimFile     = "scorm_api.js"
	IndexFile    = "index.html"
	ManifestFile = "imsmanifest.xml"
)

func ChapterFile(lessonID, chapterID int64) string {
	return fmt.Sprintf("lesson-%d-chapter-%d.html", lessonID, chapterID)
}

func QuizFile(lessonID int64) string {
	return fmt.Sprintf("quiz-%d.html", lessonID)
}

// BundleName is the download name of a course export.
func BundleName(courseID int64) string {
	return fmt.Sprintf("course-%d-scorm.zip", courseID)
}
