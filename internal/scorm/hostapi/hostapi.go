// Package hostapi models the SCORM 1.2 runtime adapter that packaged pages
// load as scorm_api.js. The Go types mirror the browser behavior so the
// discovery walk and fail-soft rules can be exercised in tests.
package hostapi

// Runtime data model keys written by packaged pages.
const (
	KeyLessonStatus = "cmi.core.lesson_status"
	KeyScoreRaw     = "cmi.core.score.raw"
	KeyScoreMax     = "cmi.core.score.max"
)

// Lesson status values.
const (
	StatusIncomplete = "incomplete"
	StatusPassed     = "passed"
	StatusFailed     = "failed"
)

// MaxHops bounds the parent walk so cyclic or hostile frame chains terminate.
const MaxHops = 500

// API is the host-provided runtime object. Calls return the SCORM string
// booleans "true" or "false".
type API interface {
	LMSInitialize(arg string) string
	LMSSetValue(key, value string) string
	LMSCommit(arg string) string
	LMSFinish(arg string) string
}

// Frame is one browsing context in the embedding chain. Parent returns nil
// or the frame itself at the top; Opener returns nil when the page was not
// opened from another window. API returns nil when the context exposes none.
type Frame interface {
	API() API
	Parent() Frame
	Opener() Frame
}

// Discover looks for the host API starting at start and walking parents,
// then retries from start's opener. It returns nil when nothing is found.
func Discover(start Frame) API {
	if api := walk(start); api != nil {
		return api
	}
	if start == nil {
		return nil
	}
	op, ok := safeFrame(start.Opener)
	if !ok || op == nil {
		return nil
	}
	return walk(op)
}

func walk(f Frame) API {
	for hops := 0; f != nil; hops++ {
		if api, ok := safeAPI(f); ok && api != nil {
			return api
		}
		if hops >= MaxHops {
			return nil
		}
		p, ok := safeFrame(f.Parent)
		if !ok || p == nil || p == f {
			return nil
		}
		f = p
	}
	return nil
}

// Cross-origin frames throw on property access in the browser; a panic
// here plays the same role.
func safeAPI(f Frame) (api API, ok bool) {
	defer func() {
		if recover() != nil {
			api, ok = nil, false
		}
	}()
	return f.API(), true
}

func safeFrame(get func() Frame) (f Frame, ok bool) {
	defer func() {
		if recover() != nil {
			f, ok = nil, false
		}
	}()
	return get(), true
}
