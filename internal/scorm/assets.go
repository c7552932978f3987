package scorm

import _ "embed"

//go:embed assets/scorm_api.js
var shimJS string

//go:embed assets/quiz.js
var quizJS string

// ShimScript returns the host runtime adapter shipped as scorm_api.js.
func ShimScript() string { return shimJS }
