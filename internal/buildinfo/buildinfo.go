// Package buildinfo holds build-time metadata injected via -ldflags.
package buildinfo

// Version is the semantic version or tag for this build.
// Inject via: -X github.com/pi-elearning/chatbot-go/internal/buildinfo.Version=...
var Version = ""

// Commit is the git commit SHA for this build.
// Inject via: -X github.com/pi-elearning/chatbot-go/internal/buildinfo.Commit=...
var Commit = ""

// Release returns a release identifier for error tracking, preferring the
// version tag and falling back to the commit SHA.
func Release() string {
	if Version != "" {
		return Version
	}
	return Commit
}
