// Package build exposes build-time metadata injected via ldflags.
package build

// Version, Commit, and Branch are set at build time by:
//
//	-ldflags "-X github.com/joestump/bookmarks/internal/build.Version=... ..."
var (
	Version = "dev"
	Commit  = "unknown"
	Branch  = "unknown"
)

// Summary renders the metadata on one line, as printed by `bookmarks version`.
func Summary() string {
	return Version + " (commit " + Commit + ", branch " + Branch + ")"
}
