package version

import (
	"crypto/sha256"
	"encoding/hex"
	"runtime/debug"
	"strings"
	"sync"
)

// Version is the semantic version of pdepend.
const Version = "2.0.0-alpha.1"

// Set with -ldflags "-X github.com/rouffj/pdepend/internal/version.GitCommit=..."
var (
	GitCommit = "unknown"
	BuildDate = "development"
)

// Info returns the bare version string.
func Info() string {
	return Version
}

// FullInfo returns the version line printed by `pdepend version`.
func FullInfo() string {
	var b strings.Builder
	b.WriteString("pdepend ")
	b.WriteString(Version)
	b.WriteString(" (commit: ")
	b.WriteString(commit())
	b.WriteString(", built: ")
	b.WriteString(BuildDate)
	b.WriteString(")")
	return b.String()
}

// commit falls back to the VCS revision recorded by the Go toolchain.
func commit() string {
	if GitCommit != "unknown" {
		return GitCommit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				return s.Value[:7]
			}
		}
	}
	return GitCommit
}

var (
	buildID     string
	buildIDOnce sync.Once
)

// BuildID fingerprints the running binary. Cache entries carry it so a
// tree written by one build is never restored into another.
func BuildID() string {
	buildIDOnce.Do(func() {
		buildID = computeBuildID()
	})
	return buildID
}

func computeBuildID() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version + "-" + GitCommit
	}

	h := sha256.New()
	for _, part := range []string{Version, info.GoVersion, info.Main.Path, info.Main.Version} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" || s.Key == "vcs.modified" {
			h.Write([]byte(s.Key + "=" + s.Value))
			h.Write([]byte{0})
		}
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
