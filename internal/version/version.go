package version

import (
	"runtime/debug"
	"strings"
)

// Version is the release version. Release builds set it with
//
//	-ldflags "-X github.com/fmapi/firemon-api-go/internal/version.Version=v1.2.3"
//
// Other builds derive it from the module version or VCS revision.
var Version = ""

func init() {
	if Version == "" {
		Version = fromBuildInfo()
	}
}

// fromBuildInfo returns the module version, or a pseudo version built from
// the VCS revision when the binary was built from a checkout.
func fromBuildInfo() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return strings.TrimPrefix(v, "v")
	}

	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return "dev"
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	v := "0.0.0-dev+" + revision
	if dirty {
		v += ".dirty"
	}
	return v
}
