package version

import (
	"fmt"
	"runtime/debug"
	"sync"
)

type Info struct {
	CommitHash  string
	CommitTime  string
	DirtyCommit bool
}

func (v Info) VersionString() string {
	if v.CommitHash == "" {
		return "unknown"
	}

	hash := v.CommitHash
	if len(hash) > 16 {
		hash = hash[:16]
	}
	if v.DirtyCommit {
		return fmt.Sprintf("%s-dirty", hash)
	}
	return hash
}

var (
	globalVersion Info
	globalOnce    sync.Once
)

func GetInfo() Info {
	globalOnce.Do(func() {
		globalVersion = computeVersionInfo()
	})
	return globalVersion
}

// Version is the short version string for logs and the service info route.
func Version() string {
	return GetInfo().VersionString()
}

func computeVersionInfo() Info {
	var rv Info

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return rv
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			rv.CommitHash = setting.Value
		case "vcs.modified":
			rv.DirtyCommit = setting.Value == "true"
		case "vcs.time":
			rv.CommitTime = setting.Value
		}
	}

	return rv
}
