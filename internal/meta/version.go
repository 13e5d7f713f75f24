package meta

import (
	"fmt"
	"runtime"
)

// Info describes how a respwire binary was built.
type Info struct {
	Version   string
	Build     string
	Branch    string
	BuildTime string
	Platform  string
	GoVersion string
	GoTag     string
}

// Set with -ldflags "-X github.com/luma/respwire/internal/meta.Version=..."
var (
	Version string

	// Git sha and branch of the build
	Build  string
	Branch string

	// BuildTimeUTC is formatted as year/month/day hour:min:sec
	BuildTimeUTC string

	// GoTag holds the build tags, see https://golang.org/pkg/go/build/#hdr-Build_Constraints
	GoTag string

	platform = fmt.Sprintf("%s %s", runtime.GOOS, runtime.GOARCH)
)

func GetInfo() Info {
	version := Version
	if version == "" {
		version = "dev"
	}

	return Info{
		GoVersion: runtime.Version(),
		Version:   version,
		Build:     Build,
		Branch:    Branch,
		BuildTime: BuildTimeUTC,
		GoTag:     GoTag,
		Platform:  platform,
	}
}

func (i Info) String() string {
	s := fmt.Sprintf("respwire %s", i.Version)
	if i.Build != "" {
		s += fmt.Sprintf(" (%s, branch %s)", i.Build, i.Branch)
	}

	return s
}
