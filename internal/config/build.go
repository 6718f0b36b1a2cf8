package config

// Build metadata injected by the linker. The release pipeline sets these via
// -ldflags; a plain `go build` leaves the development defaults in place:
//
//	go build -ldflags "-X mcass/internal/config.version=$(git describe --tags) \
//	    -X mcass/internal/config.commit=$(git rev-parse --short HEAD) \
//	    -X mcass/internal/config.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// NewBuildInfo snapshots the linker variables into a BuildInfo. LoadConfig
// calls it once to populate Config.Build.
func NewBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	}
}
