package panggil

import "fmt"

// Build metadata, overridable with -ldflags:
//
//	go build -ldflags "-X github.com/adyatma-labs/panggil.Version=v0.3.1 \
//	  -X github.com/adyatma-labs/panggil.Commit=$(git rev-parse --short HEAD)"
var (
	Version = "v0.3.0"
	Commit  = ""
)

// VersionString is suitable for a User-Agent or a startup log line.
func VersionString() string {
	if Commit == "" {
		return "panggil/" + Version
	}
	return fmt.Sprintf("panggil/%s (%s)", Version, Commit)
}
