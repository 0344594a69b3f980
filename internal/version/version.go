package version

// Version is the current version of the backtest engine.
// Set at build time with:
// -ldflags "-X github.com/rxtech-lab/argo-options/internal/version.Version=1.2.3"
// The value "main" marks a development build.
var Version = "v0.4.0"

// GetVersion returns the current engine version.
func GetVersion() string {
	return Version
}
