package build

// Overridden at link time: -ldflags "-X github.com/mt-inside/print-fallback/internal/build.Version=..."
var (
	Name    = "print-fallback"
	Version = "dev"
)

func UserAgent() string {
	return Name + "/" + Version
}
