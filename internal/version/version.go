package version

// Version is the semantic version of the sona binary. Overridden at build time
// via -ldflags "-X github.com/ENuel20/SoNa/internal/version.Version=...".
var Version = "0.1.0-dev"
