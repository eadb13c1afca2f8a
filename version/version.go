package version

// Version is set at build time via
// -ldflags "-X github.com/jtrefon/blt/version.Version=...".
var Version = "0.0.0"
