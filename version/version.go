package version

// Version is overridden at build time with -ldflags "-X github.com/Daskott/contactspro/version.Version=..."
var Version = "1.3.0"
