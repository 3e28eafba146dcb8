package buildinfo

var (
	// Version is stamped by the release build via -ldflags.
	Version = "dev"
	// Commit is the git revision the binary was built from.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)
