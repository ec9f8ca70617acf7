package buildinfo

// Set at build time with -ldflags:
//
//	-X 'github.com/m3rciful/datebot/core/buildinfo.Version=v1.2.3'
//	-X 'github.com/m3rciful/datebot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/datebot/core/buildinfo.Date=2025-08-30T12:00:00Z'
var (
	// Version is the tag of the build.
	Version = "dev"
	// Commit is the source commit of the build.
	Commit = "local"
	// Date is the build time in RFC3339.
	Date = ""
)
