package scenery

// build information, injected via ldflags by main.
var (
	AppVersion = "dev"
	Commit     = "none"
	CommitDate = "unknown"
)
