package app

// Build identification, injected at build time.
var (
	Version   string = "0.1.0"
	GitTag    string = "2000.01.01.release"
	BuildTime string = "2000-01-01T00:00:00+0800"
)

const (
	// Name application display name
	Name = "DB Backup Sync Service"
)
