package logger

// Shared log field name constants, so the same concept is always queryable
// under the same key.
const (
	// FieldJob backup/maintenance job identifier
	FieldJob = "job"

	// FieldDatabase database name a backup file belongs to
	FieldDatabase = "database"

	// FieldPath file path
	FieldPath = "path"

	// FieldPhase archive sync phase
	FieldPhase = "phase"

	// FieldArchive archive name
	FieldArchive = "archive"

	// FieldDuration elapsed time
	FieldDuration = "duration"

	// FieldSizeMb size in megabytes
	FieldSizeMb = "sizeMb"

	// FieldFiles file count
	FieldFiles = "files"

	// FieldCron cron expression
	FieldCron = "cron"
)
