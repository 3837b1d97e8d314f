package global

import (
	"github.com/haierkeys/db-backup-sync-service/pkg/fileurl"
)

var (
	// ROOT program execution directory
	ROOT string
	Name string = "DB Backup Sync Service"
)

func init() {
	filename := fileurl.GetExePath()
	ROOT = filename + "/"
}
