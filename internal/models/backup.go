package models

import "time"

// BoardBackup is one row of the run manifest: a board this tool has archived
// (or seen already archived) in the destination directory.
type BoardBackup struct {
	ID              string `gorm:"primaryKey"` // Trello board ID
	Name            string
	OrgName         string
	JSONPath        string
	SizeBytes       int64
	AttachmentCount int
	ArchivedAt      time.Time
	LastSeenAt      time.Time
}
