package domain

import (
	"fmt"
	"time"
)

// Attachment is the metadata row for a file stored on disk next to its
// ticket. StorageKey is the path relative to the upload root.
type Attachment struct {
	ID         int64
	TicketID   int64
	FileName   string
	Extension  string
	SizeBytes  int64
	StorageKey string
	UploadedBy string
	CreatedAt  time.Time
}

// HumanSize renders the byte count the way the admin panel displays it.
func HumanSize(sizeBytes int64) string {
	if sizeBytes == 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	size := float64(sizeBytes)
	idx := 0
	for size >= 1024 && idx < len(units)-1 {
		size /= 1024
		idx++
	}
	return fmt.Sprintf("%.1f %s", size, units[idx])
}
