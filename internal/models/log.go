package models

import "time"

// OffsetUnread marks a descriptor whose content has never been fetched.
// The next fetch reads the file from byte zero.
const OffsetUnread int64 = -1

// LogDescriptor represents one remote log file and the read cursor into it.
// Identity is the Name string; the tracked set is keyed by it.
type LogDescriptor struct {
	// Name is the file name as it appears in the listing document,
	// e.g. "error-blade1-20231113.log".
	Name string

	// SizeText is the human-readable size column from the listing.
	SizeText string

	// ListedAt is the raw date column from the listing, kept for debug
	// output only. Filtering uses RotationDate.
	ListedAt string

	// RotationDate is the UTC calendar day parsed from the 8-digit date
	// stamp embedded in the file name.
	RotationDate time.Time

	// Offset is the byte watermark: OffsetUnread before any fetch, then
	// the number of bytes already seen. Advanced after each successful
	// content fetch.
	Offset int64

	Debug bool
}

// LogType returns the text before the first hyphen of the log name,
// used for allow-list matching ("error" for "error-blade1-20231113.log").
func (d *LogDescriptor) LogType() string {
	for i := 0; i < len(d.Name); i++ {
		if d.Name[i] == '-' {
			return d.Name[:i]
		}
	}
	return d.Name
}
