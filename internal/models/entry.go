package models

import "time"

// Entry is one parsed log record from the merged stream.
type Entry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Source  string    `json:"source"`
	Message string    `json:"message"`
	Raw     string    `json:"raw,omitempty"`
}
