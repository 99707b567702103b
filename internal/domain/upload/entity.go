package upload

import "time"

// ScratchFile is an uploaded video staged for the AI provider. Key is
// generated locally and never derived from the client file name.
type ScratchFile struct {
	Key          string    `json:"key"`
	OriginalName string    `json:"original_name"`
	MIMEType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
}
