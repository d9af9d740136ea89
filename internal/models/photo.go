package models

// Photo is the metadata row of an uploaded submission photo.
type Photo struct {
	ID           string `json:"id,omitempty"`
	SubmissionID string `json:"submission_id"`
	FilePath     string `json:"file_path"`
	FileName     string `json:"file_name"`
	Caption      string `json:"legenda"`
	Year         string `json:"ano"`
	FileSize     int64  `json:"file_size"`
	MimeType     string `json:"mime_type"`
	CreatedAt    string `json:"created_at"`
	URL          string `json:"url,omitempty"`
}
