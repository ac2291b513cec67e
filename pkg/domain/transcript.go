package domain

// TranscriptRecord is one entry of the append-only transcript catalog.
//
// At most one record exists per title; a record is only written after
// transcription succeeds, so its presence is the "already processed" marker
// for the ingestion run.
type TranscriptRecord struct {
	Title string `json:"title"`

	// Date is the episode publish date in ISO-8601 (no timezone).
	Date string `json:"date"`

	AudioURL string `json:"audio_url"`

	Transcription string `json:"transcription"`
}
