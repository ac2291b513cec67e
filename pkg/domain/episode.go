package domain

import "time"

// Episode represents one podcast installment as described by the RSS feed.
//
// The minimal feed record carries no stable numeric ID, so the title acts as
// the episode's identity throughout the pipeline.
type Episode struct {
	// Title is the episode title and the dedup key for the whole pipeline.
	Title string `json:"title"`

	// PublishDate is the parsed <pubDate> with the timezone token stripped.
	PublishDate time.Time `json:"date"`

	// AudioURL is the URL of the audio/mpeg enclosure.
	AudioURL string `json:"audio_url"`

	// Link is the web page for this episode, when available.
	Link string `json:"link,omitempty"`

	// Description is the plain-text episode description (HTML stripped).
	Description string `json:"description,omitempty"`

	// Duration is the itunes:duration value, when available.
	Duration string `json:"duration,omitempty"`

	// EpisodeNumber is the itunes:episode value, when available.
	EpisodeNumber string `json:"episode_number,omitempty"`

	// Subtitle is the itunes:subtitle value, when available.
	Subtitle string `json:"subtitle,omitempty"`

	// GUID is the feed's own identifier, when available. Not used as the
	// dedup key today (see AudioFetcher's title-collision note).
	GUID string `json:"guid,omitempty"`
}
