package feed

import (
	"errors"
	"sort"
	"time"

	"podcast-rag/pkg/domain"
)

var (
	// ErrInvalidDate means the caller-supplied date string matched none of
	// the accepted layouts.
	ErrInvalidDate = errors.New("invalid date format")

	// ErrEpisodeNotFound means no episode was published on the given day.
	ErrEpisodeNotFound = errors.New("no episode found for date")

	// ErrRangeTooWide means the requested listing spans more than 12 months.
	ErrRangeTooWide = errors.New("the date range cannot exceed 12 months")

	// ErrStartAfterEnd means the listing range is inverted.
	ErrStartAfterEnd = errors.New("start date cannot be after end date")
)

// dateInputLayouts are the accepted formats for tool-facing date arguments.
var dateInputLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"02/01/2006",
	"02-01-2006",
	"2006/01/02",
}

// defaultListingWindow is how far back list-episodes looks when no start date
// is given.
const defaultListingWindow = 90 * 24 * time.Hour

// maxListingSpan caps a listing range at roughly 12 months.
const maxListingSpan = 366 * 24 * time.Hour

// Fetcher is the read side of the catalog, split out so the lookup helpers
// can be exercised against a fixed episode set in tests.
type Fetcher interface {
	Fetch() []domain.Episode
}

// EpisodeSummary is one row of a range listing.
type EpisodeSummary struct {
	EpisodeName string `json:"episode_name"`
	Date        string `json:"date"`
}

// ParseDateInput parses a caller-supplied date in any accepted layout.
func ParseDateInput(s string) (time.Time, error) {
	for _, layout := range dateInputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// GetEpisodeInfoByDate returns the episode published on the given day,
// ignoring the time-of-day component on both sides. A malformed date is
// reported distinctly from an absent episode.
func GetEpisodeInfoByDate(catalog Fetcher, dateInput string) (*domain.Episode, error) {
	target, err := ParseDateInput(dateInput)
	if err != nil {
		return nil, err
	}

	targetDay := dateOnly(target)
	for _, ep := range catalog.Fetch() {
		if dateOnly(ep.PublishDate).Equal(targetDay) {
			found := ep
			return &found, nil
		}
	}
	return nil, ErrEpisodeNotFound
}

// ListEpisodesInRange lists episodes within [start, end], both inclusive and
// compared by day. An empty start defaults to 90 days before today; an empty
// end defaults to today. The span may not exceed 12 months and start may not
// come after end. Results are sorted by ascending date.
func ListEpisodesInRange(catalog Fetcher, startInput, endInput string) ([]EpisodeSummary, error) {
	today := dateOnly(time.Now())

	end := today
	if endInput != "" {
		parsed, err := ParseDateInput(endInput)
		if err != nil {
			return nil, err
		}
		end = dateOnly(parsed)
	}

	start := today.Add(-defaultListingWindow)
	if startInput != "" {
		parsed, err := ParseDateInput(startInput)
		if err != nil {
			return nil, err
		}
		start = dateOnly(parsed)
	}

	if end.Sub(start) > maxListingSpan {
		return nil, ErrRangeTooWide
	}
	if start.After(end) {
		return nil, ErrStartAfterEnd
	}

	summaries := make([]EpisodeSummary, 0)
	for _, ep := range catalog.Fetch() {
		day := dateOnly(ep.PublishDate)
		if day.Before(start) || day.After(end) {
			continue
		}
		summaries = append(summaries, EpisodeSummary{
			EpisodeName: ep.Title,
			Date:        day.Format("2006-01-02"),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Date < summaries[j].Date
	})

	return summaries, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
