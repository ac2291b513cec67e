package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"podcast-rag/pkg/domain"
)

// daysPerMonth averages the calendar out for the per-month rate.
const daysPerMonth = 30.44

// EpisodeRef names an episode inside a report.
type EpisodeRef struct {
	Title string `json:"title"`
	Date  string `json:"date,omitempty"`
	Words int    `json:"words,omitempty"`
}

// Coverage describes how much of the podcast's timeline the archive spans.
type Coverage struct {
	TotalEpisodes    int         `json:"total_episodes"`
	EpisodesWithDate int         `json:"episodes_with_dates"`
	DateRange        string      `json:"date_range,omitempty"`
	Earliest         *EpisodeRef `json:"earliest_episode,omitempty"`
	Latest           *EpisodeRef `json:"latest_episode,omitempty"`
	PeriodDays       int         `json:"period_covered_days"`
	EpisodesPerMonth float64     `json:"average_episodes_per_month"`
}

// Content summarizes transcript volume.
type Content struct {
	TotalTranscriptions int         `json:"total_transcriptions"`
	TotalWords          int         `json:"total_words"`
	TotalCharacters     int         `json:"total_characters"`
	AvgWords            int         `json:"average_words_per_episode"`
	AvgCharacters       int         `json:"average_characters_per_episode"`
	Shortest            *EpisodeRef `json:"shortest_episode,omitempty"`
	Longest             *EpisodeRef `json:"longest_episode,omitempty"`
}

// QualityIssue lists what a record is missing.
type QualityIssue struct {
	Index  int      `json:"episode_index"`
	Title  string   `json:"title"`
	Issues []string `json:"issues"`
}

// Quality reports field completeness across the archive.
type Quality struct {
	TotalEpisodes      int            `json:"total_episodes"`
	WithTranscriptions int            `json:"episodes_with_transcriptions"`
	WithDates          int            `json:"episodes_with_dates"`
	WithAudioURLs      int            `json:"episodes_with_audio_urls"`
	CompletionPercent  float64        `json:"completion_percentage"`
	MissingData        []QualityIssue `json:"missing_data"`
}

// Report is the full archive report.
type Report struct {
	Coverage Coverage `json:"coverage"`
	Content  Content  `json:"content"`
	Quality  Quality  `json:"quality"`
}

// Compute builds a report over the archived records.
func Compute(records []domain.TranscriptRecord) Report {
	return Report{
		Coverage: computeCoverage(records),
		Content:  computeContent(records),
		Quality:  computeQuality(records),
	}
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04:05Z07:00", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func computeCoverage(records []domain.TranscriptRecord) Coverage {
	cov := Coverage{TotalEpisodes: len(records)}

	type dated struct {
		rec  domain.TranscriptRecord
		date time.Time
	}
	var withDates []dated
	for _, rec := range records {
		if t, ok := parseDate(rec.Date); ok {
			withDates = append(withDates, dated{rec, t})
		}
	}
	cov.EpisodesWithDate = len(withDates)
	if len(withDates) == 0 {
		return cov
	}

	sort.Slice(withDates, func(i, j int) bool { return withDates[i].date.Before(withDates[j].date) })
	earliest, latest := withDates[0], withDates[len(withDates)-1]

	cov.DateRange = fmt.Sprintf("%s to %s",
		earliest.date.Format("2006-01-02"), latest.date.Format("2006-01-02"))
	cov.Earliest = &EpisodeRef{Title: earliest.rec.Title, Date: earliest.date.Format("2006-01-02")}
	cov.Latest = &EpisodeRef{Title: latest.rec.Title, Date: latest.date.Format("2006-01-02")}
	cov.PeriodDays = int(latest.date.Sub(earliest.date).Hours() / 24)
	if cov.PeriodDays > 0 {
		months := float64(cov.PeriodDays) / daysPerMonth
		cov.EpisodesPerMonth = roundTo(float64(len(withDates))/months, 2)
	}
	return cov
}

func computeContent(records []domain.TranscriptRecord) Content {
	var content Content

	type counted struct {
		title string
		words int
		chars int
	}
	var transcripts []counted
	for _, rec := range records {
		if strings.TrimSpace(rec.Transcription) == "" {
			continue
		}
		transcripts = append(transcripts, counted{
			title: rec.Title,
			words: len(strings.Fields(rec.Transcription)),
			chars: len([]rune(rec.Transcription)),
		})
	}
	if len(transcripts) == 0 {
		return content
	}

	content.TotalTranscriptions = len(transcripts)
	shortest, longest := transcripts[0], transcripts[0]
	for _, t := range transcripts {
		content.TotalWords += t.words
		content.TotalCharacters += t.chars
		if t.words < shortest.words {
			shortest = t
		}
		if t.words > longest.words {
			longest = t
		}
	}
	content.AvgWords = content.TotalWords / len(transcripts)
	content.AvgCharacters = content.TotalCharacters / len(transcripts)
	content.Shortest = &EpisodeRef{Title: shortest.title, Words: shortest.words}
	content.Longest = &EpisodeRef{Title: longest.title, Words: longest.words}
	return content
}

func computeQuality(records []domain.TranscriptRecord) Quality {
	quality := Quality{TotalEpisodes: len(records)}

	for i, rec := range records {
		var issues []string

		if strings.TrimSpace(rec.Transcription) != "" {
			quality.WithTranscriptions++
		} else {
			issues = append(issues, "missing_transcription")
		}
		if _, ok := parseDate(rec.Date); ok {
			quality.WithDates++
		} else {
			issues = append(issues, "missing_or_invalid_date")
		}
		if strings.TrimSpace(rec.AudioURL) != "" {
			quality.WithAudioURLs++
		} else {
			issues = append(issues, "missing_audio_url")
		}

		if len(issues) > 0 {
			quality.MissingData = append(quality.MissingData, QualityIssue{
				Index:  i,
				Title:  rec.Title,
				Issues: issues,
			})
		}
	}

	if len(records) > 0 {
		complete := quality.WithTranscriptions + quality.WithDates + quality.WithAudioURLs
		quality.CompletionPercent = roundTo(float64(complete)/float64(len(records)*3)*100, 1)
	}
	return quality
}

func roundTo(v float64, decimals int) float64 {
	shift := 1.0
	for i := 0; i < decimals; i++ {
		shift *= 10
	}
	return float64(int(v*shift+0.5)) / shift
}

// Render writes the report as a readable console summary.
func (r Report) Render(w io.Writer) {
	line := strings.Repeat("=", 60)
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "PODCAST EPISODE STATISTICS")
	fmt.Fprintln(w, line)

	fmt.Fprintln(w, "\nEPISODE COVERAGE")
	fmt.Fprintf(w, "   Total Episodes: %d\n", r.Coverage.TotalEpisodes)
	fmt.Fprintf(w, "   Episodes with Dates: %d\n", r.Coverage.EpisodesWithDate)
	if r.Coverage.DateRange != "" {
		fmt.Fprintf(w, "   Period Covered: %s (%d days)\n", r.Coverage.DateRange, r.Coverage.PeriodDays)
		fmt.Fprintf(w, "   Average Episodes/Month: %.2f\n", r.Coverage.EpisodesPerMonth)
	}
	if r.Coverage.Earliest != nil {
		fmt.Fprintf(w, "   Earliest Episode: %s (%s)\n", r.Coverage.Earliest.Title, r.Coverage.Earliest.Date)
	}
	if r.Coverage.Latest != nil {
		fmt.Fprintf(w, "   Latest Episode: %s (%s)\n", r.Coverage.Latest.Title, r.Coverage.Latest.Date)
	}

	fmt.Fprintln(w, "\nCONTENT ANALYSIS")
	fmt.Fprintf(w, "   Episodes with Transcriptions: %d\n", r.Content.TotalTranscriptions)
	fmt.Fprintf(w, "   Total Words: %d\n", r.Content.TotalWords)
	fmt.Fprintf(w, "   Average Words per Episode: %d\n", r.Content.AvgWords)
	if r.Content.Shortest != nil {
		fmt.Fprintf(w, "   Shortest Episode: %s (%d words)\n", r.Content.Shortest.Title, r.Content.Shortest.Words)
	}
	if r.Content.Longest != nil {
		fmt.Fprintf(w, "   Longest Episode: %s (%d words)\n", r.Content.Longest.Title, r.Content.Longest.Words)
	}

	fmt.Fprintln(w, "\nDATA QUALITY")
	fmt.Fprintf(w, "   Episodes with Transcriptions: %d\n", r.Quality.WithTranscriptions)
	fmt.Fprintf(w, "   Episodes with Dates: %d\n", r.Quality.WithDates)
	fmt.Fprintf(w, "   Episodes with Audio URLs: %d\n", r.Quality.WithAudioURLs)
	fmt.Fprintf(w, "   Overall Completion: %.1f%%\n", r.Quality.CompletionPercent)
	for _, item := range r.Quality.MissingData {
		fmt.Fprintf(w, "   - %s: %s\n", item.Title, strings.Join(item.Issues, ", "))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, line)
}
