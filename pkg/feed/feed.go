package feed

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"podcast-rag/pkg/domain"
	"podcast-rag/pkg/httpclient"
	"podcast-rag/pkg/logger"
)

// pubDateLayout matches the feed's pubDate once the trailing timezone token
// has been stripped, e.g. "Tue, 08 Jul 2025 07:00:00 GMT" -> "Tue, 08 Jul 2025 07:00:00".
const pubDateLayout = "Mon, 02 Jan 2006 15:04:05"

// Catalog fetches and normalizes episode metadata from the podcast feed.
// It holds no state between fetches.
type Catalog struct {
	feedURL string
	client  *httpclient.HTTPClient
	parser  *gofeed.Parser
	log     *logger.Logger
}

// NewCatalog creates a catalog for the given feed URL.
func NewCatalog(feedURL string, log *logger.Logger) *Catalog {
	return &Catalog{
		feedURL: feedURL,
		client:  httpclient.NewClient(30 * time.Second),
		parser:  gofeed.NewParser(),
		log:     log,
	}
}

// Fetch returns the feed's episodes. It fails softly: on transport or parse
// errors it logs and returns an empty slice, which callers treat as "nothing
// new". Entries missing a title, a parseable pubDate, or an audio enclosure
// are dropped.
func (c *Catalog) Fetch() []domain.Episode {
	body, err := c.fetchFeed()
	if err != nil {
		c.log.WithError(err).WithField("feed_url", c.feedURL).Error("failed to fetch feed")
		return nil
	}

	parsed, err := c.parser.ParseString(body)
	if err != nil {
		c.log.WithError(err).Error("failed to parse feed")
		return nil
	}

	episodes := make([]domain.Episode, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		ep, ok := c.normalizeItem(item)
		if !ok {
			continue
		}
		episodes = append(episodes, ep)
	}

	c.log.WithField("count", len(episodes)).Info("fetched feed episodes")
	return episodes
}

func (c *Catalog) fetchFeed() (string, error) {
	resp, err := c.client.Get(c.feedURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// normalizeItem applies the admission rule: title, parseable date, and audio
// enclosure are required, everything else is optional metadata.
func (c *Catalog) normalizeItem(item *gofeed.Item) (domain.Episode, bool) {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return domain.Episode{}, false
	}

	date, err := ParsePubDate(item.Published)
	if err != nil {
		c.log.WithError(err).WithField("pub_date", item.Published).Warn("could not parse date, dropping entry")
		return domain.Episode{}, false
	}

	audioURL := audioEnclosure(item)
	if audioURL == "" {
		return domain.Episode{}, false
	}

	ep := domain.Episode{
		Title:       title,
		PublishDate: date,
		AudioURL:    audioURL,
		Link:        strings.TrimSpace(item.Link),
		Description: stripHTML(item.Description),
		GUID:        strings.TrimSpace(item.GUID),
	}

	if it := item.ITunesExt; it != nil {
		ep.Duration = strings.TrimSpace(it.Duration)
		ep.EpisodeNumber = strings.TrimSpace(it.Episode)
		ep.Subtitle = strings.TrimSpace(it.Subtitle)
	}

	return ep, true
}

// ParsePubDate parses a feed pubDate by dropping the trailing timezone token
// and matching the fixed day/month/time layout.
func ParsePubDate(raw string) (time.Time, error) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) < 2 {
		return time.Time{}, fmt.Errorf("pubDate too short: %q", raw)
	}

	withoutTZ := strings.Join(fields[:len(fields)-1], " ")
	t, err := time.Parse(pubDateLayout, withoutTZ)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse pubDate %q: %w", raw, err)
	}
	return t, nil
}

func audioEnclosure(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc == nil {
			continue
		}
		if enc.Type == "audio/mpeg" && strings.TrimSpace(enc.URL) != "" {
			return strings.TrimSpace(enc.URL)
		}
	}
	return ""
}

// stripHTML reduces a description to compact plain text. Feed descriptions
// usually carry markup.
func stripHTML(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
