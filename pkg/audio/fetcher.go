package audio

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"podcast-rag/pkg/httpclient"
	"podcast-rag/pkg/logger"
)

// Fetcher downloads episode audio into a local directory, keyed by a
// filename derived from the episode title. Fetches are idempotent by title:
// if the derived file already exists it is returned without re-downloading.
//
// Two episodes whose titles sanitize to the same key collide on the same
// file. The feed GUID would be a stronger key; switching is an open issue,
// not something this layer papers over.
type Fetcher struct {
	dir    string
	client *httpclient.HTTPClient
	log    *logger.Logger
}

// NewFetcher creates a fetcher storing audio under dir.
func NewFetcher(dir string, log *logger.Logger) *Fetcher {
	return &Fetcher{
		dir: dir,
		// No client timeout: full-length episodes can take a while.
		client: httpclient.NewClient(0),
		log:    log,
	}
}

// Fetch returns the local path of the episode's audio, downloading it first
// if needed. On transport errors it returns an error and leaves any partial
// file in place for a later retry.
func (f *Fetcher) Fetch(title, url string) (string, error) {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", fmt.Errorf("create audio dir: %w", err)
	}

	path := filepath.Join(f.dir, SanitizeTitle(title)+".mp3")
	if _, err := os.Stat(path); err == nil {
		f.log.WithField("title", title).Info("audio already downloaded")
		return path, nil
	}

	f.log.WithField("title", title).WithField("url", url).Info("downloading audio")

	resp, err := f.client.Get(url)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: unexpected status code: %d", url, resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()

	// Stream in bounded chunks; full episodes never need to fit in memory.
	start := time.Now()
	written, err := io.CopyBuffer(out, resp.Body, make([]byte, 64*1024))
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}

	f.log.WithField("path", path).
		WithField("bytes", written).
		WithField("duration", time.Since(start).Round(time.Millisecond).String()).
		Info("audio saved")
	return path, nil
}

// SanitizeTitle derives a filesystem-safe key from an episode title by
// keeping only letters, digits, and spaces, then trimming trailing spaces.
func SanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), " ")
}
