// Package search talks to the video platform through yt-dlp. It is a
// boundary collaborator: the rest of the system only depends on the
// Searcher and Downloader contracts and keeps working when the backend
// is unreachable.
package search

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

// Result is the minimal song shape a search returns.
type Result struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Artist    string  `json:"artist"`
	Thumbnail *string `json:"thumbnail,omitempty"`
	Duration  int64   `json:"duration"`
}

// Searcher finds songs on the platform.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Downloader exports a song as an audio file and returns its path.
type Downloader interface {
	Download(ctx context.Context, songID, title string) (string, error)
}

// Options configures the client.
type Options struct {
	MaxResults      int
	Timeout         time.Duration
	DownloadDir     string
	DownloadTimeout time.Duration
}

// Client implements Searcher and Downloader over yt-dlp, tracking
// availability so callers can gate these features.
type Client struct {
	opts Options

	mu        sync.Mutex
	available bool
	checked   bool
}

// Verify the client satisfies both contracts at compile time.
var (
	_ Searcher   = (*Client)(nil)
	_ Downloader = (*Client)(nil)
)

// NewClient creates a search/download client.
func NewClient(opts Options) *Client {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 20
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.DownloadTimeout <= 0 {
		opts.DownloadTimeout = 5 * time.Minute
	}
	return &Client{opts: opts}
}

// CheckAvailability verifies the yt-dlp backend can run, installing it
// if needed. The result is cached; failed calls later flip it back.
func (c *Client) CheckAvailability(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.checked {
		return c.available
	}

	_, err := ytdlp.Install(ctx, nil)
	c.checked = true
	c.available = err == nil
	return c.available
}

// Available reports the last known backend availability.
func (c *Client) Available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checked && c.available
}

func (c *Client) markAvailable(ok bool) {
	c.mu.Lock()
	c.checked = true
	c.available = ok
	c.mu.Unlock()
}

// Search runs a platform search and maps the entries to Results.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if !c.Available() {
		return nil, ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	dl := ytdlp.New().
		SkipDownload().
		FlatPlaylist()

	target := fmt.Sprintf("ytsearch%d:%s", c.opts.MaxResults, query)
	res, err := dl.Run(ctx, target)
	if err != nil {
		if ctx.Err() != nil {
			c.markAvailable(false)
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	infos, err := res.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	results := make([]Result, 0, c.opts.MaxResults)
	for _, info := range infos {
		if len(info.Entries) > 0 {
			for _, entry := range info.Entries {
				results = append(results, toResult(entry))
			}
			continue
		}
		results = append(results, toResult(info))
	}
	if len(results) > c.opts.MaxResults {
		results = results[:c.opts.MaxResults]
	}
	return results, nil
}

// Download fetches the song audio into the download directory and
// returns the written file's path.
func (c *Client) Download(ctx context.Context, songID, title string) (string, error) {
	if !c.Available() {
		return "", ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.DownloadTimeout)
	defer cancel()

	dl := ytdlp.New().
		ExtractAudio().
		AudioFormat("mp3").
		RestrictFilenames().
		ForceOverwrites().
		Output(filepath.Join(c.opts.DownloadDir, "%(title)s.%(ext)s"))

	res, err := dl.Run(ctx, videoURL(songID))
	if err != nil {
		if ctx.Err() != nil {
			c.markAvailable(false)
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	if infos, err := res.GetExtractedInfo(); err == nil && len(infos) > 0 {
		if infos[0].Filename != nil && *infos[0].Filename != "" {
			return *infos[0].Filename, nil
		}
	}

	// Fall back to the sanitized title when yt-dlp does not report the
	// output path
	return filepath.Join(c.opts.DownloadDir, SanitizeFilename(title)+".mp3"), nil
}

func toResult(info *ytdlp.ExtractedInfo) Result {
	r := Result{ID: info.ID}
	if info.Title != nil {
		r.Title = *info.Title
	}
	if info.Channel != nil && *info.Channel != "" {
		r.Artist = *info.Channel
	} else if info.Uploader != nil {
		r.Artist = *info.Uploader
	}
	if info.Thumbnail != nil && *info.Thumbnail != "" {
		r.Thumbnail = info.Thumbnail
	}
	if info.Duration != nil {
		r.Duration = int64(*info.Duration)
	}
	return r
}

func videoURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFilename lowercases the title and replaces anything unsafe
// with underscores.
func SanitizeFilename(title string) string {
	cleaned := unsafeFilenameChars.ReplaceAllString(title, "_")
	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		cleaned = "download"
	}
	return strings.ToLower(cleaned)
}
