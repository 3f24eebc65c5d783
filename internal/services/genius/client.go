// Package genius looks songs up on Genius and scrapes their lyric pages.
package genius

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/text/cases"

	"lyricsync/internal/lyrics"
	"lyricsync/internal/services"
)

const (
	defaultBaseURL = "https://api.genius.com"
	defaultWebURL  = "https://genius.com"
	defaultTimeout = 20 * time.Second
)

// Config captures the API token and endpoints.
type Config struct {
	AccessToken string
	BaseURL     string
	WebURL      string
}

// Song is the subset of a Genius search hit used by lyricsync.
type Song struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	ArtistNames  string `json:"artist_names"`
	Path         string `json:"path"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"song_art_image_thumbnail_url"`
	ArtworkURL   string `json:"song_art_image_url"`
}

// Lyrics is a parsed lyric page.
type Lyrics struct {
	Document    *lyrics.Document
	Description string
}

// Client talks to the Genius API and website.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient builds a client. A nil httpClient gets a default with a timeout.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	cfg.AccessToken = strings.TrimSpace(cfg.AccessToken)
	if cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.WebURL = strings.TrimRight(strings.TrimSpace(cfg.WebURL), "/"); cfg.WebURL == "" {
		cfg.WebURL = defaultWebURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{cfg: cfg, http: httpClient}
}

type searchResponse struct {
	Response struct {
		Hits []struct {
			Type   string `json:"type"`
			Result Song   `json:"result"`
		} `json:"hits"`
	} `json:"response"`
}

func sameName(a, b string) bool {
	fold := cases.Fold()
	return fold.String(strings.TrimSpace(a)) == fold.String(strings.TrimSpace(b))
}

// FindSong searches Genius for title and returns the first song hit whose
// title and artist names equal the requested ones, ignoring case and
// surrounding space.
func (c *Client) FindSong(ctx context.Context, title, artist string) (*Song, error) {
	if c.cfg.AccessToken == "" {
		return nil, services.Wrap(services.ErrConfiguration, "genius", "search", "access token required", nil)
	}
	endpoint := c.cfg.BaseURL + "/search?" + url.Values{"q": {strings.TrimSpace(title)}}.Encode()
	body, err := c.get(ctx, endpoint, true)
	if err != nil {
		return nil, err
	}
	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "genius", "search", "decode response", err)
	}
	for _, hit := range decoded.Response.Hits {
		if hit.Type != "song" {
			continue
		}
		if sameName(hit.Result.Title, title) && sameName(hit.Result.ArtistNames, artist) {
			song := hit.Result
			return &song, nil
		}
	}
	return nil, services.Wrap(services.ErrNotFound, "genius", "search", fmt.Sprintf("no song %q by %q", title, artist), nil)
}

// FetchLyrics downloads the lyric page at path (as returned in Song.Path)
// and parses its lyric containers.
func (c *Client) FetchLyrics(ctx context.Context, path string) (*Lyrics, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	body, err := c.get(ctx, c.cfg.WebURL+path, false)
	if err != nil {
		return nil, err
	}
	page, err := ParsePage(bytes.NewReader(body))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "genius", "parse page", path, err)
	}
	if len(page.Lines) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "genius", "parse page", "no lyrics on "+path, nil)
	}
	return &Lyrics{Document: lyrics.Parse(page.Lines), Description: page.Description}, nil
}

func (c *Client) get(ctx context.Context, endpoint string, authorized bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("genius: build request: %w", err)
	}
	if authorized {
		req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	}
	req.Header.Set("User-Agent", "lyricsync")
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, services.Wrap(services.ErrTransient, "genius", "request", endpoint, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "genius", "read response", endpoint, err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, services.Wrap(services.ErrConfiguration, "genius", "request", fmt.Sprintf("http %d", resp.StatusCode), nil)
	case resp.StatusCode == http.StatusNotFound:
		return nil, services.Wrap(services.ErrNotFound, "genius", "request", endpoint, nil)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return nil, services.Wrap(services.ErrTransient, "genius", "request", fmt.Sprintf("http %d", resp.StatusCode), nil)
	case resp.StatusCode >= http.StatusMultipleChoices:
		return nil, services.Wrap(services.ErrExternalTool, "genius", "request", fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	return body, nil
}
