// Package importer fills new game records from public catalogue pages.
package importer

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	SourceSteam = "Steam"
	SourceWiki  = "Wiki"

	defaultSteamSearchURL = "https://store.steampowered.com/search/suggest"
	defaultWikiAPIURL     = "https://en.wikipedia.org/w/api.php"

	userAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.36"
	maxImageBytes = 10 << 20
)

var (
	ErrInvalidSource = errors.New("invalid source")
	ErrNotFound      = errors.New("game not found")
	ErrParsing       = errors.New("failed to parse document")
	ErrAlreadyExists = errors.New("game already exists")
	ErrImage         = errors.New("failed to download image")
)

// Result is what a catalogue page tells about a game.
type Result struct {
	Title       string
	Description string
	ImageURL    string
	SourceURL   string
}

type Importer struct {
	client         *http.Client
	log            *slog.Logger
	steamSearchURL string
	wikiAPIURL     string
}

type Option func(*Importer)

func WithSteamSearchURL(u string) Option {
	return func(i *Importer) { i.steamSearchURL = u }
}

func WithWikiAPIURL(u string) Option {
	return func(i *Importer) { i.wikiAPIURL = u }
}

func WithHTTPClient(c *http.Client) Option {
	return func(i *Importer) { i.client = c }
}

func New(log *slog.Logger, timeout time.Duration, opts ...Option) *Importer {
	i := &Importer{
		client:         &http.Client{Timeout: timeout},
		log:            log,
		steamSearchURL: defaultSteamSearchURL,
		wikiAPIURL:     defaultWikiAPIURL,
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// Fetch looks the game up in source. urlCheck is called with the page URL
// before parsing and should fail if that page was imported already.
// A Steam search miss falls back to Wikipedia.
func (i *Importer) Fetch(ctx context.Context, name, source string, urlCheck func(string) error) (*Result, error) {
	const op = "importer.Fetch"

	switch source {
	case SourceSteam:
		res, err := i.processSteam(ctx, name, urlCheck)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return res, nil
	case SourceWiki:
		res, err := i.processWiki(ctx, name, urlCheck)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return res, nil
	default:
		return nil, fmt.Errorf("%s: %q: %w", op, source, ErrInvalidSource)
	}
}

// DownloadImage fetches an image and returns its bytes and content type.
func (i *Importer) DownloadImage(ctx context.Context, url string) ([]byte, string, error) {
	if url == "" {
		return nil, "", fmt.Errorf("%w: image url is empty", ErrImage)
	}

	resp, err := i.get(ctx, url)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrImage, err)
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("%w: unexpected content type: %s", ErrImage, contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrImage, err)
	}

	return data, contentType, nil
}

// ImageFilename derives a stable file name from the image URL.
func ImageFilename(url, contentType string) string {
	ext := ".jpg"
	switch {
	case strings.Contains(contentType, "png"):
		ext = ".png"
	case strings.Contains(contentType, "gif"):
		ext = ".gif"
	case strings.Contains(contentType, "webp"):
		ext = ".webp"
	}

	hash := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%x%s", hash[:8], ext)
}

func (i *Importer) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp, nil
}

func (i *Importer) document(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := i.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParsing, err)
	}

	return doc, nil
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
