// Package render turns a resolved game into the HTML page the client bundle mounts into.
//
// The only contract with the client is the mount point: one element whose id
// is the game's slug.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"

	"games_play/internal/models"
)

//go:embed templates/play.html
var templatesFS embed.FS

var ErrNilGame = errors.New("game is nil")

type Options struct {
	SiteName  string
	BundleURL string
	// UploadsURL prefixes thumbnails stored as local file names.
	UploadsURL string
	// APIBase prefixes the JSON endpoint advertised to the client.
	APIBase string
}

type Dispatcher struct {
	tmpl *template.Template
	opts Options
}

// Document is a rendered page and the id of its mount point.
type Document struct {
	MountPointID string
	Body         []byte
}

func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.Body)
	return int64(n), err
}

type page struct {
	SiteName     string
	Title        string
	Description  string
	Thumbnail    string
	MountPointID string
	APIURL       string
	BundleURL    string
}

func NewDispatcher(opts Options) (*Dispatcher, error) {
	const op = "render.NewDispatcher"

	tmpl, err := template.ParseFS(templatesFS, "templates/play.html")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if opts.UploadsURL == "" {
		opts.UploadsURL = "/uploads/"
	}
	if opts.APIBase == "" {
		opts.APIBase = "/api/games/"
	}

	return &Dispatcher{tmpl: tmpl, opts: opts}, nil
}

// MountPointID is the element id the client bundle looks for.
func MountPointID(g *models.Game) string {
	return g.Slug
}

func (d *Dispatcher) Dispatch(g *models.Game) (*Document, error) {
	const op = "render.Dispatch"

	if g == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNilGame)
	}

	p := page{
		SiteName:     d.opts.SiteName,
		Title:        g.Title,
		Description:  g.Description,
		Thumbnail:    d.thumbnailURL(g.Thumbnail),
		MountPointID: MountPointID(g),
		APIURL:       joinURL(d.opts.APIBase, url.PathEscape(g.Slug)),
		BundleURL:    d.opts.BundleURL,
	}

	var buf bytes.Buffer
	if err := d.tmpl.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Document{MountPointID: p.MountPointID, Body: buf.Bytes()}, nil
}

func (d *Dispatcher) thumbnailURL(thumbnail string) string {
	if thumbnail == "" {
		return ""
	}
	if u, err := url.Parse(thumbnail); err == nil && u.IsAbs() {
		return thumbnail
	}
	return joinURL(d.opts.UploadsURL, url.PathEscape(thumbnail))
}

func joinURL(base, tail string) string {
	return strings.TrimRight(base, "/") + "/" + tail
}
