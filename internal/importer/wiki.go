package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func (i *Importer) processWiki(ctx context.Context, name string, urlCheck func(string) error) (*Result, error) {
	pageURL, err := i.findGameWiki(ctx, name)
	if err != nil {
		i.log.Error("wiki search failed",
			slog.String("game", name),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if err := urlCheck(pageURL); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, pageURL)
	}

	res, err := i.parseGameWiki(ctx, pageURL)
	if err != nil {
		i.log.Error("wiki page parsing failed",
			slog.String("game", name),
			slog.String("url", pageURL),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s - %s: %w", name, pageURL, err)
	}

	return res, nil
}

// findGameWiki uses the opensearch API: [query, [titles], [descriptions], [links]].
func (i *Importer) findGameWiki(ctx context.Context, name string) (string, error) {
	params := url.Values{}
	params.Add("action", "opensearch")
	params.Add("format", "json")
	params.Add("formatversion", "2")
	params.Add("search", name)
	params.Add("namespace", "0")
	params.Add("limit", "10")

	resp, err := i.get(ctx, i.wikiAPIURL+"?"+params.Encode())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var data []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("%w: %w", ErrParsing, err)
	}

	if len(data) < 4 {
		return "", fmt.Errorf("%w: %q: no data", ErrNotFound, name)
	}

	var links []string
	if err := json.Unmarshal(data[3], &links); err != nil {
		return "", fmt.Errorf("%w: %w", ErrParsing, err)
	}

	if len(links) == 0 || links[0] == "" {
		return "", fmt.Errorf("%w: %q: no links", ErrNotFound, name)
	}

	return links[0], nil
}

func (i *Importer) parseGameWiki(ctx context.Context, pageURL string) (*Result, error) {
	doc, err := i.document(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	infobox := doc.Find("table.infobox").First()

	title := clean(infobox.Find("th.infobox-above").First().Text())
	if title == "" {
		title = clean(doc.Find("h1#firstHeading").Text())
	}

	image := infobox.Find("td.infobox-image img").AttrOr("src", "")
	if strings.HasPrefix(image, "//") {
		image = "https:" + image
	}

	description := ""
	doc.Find("div.mw-parser-output > p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		description = clean(s.Text())
		return description == ""
	})

	if title == "" || description == "" {
		return nil, fmt.Errorf("%w: missing title or description", ErrParsing)
	}

	return &Result{
		Title:       title,
		Description: description,
		ImageURL:    image,
		SourceURL:   pageURL,
	}, nil
}
