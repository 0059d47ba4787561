package importer

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

func (i *Importer) processSteam(ctx context.Context, name string, urlCheck func(string) error) (*Result, error) {
	pageURL, err := i.findGameSteam(ctx, name)
	if err != nil {
		i.log.Warn("steam search failed, trying wiki",
			slog.String("game", name),
			slog.String("error", err.Error()))

		return i.processWiki(ctx, name, urlCheck)
	}

	if err := urlCheck(pageURL); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, pageURL)
	}

	res, err := i.parseGameSteam(ctx, pageURL)
	if err != nil {
		i.log.Error("steam page parsing failed",
			slog.String("game", name),
			slog.String("url", pageURL),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s - %s: %w", name, pageURL, err)
	}

	return res, nil
}

func (i *Importer) findGameSteam(ctx context.Context, name string) (string, error) {
	params := url.Values{}
	params.Add("term", name)
	params.Add("f", "games")
	params.Add("realm", "1")

	doc, err := i.document(ctx, i.steamSearchURL+"?"+params.Encode())
	if err != nil {
		return "", err
	}

	// первая подсказка - самое точное совпадение
	firstLink := ""
	doc.Find("a.match").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if href, ok := s.Attr("href"); ok && href != "" {
			firstLink = href
			return false
		}
		return true
	})

	if firstLink == "" {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	return firstLink, nil
}

func (i *Importer) parseGameSteam(ctx context.Context, pageURL string) (*Result, error) {
	doc, err := i.document(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	title := clean(doc.Find("#appHubAppName, div.apphub_AppName").First().Text())

	description := clean(doc.Find("div.game_description_snippet").First().Text())
	if description == "" {
		description = clean(doc.Find(`meta[property="og:description"]`).AttrOr("content", ""))
	}

	image := doc.Find("img.game_header_image_full").AttrOr("src", "")

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
