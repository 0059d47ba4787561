package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"games_play/internal/importer"
	"games_play/internal/models"
	"games_play/internal/storage/uploads"
)

// Import creates games from catalogue pages, ten lookups at a time.
func (c *GameController) Import(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.Import"

	var request ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		c.log.Error(ErrBadRequest.Error(), slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, ErrBadRequest.Error(), http.StatusBadRequest)
		return
	}

	if err := request.Validate(); err != nil {
		c.log.Warn(ErrImport.Error(), slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	for i, game := range request.Games {
		if err := game.Validate(); err != nil {
			http.Error(w, fmt.Sprintf("games[%d]: %s", i, err.Error()), http.StatusBadRequest)
			return
		}
	}

	var (
		sem         = make(chan struct{}, c.importWorkers)
		wg          sync.WaitGroup
		errChan     = make(chan error, len(request.Games))
		resultsChan = make(chan *models.Game, len(request.Games))
	)

	ctx, cancel := context.WithTimeout(r.Context(), c.importTimeout)
	defer cancel()

	for _, game := range request.Games {
		sem <- struct{}{}
		wg.Add(1)
		go func(name, source string) {
			defer func() {
				<-sem
				wg.Done()
			}()

			created, err := c.importSingleGame(ctx, name, source)
			if err != nil {
				errChan <- fmt.Errorf("%s: %w", name, err)
				return
			}
			resultsChan <- created
		}(game.Name, game.Source)
	}

	wg.Wait()
	close(errChan)
	close(resultsChan)

	response := ImportResponse{
		Success: make([]GameResponse, 0, len(request.Games)),
		Errors:  make([]string, 0),
	}

	for err := range errChan {
		response.Errors = append(response.Errors, err.Error())
	}

	for g := range resultsChan {
		response.Success = append(response.Success, newGameResponse(*g))
	}

	status := http.StatusCreated

	if len(response.Errors) > 0 {
		if len(response.Success) == 0 {
			status = http.StatusInternalServerError
		} else {
			status = http.StatusMultiStatus
		}
		c.log.Warn(
			ErrPartialCreate.Error(),
			slog.String("operation", op),
			slog.Int("success_count", len(response.Success)),
			slog.Int("error_count", len(response.Errors)),
		)
		for _, e := range response.Errors {
			c.log.Warn(ErrPartialCreate.Error(), slog.String("error", e))
		}
	} else {
		c.log.Info("games imported", slog.Int("count", len(response.Success)))
	}

	c.writeJSON(w, status, response, op)
}

func (c *GameController) importSingleGame(ctx context.Context, name, source string) (*models.Game, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	res, err := c.importer.Fetch(ctx, name, source, func(sourceURL string) error {
		return c.service.GetGameByURL(ctx, sourceURL)
	})
	if err != nil {
		return nil, err
	}

	thumbnail, saved := c.storeRemoteThumbnail(ctx, res.ImageURL)
	if thumbnail == "" {
		return nil, errors.New("thumbnail not found")
	}

	game, err := c.service.Create(ctx, &models.Game{
		Title:       res.Title,
		Description: res.Description,
		Thumbnail:   thumbnail,
		SourceURL:   res.SourceURL,
	})
	if err != nil {
		if saved {
			_ = c.uploads.DeleteThumbnail(thumbnail)
		}
		return nil, err
	}

	return game, nil
}

// storeRemoteThumbnail copies the image into uploads. When the download
// fails the remote URL is used as is. saved reports a newly written file.
func (c *GameController) storeRemoteThumbnail(ctx context.Context, imageURL string) (thumbnail string, saved bool) {
	if imageURL == "" {
		return "", false
	}

	data, contentType, err := c.importer.DownloadImage(ctx, imageURL)
	if err != nil {
		c.log.Warn("using remote thumbnail", slog.String("url", imageURL), slog.String("error", err.Error()))
		return imageURL, false
	}

	filename := importer.ImageFilename(imageURL, contentType)
	switch err := c.uploads.SaveThumbnail(data, filename); {
	case err == nil:
		return filename, true
	case errors.Is(err, uploads.ErrFileExists):
		return filename, false
	default:
		c.log.Warn("using remote thumbnail", slog.String("url", imageURL), slog.String("error", err.Error()))
		return imageURL, false
	}
}
