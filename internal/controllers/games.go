package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"games_play/internal/importer"
	"games_play/internal/models"
	"games_play/internal/render"
	"games_play/internal/slug"
	"games_play/internal/storage"
	"games_play/internal/storage/uploads"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxFormMemory = 10 << 20

type GameServicer interface {
	GetAll(ctx context.Context, featuredOnly bool) ([]models.Game, error)
	Resolve(ctx context.Context, gameSlug string) (*models.Game, error)
	GetByID(ctx context.Context, id int64) (*models.Game, error)
	Create(ctx context.Context, g *models.Game) (*models.Game, error)
	AssignSlug(ctx context.Context, id int64, newSlug string) (*models.Game, error)
	GetGameByURL(ctx context.Context, url string) error
}

type PageRenderer interface {
	Dispatch(g *models.Game) (*render.Document, error)
}

type GameImporter interface {
	Fetch(ctx context.Context, name, source string, urlCheck func(string) error) (*importer.Result, error)
	DownloadImage(ctx context.Context, url string) ([]byte, string, error)
}

type GameController struct {
	service       GameServicer
	renderer      PageRenderer
	importer      GameImporter
	uploads       uploads.IUploads
	log           *slog.Logger
	importWorkers int
	importTimeout time.Duration
}

func NewGameController(
	s GameServicer,
	r PageRenderer,
	imp GameImporter,
	u uploads.IUploads,
	log *slog.Logger,
) *GameController {
	return &GameController{
		service:       s,
		renderer:      r,
		importer:      imp,
		uploads:       u,
		log:           log,
		importWorkers: 10,
		importTimeout: 10 * time.Second,
	}
}

// WithImportLimits overrides the import worker count and deadline.
func (c *GameController) WithImportLimits(workers int, timeout time.Duration) *GameController {
	if workers > 0 {
		c.importWorkers = workers
	}
	if timeout > 0 {
		c.importTimeout = timeout
	}
	return c
}

// Play renders the page the client bundle mounts into.
func (c *GameController) Play(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.Play"

	gameSlug := chi.URLParam(r, "slug")

	game, err := c.service.Resolve(r.Context(), gameSlug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.log.Debug("game not found", slog.String("operation", op), slog.String("slug", gameSlug))
			http.Error(w, ErrNotFound.Error(), http.StatusNotFound)
			return
		}
		c.log.Error(
			ErrGetGame.Error(),
			slog.String("operation", op),
			slog.String("slug", gameSlug),
			slog.String("error", err.Error()))
		http.Error(w, ErrGetGame.Error(), http.StatusInternalServerError)
		return
	}

	doc, err := c.renderer.Dispatch(game)
	if err != nil {
		c.log.Error(
			ErrRender.Error(),
			slog.String("operation", op),
			slog.String("slug", gameSlug),
			slog.String("error", err.Error()))
		http.Error(w, ErrRender.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := doc.WriteTo(w); err != nil {
		c.log.Error(ErrRender.Error(), slog.String("operation", op), slog.String("error", err.Error()))
	}
}

// PlayByID keeps links from before slugs working by redirecting them.
func (c *GameController) PlayByID(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.PlayByID"

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, ErrInvalidURL.Error(), http.StatusBadRequest)
		return
	}

	game, err := c.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, ErrNotFound.Error(), http.StatusNotFound)
			return
		}
		c.log.Error(
			ErrGetGame.Error(),
			slog.String("operation", op),
			slog.Int64("id", id),
			slog.String("error", err.Error()))
		http.Error(w, ErrGetGame.Error(), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/games/"+url.PathEscape(game.Slug), http.StatusMovedPermanently)
}

func (c *GameController) GetAll(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.GetAll"

	featuredOnly, _ := strconv.ParseBool(r.URL.Query().Get("featured"))

	games, err := c.service.GetAll(r.Context(), featuredOnly)
	if err != nil {
		c.log.Error(
			ErrGetGames.Error(),
			slog.String("operation", op),
			slog.String("error", err.Error()))
		http.Error(w, ErrGetGames.Error(), http.StatusInternalServerError)
		return
	}

	res := make([]GameResponse, 0, len(games))
	for _, g := range games {
		res = append(res, newGameResponse(g))
	}

	c.writeJSON(w, http.StatusOK, res, op)
}

func (c *GameController) GetBySlug(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.GetBySlug"

	gameSlug := chi.URLParam(r, "slug")

	game, err := c.service.Resolve(r.Context(), gameSlug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, ErrNotFound.Error(), http.StatusNotFound)
			return
		}
		c.log.Error(
			ErrGetGame.Error(),
			slog.String("operation", op),
			slog.String("slug", gameSlug),
			slog.String("error", err.Error()))
		http.Error(w, ErrGetGame.Error(), http.StatusInternalServerError)
		return
	}

	c.writeJSON(w, http.StatusOK, newGameResponse(*game), op)
}

func (c *GameController) Create(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.Create"

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		c.log.Error(ErrCreate.Error(), slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, "cannot parse form", http.StatusBadRequest)
		return
	}

	featured, _ := strconv.ParseBool(r.FormValue("featured"))
	request := CreateGameRequest{
		Slug:         strings.TrimSpace(r.FormValue("slug")),
		Title:        strings.TrimSpace(r.FormValue("title")),
		Description:  strings.TrimSpace(r.FormValue("description")),
		ThumbnailURL: strings.TrimSpace(r.FormValue("thumbnail_url")),
		Featured:     featured,
	}

	file, header, err := r.FormFile("thumbnail")
	if err == nil {
		defer file.Close()
		request.hasThumbnailFile = true
	}

	if err := request.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	thumbnail := request.ThumbnailURL
	uploaded := ""
	if request.hasThumbnailFile {
		imageData, err := io.ReadAll(file)
		if err != nil {
			c.log.Error("failed to read thumbnail", slog.String("operation", op), slog.String("error", err.Error()))
			http.Error(w, "failed to read thumbnail", http.StatusInternalServerError)
			return
		}

		uploaded = uuid.New().String() + strings.ToLower(filepath.Ext(header.Filename))
		if err := c.uploads.SaveThumbnail(imageData, uploaded); err != nil {
			if errors.Is(err, uploads.ErrInvalidImage) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			c.log.Error("failed to save thumbnail", slog.String("operation", op), slog.String("error", err.Error()))
			http.Error(w, "failed to save thumbnail", http.StatusInternalServerError)
			return
		}
		thumbnail = uploaded
	}

	game := &models.Game{
		Slug:        request.Slug,
		Title:       request.Title,
		Description: request.Description,
		Thumbnail:   thumbnail,
		Featured:    request.Featured,
	}

	res, err := c.service.Create(r.Context(), game)
	if err != nil {
		if uploaded != "" {
			_ = c.uploads.DeleteThumbnail(uploaded)
		}

		switch {
		case errors.Is(err, storage.ErrExists):
			http.Error(w, ErrExists.Error(), http.StatusConflict)
		case errors.Is(err, slug.ErrInvalid):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			c.log.Error(ErrCreate.Error(), slog.String("operation", op), slog.String("error", err.Error()))
			http.Error(w, ErrCreate.Error(), http.StatusInternalServerError)
		}
		return
	}

	c.writeJSON(w, http.StatusCreated, newGameResponse(*res), op)
}

func (c *GameController) AssignSlug(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.AssignSlug"

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, ErrInvalidURL.Error(), http.StatusBadRequest)
		return
	}

	var request AssignSlugRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, ErrBadRequest.Error(), http.StatusBadRequest)
		return
	}

	if err := request.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := c.service.AssignSlug(r.Context(), id, request.Slug)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			http.Error(w, ErrNotFound.Error(), http.StatusNotFound)
		case errors.Is(err, storage.ErrExists):
			http.Error(w, ErrExists.Error(), http.StatusConflict)
		case errors.Is(err, slug.ErrInvalid):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			c.log.Error(
				ErrUpdate.Error(),
				slog.String("operation", op),
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			http.Error(w, ErrUpdate.Error(), http.StatusInternalServerError)
		}
		return
	}

	c.writeJSON(w, http.StatusOK, newGameResponse(*res), op)
}

func (c *GameController) writeJSON(w http.ResponseWriter, status int, v any, op string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		c.log.Error(ErrEncoding.Error(), slog.String("operation", op), slog.String("error", err.Error()))
	}
}
