package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"games_play/internal/importer"
	"games_play/internal/models"
	"games_play/internal/render"
	"games_play/internal/slug"
	"games_play/internal/storage"
	"games_play/internal/storage/uploads"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGameService реализует мок для services.GameService
type MockGameService struct {
	mock.Mock
}

func (m *MockGameService) GetAll(ctx context.Context, featuredOnly bool) ([]models.Game, error) {
	args := m.Called(ctx, featuredOnly)
	return args.Get(0).([]models.Game), args.Error(1)
}

func (m *MockGameService) Resolve(ctx context.Context, gameSlug string) (*models.Game, error) {
	args := m.Called(ctx, gameSlug)
	g, _ := args.Get(0).(*models.Game)
	return g, args.Error(1)
}

func (m *MockGameService) GetByID(ctx context.Context, id int64) (*models.Game, error) {
	args := m.Called(ctx, id)
	g, _ := args.Get(0).(*models.Game)
	return g, args.Error(1)
}

func (m *MockGameService) Create(ctx context.Context, g *models.Game) (*models.Game, error) {
	args := m.Called(ctx, g)
	res, _ := args.Get(0).(*models.Game)
	return res, args.Error(1)
}

func (m *MockGameService) AssignSlug(ctx context.Context, id int64, newSlug string) (*models.Game, error) {
	args := m.Called(ctx, id, newSlug)
	g, _ := args.Get(0).(*models.Game)
	return g, args.Error(1)
}

func (m *MockGameService) GetGameByURL(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

// MockUploads реализует мок для uploads.Uploads
type MockUploads struct {
	mock.Mock
}

func (m *MockUploads) SaveThumbnail(data []byte, filename string) error {
	args := m.Called(data, filename)
	return args.Error(0)
}

func (m *MockUploads) DeleteThumbnail(filename string) error {
	args := m.Called(filename)
	return args.Error(0)
}

type MockImporter struct {
	mock.Mock
}

func (m *MockImporter) Fetch(ctx context.Context, name, source string, urlCheck func(string) error) (*importer.Result, error) {
	args := m.Called(ctx, name, source, urlCheck)
	res, _ := args.Get(0).(*importer.Result)
	return res, args.Error(1)
}

func (m *MockImporter) DownloadImage(ctx context.Context, url string) ([]byte, string, error) {
	args := m.Called(ctx, url)
	data, _ := args.Get(0).([]byte)
	return data, args.String(1), args.Error(2)
}

type testController struct {
	ctrl     *GameController
	service  *MockGameService
	uploads  *MockUploads
	importer *MockImporter
}

func setupController(t *testing.T) testController {
	t.Helper()

	dispatcher, err := render.NewDispatcher(render.Options{SiteName: "Games", BundleURL: "/static/play.js"})
	require.NoError(t, err)

	tc := testController{
		service:  &MockGameService{},
		uploads:  &MockUploads{},
		importer: &MockImporter{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tc.ctrl = NewGameController(tc.service, dispatcher, tc.importer, tc.uploads, logger)

	return tc
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func platformer() *models.Game {
	return &models.Game{
		ID:          1,
		Slug:        "platformer",
		Title:       "Platformer",
		Description: "Jump and run",
		Thumbnail:   "platformer.png",
	}
}

func TestGameController_Play(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tc := setupController(t)
		tc.service.On("Resolve", mock.Anything, "platformer").Return(platformer(), nil)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/games/platformer", nil), "slug", "platformer")
		w := httptest.NewRecorder()

		tc.ctrl.Play(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

		doc, err := goquery.NewDocumentFromReader(w.Body)
		require.NoError(t, err)
		assert.Equal(t, 1, doc.Find("#platformer").Length())
		assert.Equal(t, "/api/games/platformer", doc.Find("#platformer").AttrOr("data-api-url", ""))

		tc.service.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		tc := setupController(t)
		tc.service.On("Resolve", mock.Anything, "nonexistent").
			Return(nil, fmt.Errorf("services.games.Resolve: %w", storage.ErrNotFound))

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/games/nonexistent", nil), "slug", "nonexistent")
		w := httptest.NewRecorder()

		tc.ctrl.Play(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.NotContains(t, w.Body.String(), "<html")
	})

	t.Run("storage error", func(t *testing.T) {
		tc := setupController(t)
		tc.service.On("Resolve", mock.Anything, "platformer").Return(nil, errors.New("db down"))

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/games/platformer", nil), "slug", "platformer")
		w := httptest.NewRecorder()

		tc.ctrl.Play(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("same page twice", func(t *testing.T) {
		tc := setupController(t)
		tc.service.On("Resolve", mock.Anything, "platformer").Return(platformer(), nil)

		var bodies []string
		for i := 0; i < 2; i++ {
			req := withURLParam(httptest.NewRequest(http.MethodGet, "/games/platformer", nil), "slug", "platformer")
			w := httptest.NewRecorder()
			tc.ctrl.Play(w, req)
			bodies = append(bodies, w.Body.String())
		}

		assert.Equal(t, bodies[0], bodies[1])
	})
}

func TestGameController_PlayByID(t *testing.T) {
	t.Run("redirects to slug", func(t *testing.T) {
		tc := setupController(t)
		tc.service.On("GetByID", mock.Anything, int64(1)).Return(platformer(), nil)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/games/id/1", nil), "id", "1")
		w := httptest.NewRecorder()

		tc.ctrl.PlayByID(w, req)

		assert.Equal(t, http.StatusMovedPermanently, w.Code)
		assert.Equal(t, "/games/platformer", w.Header().Get("Location"))
	})

	t.Run("invalid id", func(t *testing.T) {
		tc := setupController(t)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/games/id/abc", nil), "id", "abc")
		w := httptest.NewRecorder()

		tc.ctrl.PlayByID(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		tc.service.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		tc := setupController(t)
		tc.service.On("GetByID", mock.Anything, int64(999)).Return(nil, storage.ErrNotFound)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/games/id/999", nil), "id", "999")
		w := httptest.NewRecorder()

		tc.ctrl.PlayByID(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGameController_GetAll(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tc := setupController(t)

		games := []models.Game{
			{ID: 1, Slug: "game-1", Title: "Game 1"},
			{ID: 2, Slug: "game-2", Title: "Game 2", Featured: true},
		}
		tc.service.On("GetAll", mock.Anything, false).Return(games, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/games", nil)
		w := httptest.NewRecorder()

		tc.ctrl.GetAll(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var res []GameResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		require.Len(t, res, 2)
		assert.Equal(t, "game-1", res[0].Slug)
		assert.Equal(t, "games/game-2", res[1].PlayURL)

		tc.service.AssertExpectations(t)
	})

	t.Run("featured only", func(t *testing.T) {
		tc := setupController(t)
		tc.service.On("GetAll", mock.Anything, true).Return([]models.Game{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/games?featured=true", nil)
		w := httptest.NewRecorder()

		tc.ctrl.GetAll(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
		tc.service.AssertExpectations(t)
	})

	t.Run("error", func(t *testing.T) {
		tc := setupController(t)
		tc.service.On("GetAll", mock.Anything, false).Return([]models.Game{}, errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/api/games", nil)
		w := httptest.NewRecorder()

		tc.ctrl.GetAll(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestGameController_GetBySlug(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tc := setupController(t)
		tc.service.On("Resolve", mock.Anything, "platformer").Return(platformer(), nil)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/games/platformer", nil), "slug", "platformer")
		w := httptest.NewRecorder()

		tc.ctrl.GetBySlug(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var res GameResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.Equal(t, "platformer", res.Slug)
		assert.Equal(t, "games/platformer", res.PlayURL)
	})

	t.Run("not found", func(t *testing.T) {
		tc := setupController(t)
		tc.service.On("Resolve", mock.Anything, "nonexistent").Return(nil, storage.ErrNotFound)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/games/nonexistent", nil), "slug", "nonexistent")
		w := httptest.NewRecorder()

		tc.ctrl.GetBySlug(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func multipartRequest(t *testing.T, fields map[string]string, withFile bool) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}

	if withFile {
		part, err := writer.CreateFormFile("thumbnail", "cover.PNG")
		require.NoError(t, err)
		_, err = part.Write(pngHeader)
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/games", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestGameController_Create(t *testing.T) {
	fields := map[string]string{
		"title":       "Platformer",
		"description": "Jump and run",
		"featured":    "true",
	}

	t.Run("success with upload", func(t *testing.T) {
		tc := setupController(t)

		tc.uploads.On("SaveThumbnail", pngHeader, mock.MatchedBy(func(name string) bool {
			return strings.HasSuffix(name, ".png")
		})).Return(nil)
		tc.service.On("Create", mock.Anything, mock.MatchedBy(func(g *models.Game) bool {
			return g.Title == "Platformer" && g.Featured && g.Slug == "" && strings.HasSuffix(g.Thumbnail, ".png")
		})).Return(&models.Game{ID: 5, Slug: "platformer", Title: "Platformer", Featured: true}, nil)

		w := httptest.NewRecorder()
		tc.ctrl.Create(w, multipartRequest(t, fields, true))

		assert.Equal(t, http.StatusCreated, w.Code)

		var res GameResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.Equal(t, "platformer", res.Slug)

		tc.service.AssertExpectations(t)
		tc.uploads.AssertExpectations(t)
	})

	t.Run("thumbnail url without file", func(t *testing.T) {
		tc := setupController(t)

		withURL := map[string]string{
			"title":         "Platformer",
			"description":   "Jump and run",
			"slug":          "platformer",
			"thumbnail_url": "https://cdn.example.com/p.png",
		}
		tc.service.On("Create", mock.Anything, mock.MatchedBy(func(g *models.Game) bool {
			return g.Slug == "platformer" && g.Thumbnail == "https://cdn.example.com/p.png"
		})).Return(platformer(), nil)

		w := httptest.NewRecorder()
		tc.ctrl.Create(w, multipartRequest(t, withURL, false))

		assert.Equal(t, http.StatusCreated, w.Code)
		tc.uploads.AssertNotCalled(t, "SaveThumbnail", mock.Anything, mock.Anything)
	})

	t.Run("missing thumbnail", func(t *testing.T) {
		tc := setupController(t)

		w := httptest.NewRecorder()
		tc.ctrl.Create(w, multipartRequest(t, fields, false))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		tc.service.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("malformed slug", func(t *testing.T) {
		tc := setupController(t)

		bad := map[string]string{
			"title":         "Platformer",
			"description":   "Jump and run",
			"slug":          "Platformer Game",
			"thumbnail_url": "https://cdn.example.com/p.png",
		}

		w := httptest.NewRecorder()
		tc.ctrl.Create(w, multipartRequest(t, bad, false))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate slug removes upload", func(t *testing.T) {
		tc := setupController(t)

		var saved string
		tc.uploads.On("SaveThumbnail", pngHeader, mock.Anything).Run(func(args mock.Arguments) {
			saved = args.String(1)
		}).Return(nil)
		tc.uploads.On("DeleteThumbnail", mock.Anything).Return(nil)
		tc.service.On("Create", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("services.games.Create: %w", storage.ErrExists))

		w := httptest.NewRecorder()
		tc.ctrl.Create(w, multipartRequest(t, fields, true))

		assert.Equal(t, http.StatusConflict, w.Code)
		tc.uploads.AssertCalled(t, "DeleteThumbnail", saved)
	})

	t.Run("invalid image", func(t *testing.T) {
		tc := setupController(t)
		tc.uploads.On("SaveThumbnail", mock.Anything, mock.Anything).Return(uploads.ErrInvalidImage)

		w := httptest.NewRecorder()
		tc.ctrl.Create(w, multipartRequest(t, fields, true))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		tc.service.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestGameController_AssignSlug(t *testing.T) {
	newRequest := func(id, body string) *http.Request {
		req := httptest.NewRequest(http.MethodPut, "/api/games/"+id+"/slug", strings.NewReader(body))
		return withURLParam(req, "id", id)
	}

	t.Run("success", func(t *testing.T) {
		tc := setupController(t)
		tc.service.On("AssignSlug", mock.Anything, int64(1), "platformer").Return(platformer(), nil)

		w := httptest.NewRecorder()
		tc.ctrl.AssignSlug(w, newRequest("1", `{"slug":"platformer"}`))

		assert.Equal(t, http.StatusOK, w.Code)
		tc.service.AssertExpectations(t)
	})

	t.Run("slug taken", func(t *testing.T) {
		tc := setupController(t)
		tc.service.On("AssignSlug", mock.Anything, int64(1), "platformer").Return(nil, storage.ErrExists)

		w := httptest.NewRecorder()
		tc.ctrl.AssignSlug(w, newRequest("1", `{"slug":"platformer"}`))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("game missing", func(t *testing.T) {
		tc := setupController(t)
		tc.service.On("AssignSlug", mock.Anything, int64(2), "platformer").Return(nil, storage.ErrNotFound)

		w := httptest.NewRecorder()
		tc.ctrl.AssignSlug(w, newRequest("2", `{"slug":"platformer"}`))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("service rejects slug", func(t *testing.T) {
		tc := setupController(t)
		tc.service.On("AssignSlug", mock.Anything, int64(1), "platformer").Return(nil, slug.ErrInvalid)

		w := httptest.NewRecorder()
		tc.ctrl.AssignSlug(w, newRequest("1", `{"slug":"platformer"}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed slug", func(t *testing.T) {
		tc := setupController(t)

		w := httptest.NewRecorder()
		tc.ctrl.AssignSlug(w, newRequest("1", `{"slug":"--bad--"}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		tc.service.AssertNotCalled(t, "AssignSlug", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad json", func(t *testing.T) {
		tc := setupController(t)

		w := httptest.NewRecorder()
		tc.ctrl.AssignSlug(w, newRequest("1", `{`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
