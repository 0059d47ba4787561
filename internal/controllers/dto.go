package controllers

import (
	"games_play/internal/models"
	"games_play/internal/slug"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const maxImportGames = 100

type GameResponse struct {
	ID          int64  `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	Featured    bool   `json:"featured"`
	PlayURL     string `json:"play_url"`
}

func newGameResponse(g models.Game) GameResponse {
	return GameResponse{
		ID:          g.ID,
		Slug:        g.Slug,
		Title:       g.Title,
		Description: g.Description,
		Thumbnail:   g.Thumbnail,
		Featured:    g.Featured,
		PlayURL:     "games/" + g.Slug,
	}
}

type CreateGameRequest struct {
	Slug         string `json:"slug"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
	Featured     bool   `json:"featured"`
	// hasThumbnailFile is set when the multipart form carries a file.
	hasThumbnailFile bool
}

func (r CreateGameRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 255)),
		validation.Field(&r.Description,
			validation.Required.Error("description is required")),
		validation.Field(&r.Slug,
			validation.When(r.Slug != "",
				validation.Length(1, slug.MaxLength),
				validation.Match(slug.Pattern).Error("slug must be lowercase letters, digits and single hyphens"))),
		validation.Field(&r.ThumbnailURL,
			validation.When(!r.hasThumbnailFile,
				validation.Required.Error("thumbnail file or thumbnail_url is required")),
			validation.Length(0, 500)),
	)
}

type AssignSlugRequest struct {
	Slug string `json:"slug"`
}

func (r AssignSlugRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Slug,
			validation.Required.Error("slug is required"),
			validation.Length(1, slug.MaxLength),
			validation.Match(slug.Pattern).Error("slug must be lowercase letters, digits and single hyphens")),
	)
}

type RequestGame struct {
	Name   string `json:"names"`
	Source string `json:"source"`
}

func (r RequestGame) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Source, validation.Required, validation.In("Steam", "Wiki")),
	)
}

type ImportRequest struct {
	Games []RequestGame `json:"games"`
}

func (r ImportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Games,
			validation.Required.Error("no games names"),
			validation.Length(1, maxImportGames).Error(ErrTooManyGames.Error())),
	)
}

type ImportResponse struct {
	Success []GameResponse `json:"success"`
	Errors  []string       `json:"errors"`
}
