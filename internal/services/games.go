package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"games_play/internal/models"
	"games_play/internal/slug"
	"games_play/internal/storage"
	"games_play/internal/storage/mariadb"

	"gorm.io/gorm"
)

// maxSlugAttempts caps the -2, -3, ... suffix search in UniqueSlug.
const maxSlugAttempts = 100

type GameService struct {
	storage *mariadb.Storage
	log     *slog.Logger
}

func NewGameService(s *mariadb.Storage, log *slog.Logger) *GameService {
	if log == nil {
		log = slog.Default()
	}

	return &GameService{
		storage: s,
		log:     log,
	}
}

func (s *GameService) GetAll(ctx context.Context, featuredOnly bool) ([]models.Game, error) {
	const op = "services.games.GetAll"

	db := s.storage.DB.WithContext(ctx)
	if featuredOnly {
		db = db.Where("featured = ?", true)
	}

	var games []models.Game
	if err := db.Order("title").Find(&games).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return games, nil
}

// Resolve returns the game stored under exactly this slug. The slug is not
// normalized: "Platformer" and "platformer" are different keys.
func (s *GameService) Resolve(ctx context.Context, gameSlug string) (*models.Game, error) {
	const op = "services.games.Resolve"

	if gameSlug == "" {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var g models.Game
	err := s.storage.DB.WithContext(ctx).Where("slug = ?", gameSlug).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &g, nil
}

func (s *GameService) GetByID(ctx context.Context, id int64) (*models.Game, error) {
	const op = "services.games.GetByID"

	var g models.Game
	err := s.storage.DB.WithContext(ctx).First(&g, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &g, nil
}

// Create stores a new game. An empty slug is generated from the title.
func (s *GameService) Create(ctx context.Context, g *models.Game) (*models.Game, error) {
	const op = "services.games.Create"

	if g.Slug == "" {
		generated, err := s.UniqueSlug(ctx, g.Title)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		g.Slug = generated
	} else if !slug.Valid(g.Slug) {
		return nil, fmt.Errorf("%s: %q: %w", op, g.Slug, slug.ErrInvalid)
	}

	if g.SourceURL != "" {
		if err := s.GetGameByURL(ctx, g.SourceURL); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	tx := s.storage.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("%s: %w", op, tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(g).Error; err != nil {
		tx.Rollback()
		if mariadb.IsDuplicate(err) {
			return nil, fmt.Errorf("%s: slug %q: %w", op, g.Slug, storage.ErrExists)
		}
		return nil, fmt.Errorf("%s: %w: %w", op, storage.ErrCreateFailed, err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("game created", slog.Int64("id", g.ID), slog.String("slug", g.Slug))

	return g, nil
}

// AssignSlug sets or corrects the slug of an existing game.
func (s *GameService) AssignSlug(ctx context.Context, id int64, newSlug string) (*models.Game, error) {
	const op = "services.games.AssignSlug"

	if !slug.Valid(newSlug) {
		return nil, fmt.Errorf("%s: %q: %w", op, newSlug, slug.ErrInvalid)
	}

	tx := s.storage.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("%s: %w", op, tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var existing models.Game
	if err := tx.First(&existing, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if existing.Slug == newSlug {
		tx.Rollback()
		return &existing, nil
	}

	if err := tx.Model(&models.Game{}).Where("id = ?", id).Update("slug", newSlug).Error; err != nil {
		tx.Rollback()
		if mariadb.IsDuplicate(err) {
			return nil, fmt.Errorf("%s: slug %q: %w", op, newSlug, storage.ErrExists)
		}
		return nil, fmt.Errorf("%s: %w: %w", op, storage.ErrUpdateFailed, err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("slug assigned",
		slog.Int64("id", id),
		slog.String("old", existing.Slug),
		slog.String("slug", newSlug))

	existing.Slug = newSlug
	return &existing, nil
}

// UniqueSlug generates a slug from title that no stored game uses yet.
func (s *GameService) UniqueSlug(ctx context.Context, title string) (string, error) {
	const op = "services.games.UniqueSlug"

	base := slug.Generate(title)
	if base == "" {
		return "", fmt.Errorf("%s: cannot derive slug from %q: %w", op, title, slug.ErrInvalid)
	}

	candidate := base
	for n := 2; n <= maxSlugAttempts+1; n++ {
		var count int64
		if err := s.storage.DB.WithContext(ctx).
			Model(&models.Game{}).
			Where("slug = ?", candidate).
			Count(&count).Error; err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}

		if count == 0 {
			return candidate, nil
		}

		candidate = slug.WithSuffix(base, n)
	}

	return "", fmt.Errorf("%s: %q: %w", op, base, storage.ErrExists)
}

// GetGameByURL returns storage.ErrExists if a game was already imported from url.
func (s *GameService) GetGameByURL(ctx context.Context, url string) error {
	const op = "services.games.GetGameByURL"

	if url == "" {
		return fmt.Errorf("%s: url is empty", op)
	}

	err := s.storage.DB.WithContext(ctx).Where("source_url = ?", url).First(&models.Game{}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return fmt.Errorf("%s: %s: %w", op, url, storage.ErrExists)
}
