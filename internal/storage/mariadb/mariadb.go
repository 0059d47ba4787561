package mariadb

import (
	"errors"
	"fmt"

	"games_play/internal/config"
	"games_play/internal/models"
	"games_play/internal/slug"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const errDuplicateEntry = 1062

type Storage struct {
	DB *gorm.DB
}

func New(cfg config.Database) (*Storage, error) {
	const op = "storage.mariadb.New"

	db, err := gorm.Open(mysql.Open(cfg.GetDSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

func (s *Storage) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// IsDuplicate reports whether err is a unique index violation.
func IsDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var myErr *mysqldriver.MySQLError
	return errors.As(err, &myErr) && myErr.Number == errDuplicateEntry
}

// Migrate creates the games table or, for a table created before slugs existed,
// adds the slug column, fills it for every row and only then makes it unique.
func (s *Storage) Migrate() error {
	const op = "storage.mariadb.Migrate"

	m := s.DB.Migrator()

	if !m.HasTable(&models.Game{}) {
		if err := m.AutoMigrate(&models.Game{}); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	if !m.HasColumn(&models.Game{}, "slug") {
		if err := s.DB.Exec("ALTER TABLE `games` ADD COLUMN `slug` VARCHAR(255) NULL").Error; err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := s.BackfillSlugs(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.DB.Exec("ALTER TABLE `games` MODIFY `slug` VARCHAR(255) NOT NULL").Error; err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := m.AutoMigrate(&models.Game{}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// BackfillSlugs assigns a generated, unique slug to every game that has none.
func (s *Storage) BackfillSlugs() error {
	const op = "storage.mariadb.BackfillSlugs"

	var taken []string
	if err := s.DB.Model(&models.Game{}).
		Where("slug IS NOT NULL AND slug <> ''").
		Pluck("slug", &taken).Error; err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var pending []models.Game
	if err := s.DB.Select("id", "title").
		Where("slug IS NULL OR slug = ''").
		Order("id").
		Find(&pending).Error; err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	used := make(map[string]struct{}, len(taken)+len(pending))
	for _, t := range taken {
		used[t] = struct{}{}
	}

	for _, g := range pending {
		next := nextFreeSlug(g, used)
		used[next] = struct{}{}

		if err := s.DB.Model(&models.Game{}).
			Where("id = ?", g.ID).
			UpdateColumn("slug", next).Error; err != nil {
			return fmt.Errorf("%s: game %d: %w", op, g.ID, err)
		}
	}

	return nil
}

func nextFreeSlug(g models.Game, used map[string]struct{}) string {
	base := slug.Generate(g.Title)
	if base == "" {
		// у названий без латиницы остаётся только id
		base = fmt.Sprintf("game-%d", g.ID)
	}

	candidate := base
	for n := 2; ; n++ {
		if _, ok := used[candidate]; !ok {
			return candidate
		}
		candidate = slug.WithSuffix(base, n)
	}
}
