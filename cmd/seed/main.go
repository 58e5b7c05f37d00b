package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shinyyama/reconnect/internal/config"
	"github.com/shinyyama/reconnect/internal/db"
	"github.com/shinyyama/reconnect/internal/events"
	"github.com/shinyyama/reconnect/internal/logging"
	"github.com/shinyyama/reconnect/internal/media"
	"github.com/shinyyama/reconnect/internal/model"
	"github.com/shinyyama/reconnect/internal/repository"
	"github.com/shinyyama/reconnect/internal/service"
)

type seedConfig struct {
	Dir       string `env:"SEED_DIR" envDefault:"sample-items"`
	City      string `env:"SEED_CITY" envDefault:"Pune"`
	Contact   string `env:"SEED_CONTACT" envDefault:"+910000000000"`
	ForceSeed bool   `env:"FORCE_SEED" envDefault:"false"`
}

var sampleExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)

	var sc seedConfig
	if err := env.Parse(&sc); err != nil {
		return fmt.Errorf("load seed config: %w", err)
	}

	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	store, err := media.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("media store: %w", err)
	}
	defer media.Close(store)

	repo := repository.NewFoundItemRepository(gdb)
	s := &seeder{
		intake: service.NewIntakeService(repo, store, events.Noop{}),
		search: service.NewSearchService(repo),
		cfg:    sc,
	}
	inserted, skipped, err := s.seedDir(ctx)
	if err != nil {
		return err
	}
	log.Info().Int("inserted", inserted).Int("skipped", skipped).Str("dir", sc.Dir).Msg("seed complete")
	return nil
}

type seeder struct {
	intake service.IntakeService
	search service.SearchService
	cfg    seedConfig
}

// seedDir submits every sample photo in cfg.Dir through the intake path. Items
// whose description already exists in the same category are skipped unless
// FORCE_SEED is set.
func (s *seeder) seedDir(ctx context.Context) (inserted, skipped int, err error) {
	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read %s: %w", s.cfg.Dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && sampleExts[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		log.Warn().Str("dir", s.cfg.Dir).Msg("no sample items found")
		return 0, 0, nil
	}

	for _, name := range names {
		category, title := parseSampleName(name)
		description := fmt.Sprintf("%s - sample found item.", title)

		if !s.cfg.ForceSeed {
			exists, err := s.exists(ctx, category, description)
			if err != nil {
				return inserted, skipped, fmt.Errorf("check existing %s: %w", name, err)
			}
			if exists {
				skipped++
				continue
			}
		}

		if err := s.submit(ctx, name, category, description); err != nil {
			var verr *service.ValidationError
			if errors.As(err, &verr) {
				log.Warn().Str("file", name).Str("reason", verr.Reason).Msg("sample skipped")
				skipped++
				continue
			}
			return inserted, skipped, fmt.Errorf("insert %s: %w", name, err)
		}
		inserted++
	}
	return inserted, skipped, nil
}

func (s *seeder) exists(ctx context.Context, category, description string) (bool, error) {
	items, err := s.search.Search(ctx, service.SearchQuery{Product: description, Category: category})
	if err != nil {
		return false, err
	}
	for _, it := range items {
		if it.Description == description {
			return true, nil
		}
	}
	return false, nil
}

func (s *seeder) submit(ctx context.Context, name, category, description string) error {
	f, err := os.Open(filepath.Join(s.cfg.Dir, name))
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	_, err = s.intake.Submit(ctx, service.SubmitInput{
		Description: description,
		ContactNo:   s.cfg.Contact,
		City:        s.cfg.City,
		Category:    category,
		Image:       &service.Upload{Filename: name, Size: info.Size(), Body: f},
	})
	return err
}

// parseSampleName splits "<category>__<name>.ext". Unknown or missing categories become Other.
func parseSampleName(filename string) (category, title string) {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	category = model.DefaultCategory
	if prefix, rest, ok := strings.Cut(base, "__"); ok {
		for _, c := range model.Categories {
			if strings.EqualFold(c, prefix) {
				category = c
				break
			}
		}
		base = rest
	}
	return category, toTitle(base)
}

func toTitle(base string) string {
	normalized := strings.NewReplacer("-", " ", "_", " ").Replace(base)
	parts := strings.Fields(normalized)
	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	for i := 1; i < len(runes); i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
