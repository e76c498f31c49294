package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/SparshM8/Farm-Technology/internal/domain"

	"github.com/sirupsen/logrus"
)

type NewsUseCase interface {
	ListNews(ctx context.Context) ([]domain.NewsItem, error)
	UpsertNews(ctx context.Context, item *domain.NewsItem) (*domain.NewsItem, error)
	SeedFromFile(ctx context.Context, path string) (int, error)
}

type newsUseCase struct {
	newsRepo  domain.NewsRepository
	publisher domain.Publisher
	log       *logrus.Logger
}

func NewNewsUseCase(repo domain.NewsRepository, publisher domain.Publisher, logger *logrus.Logger) NewsUseCase {
	return &newsUseCase{
		newsRepo:  repo,
		publisher: publisher,
		log:       logger,
	}
}

func (uc *newsUseCase) ListNews(ctx context.Context) ([]domain.NewsItem, error) {
	items, err := uc.newsRepo.List(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to list news: %v", err)
		return nil, fmt.Errorf("failed to retrieve news: %w", err)
	}
	return items, nil
}

func (uc *newsUseCase) upsert(ctx context.Context, item *domain.NewsItem) (*domain.NewsItem, bool, error) {
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return nil, false, fmt.Errorf("%w: news title cannot be empty", domain.ErrValidation)
	}
	return uc.newsRepo.Upsert(ctx, item)
}

func (uc *newsUseCase) UpsertNews(ctx context.Context, item *domain.NewsItem) (*domain.NewsItem, error) {
	saved, created, err := uc.upsert(ctx, item)
	if err != nil {
		uc.log.Warnf("Use Case: Failed to save news item %q: %v", item.Title, err)
		return nil, err
	}
	uc.log.Infof("Use Case: News item %d saved (created=%t)", saved.ID, created)
	uc.publishNews(ctx)
	return saved, nil
}

// SeedFromFile upserts every entry of a JSON array of news items.
func (uc *newsUseCase) SeedFromFile(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("could not read news manifest %s: %w", path, err)
	}
	var items []domain.NewsItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return 0, fmt.Errorf("%w: news manifest is not a JSON array: %v", domain.ErrValidation, err)
	}

	created := 0
	for i := range items {
		_, isNew, err := uc.upsert(ctx, &items[i])
		if err != nil {
			uc.log.Warnf("Use Case: Skipping news entry %d: %v", i, err)
			continue
		}
		if isNew {
			created++
		}
	}

	uc.log.Infof("Use Case: Seeded news from %s: %d of %d entries new", path, created, len(items))
	uc.publishNews(ctx)
	return created, nil
}

func (uc *newsUseCase) publishNews(ctx context.Context) {
	items, err := uc.newsRepo.List(ctx)
	if err != nil {
		uc.log.Warnf("Use Case: Skipping %s broadcast, could not read news: %v", domain.EventNewsUpdate, err)
		return
	}
	uc.publisher.Publish(domain.EventNewsUpdate, items)
}
