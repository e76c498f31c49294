package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/SparshM8/Farm-Technology/internal/domain"
	"github.com/SparshM8/Farm-Technology/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ManifestProduct is one entry of the products manifest file.
type ManifestProduct struct {
	ID          pricing.ProductID   `json:"id,omitempty"`
	Title       string              `json:"title"`
	Image       string              `json:"image"`
	Price       string              `json:"price"`
	Description string              `json:"description"`
	PriceValue  decimal.NullDecimal `json:"price_value"`
}

type ImportResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
}

type ImportUseCase interface {
	// ImportManifest loads the configured manifest file and applies it.
	ImportManifest(ctx context.Context) (ImportResult, error)
	ImportProducts(ctx context.Context, entries []ManifestProduct) (ImportResult, error)
	// SeedIfEmpty imports the manifest only when the catalog has no rows.
	SeedIfEmpty(ctx context.Context) error
}

type ImportConfig struct {
	ManifestPath   string
	USDRate        decimal.Decimal
	CurrencySymbol string
}

type importUseCase struct {
	productRepo domain.ProductRepository
	publisher   domain.Publisher
	cfg         ImportConfig
	log         *logrus.Logger
}

func NewImportUseCase(repo domain.ProductRepository, publisher domain.Publisher, cfg ImportConfig, logger *logrus.Logger) ImportUseCase {
	return &importUseCase{
		productRepo: repo,
		publisher:   publisher,
		cfg:         cfg,
		log:         logger,
	}
}

func ReadManifest(path string) ([]ManifestProduct, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: products manifest %s", domain.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read products manifest %s: %w", path, err)
	}
	var entries []ManifestProduct
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: products manifest is not a JSON array of products: %v", domain.ErrValidation, err)
	}
	return entries, nil
}

func (uc *importUseCase) ImportManifest(ctx context.Context) (ImportResult, error) {
	entries, err := ReadManifest(uc.cfg.ManifestPath)
	if err != nil {
		uc.log.Errorf("Use Case: Import failed: %v", err)
		return ImportResult{}, err
	}
	return uc.ImportProducts(ctx, entries)
}

// normalize returns the row the manifest entry wants to see in the catalog.
func (uc *importUseCase) normalize(entry ManifestProduct) domain.Product {
	desired := domain.Product{
		ID:          int64(entry.ID),
		Title:       strings.TrimSpace(entry.Title),
		Image:       entry.Image,
		Price:       entry.Price,
		Description: entry.Description,
		PriceValue:  entry.PriceValue,
	}
	if display, value, ok := pricing.LocalizeUSD(entry.Price, uc.cfg.USDRate, uc.cfg.CurrencySymbol); ok {
		desired.Price = display
		if !desired.PriceValue.Valid {
			desired.PriceValue = decimal.NewNullDecimal(value)
		}
	}
	if !desired.PriceValue.Valid {
		desired.PriceValue = derivePriceValue(desired.Price)
	}
	return desired
}

func (uc *importUseCase) findExisting(ctx context.Context, desired domain.Product) (*domain.Product, error) {
	if desired.ID > 0 {
		existing, err := uc.productRepo.GetByID(ctx, desired.ID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	existing, err := uc.productRepo.GetByTitle(ctx, desired.Title)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return existing, err
}

func priceValuesEqual(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Decimal.Equal(b.Decimal)
}

func changedFields(existing *domain.Product, desired domain.Product) map[string]any {
	updates := map[string]any{}
	if existing.Title != desired.Title {
		updates["title"] = desired.Title
	}
	if existing.Image != desired.Image {
		updates["image"] = desired.Image
	}
	if existing.Price != desired.Price {
		updates["price"] = desired.Price
	}
	if existing.Description != desired.Description {
		updates["description"] = desired.Description
	}
	if !priceValuesEqual(existing.PriceValue, desired.PriceValue) {
		updates["price_value"] = desired.PriceValue
	}
	return updates
}

// ImportProducts inserts unmatched entries and updates changed ones. Running
// it twice over the same entries reports nothing added or updated the second
// time.
func (uc *importUseCase) ImportProducts(ctx context.Context, entries []ManifestProduct) (ImportResult, error) {
	var result ImportResult
	uc.log.Infof("Use Case: Importing %d manifest products", len(entries))

	for i, entry := range entries {
		desired := uc.normalize(entry)
		if desired.Title == "" {
			uc.log.Warnf("Use Case: Skipping manifest entry %d without a title", i)
			continue
		}

		existing, err := uc.findExisting(ctx, desired)
		if err != nil {
			uc.log.Errorf("Use Case: Import lookup failed for '%s': %v", desired.Title, err)
			return result, fmt.Errorf("import failed: %w", err)
		}

		if existing == nil {
			if _, err := uc.productRepo.Create(ctx, &desired); err != nil {
				uc.log.Errorf("Use Case: Import insert failed for '%s': %v", desired.Title, err)
				return result, fmt.Errorf("import failed: %w", err)
			}
			result.Added++
			continue
		}

		updates := changedFields(existing, desired)
		if len(updates) == 0 {
			continue
		}
		if _, err := uc.productRepo.Update(ctx, existing.ID, updates); err != nil {
			uc.log.Errorf("Use Case: Import update failed for product %d: %v", existing.ID, err)
			return result, fmt.Errorf("import failed: %w", err)
		}
		result.Updated++
	}

	uc.log.Infof("Use Case: Import finished: %d added, %d updated", result.Added, result.Updated)
	publishCatalog(ctx, uc.productRepo, uc.publisher, uc.log)
	return result, nil
}

func (uc *importUseCase) SeedIfEmpty(ctx context.Context) error {
	count, err := uc.productRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		uc.log.Debugf("Use Case: Catalog has %d products, skipping seed", count)
		return nil
	}
	if _, err := os.Stat(uc.cfg.ManifestPath); err != nil {
		uc.log.Infof("Use Case: No products manifest at %s, starting with an empty catalog", uc.cfg.ManifestPath)
		return nil
	}
	_, err = uc.ImportManifest(ctx)
	return err
}
