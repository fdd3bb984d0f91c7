package service

import (
	"context"
	"time"

	"shopbooking/internal/catalog/repository"
	"shopbooking/internal/catalog/validator"
	"shopbooking/pkg/config"
	apperrors "shopbooking/pkg/errors"
	"shopbooking/pkg/model"
	"shopbooking/pkg/sanitizer"

	"github.com/google/uuid"
)

const priceResource = "Price"

type PricingCatalog interface {
	List(ctx context.Context, activeOnly bool) ([]*model.PriceItem, error)
	Create(ctx context.Context, item *model.PriceItem) (*model.PriceItem, error)
	Update(ctx context.Context, id string, update *model.PriceItemUpdate) (*model.PriceItem, error)
	SetActive(ctx context.Context, id string, active bool) (*model.PriceItem, error)
	Move(ctx context.Context, id string, dir model.MoveDirection) error
	Delete(ctx context.Context, id string) error
}

type pricingCatalog struct {
	repo      repository.Repository[model.PriceItem]
	validator *validator.CatalogValidator
	cfg       *config.Config
	now       func() time.Time
	newID     func() string
}

func NewPricingCatalog(repo repository.Repository[model.PriceItem], validator *validator.CatalogValidator, cfg *config.Config) PricingCatalog {
	return &pricingCatalog{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *pricingCatalog) List(ctx context.Context, activeOnly bool) ([]*model.PriceItem, error) {
	items, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		s.cfg.Log.Error("Failed to list pricing", "active_only", activeOnly, "error", err)
		return nil, translateError(priceResource, "", "Failed to list pricing", err)
	}
	return items, nil
}

func (s *pricingCatalog) Create(ctx context.Context, item *model.PriceItem) (*model.PriceItem, error) {
	now := s.now().UTC().Truncate(time.Millisecond)
	created := &model.PriceItem{
		ID:        s.newID(),
		Name:      item.Name,
		Price:     item.Price,
		Details:   item.Details,
		Currency:  item.Currency,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	sanitizePrice(created)

	if err := s.validator.ValidatePrice(created); err != nil {
		s.cfg.Log.Warn("Price validation failed", "name", created.Name, "error", err)
		return nil, validationError("Price validation failed", err)
	}

	err := s.repo.ExecuteTransaction(ctx, func(ctx context.Context) error {
		last, err := s.repo.MaxOrder(ctx)
		if err != nil {
			return err
		}
		created.Order = last + repository.OrderStep
		return s.repo.Create(ctx, created)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create price", "name", created.Name, "error", err)
		return nil, translateError(priceResource, created.ID, "Failed to create price", err)
	}

	s.cfg.Log.Info("Price created successfully", "id", created.ID, "name", created.Name, "order", created.Order)
	return created, nil
}

func (s *pricingCatalog) Update(ctx context.Context, id string, update *model.PriceItemUpdate) (*model.PriceItem, error) {
	if update == nil {
		return nil, apperrors.InvalidInput("Price update cannot be empty")
	}

	var updated *model.PriceItem
	err := s.repo.ExecuteTransaction(ctx, func(ctx context.Context) error {
		item, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		mergePriceUpdate(item, update)
		sanitizePrice(item)
		if err := s.validator.ValidatePrice(item); err != nil {
			s.cfg.Log.Warn("Price validation failed", "id", id, "error", err)
			return validationError("Price validation failed", err)
		}

		item.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
		if err := s.repo.Replace(ctx, id, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, translateError(priceResource, id, "Failed to update price", err)
	}

	s.cfg.Log.Info("Price updated successfully", "id", id)
	return updated, nil
}

func (s *pricingCatalog) SetActive(ctx context.Context, id string, active bool) (*model.PriceItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateError(priceResource, id, "Failed to load price", err)
	}

	item.Active = active
	item.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
	if err := s.repo.Replace(ctx, id, item); err != nil {
		s.cfg.Log.Error("Failed to toggle price", "id", id, "active", active, "error", err)
		return nil, translateError(priceResource, id, "Failed to update price", err)
	}

	s.cfg.Log.Info("Price visibility changed", "id", id, "active", active)
	return item, nil
}

func (s *pricingCatalog) Move(ctx context.Context, id string, dir model.MoveDirection) error {
	if err := validDirection(dir); err != nil {
		return err
	}
	if err := move(ctx, s.repo, id, dir); err != nil {
		s.cfg.Log.Error("Failed to move price", "id", id, "direction", dir, "error", err)
		return translateError(priceResource, id, "Failed to move price", err)
	}
	return nil
}

func (s *pricingCatalog) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateError(priceResource, id, "Failed to delete price", err)
	}

	s.cfg.Log.Info("Price deleted successfully", "id", id)
	return nil
}

func mergePriceUpdate(item *model.PriceItem, update *model.PriceItemUpdate) {
	if update.Name != nil {
		item.Name = *update.Name
	}
	if update.Price != nil {
		item.Price = *update.Price
	}
	if update.Details != nil {
		item.Details = *update.Details
	}
	if update.Currency != nil {
		item.Currency = *update.Currency
	}
}

// sanitizePrice pads or truncates details to PriceDetailCount and defaults the currency.
func sanitizePrice(item *model.PriceItem) {
	item.Name = sanitizer.SanitizeText(item.Name)
	item.Price = sanitizer.SanitizeText(item.Price)
	item.Details = sanitizer.SanitizeDetails(item.Details, model.PriceDetailCount)
	item.Currency = sanitizer.NormalizeCurrency(item.Currency)
	if item.Currency == "" {
		item.Currency = model.DefaultCurrency
	}
}
