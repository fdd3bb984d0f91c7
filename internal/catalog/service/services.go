package service

import (
	"context"
	"strings"
	"time"

	"shopbooking/internal/catalog/repository"
	"shopbooking/internal/catalog/validator"
	"shopbooking/pkg/config"
	apperrors "shopbooking/pkg/errors"
	"shopbooking/pkg/model"
	"shopbooking/pkg/sanitizer"

	"github.com/google/uuid"
)

const serviceResource = "Service"

type ServiceCatalog interface {
	List(ctx context.Context, activeOnly bool) ([]*model.ServiceItem, error)
	Create(ctx context.Context, item *model.ServiceItem) (*model.ServiceItem, error)
	Update(ctx context.Context, id string, update *model.ServiceItemUpdate) (*model.ServiceItem, error)
	SetActive(ctx context.Context, id string, active bool) (*model.ServiceItem, error)
	Move(ctx context.Context, id string, dir model.MoveDirection) error
	Delete(ctx context.Context, id string) error
}

type serviceCatalog struct {
	repo      repository.Repository[model.ServiceItem]
	validator *validator.CatalogValidator
	cfg       *config.Config
	now       func() time.Time
	newID     func() string
}

func NewServiceCatalog(repo repository.Repository[model.ServiceItem], validator *validator.CatalogValidator, cfg *config.Config) ServiceCatalog {
	return &serviceCatalog{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *serviceCatalog) List(ctx context.Context, activeOnly bool) ([]*model.ServiceItem, error) {
	items, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		s.cfg.Log.Error("Failed to list services", "active_only", activeOnly, "error", err)
		return nil, translateError(serviceResource, "", "Failed to list services", err)
	}
	return items, nil
}

// Create appends a new, active service at the end of the list.
func (s *serviceCatalog) Create(ctx context.Context, item *model.ServiceItem) (*model.ServiceItem, error) {
	now := s.now().UTC().Truncate(time.Millisecond)
	created := &model.ServiceItem{
		ID:          s.newID(),
		IconKey:     item.IconKey,
		Title:       item.Title,
		Description: item.Description,
		PriceLabel:  item.PriceLabel,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	sanitizeService(created)

	if err := s.validator.ValidateService(created); err != nil {
		s.cfg.Log.Warn("Service validation failed", "title", created.Title, "error", err)
		return nil, validationError("Service validation failed", err)
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
		s.cfg.Log.Error("Failed to create service", "title", created.Title, "error", err)
		return nil, translateError(serviceResource, created.ID, "Failed to create service", err)
	}

	s.cfg.Log.Info("Service created successfully", "id", created.ID, "title", created.Title, "order", created.Order)
	return created, nil
}

func (s *serviceCatalog) Update(ctx context.Context, id string, update *model.ServiceItemUpdate) (*model.ServiceItem, error) {
	if update == nil {
		return nil, apperrors.InvalidInput("Service update cannot be empty")
	}

	var updated *model.ServiceItem
	err := s.repo.ExecuteTransaction(ctx, func(ctx context.Context) error {
		item, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		mergeServiceUpdate(item, update)
		sanitizeService(item)
		if err := s.validator.ValidateService(item); err != nil {
			s.cfg.Log.Warn("Service validation failed", "id", id, "error", err)
			return validationError("Service validation failed", err)
		}

		item.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
		if err := s.repo.Replace(ctx, id, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, translateError(serviceResource, id, "Failed to update service", err)
	}

	s.cfg.Log.Info("Service updated successfully", "id", id)
	return updated, nil
}

func (s *serviceCatalog) SetActive(ctx context.Context, id string, active bool) (*model.ServiceItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateError(serviceResource, id, "Failed to load service", err)
	}

	item.Active = active
	item.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
	if err := s.repo.Replace(ctx, id, item); err != nil {
		s.cfg.Log.Error("Failed to toggle service", "id", id, "active", active, "error", err)
		return nil, translateError(serviceResource, id, "Failed to update service", err)
	}

	s.cfg.Log.Info("Service visibility changed", "id", id, "active", active)
	return item, nil
}

func (s *serviceCatalog) Move(ctx context.Context, id string, dir model.MoveDirection) error {
	if err := validDirection(dir); err != nil {
		return err
	}
	if err := move(ctx, s.repo, id, dir); err != nil {
		s.cfg.Log.Error("Failed to move service", "id", id, "direction", dir, "error", err)
		return translateError(serviceResource, id, "Failed to move service", err)
	}
	return nil
}

func (s *serviceCatalog) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateError(serviceResource, id, "Failed to delete service", err)
	}

	s.cfg.Log.Info("Service deleted successfully", "id", id)
	return nil
}

func mergeServiceUpdate(item *model.ServiceItem, update *model.ServiceItemUpdate) {
	if update.IconKey != nil {
		item.IconKey = *update.IconKey
	}
	if update.Title != nil {
		item.Title = *update.Title
	}
	if update.Description != nil {
		item.Description = *update.Description
	}
	if update.PriceLabel != nil {
		item.PriceLabel = *update.PriceLabel
	}
}

func sanitizeService(item *model.ServiceItem) {
	item.IconKey = strings.TrimSpace(item.IconKey)
	item.Title = sanitizer.SanitizeText(item.Title)
	item.Description = sanitizer.SanitizeText(item.Description)
	item.PriceLabel = sanitizer.SanitizeText(item.PriceLabel)
}
