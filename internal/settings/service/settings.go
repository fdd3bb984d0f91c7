package service

import (
	"context"
	"errors"
	"strings"
	"time"

	settingserrors "shopbooking/internal/settings/errors"
	"shopbooking/internal/settings/repository"
	"shopbooking/internal/settings/validator"
	"shopbooking/pkg/config"
	mongotx "shopbooking/pkg/db/mongo"
	apperrors "shopbooking/pkg/errors"
	"shopbooking/pkg/model"
)

type SettingsService interface {
	Get(ctx context.Context) (*model.ShopSettings, error)
	Save(ctx context.Context, settings *model.ShopSettings) (*model.ShopSettings, error)
	Defaults() *model.ShopSettings
}

type settingsService struct {
	repo      repository.SettingsRepository
	validator *validator.SettingsValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewSettingsService(repo repository.SettingsRepository, validator *validator.SettingsValidator, cfg *config.Config) SettingsService {
	return &settingsService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *settingsService) Get(ctx context.Context) (*model.ShopSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, settingserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Settings")
		}
		s.cfg.Log.Error("Failed to load settings", "error", err)
		if mongotx.IsUnavailable(err) {
			return nil, apperrors.StoreUnavailable(err)
		}
		return nil, apperrors.Internal("Failed to load settings", err)
	}
	return settings, nil
}

// Save validates and replaces the whole settings document.
func (s *settingsService) Save(ctx context.Context, settings *model.ShopSettings) (*model.ShopSettings, error) {
	if settings == nil {
		return nil, apperrors.InvalidInput("Settings cannot be empty")
	}

	s.normalize(settings)
	if err := s.validator.Validate(settings); err != nil {
		s.cfg.Log.Warn("Settings validation failed", "error", err)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, apperrors.Validation("Settings validation failed", verrs.Details())
		}
		return nil, apperrors.Validation("Settings validation failed", map[string]any{"error": err.Error()})
	}

	settings.ID = model.DefaultSettingsID
	settings.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
	if err := s.repo.Save(ctx, settings); err != nil {
		s.cfg.Log.Error("Failed to save settings", "error", err)
		if mongotx.IsUnavailable(err) {
			return nil, apperrors.StoreUnavailable(err)
		}
		return nil, apperrors.Internal("Failed to save settings", err)
	}

	s.cfg.Log.Info("Settings saved successfully",
		"slot_duration_minutes", settings.SlotDurationMinutes,
		"timezone", settings.TimeZone,
	)
	return settings, nil
}

func (s *settingsService) Defaults() *model.ShopSettings {
	return model.DefaultShopSettings(s.cfg.ShopTimeZone)
}

func (s *settingsService) normalize(settings *model.ShopSettings) {
	settings.TimeZone = strings.TrimSpace(settings.TimeZone)
	if settings.TimeZone == "" {
		settings.TimeZone = s.cfg.ShopTimeZone
	}
	for _, band := range []*model.DayBand{&settings.Hours.MonFri, &settings.Hours.Sat, &settings.Hours.Sun} {
		if band.Closed {
			band.Open = ""
			band.Close = ""
			continue
		}
		band.Open = strings.TrimSpace(band.Open)
		band.Close = strings.TrimSpace(band.Close)
	}
}
