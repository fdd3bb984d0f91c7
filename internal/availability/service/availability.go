package service

import (
	"context"

	"shopbooking/pkg/config"
	mongotx "shopbooking/pkg/db/mongo"
	apperrors "shopbooking/pkg/errors"
	"shopbooking/pkg/model"
	"shopbooking/pkg/slots"
)

type SettingsProvider interface {
	Get(ctx context.Context) (*model.ShopSettings, error)
}

type TakenReader interface {
	FindTaken(ctx context.Context, date string) ([]string, error)
}

type AvailabilityService interface {
	Snapshot(ctx context.Context, date, exclude string) (State, error)
	Settings(ctx context.Context) (*model.ShopSettings, error)
	ValidateQuery(date, exclude string) error
}

type availabilityService struct {
	settings SettingsProvider
	taken    TakenReader
	cfg      *config.Config
}

func NewAvailabilityService(settings SettingsProvider, taken TakenReader, cfg *config.Config) AvailabilityService {
	return &availabilityService{
		settings: settings,
		taken:    taken,
		cfg:      cfg,
	}
}

// Snapshot is a one-shot read of the availability of date.
func (s *availabilityService) Snapshot(ctx context.Context, date, exclude string) (State, error) {
	if err := s.ValidateQuery(date, exclude); err != nil {
		return State{}, err
	}

	settings, err := s.Settings(ctx)
	if err != nil {
		return State{}, err
	}

	state := Compute(date, settings, nil, exclude)
	if state.Closed {
		return state, nil
	}

	taken, err := s.taken.FindTaken(ctx, date)
	if err != nil {
		s.cfg.Log.Error("Failed to read taken slots", "date", date, "error", err)
		if mongotx.IsUnavailable(err) {
			return State{}, apperrors.StoreUnavailable(err)
		}
		return State{}, apperrors.Internal("Failed to read availability", err)
	}
	return Compute(date, settings, taken, exclude), nil
}

// Settings returns the stored shop settings, or the defaults when none were saved.
func (s *availabilityService) Settings(ctx context.Context) (*model.ShopSettings, error) {
	settings, err := s.settings.Get(ctx)
	if err == nil {
		return settings, nil
	}
	if apperrors.HasCode(err, apperrors.CodeNotFound) {
		return model.DefaultShopSettings(s.cfg.ShopTimeZone), nil
	}
	s.cfg.Log.Error("Failed to load shop settings", "error", err)
	return nil, err
}

func (s *availabilityService) ValidateQuery(date, exclude string) error {
	if !slots.ValidDate(date) {
		return apperrors.InvalidInput("date must be formatted as YYYY-MM-DD")
	}
	if exclude != "" {
		if _, _, err := slots.ParseID(exclude); err != nil {
			return apperrors.InvalidInput("exclude must be a slot id formatted as YYYY-MM-DD_HHmm")
		}
	}
	return nil
}
