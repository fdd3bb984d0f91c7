package validator

import (
	"errors"
	"io"
	"testing"

	"shopbooking/pkg/logger"
	"shopbooking/pkg/model"
)

func TestSettingsValidator_Validate(t *testing.T) {
	log := logger.New(logger.Config{Level: "error", Output: io.Discard})
	v := NewSettingsValidator(log)

	tests := []struct {
		name      string
		mutate    func(s *model.ShopSettings)
		wantField string
	}{
		{
			name:   "defaults are valid",
			mutate: func(s *model.ShopSettings) {},
		},
		{
			name:   "90 minute slots",
			mutate: func(s *model.ShopSettings) { s.SlotDurationMinutes = 90 },
		},
		{
			name:      "duration not a multiple of 30",
			mutate:    func(s *model.ShopSettings) { s.SlotDurationMinutes = 45 },
			wantField: "SlotDurationMinutes",
		},
		{
			name:      "duration below minimum",
			mutate:    func(s *model.ShopSettings) { s.SlotDurationMinutes = 0 },
			wantField: "SlotDurationMinutes",
		},
		{
			name:      "bad time zone",
			mutate:    func(s *model.ShopSettings) { s.TimeZone = "Mars/Olympus" },
			wantField: "TimeZone",
		},
		{
			name:      "open after close",
			mutate:    func(s *model.ShopSettings) { s.Hours.Sat = model.DayBand{Open: "16:00", Close: "10:00"} },
			wantField: "Hours.Sat",
		},
		{
			name:      "open equals close",
			mutate:    func(s *model.ShopSettings) { s.Hours.MonFri = model.DayBand{Open: "09:00", Close: "09:00"} },
			wantField: "Hours.MonFri",
		},
		{
			name:      "missing close on an open day",
			mutate:    func(s *model.ShopSettings) { s.Hours.MonFri = model.DayBand{Open: "09:00"} },
			wantField: "Hours.MonFri.Close",
		},
		{
			name:      "malformed clock",
			mutate:    func(s *model.ShopSettings) { s.Hours.MonFri = model.DayBand{Open: "9am", Close: "17:00"} },
			wantField: "Hours.MonFri.Open",
		},
		{
			name:   "closed day ignores hours",
			mutate: func(s *model.ShopSettings) { s.Hours.Sat = model.DayBand{Closed: true} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := model.DefaultShopSettings("America/Toronto")
			tt.mutate(settings)

			err := v.Validate(settings)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if _, ok := verrs.Details()[tt.wantField]; !ok {
				t.Errorf("expected an error for %s, got %v", tt.wantField, verrs)
			}
		})
	}
}
