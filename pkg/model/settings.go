package model

import "time"

const (
	DefaultSettingsID = "default"
	DefaultCurrency   = "CAD"
)

// DayBand is the opening window for one day-of-week category. A closed band
// ignores Open and Close.
type DayBand struct {
	Open   string `json:"open,omitempty" bson:"open,omitempty" validate:"required_unless=Closed true,omitempty,clock_time"`
	Close  string `json:"close,omitempty" bson:"close,omitempty" validate:"required_unless=Closed true,omitempty,clock_time"`
	Closed bool   `json:"closed,omitempty" bson:"closed,omitempty"`
}

type WeeklyHours struct {
	MonFri DayBand `json:"mon_fri" bson:"mon_fri"`
	Sat    DayBand `json:"sat" bson:"sat"`
	Sun    DayBand `json:"sun" bson:"sun"`
}

// ShopSettings is the shop's weekly operating-hours policy and slot granularity.
type ShopSettings struct {
	ID                  string      `json:"id,omitempty" bson:"_id,omitempty"`
	TimeZone            string      `json:"timezone" bson:"timezone" validate:"required,timezone"`
	SlotDurationMinutes int         `json:"slot_duration_minutes" bson:"slot_duration_minutes" validate:"required,min=30,max=480,slot_duration"`
	Hours               WeeklyHours `json:"hours" bson:"hours"`
	UpdatedAt           time.Time   `json:"updated_at" bson:"updated_at"`
}

// BandFor returns the band governing the given weekday.
func (s *ShopSettings) BandFor(day time.Weekday) DayBand {
	switch day {
	case time.Saturday:
		return s.Hours.Sat
	case time.Sunday:
		return s.Hours.Sun
	default:
		return s.Hours.MonFri
	}
}

func DefaultShopSettings(timeZone string) *ShopSettings {
	return &ShopSettings{
		ID:                  DefaultSettingsID,
		TimeZone:            timeZone,
		SlotDurationMinutes: 60,
		Hours: WeeklyHours{
			MonFri: DayBand{Open: "09:00", Close: "18:00"},
			Sat:    DayBand{Open: "10:00", Close: "16:00"},
			Sun:    DayBand{Closed: true},
		},
	}
}
