// Package slots derives the candidate appointment times of a day from the
// shop's weekly hours, and the slot tokens that identify them in the store.
package slots

import (
	"fmt"
	"strings"
	"time"

	"shopbooking/pkg/model"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"

	idSeparator = "_"
)

// Generate returns the ordered start times ("HH:mm") of every slot that fits
// entirely inside the opening window of date's band. A closed band, a missing
// boundary or an unparsable input yields an empty sequence.
func Generate(date string, settings *model.ShopSettings) []string {
	if settings == nil {
		return []string{}
	}
	day, err := ParseDate(date)
	if err != nil {
		return []string{}
	}
	return generateForBand(settings.BandFor(day.Weekday()), settings.SlotDurationMinutes)
}

func generateForBand(band model.DayBand, step int) []string {
	out := []string{}
	if band.Closed || band.Open == "" || band.Close == "" || step <= 0 {
		return out
	}

	open, err := ToMinutes(band.Open)
	if err != nil {
		return out
	}
	closing, err := ToMinutes(band.Close)
	if err != nil {
		return out
	}

	for t := open; t+step <= closing; t += step {
		out = append(out, FromMinutes(t))
	}
	return out
}

// ID builds the slot token for a date and clock time: 2024-06-01 + 09:30 -> 2024-06-01_0930.
func ID(date, clock string) string {
	return date + idSeparator + strings.Replace(clock, ":", "", 1)
}

// ParseID splits a slot token back into its date and "HH:mm" time.
func ParseID(id string) (string, string, error) {
	date, compact, ok := strings.Cut(id, idSeparator)
	if !ok || len(compact) != 4 {
		return "", "", fmt.Errorf("invalid slot id: %q", id)
	}
	if _, err := ParseDate(date); err != nil {
		return "", "", fmt.Errorf("invalid slot id: %q", id)
	}
	clock := compact[:2] + ":" + compact[2:]
	if _, err := ToMinutes(clock); err != nil {
		return "", "", fmt.Errorf("invalid slot id: %q", id)
	}
	return date, clock, nil
}

// IDPrefix is the common prefix of every slot token on date.
func IDPrefix(date string) string {
	return date + idSeparator
}

func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

func ValidDate(date string) bool {
	_, err := ParseDate(date)
	return err == nil
}

func ValidClock(clock string) bool {
	_, err := ToMinutes(clock)
	return err == nil
}

// ToMinutes converts "HH:mm" (24h) to minutes after midnight.
func ToMinutes(clock string) (int, error) {
	if len(clock) != len(ClockLayout) {
		return 0, fmt.Errorf("invalid time of day: %q", clock)
	}
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day: %q", clock)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func FromMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
