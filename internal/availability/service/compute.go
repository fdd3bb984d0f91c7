package service

import (
	"shopbooking/pkg/model"
	"shopbooking/pkg/slots"
)

type State struct {
	Date       string   `json:"date"`
	Closed     bool     `json:"closed"`
	Candidates []string `json:"candidates"`
	Taken      []string `json:"taken"`
	Bookable   []string `json:"bookable"`
	Pending    []string `json:"pending,omitempty"`
	Exclude    string   `json:"exclude,omitempty"`
	Selected   string   `json:"selected,omitempty"`
	Live       bool     `json:"live"`
}

// Compute derives the candidates of date and the subset of them that can be
// booked given the taken times. exclude is the slot token of the booking being
// edited; its time is released only when the token falls on date.
func Compute(date string, settings *model.ShopSettings, taken []string, exclude string) State {
	candidates := slots.Generate(date, settings)
	released := excludedClock(date, exclude)

	blocked := make(map[string]struct{}, len(taken))
	visible := make([]string, 0, len(taken))
	for _, t := range taken {
		if t == released {
			continue
		}
		if _, dup := blocked[t]; dup {
			continue
		}
		blocked[t] = struct{}{}
		visible = append(visible, t)
	}

	bookable := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := blocked[c]; !ok {
			bookable = append(bookable, c)
		}
	}

	return State{
		Date:       date,
		Closed:     len(candidates) == 0,
		Candidates: candidates,
		Taken:      visible,
		Bookable:   bookable,
		Exclude:    exclude,
	}
}

func excludedClock(date, exclude string) string {
	if exclude == "" {
		return ""
	}
	exDate, clock, err := slots.ParseID(exclude)
	if err != nil || exDate != date {
		return ""
	}
	return clock
}
