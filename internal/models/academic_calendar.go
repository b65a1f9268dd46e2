package models

import "time"

// CalendarEntry anchors week 1 of a teaching period.
type CalendarEntry struct {
	Period    string    `json:"period"`
	StartDate time.Time `json:"startDate"`
}

// ResolvedDate is the concrete date of a (period, week, day) triple.
type ResolvedDate struct {
	Period    string    `json:"period"`
	Week      int       `json:"week"`
	Day       string    `json:"day"`
	Date      time.Time `json:"date"`
	Formatted string    `json:"formatted"`
}
