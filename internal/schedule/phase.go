package schedule

import (
	"fmt"
	"strconv"
	"time"
)

const (
	dayStartHour   = 6
	nightStartHour = 20
	// cutoffHour is when same-day slots are considered gone for every
	// district except the nearest one.
	cutoffHour = 13
)

// Phase is the part of the day the poller is running in.
type Phase int

const (
	PhaseDay Phase = iota
	PhaseNight
)

func (p Phase) String() string {
	if p == PhaseNight {
		return "night"
	}
	return "day"
}

// PhaseAt returns PhaseNight for [00:00,06:00) and [20:00,24:00) local time.
func PhaseAt(t time.Time) Phase {
	h := t.Hour()
	if h < dayStartHour || h >= nightStartHour {
		return PhaseNight
	}
	return PhaseDay
}

// Greeting is sent once whenever the poller enters a new phase.
func Greeting(t time.Time, interval time.Duration) string {
	return fmt.Sprintf("Good %s! I will be checking for slots every %s minute(s).",
		partOfDay(t), strconv.FormatFloat(interval.Minutes(), 'f', -1, 64))
}

func partOfDay(t time.Time) string {
	switch h := t.Hour(); {
	case PhaseAt(t) == PhaseNight:
		return "night"
	case h < 12:
		return "morning"
	case h < 16:
		return "afternoon"
	default:
		return "evening"
	}
}
