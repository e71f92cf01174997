package professional

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrBadDayTime = errors.New("invalid time of day")

// DayTime is a time of day with minute precision, independent of any date.
// Stored as minutes since midnight.
type DayTime int

func NewDayTime(hour, minute int) (DayTime, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %02d:%02d", ErrBadDayTime, hour, minute)
	}
	return DayTime(hour*60 + minute), nil
}

// ParseDayTime accepts "HH:MM" or "HH:MM:SS"; seconds are dropped.
func ParseDayTime(s string) (DayTime, error) {
	var hour, minute, second int

	if _, err := fmt.Sscanf(s, "%d:%d:%d", &hour, &minute, &second); err != nil {
		if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadDayTime, s)
		}
	}

	return NewDayTime(hour, minute)
}

func (d DayTime) Hour() int   { return int(d) / 60 }
func (d DayTime) Minute() int { return int(d) % 60 }

// String renders HH:MM:SS, the format availability responses use.
func (d DayTime) String() string {
	return fmt.Sprintf("%02d:%02d:00", d.Hour(), d.Minute())
}

// Add steps forward by a duration, wrapping at midnight.
func (d DayTime) Add(step time.Duration) DayTime {
	total := (int(d) + int(step.Minutes())) % (24 * 60)
	return DayTime(total)
}

// Shift applies a timezone offset delta, wrapping at midnight. Used to move
// a stored window into the display timezone.
func (d DayTime) Shift(delta time.Duration) DayTime {
	total := (int(d) + int(delta.Minutes())) % (24 * 60)
	if total < 0 {
		total += 24 * 60
	}
	return DayTime(total)
}

// WeeklyWindow is a professional's recurring working window: a weekday range
// that may wrap across the week boundary (Friday through Monday) and a daily
// time range in the clinic's reference timezone.
type WeeklyWindow struct {
	StartWeekday time.Weekday
	EndWeekday   time.Weekday
	StartTime    DayTime
	EndTime      DayTime
}

// ContainsWeekday reports whether d falls inside the configured weekday
// range, honoring wraparound: Fri..Mon covers Fri, Sat, Sun, Mon.
func (w WeeklyWindow) ContainsWeekday(d time.Weekday) bool {
	if w.StartWeekday <= w.EndWeekday {
		return d >= w.StartWeekday && d <= w.EndWeekday
	}
	return d >= w.StartWeekday || d <= w.EndWeekday
}

// Validate enforces the configuration-time invariants: weekdays in range and
// a non-degenerate time window.
func (w WeeklyWindow) Validate() error {
	if w.StartWeekday < time.Sunday || w.StartWeekday > time.Saturday {
		return fmt.Errorf("start weekday out of range: %d", w.StartWeekday)
	}
	if w.EndWeekday < time.Sunday || w.EndWeekday > time.Saturday {
		return fmt.Errorf("end weekday out of range: %d", w.EndWeekday)
	}
	if w.StartTime == w.EndTime {
		return errors.New("start time and end time must differ")
	}
	return nil
}

type Professional struct {
	ID        uuid.UUID
	ClinicID  uuid.UUID
	Name      string
	Specialty *string
	Window    WeeklyWindow
	CreatedAt time.Time
	UpdatedAt time.Time
}
