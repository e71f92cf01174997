package availability

import (
	"time"

	"github.com/clinicdesk/clinic-scheduling/internal/professional"
)

// DaySlots is one calendar day's free slots. Times are HH:MM:SS strings in
// the display timezone. Days without any free slot are never emitted.
type DaySlots struct {
	Date  string   `json:"date"`
	Times []string `json:"times"`
}

// slotKey identifies one concrete slot: display-timezone date plus
// time-of-day. Occupancy is an exact match on this key, never an overlap
// test, because appointments are point-in-time bookings.
type slotKey struct {
	date string
	time string
}

// Calculator enumerates free slots over a fixed lookahead horizon.
type Calculator struct {
	HorizonDays int
	Step        time.Duration
	// Offset delta applied to move stored windows into the display timezone.
	ClinicOffset  time.Duration
	DisplayOffset time.Duration
}

// Compute walks every calendar day of the horizon starting today, keeps the
// days the weekly window covers, and steps through the daily time range
// excluding slots occupied by a still-standing appointment.
//
// Slots earlier today that have already passed are not filtered out; callers
// that want to hide them do so themselves.
func (c Calculator) Compute(window professional.WeeklyWindow, now time.Time, booked []time.Time) []DaySlots {
	displayLoc := time.FixedZone("display", int(c.DisplayOffset.Seconds()))

	occupied := make(map[slotKey]bool, len(booked))
	for _, at := range booked {
		local := at.In(displayLoc)
		occupied[slotKey{
			date: local.Format("2006-01-02"),
			time: local.Format("15:04:05"),
		}] = true
	}

	shift := c.DisplayOffset - c.ClinicOffset
	start := window.StartTime.Shift(shift)
	end := window.EndTime.Shift(shift)

	today := now.In(displayLoc)
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, displayLoc)

	var result []DaySlots
	for i := 0; i < c.HorizonDays; i++ {
		day := today.AddDate(0, 0, i)
		if !window.ContainsWeekday(day.Weekday()) {
			continue
		}

		date := day.Format("2006-01-02")

		var times []string
		step := int(c.Step.Minutes())
		for m := int(start); m < int(end); m += step {
			t := professional.DayTime(m)
			if occupied[slotKey{date: date, time: t.String()}] {
				continue
			}
			times = append(times, t.String())
		}

		if len(times) == 0 {
			continue
		}

		result = append(result, DaySlots{Date: date, Times: times})
	}

	return result
}
