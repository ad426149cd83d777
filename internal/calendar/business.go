package calendar

import "time"

// IsWeekend reports whether d falls on a Saturday or Sunday.
func IsWeekend(d Date) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// AdjustForWeekend moves d forward to the next business day when it falls on a weekend.
func AdjustForWeekend(d Date) Date {
	for IsWeekend(d) {
		d = d.AddDays(1)
	}
	return d
}

// AddBusinessDays moves n business days away from d, not counting d itself.
// Negative n walks backwards. Weekend days are skipped without being counted.
func AddBusinessDays(d Date, n int) Date {
	step := 1
	if n < 0 {
		step, n = -1, -n
	}
	for n > 0 {
		d = d.AddDays(step)
		if !IsWeekend(d) {
			n--
		}
	}
	return d
}

// BusinessDaysBetween counts the non-weekend days in [start, end]; 0 when end < start.
func BusinessDaysBetween(start, end Date) int {
	if end.Before(start) {
		return 0
	}
	span := DaysBetween(start, end) + 1
	count := (span / 7) * 5
	d := start.AddDays((span / 7) * 7)
	for ; !d.After(end); d = d.AddDays(1) {
		if !IsWeekend(d) {
			count++
		}
	}
	return count
}

// DurationBetween is the inclusive length of [start, end]: calendar days, or business days
// when skipWeekends is set. It never returns less than 1, so a span that only covers a
// weekend still counts as a one-day task.
func DurationBetween(start, end Date, skipWeekends bool) int {
	n := DaysBetween(start, end) + 1
	if skipWeekends {
		n = BusinessDaysBetween(start, end)
	}
	if n < 1 {
		return 1
	}
	return n
}

// EndFromDuration returns the last day of a task that starts on start and lasts duration days.
// It is the inverse of DurationBetween for duration >= 1.
func EndFromDuration(start Date, duration int, skipWeekends bool) Date {
	if duration < 1 {
		duration = 1
	}
	if !skipWeekends {
		return start.AddDays(duration - 1)
	}
	// A weekend start is not a working day, so the first business day after it counts as day one.
	if IsWeekend(start) {
		return AddBusinessDays(start, duration)
	}
	return AddBusinessDays(start, duration-1)
}

// StartFromDuration returns the first day of a task that ends on end and lasts duration days.
func StartFromDuration(end Date, duration int, skipWeekends bool) Date {
	if duration < 1 {
		duration = 1
	}
	if !skipWeekends {
		return end.AddDays(-(duration - 1))
	}
	if IsWeekend(end) {
		return AddBusinessDays(end, -duration)
	}
	return AddBusinessDays(end, -(duration - 1))
}
