package calendar

import (
	"fmt"
	"strings"
)

// Scale is the step of a timeline axis.
type Scale string

const (
	ScaleDay   Scale = "Day"
	ScaleWeek  Scale = "Week"
	ScaleMonth Scale = "Month"
)

// ParseScale accepts the scale names used by the timeline view in any case; empty means ScaleDay.
func ParseScale(s string) (Scale, error) {
	switch strings.ToLower(s) {
	case "", "day":
		return ScaleDay, nil
	case "week":
		return ScaleWeek, nil
	case "month":
		return ScaleMonth, nil
	}
	return "", fmt.Errorf("unknown scale %q", s)
}

// Range lists the axis ticks from start through end inclusive.
func Range(start, end Date, scale Scale) []Date {
	var out []Date
	for d := start; !d.After(end); {
		out = append(out, d)
		switch scale {
		case ScaleWeek:
			d = d.AddDays(7)
		case ScaleMonth:
			d = d.AddMonths(1)
		default:
			d = d.AddDays(1)
		}
	}
	return out
}
