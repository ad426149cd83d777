package schedule

import (
	"fmt"

	"gantt-planner-api/internal/calendar"
	"gantt-planner-api/internal/models"
)

// Mode is how a task's dates are determined.
type Mode string

const (
	ModeManual    Mode = "manual"
	ModeDependent Mode = "dependent"
	ModeSync      Mode = "sync"
)

// ModeOf picks the date mode of t. A sync reference wins over dependencies.
func ModeOf(t *models.Task) Mode {
	switch {
	case t.SyncedTaskID != nil:
		return ModeSync
	case len(t.Dependencies) > 0:
		return ModeDependent
	default:
		return ModeManual
	}
}

// effectiveMode is ModeOf for resolution against s: a task whose sync reference or
// dependencies no longer resolve keeps its own dates, like a manual one.
func effectiveMode(t *models.Task, s *Snapshot) Mode {
	switch ModeOf(t) {
	case ModeSync:
		if !s.Has(*t.SyncedTaskID) {
			return ModeManual
		}
		return ModeSync
	case ModeDependent:
		if _, ok, _ := ResolveDependentStart(t, s); !ok {
			return ModeManual
		}
		return ModeDependent
	default:
		return ModeManual
	}
}

// Resolution is the concrete schedule computed for a task.
type Resolution struct {
	Mode               Mode
	Start              calendar.Date
	End                calendar.Date
	Duration           int
	SkipWeekends       bool
	AutoAdjustWeekends bool
	Warnings           []Warning
}

// Apply writes r onto t and reports whether any scheduling field changed.
func (r Resolution) Apply(t *models.Task) bool {
	start, end := r.Start.String(), r.End.String()
	changed := t.StartDate != start || t.EndDate != end || t.Duration != r.Duration ||
		t.SkipWeekends != r.SkipWeekends || t.AutoAdjustWeekends != r.AutoAdjustWeekends
	t.StartDate, t.EndDate, t.Duration = start, end, r.Duration
	t.SkipWeekends, t.AutoAdjustWeekends = r.SkipWeekends, r.AutoAdjustWeekends
	return changed
}

// ResolveDates computes start, end and duration of t from its configuration and the
// project snapshot. It does not modify t or s.
func ResolveDates(t *models.Task, s *Snapshot) (Resolution, error) {
	switch ModeOf(t) {
	case ModeSync:
		ref, ok := s.Get(*t.SyncedTaskID)
		if !ok {
			r, err := resolveManual(t)
			r.Warnings = append(r.Warnings, Warning{Kind: WarnMissingSync, TaskID: t.ID, RefID: *t.SyncedTaskID,
				Message: fmt.Sprintf("synced task %d does not exist; keeping current dates", *t.SyncedTaskID)})
			return r, err
		}
		return ResolveSyncedDates(t, ref, t.SyncType)
	case ModeDependent:
		return resolveDependent(t, s)
	default:
		return resolveManual(t)
	}
}

// baseDuration is the duration a derived mode preserves: the stored one, or one derived
// from the stored dates for tasks created before a duration was known.
func baseDuration(t *models.Task) int {
	if t.Duration >= 1 {
		return t.Duration
	}
	start, err1 := calendar.Parse(t.StartDate)
	end, err2 := calendar.Parse(t.EndDate)
	if err1 != nil || err2 != nil || end.Before(start) {
		return 1
	}
	return calendar.DurationBetween(start, end, t.SkipWeekends)
}

func parseField(t *models.Task, field, value string) (calendar.Date, error) {
	d, err := calendar.Parse(value)
	if err != nil {
		return calendar.Date{}, validationError(t.ID, field, fmt.Errorf("%w: %q", ErrInvalidDate, value))
	}
	return d, nil
}

// resolveManual keeps the user's dates, moving a weekend start to Monday when the task
// asks for it. A moved start keeps the duration, not the old end date.
func resolveManual(t *models.Task) (Resolution, error) {
	r := Resolution{Mode: ModeManual, SkipWeekends: t.SkipWeekends, AutoAdjustWeekends: t.AutoAdjustWeekends}
	start, err := parseField(t, "startDate", t.StartDate)
	if err != nil {
		return r, err
	}
	var end calendar.Date
	if t.EndDate == "" {
		end = calendar.EndFromDuration(start, baseDuration(t), t.SkipWeekends)
	} else if end, err = parseField(t, "endDate", t.EndDate); err != nil {
		return r, err
	}

	if t.AutoAdjustWeekends {
		if adjusted := calendar.AdjustForWeekend(start); adjusted != start {
			duration := t.Duration
			if duration < 1 && !end.Before(start) {
				duration = calendar.DurationBetween(start, end, t.SkipWeekends)
			}
			start = adjusted
			end = calendar.EndFromDuration(start, duration, t.SkipWeekends)
		}
	}
	if end.Before(start) {
		return r, validationError(t.ID, "endDate", ErrEndBeforeStart)
	}
	r.Start, r.End = start, end
	r.Duration = calendar.DurationBetween(start, end, t.SkipWeekends)
	return r, nil
}

func resolveDependent(t *models.Task, s *Snapshot) (Resolution, error) {
	start, ok, warnings := ResolveDependentStart(t, s)
	if !ok {
		// nothing left to derive from; the task keeps its own dates
		r, err := resolveManual(t)
		r.Warnings = append(warnings, r.Warnings...)
		return r, err
	}
	duration := baseDuration(t)
	end := calendar.EndFromDuration(start, duration, t.SkipWeekends)
	return Resolution{
		Mode:               ModeDependent,
		Start:              start,
		End:                end,
		Duration:           calendar.DurationBetween(start, end, t.SkipWeekends),
		SkipWeekends:       t.SkipWeekends,
		AutoAdjustWeekends: t.AutoAdjustWeekends,
		Warnings:           warnings,
	}, nil
}

// ResolveDependentStart returns the earliest start t may have: the day after the latest
// end among its dependencies, pushed back by OffsetDays. Dependencies that do not exist
// or carry unreadable dates are skipped and reported. ok is false when none remain.
func ResolveDependentStart(t *models.Task, s *Snapshot) (start calendar.Date, ok bool, warnings []Warning) {
	var ends []calendar.Date
	for _, id := range t.Dependencies {
		dep, found := s.Get(id)
		if !found {
			warnings = append(warnings, Warning{Kind: WarnMissingDependency, TaskID: t.ID, RefID: id,
				Message: fmt.Sprintf("dependency %d does not exist; ignored", id)})
			continue
		}
		end, err := calendar.Parse(dep.EndDate)
		if err != nil {
			warnings = append(warnings, Warning{Kind: WarnResolveFailed, TaskID: t.ID, RefID: id,
				Message: fmt.Sprintf("dependency %d has no usable end date; ignored", id)})
			continue
		}
		ends = append(ends, end)
	}
	if len(ends) == 0 {
		return calendar.Date{}, false, warnings
	}

	latest := calendar.Max(ends...)
	if t.SkipWeekends {
		start = calendar.AddBusinessDays(latest, 1+t.OffsetDays)
	} else {
		start = latest.AddDays(1 + t.OffsetDays)
	}
	if t.AutoAdjustWeekends {
		start = calendar.AdjustForWeekend(start)
	}
	return start, true, warnings
}
