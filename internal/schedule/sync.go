package schedule

import (
	"fmt"

	"gantt-planner-api/internal/calendar"
	"gantt-planner-api/internal/models"
)

// ResolveSyncedDates mirrors ref onto t according to syncType. The synced task takes over
// ref's weekend policies so both are counted the same way. Dates are copied as they
// are, without weekend adjustment.
func ResolveSyncedDates(t *models.Task, ref *models.Task, syncType models.SyncType) (Resolution, error) {
	r := Resolution{
		Mode:               ModeSync,
		SkipWeekends:       ref.SkipWeekends,
		AutoAdjustWeekends: ref.AutoAdjustWeekends,
	}
	refStart, err := calendar.Parse(ref.StartDate)
	if err != nil {
		return r, integrityError(t.ID, "syncedTaskId", fmt.Errorf("%w: synced task %d start %q", ErrInvalidDate, ref.ID, ref.StartDate))
	}
	refEnd, err := calendar.Parse(ref.EndDate)
	if err != nil {
		return r, integrityError(t.ID, "syncedTaskId", fmt.Errorf("%w: synced task %d end %q", ErrInvalidDate, ref.ID, ref.EndDate))
	}

	skip := ref.SkipWeekends
	duration := baseDuration(t)
	switch syncType {
	case models.SyncStartStart:
		r.Start = refStart
		r.End = calendar.EndFromDuration(r.Start, duration, skip)
	case models.SyncEndEnd:
		r.End = refEnd
		r.Start = calendar.StartFromDuration(r.End, duration, skip)
	case models.SyncStartEndTogether:
		r.Start, r.End = refStart, refEnd
	case models.SyncStartEnd:
		r.Start = refEnd
		r.End = calendar.EndFromDuration(r.Start, duration, skip)
	case models.SyncEndStart:
		r.End = refStart
		r.Start = calendar.StartFromDuration(r.End, duration, skip)
	default:
		return r, validationError(t.ID, "syncType", fmt.Errorf("%w: %q", ErrInvalidSyncType, syncType))
	}
	r.Duration = calendar.DurationBetween(r.Start, r.End, skip)
	return r, nil
}
