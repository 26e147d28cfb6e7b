package invariant

import (
	"time"

	"dealerops/internal/apperr"
)

// Business-hours window for order due dates, in the governing time zone.
const (
	dueDateOpenHour  = 8
	dueDateCloseHour = 18
	dueDateMinLead   = time.Hour
)

// ValidateDueDate checks an order due date against the scheduling rules:
// strictly in the future, hour within business hours, minute-aligned,
// and at least one hour ahead when due the same day. A nil due date
// always passes. Pure function of the two timestamps.
func ValidateDueDate(due *time.Time, now time.Time, loc *time.Location) error {
	if due == nil {
		return nil
	}
	d := due.In(loc)
	n := now.In(loc)

	if !d.After(n) {
		return &apperr.ValidationError{
			Rule:    "due_date_past",
			Message: "due date must be in the future",
		}
	}
	if d.Minute() != 0 || d.Second() != 0 {
		return &apperr.ValidationError{
			Rule:    "due_date_minute_aligned",
			Message: "due date must be on the hour",
		}
	}
	if d.Hour() < dueDateOpenHour || d.Hour() >= dueDateCloseHour {
		return &apperr.ValidationError{
			Rule:    "due_date_business_hours",
			Message: "due date must be between 08:00 and 18:00",
		}
	}
	sameDay := d.Year() == n.Year() && d.YearDay() == n.YearDay()
	if sameDay && d.Sub(n) < dueDateMinLead {
		return &apperr.ValidationError{
			Rule:    "due_date_min_lead",
			Message: "same-day due date must be at least one hour ahead",
		}
	}
	return nil
}

// validateDueDate applies ValidateDueDate with the pipeline's clock and
// time zone.
func (p *Pipeline) validateDueDate(due *time.Time) error {
	return ValidateDueDate(due, p.now(), p.loc)
}
