package invariant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealerops/internal/apperr"
)

// Pinned "now": Monday 2025-01-06 at 08:30 UTC.
var dueNow = time.Date(2025, 1, 6, 8, 30, 0, 0, time.UTC)

func checkDue(t *testing.T, due time.Time) error {
	t.Helper()
	return ValidateDueDate(&due, dueNow, time.UTC)
}

func ruleOf(t *testing.T, err error) string {
	t.Helper()
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Rule
}

func TestValidateDueDate_NilAlwaysPasses(t *testing.T) {
	assert.NoError(t, ValidateDueDate(nil, dueNow, time.UTC))
}

func TestValidateDueDate_FutureBusinessHourAccepted(t *testing.T) {
	assert.NoError(t, checkDue(t, time.Date(2025, 1, 7, 9, 0, 0, 0, time.UTC)))
}

func TestValidateDueDate_PastRejected(t *testing.T) {
	err := checkDue(t, time.Date(2025, 1, 3, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, "due_date_past", ruleOf(t, err))
}

func TestValidateDueDate_NonZeroMinutesRejected(t *testing.T) {
	err := checkDue(t, time.Date(2025, 1, 7, 9, 15, 0, 0, time.UTC))
	assert.Equal(t, "due_date_minute_aligned", ruleOf(t, err))
}

func TestValidateDueDate_OutsideBusinessHoursRejected(t *testing.T) {
	err := checkDue(t, time.Date(2025, 1, 7, 19, 0, 0, 0, time.UTC))
	assert.Equal(t, "due_date_business_hours", ruleOf(t, err))

	err = checkDue(t, time.Date(2025, 1, 7, 7, 0, 0, 0, time.UTC))
	assert.Equal(t, "due_date_business_hours", ruleOf(t, err))

	// 18:00 is the exclusive upper bound.
	err = checkDue(t, time.Date(2025, 1, 7, 18, 0, 0, 0, time.UTC))
	assert.Equal(t, "due_date_business_hours", ruleOf(t, err))
}

func TestValidateDueDate_SameDayMinimumLead(t *testing.T) {
	// 09:00 is only 30 minutes out from the pinned 08:30 clock.
	err := checkDue(t, time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, "due_date_min_lead", ruleOf(t, err))

	// 10:00 is 90 minutes out, minute-aligned, within business hours.
	assert.NoError(t, checkDue(t, time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)))
}

func TestValidateDueDate_TimeZoneGovernsBusinessHours(t *testing.T) {
	berlin := time.FixedZone("CET", 1*60*60)

	// 17:00 UTC is 18:00 in the governing zone: out of hours there.
	err := ValidateDueDate(timePtr(time.Date(2025, 1, 7, 17, 0, 0, 0, time.UTC)), dueNow, berlin)
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "due_date_business_hours", ve.Rule)

	// 16:00 UTC is 17:00 there: fine.
	assert.NoError(t, ValidateDueDate(timePtr(time.Date(2025, 1, 7, 16, 0, 0, 0, time.UTC)), dueNow, berlin))
}

func timePtr(ts time.Time) *time.Time {
	return &ts
}
