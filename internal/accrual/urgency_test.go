package accrual

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func midnight(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeUrgency_LYSpecialPool(t *testing.T) {
	r := Remaining{Site: SiteLY, SpecialRemaining: 3}

	u := ComputeUrgency("LY", r, midnight(2026, time.July, 20))
	assert.Equal(t, SeverityWarning, u.Severity)
	assert.Equal(t, "#ffcc99", u.Color)
	assert.Equal(t, 6, u.WeeksLeft)
	assert.Equal(t, "3 special holidays expire in 6 weeks (Aug 31st)", u.Tooltip)

	u = ComputeUrgency("LY", r, midnight(2026, time.May, 1))
	assert.Equal(t, SeverityNone, u.Severity)
	assert.Empty(t, u.Color)
	assert.Empty(t, u.Tooltip)
}

func TestComputeUrgency_LYStandardTakesMoreSevere(t *testing.T) {
	r := Remaining{Site: SiteLY, StandardRemaining: 20}

	u := ComputeUrgency("LY", r, midnight(2026, time.November, 20))
	assert.Equal(t, SeverityCritical, u.Severity)
	assert.Equal(t, "#ffcccc", u.Color)
	assert.Equal(t, 6, u.WeeksLeft)
	assert.Equal(t, 41, u.DaysLeft)
	assert.Equal(t,
		"11.7 standard holidays need to be taken in 6 weeks (after accounting for 8.3 new days to accrue)\n"+
			"20 standard holidays = 48.8% of remaining time until Dec 31st (CRITICAL)",
		u.Tooltip)
}

func TestComputeUrgency_ERL(t *testing.T) {
	u := ComputeUrgency("ERL", Remaining{Site: SiteERL, TotalRemaining: 5}, midnight(2026, time.November, 20))
	assert.Equal(t, SeverityNone, u.Severity)
	assert.Empty(t, u.Tooltip)

	u = ComputeUrgency("ERL", Remaining{Site: SiteERL, TotalRemaining: 9}, midnight(2026, time.December, 10))
	assert.Equal(t, SeverityCritical, u.Severity)
	assert.Equal(t, 3, u.WeeksLeft)
	assert.Equal(t, "9 vacation days = 42.9% of remaining time until Dec 31st (CRITICAL)", u.Tooltip)
}

func TestComputeUrgency_PastDeadline(t *testing.T) {
	u := ComputeUrgency("ERL", Remaining{Site: SiteERL, TotalRemaining: 25}, time.Date(2026, time.December, 31, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, SeverityNone, u.Severity)
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, "NOTICE", SeverityNotice.String())
	assert.Equal(t, "#ffffcc", SeverityNotice.Color())
	assert.Equal(t, "", SeverityNone.Color())
}
