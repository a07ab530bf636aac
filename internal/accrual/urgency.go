package accrual

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type Severity int

const (
	SeverityNone Severity = iota
	SeverityNotice
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityNotice:
		return "NOTICE"
	case SeverityWarning:
		return "WARNING"
	case SeverityCritical:
		return "CRITICAL"
	}
	return "NONE"
}

// Color is the highlight used for a severity, empty for none.
func (s Severity) Color() string {
	switch s {
	case SeverityNotice:
		return "#ffffcc"
	case SeverityWarning:
		return "#ffcc99"
	case SeverityCritical:
		return "#ffcccc"
	}
	return ""
}

// Urgency tells how pressing it is for a person to take holidays.
type Urgency struct {
	Severity  Severity `json:"severity"`
	Color     string   `json:"color,omitempty"`
	Tooltip   string   `json:"tooltip,omitempty"`
	WeeksLeft int      `json:"weeksLeft,omitempty"`
	DaysLeft  int      `json:"daysLeft,omitempty"`
}

const (
	day  = 24 * time.Hour
	week = 7 * day
)

func ceilDiv(d, unit time.Duration) int {
	return int(math.Ceil(float64(d) / float64(unit)))
}

// weekTier grades a deadline that is up to eight weeks away.
func weekTier(weeks int) Severity {
	switch {
	case weeks <= 0 || weeks > 8:
		return SeverityNone
	case weeks <= 4:
		return SeverityCritical
	case weeks <= 6:
		return SeverityWarning
	}
	return SeverityNotice
}

// shareTier grades days still to take against days left in the year.
func shareTier(share float64) Severity {
	switch {
	case share >= 0.4:
		return SeverityCritical
	case share >= 0.3:
		return SeverityWarning
	case share >= 0.2:
		return SeverityNotice
	}
	return SeverityNone
}

type urgencyBuilder struct {
	u     Urgency
	parts []string
}

func (b *urgencyBuilder) raise(s Severity) {
	if s > b.u.Severity {
		b.u.Severity = s
	}
}

func (b *urgencyBuilder) note(format string, args ...any) {
	b.parts = append(b.parts, fmt.Sprintf(format, args...))
}

// yearEnd grades days that must be used by December 31st. stdNoun and
// shareNoun name the days in the two tooltip lines.
func (b *urgencyBuilder) yearEnd(days, pending float64, now, deadline time.Time, stdNoun, shareNoun string) {
	left := deadline.Sub(now)
	weeks := ceilDiv(left, week)
	daysLeft := ceilDiv(left, day)
	b.u.WeeksLeft, b.u.DaysLeft = weeks, daysLeft

	effective := math.Max(0, days-pending)
	if s := weekTier(weeks); s > SeverityNone && effective > 0 {
		b.raise(s)
		b.note("%.1f %s need to be taken in %d weeks (after accounting for %.1f new days to accrue)",
			effective, stdNoun, weeks, pending)
	}

	if daysLeft > 0 {
		share := days / float64(daysLeft)
		if s := shareTier(share); s > SeverityNone {
			b.raise(s)
			b.note("%s %s = %.1f%% of remaining time until Dec 31st (%s)",
				FormatDays(days), shareNoun, share*100, s)
		}
	}
}

// ComputeUrgency grades r for a person of the given site at now. Deadlines
// are midnight of August 31st and December 31st in now's location.
func ComputeUrgency(site string, r Remaining, now time.Time) Urgency {
	p, _ := PolicyFor(site)
	loc := now.Location()
	augDeadline := time.Date(now.Year(), time.August, 31, 0, 0, 0, 0, loc)
	decDeadline := time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, loc)

	b := &urgencyBuilder{}
	if p.Site == SiteLY {
		if r.SpecialRemaining > 0 {
			left := augDeadline.Sub(now)
			weeks := ceilDiv(left, week)
			if s := weekTier(weeks); s > SeverityNone {
				b.raise(s)
				b.u.WeeksLeft = weeks
				b.note("%s special holidays expire in %d weeks (Aug 31st)", FormatDays(r.SpecialRemaining), weeks)
			}
		}
		if r.StandardRemaining > 0 {
			b.yearEnd(r.StandardRemaining, p.Pending, now, decDeadline, "standard holidays", "standard holidays")
		}
	} else if r.TotalRemaining > 0 {
		b.yearEnd(r.TotalRemaining, p.Pending, now, decDeadline, "holidays", "vacation days")
	}

	b.u.Color = b.u.Severity.Color()
	b.u.Tooltip = strings.Join(b.parts, "\n")
	return b.u
}
