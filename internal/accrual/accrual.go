// Package accrual computes holiday entitlement for the two office sites.
//
// The accrual year runs from September 1st to August 31st (UTC). Days are
// credited at the end of each completed month. LY additionally receives a
// bulk grant of special days on September 1st that expires on August 31st.
package accrual

import (
	"math"
	"strconv"
	"strings"
	"time"
)

type Site string

const (
	SiteLY  Site = "LY"
	SiteERL Site = "ERL"
)

// Policy holds the accrual rates of a site.
type Policy struct {
	Site Site
	// Rate is credited per completed month, up to Cap.
	Rate float64
	Cap  float64
	// Bulk is granted in full at the start of the accrual year.
	Bulk float64
	// Pending is what is still credited between September and December;
	// urgency tiers subtract it before judging the standard pool.
	Pending float64
}

var (
	ERL = Policy{Site: SiteERL, Rate: 2.5, Cap: 30, Pending: 4 * 2.5}
	LY  = Policy{Site: SiteLY, Rate: 2.08, Cap: 25, Bulk: 5, Pending: 4 * 2.08}
)

// PolicyFor returns the policy for a site code. An empty code means LY.
// Unknown codes get ERL rules and ok=false so the caller can log it.
func PolicyFor(site string) (p Policy, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(site)) {
	case "", string(SiteLY):
		return LY, true
	case string(SiteERL):
		return ERL, true
	}
	return ERL, false
}

// Round2 rounds half-up to two decimals.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// FormatDays renders a day count the shortest way, "7", "7.5" or "12.48".
func FormatDays(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AccrualYearStart returns September 1st of the accrual year containing today.
func AccrualYearStart(today time.Time) time.Time {
	d := utcDay(today)
	start := time.Date(d.Year(), time.September, 1, 0, 0, 0, 0, time.UTC)
	if d.Before(start) {
		start = start.AddDate(-1, 0, 0)
	}
	return start
}

// MonthsElapsed counts the completed months of the current accrual year.
// A month is complete from its last calendar day on.
func MonthsElapsed(today time.Time) int {
	d := utcDay(today)
	start := AccrualYearStart(d)

	months := (d.Year()-start.Year())*12 + int(d.Month()-start.Month())

	lastDay := time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if d.Day() == lastDay {
		months++
	}
	return max(0, months)
}

// Monthly returns the monthly part of the entitlement after months.
func (p Policy) Monthly(months int) float64 {
	return Round2(math.Min(p.Cap, float64(months)*p.Rate))
}

// Accrued returns bulk plus monthly days credited after months.
func (p Policy) Accrued(months int) float64 {
	return Round2(p.Bulk + math.Min(p.Cap, float64(months)*p.Rate))
}

// Holder is what the engine needs to know about a person.
type Holder struct {
	Site      string
	CarryOver float64
}

// LYBreakdown splits an LY entitlement into its bulk and monthly parts.
type LYBreakdown struct {
	BulkDays       float64 `json:"bulkDays"`
	MonthlyAccrued float64 `json:"monthlyAccruedDays"`
	MonthsPassed   int     `json:"monthsPassed"`
	TotalDays      float64 `json:"totalDays"`
}

// Breakdown is a full report of a person's entitlement on a given day.
type Breakdown struct {
	Site             Site         `json:"site"`
	CarryOver        float64      `json:"carryOver"`
	Accrued          float64      `json:"accruedDays"`
	TotalAvailable   float64      `json:"totalAvailable"`
	MonthsPassed     int          `json:"monthsPassed"`
	AccrualYearStart string       `json:"accrualYearStart"`
	LY               *LYBreakdown `json:"lyBreakdown,omitempty"`
}

// Compute reports the entitlement of h on today.
func Compute(h Holder, today time.Time) Breakdown {
	p, _ := PolicyFor(h.Site)
	months := MonthsElapsed(today)
	accrued := p.Accrued(months)

	b := Breakdown{
		Site:             p.Site,
		CarryOver:        h.CarryOver,
		Accrued:          accrued,
		TotalAvailable:   Round2(h.CarryOver + accrued),
		MonthsPassed:     months,
		AccrualYearStart: AccrualYearStart(today).Format(time.DateOnly),
	}
	if p.Site == SiteLY {
		b.LY = &LYBreakdown{
			BulkDays:       p.Bulk,
			MonthlyAccrued: p.Monthly(months),
			MonthsPassed:   months,
			TotalDays:      accrued,
		}
	}
	return b
}

// TotalAvailable is carry-over plus everything accrued so far.
func TotalAvailable(h Holder, today time.Time) float64 {
	return Compute(h, today).TotalAvailable
}

// Spend is what a person has used in the accrual year. When ByPool is set
// the LY pools are charged separately, otherwise Total is charged to the
// standard pool first.
type Spend struct {
	Total        float64
	ExtraHoliday float64
	Holiday      float64
	ByPool       bool
}

func SpendTotal(total float64) Spend {
	return Spend{Total: total}
}

func SpendByPool(extraHoliday, holiday float64) Spend {
	return Spend{
		Total:        extraHoliday + holiday,
		ExtraHoliday: extraHoliday,
		Holiday:      holiday,
		ByPool:       true,
	}
}

// Absence type names the ledger uses for holiday spend.
const (
	TypeExtraHoliday = "Extra Holiday"
	TypeHoliday      = "Holiday"
	TypeVacation     = "Vacation"
)

// SpendFromTypes builds the spend for a site from per-type day totals.
func SpendFromTypes(site string, byType map[string]float64) Spend {
	if p, _ := PolicyFor(site); p.Site == SiteLY {
		return SpendByPool(byType[TypeExtraHoliday], byType[TypeHoliday])
	}
	return SpendTotal(byType[TypeVacation])
}

// Remaining is what is left after spending. SpecialRemaining and
// StandardRemaining are only filled for LY.
type Remaining struct {
	Site              Site    `json:"site"`
	SpecialRemaining  float64 `json:"specialRemaining"`
	StandardRemaining float64 `json:"standardRemaining"`
	TotalRemaining    float64 `json:"totalRemaining"`
	DisplayText       string  `json:"displayText"`
	SortValue         float64 `json:"sortValue"`
}

// ComputeRemaining subtracts spend from the entitlement of h on today.
func ComputeRemaining(h Holder, spend Spend, today time.Time) Remaining {
	p, _ := PolicyFor(h.Site)
	if p.Site != SiteLY {
		left := math.Max(0, TotalAvailable(h, today)-spend.Total)
		return Remaining{
			Site:           p.Site,
			TotalRemaining: Round2(left),
			DisplayText:    FormatDays(Round2(left)),
			SortValue:      left,
		}
	}

	special := p.Bulk
	standard := h.CarryOver + p.Monthly(MonthsElapsed(today))

	var specialSpent, standardSpent float64
	if spend.ByPool {
		specialSpent = spend.ExtraHoliday
		standardSpent = spend.Holiday
	} else {
		standardSpent = math.Min(standard, spend.Total)
		specialSpent = math.Max(0, spend.Total-standard)
	}

	specialLeft := math.Max(0, special-specialSpent)
	standardLeft := math.Max(0, standard-standardSpent)

	return Remaining{
		Site:              SiteLY,
		SpecialRemaining:  Round2(specialLeft),
		StandardRemaining: Round2(standardLeft),
		TotalRemaining:    Round2(specialLeft + standardLeft),
		DisplayText:       FormatDays(Round2(specialLeft)) + " / " + FormatDays(Round2(standardLeft)),
		SortValue:         specialLeft + standardLeft,
	}
}
