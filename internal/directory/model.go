package directory

import (
	"maps"
	"slices"
	"strings"
)

// PlaceholderPrefix marks user ids generated for people that have no
// record in the absence system.
const PlaceholderPrefix = "ext_"

// Person is an entry of the directory. Holidays, NonWorkingDates and
// Absences form the absence ledger and are only set by ImportAbsence.
type Person struct {
	UserID            string
	Name              string
	Birthday          string
	Title             string
	External          bool
	TeamName          string
	VirtualTeams      []string
	LegalManager      string
	FunctionalManager string
	CarryOverHolidays float64
	Site              string

	Holidays        []LedgerDay
	NonWorkingDates []LedgerDay
	Absences        []AbsenceRecord
}

// HasHolidayData reports whether the person is linked to the absence system.
func (p *Person) HasHolidayData() bool {
	return p.UserID != "" && !strings.HasPrefix(p.UserID, PlaceholderPrefix)
}

func (p *Person) clone() *Person {
	c := *p
	c.VirtualTeams = slices.Clone(p.VirtualTeams)
	c.Holidays = slices.Clone(p.Holidays)
	c.NonWorkingDates = slices.Clone(p.NonWorkingDates)
	c.Absences = slices.Clone(p.Absences)
	for i := range c.Absences {
		c.Absences[i].Extra = maps.Clone(c.Absences[i].Extra)
	}
	return &c
}

// LedgerDay is a single dated entry of a holiday calendar. Raw keeps the
// entry as it was imported.
type LedgerDay struct {
	Date string
	Raw  string
}

// AbsenceRecord is one booked absence. Extra holds the remaining imported
// fields after the noisy ones have been dropped.
type AbsenceRecord struct {
	StartDate      string
	EndDate        string
	TimeTypeName   string
	QuantityInDays float64
	ApprovalStatus string
	Extra          map[string]string
}

type Team struct {
	Name              string
	ShortName         string
	FunctionalManager string
	ProductOwner      string
	ParentTeam        string
	// Virtual teams exist only as virtual_team groupings.
	Virtual bool
}

type Project struct {
	Name        string
	ProjectLead string
}

// PersonUpdate lists the fields to change; nil fields are left alone.
type PersonUpdate struct {
	Name              *string
	Birthday          *string
	Title             *string
	External          *bool
	TeamName          *string
	VirtualTeams      *[]string
	LegalManager      *string
	FunctionalManager *string
	CarryOverHolidays *float64
	Site              *string
}

type TeamUpdate struct {
	Name              *string
	ShortName         *string
	FunctionalManager *string
	ProductOwner      *string
	ParentTeam        *string
	Virtual           *bool
}

type ProjectUpdate struct {
	Name        *string
	ProjectLead *string
}

// Ptr is a helper for filling update structs.
func Ptr[T any](v T) *T {
	return &v
}

// cleanVirtualTeams drops blanks, duplicates and the primary team.
func cleanVirtualTeams(teams []string, primary string) []string {
	out := make([]string, 0, len(teams))
	for _, t := range teams {
		if t == "" || t == primary || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
