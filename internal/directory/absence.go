package directory

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dmitrijs2005/teamdb/internal/common"
)

// Imported absence fields that carry no information for the directory.
var droppedAbsenceFields = map[string]bool{
	"__metadata":      true,
	"userId":          true,
	"externalCode":    true,
	"displayQuantity": true,
}

var knownAbsenceFields = map[string]bool{
	"startDate":      true,
	"endDate":        true,
	"timeTypeName":   true,
	"quantityInDays": true,
	"approvalStatus": true,
}

type ledgerEntry struct {
	username        string
	userID          string
	holidays        []LedgerDay
	nonWorkingDates []LedgerDay
	absences        []AbsenceRecord
}

// parseLedger reads an absence feed. Both the raw OData envelope
// ({"d":{"results":[...]}}) and a bare array are accepted. Calendars may be
// embedded as JSON strings or as arrays.
func parseLedger(raw []byte) ([]ledgerEntry, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: absence data is not valid JSON", common.ErrMalformedInput)
	}
	results := gjson.ParseBytes(raw)
	if results.IsObject() {
		results = results.Get("d.results")
	}
	if !results.IsArray() {
		return nil, fmt.Errorf("%w: absence data has no result list", common.ErrMalformedInput)
	}

	var out []ledgerEntry
	for _, e := range results.Array() {
		name := e.Get("username").String()
		if name == "" {
			continue
		}
		out = append(out, ledgerEntry{
			username:        name,
			userID:          e.Get("userId").String(),
			holidays:        ledgerDays(e.Get("holidays")),
			nonWorkingDates: ledgerDays(e.Get("nonWorkingDates")),
			absences:        absenceRecords(e.Get("employeeTimeNav.results")),
		})
	}
	return out, nil
}

func ledgerDays(r gjson.Result) []LedgerDay {
	if r.Type == gjson.String {
		r = gjson.Parse(r.Str)
	}
	if !r.IsArray() {
		return nil
	}
	var out []LedgerDay
	for _, d := range r.Array() {
		out = append(out, LedgerDay{Date: d.Get("date").String(), Raw: d.Raw})
	}
	return out
}

func absenceRecords(r gjson.Result) []AbsenceRecord {
	var out []AbsenceRecord
	for _, a := range r.Array() {
		rec := AbsenceRecord{
			StartDate:      a.Get("startDate").String(),
			EndDate:        a.Get("endDate").String(),
			TimeTypeName:   a.Get("timeTypeName").String(),
			QuantityInDays: a.Get("quantityInDays").Float(),
			ApprovalStatus: a.Get("approvalStatus").String(),
		}
		a.ForEach(func(k, v gjson.Result) bool {
			if droppedAbsenceFields[k.Str] || knownAbsenceFields[k.Str] {
				return true
			}
			if rec.Extra == nil {
				rec.Extra = map[string]string{}
			}
			rec.Extra[k.Str] = v.String()
			return true
		})
		out = append(out, rec)
	}
	return out
}

// ImportAbsence merges an absence feed into the directory. People are
// matched by name; unknown names become new people. Only the ledger fields
// and the user id are taken from the feed, so importing the same feed again
// changes nothing. No events are emitted.
func (s *Store) ImportAbsence(raw []byte) error {
	entries, err := parseLedger(raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l := &loader{txn: s.db.Txn(true), seq: s.seq, placeholder: s.placeholder}
	for _, e := range entries {
		l.importEntry(e)
	}
	l.txn.Commit()
	s.seq = l.seq
	s.placeholder = l.placeholder
	return nil
}

func (l *loader) importEntry(e ledgerEntry) {
	// the feed is authoritative for user ids: whoever holds the id under
	// another name is moved to a placeholder
	if e.userID != "" {
		if holder := l.personByID(e.userID); holder != nil && holder.Name != e.username {
			p := holder.Person.clone()
			p.UserID = l.nextPlaceholder(nil)
			l.replacePerson(holder, p)
		}
	}

	old := l.personByName(e.username)
	var p *Person
	if old != nil {
		p = old.Person.clone()
	} else {
		p = &Person{Name: e.username, Site: defaultSite}
	}
	if e.userID != "" {
		p.UserID = e.userID
	}
	if p.UserID == "" {
		p.UserID = l.nextPlaceholder(nil)
	}
	p.Holidays = e.holidays
	p.NonWorkingDates = e.nonWorkingDates
	p.Absences = e.absences

	if old != nil {
		l.replacePerson(old, p)
	} else {
		l.insertPerson(p)
	}
}

var wireDateRe = regexp.MustCompile(`^/Date\((-?\d+)(?:[+-]\d{4})?\)/$`)

// ParseWireDate decodes the "/Date(<epoch millis>)/" encoding used by the
// absence feed.
func ParseWireDate(s string) (time.Time, bool) {
	m := wireDateRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// SpentDaysByType sums booked days per absence type for absences starting
// within [from, to]. A zero from means January 1st of the current year,
// a zero to means now.
func (s *Store) SpentDaysByType(userID string, from, to time.Time) map[string]float64 {
	out := map[string]float64{}

	r := first[personRow](s.read(), tablePeople, indexID, userID)
	if r == nil {
		return out
	}

	now := s.now()
	if from.IsZero() {
		from = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	}
	if to.IsZero() {
		to = now
	}

	for _, a := range r.Absences {
		start, ok := ParseWireDate(a.StartDate)
		if !ok || start.Before(from) || start.After(to) {
			continue
		}
		typ := a.TimeTypeName
		if typ == "" {
			typ = "Unknown"
		}
		out[typ] += a.QuantityInDays
	}
	return out
}

// AllAbsenceTypes returns every absence type name in the ledger, sorted.
func (s *Store) AllAbsenceTypes() []string {
	set := map[string]struct{}{}
	for _, r := range collect[personRow](s.read().Get(tablePeople, indexID)) {
		for _, a := range r.Absences {
			if a.TimeTypeName != "" {
				set[a.TimeTypeName] = struct{}{}
			}
		}
	}
	return sortedKeys(set)
}

// HolidayRange holds the calendar entries of one person within a range.
type HolidayRange struct {
	Holidays        []LedgerDay
	NonWorkingDates []LedgerDay
}

// Holidays returns the person's calendar entries dated within [from, to].
// Dates are compared as strings, so both bounds must use the feed's date
// format.
func (s *Store) Holidays(name, from, to string) (*HolidayRange, bool) {
	r := first[personRow](s.read(), tablePeople, indexName, name)
	if r == nil {
		return nil, false
	}
	outside := func(d LedgerDay) bool { return d.Date < from || d.Date > to }
	return &HolidayRange{
		Holidays:        slices.DeleteFunc(slices.Clone(r.Holidays), outside),
		NonWorkingDates: slices.DeleteFunc(slices.Clone(r.NonWorkingDates), outside),
	}, true
}
