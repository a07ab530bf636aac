package directory

import (
	"cmp"
	"slices"
	"strings"

	memdb "github.com/hashicorp/go-memdb"
)

// AddPerson inserts p. A missing or already used user id is replaced by a
// placeholder. It returns false when the name is empty or taken.
func (s *Store) AddPerson(p Person) bool {
	return s.write(func(l *loader) (Event, bool) {
		if p.Name == "" || l.personByName(p.Name) != nil {
			return Event{}, false
		}

		n := p.clone()
		n.Holidays, n.NonWorkingDates, n.Absences = nil, nil, nil
		n.Site = cmp.Or(n.Site, defaultSite)
		n.FunctionalManager = cmp.Or(n.FunctionalManager, n.LegalManager)
		n.VirtualTeams = cleanVirtualTeams(n.VirtualTeams, n.TeamName)
		if n.UserID == "" || l.personByID(n.UserID) != nil {
			n.UserID = l.nextPlaceholder(nil)
		}

		l.insertPerson(n)
		return Event{Kind: KindPeople, ID: n.Name, Op: OpAdd}, true
	})
}

// UpdatePerson changes the person called name. Renaming rewrites every
// manager, product owner and project lead reference to the old name.
func (s *Store) UpdatePerson(name string, u PersonUpdate) bool {
	return s.write(func(l *loader) (Event, bool) {
		return l.updatePerson(l.personByName(name), u)
	})
}

// UpdatePersonByUserID is UpdatePerson keyed by user id.
func (s *Store) UpdatePersonByUserID(userID string, u PersonUpdate) bool {
	return s.write(func(l *loader) (Event, bool) {
		return l.updatePerson(l.personByID(userID), u)
	})
}

func (l *loader) updatePerson(old *personRow, u PersonUpdate) (Event, bool) {
	if old == nil {
		return Event{}, false
	}
	p := old.Person.clone()

	if u.Name != nil && *u.Name != p.Name {
		if *u.Name == "" || l.personByName(*u.Name) != nil {
			return Event{}, false
		}
		p.Name = *u.Name
	}
	if u.Birthday != nil {
		p.Birthday = *u.Birthday
	}
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.External != nil {
		p.External = *u.External
	}
	if u.TeamName != nil {
		p.TeamName = *u.TeamName
	}
	if u.VirtualTeams != nil {
		p.VirtualTeams = slices.Clone(*u.VirtualTeams)
	}
	p.VirtualTeams = cleanVirtualTeams(p.VirtualTeams, p.TeamName)
	if u.LegalManager != nil {
		p.LegalManager = *u.LegalManager
	}
	if u.FunctionalManager != nil {
		p.FunctionalManager = *u.FunctionalManager
	}
	if u.CarryOverHolidays != nil {
		p.CarryOverHolidays = *u.CarryOverHolidays
	}
	if u.Site != nil {
		p.Site = cmp.Or(*u.Site, defaultSite)
	}

	l.replacePerson(old, p)
	if p.Name != old.Name {
		l.renamePersonRefs(old.Name, p.Name)
	}
	return Event{Kind: KindPeople, ID: p.Name, Op: OpUpdate}, true
}

func (l *loader) renamePersonRefs(from, to string) {
	for _, r := range collect[personRow](l.txn.Get(tablePeople, indexLegalManager, from)) {
		p := r.Person.clone()
		p.LegalManager = to
		l.replacePerson(r, p)
	}
	for _, r := range collect[personRow](l.txn.Get(tablePeople, indexFunctionalManager, from)) {
		p := r.Person.clone()
		p.FunctionalManager = to
		l.replacePerson(r, p)
	}

	for _, r := range collect[teamRow](l.txn.Get(tableTeams, indexProductOwner, from)) {
		t := r.Team
		t.ProductOwner = to
		must(l.txn.Insert(tableTeams, &teamRow{Team: t, Seq: r.Seq}))
	}
	for _, r := range collect[teamRow](l.txn.Get(tableTeams, indexFunctionalManager, from)) {
		t := r.Team
		t.FunctionalManager = to
		must(l.txn.Insert(tableTeams, &teamRow{Team: t, Seq: r.Seq}))
	}

	for _, r := range collect[projectRow](l.txn.Get(tableProjects, indexProjectLead, from)) {
		p := r.Project
		p.ProjectLead = to
		must(l.txn.Insert(tableProjects, &projectRow{Project: p, Seq: r.Seq}))
	}
}

// RemovePerson deletes the person called name. References to them from
// other entities are left as they are.
func (s *Store) RemovePerson(name string) bool {
	return s.write(func(l *loader) (Event, bool) {
		r := l.personByName(name)
		if r == nil {
			return Event{}, false
		}
		must(l.txn.Delete(tablePeople, r))
		return Event{Kind: KindPeople, ID: name, Op: OpRemove}, true
	})
}

// PersonByName returns a copy of the person called name.
func (s *Store) PersonByName(name string) (*Person, bool) {
	r := first[personRow](s.read(), tablePeople, indexName, name)
	if r == nil {
		return nil, false
	}
	return r.Person.clone(), true
}

func (s *Store) PersonByUserID(userID string) (*Person, bool) {
	r := first[personRow](s.read(), tablePeople, indexID, userID)
	if r == nil {
		return nil, false
	}
	return r.Person.clone(), true
}

func bySeq[T any](rows []*T, seq func(*T) uint64) []*T {
	slices.SortFunc(rows, func(a, b *T) int { return cmp.Compare(seq(a), seq(b)) })
	return rows
}

func personSeq(r *personRow) uint64 { return r.Seq }

func peopleBy(txn *memdb.Txn, index string, args ...any) []*personRow {
	return bySeq(collect[personRow](txn.Get(tablePeople, index, args...)), personSeq)
}

func names(rows []*personRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

// Sort keys accepted by AllPeople.
const (
	SortByName         = "name"
	SortByTitle        = "title"
	SortByTeam         = "team_name"
	SortBySite         = "site"
	SortByLegalManager = "legal_manager"
)

var sortFields = map[string]func(*Person) string{
	SortByName:         func(p *Person) string { return p.Name },
	SortByTitle:        func(p *Person) string { return p.Title },
	SortByTeam:         func(p *Person) string { return p.TeamName },
	SortBySite:         func(p *Person) string { return p.Site },
	SortByLegalManager: func(p *Person) string { return p.LegalManager },
}

// AllPeople lists everyone in insertion order, or sorted by one of the
// SortBy keys. Unknown keys keep insertion order.
func (s *Store) AllPeople(sortBy string) []*Person {
	rows := peopleBy(s.read(), indexSeq)
	out := make([]*Person, len(rows))
	for i, r := range rows {
		out[i] = r.Person.clone()
	}

	if key, ok := sortFields[sortBy]; ok {
		slices.SortStableFunc(out, func(a, b *Person) int {
			return cmp.Compare(strings.ToLower(key(a)), strings.ToLower(key(b)))
		})
	}
	return out
}

// PersonTeam returns the first team the person belongs to, primary team
// first.
func (s *Store) PersonTeam(name string) string {
	p, ok := s.PersonByName(name)
	if !ok {
		return ""
	}
	if p.TeamName != "" {
		return p.TeamName
	}
	if len(p.VirtualTeams) > 0 {
		return p.VirtualTeams[0]
	}
	return ""
}

// Reports returns the names of the people whose legal manager is manager.
func (s *Store) Reports(manager string) []string {
	if manager == "" {
		return nil
	}
	return names(peopleBy(s.read(), indexLegalManager, manager))
}

// AllManagers returns every legal or functional manager name, sorted.
func (s *Store) AllManagers() []string {
	set := map[string]struct{}{}
	for _, r := range collect[personRow](s.read().Get(tablePeople, indexID)) {
		if r.LegalManager != "" {
			set[r.LegalManager] = struct{}{}
		}
		if r.FunctionalManager != "" {
			set[r.FunctionalManager] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func (s *Store) AllTitles() []string {
	set := map[string]struct{}{}
	for _, r := range collect[personRow](s.read().Get(tablePeople, indexID)) {
		if r.Title != "" {
			set[r.Title] = struct{}{}
		}
	}
	return sortedKeys(set)
}
