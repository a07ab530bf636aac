package directory

import (
	"regexp"
	"strings"
	"unicode"

	memdb "github.com/hashicorp/go-memdb"
)

// AddTeam creates a team. It returns false when the name is empty or taken.
func (s *Store) AddTeam(t Team) bool {
	return s.write(func(l *loader) (Event, bool) {
		if t.Name == "" || l.team(t.Name) != nil {
			return Event{}, false
		}
		l.insertTeam(t)
		return Event{Kind: KindTeams, ID: t.Name, Op: OpAdd}, true
	})
}

// UpdateTeam changes the team called name. A rename moves every primary
// member, virtual member and child team over to the new name.
func (s *Store) UpdateTeam(name string, u TeamUpdate) bool {
	return s.write(func(l *loader) (Event, bool) {
		old := l.team(name)
		if old == nil {
			return Event{}, false
		}
		t := old.Team

		if u.Name != nil && *u.Name != t.Name {
			if *u.Name == "" || l.team(*u.Name) != nil {
				return Event{}, false
			}
			t.Name = *u.Name
		}
		if u.ShortName != nil {
			t.ShortName = *u.ShortName
		}
		if u.FunctionalManager != nil {
			t.FunctionalManager = *u.FunctionalManager
		}
		if u.ProductOwner != nil {
			t.ProductOwner = *u.ProductOwner
		}
		if u.ParentTeam != nil {
			t.ParentTeam = *u.ParentTeam
		}
		if u.Virtual != nil {
			t.Virtual = *u.Virtual
		}

		if t.Name != old.Name {
			must(l.txn.Delete(tableTeams, old))
			l.renameTeamRefs(old.Name, t.Name)
		}
		must(l.txn.Insert(tableTeams, &teamRow{Team: t, Seq: old.Seq}))

		return Event{Kind: KindTeams, ID: t.Name, Op: OpUpdate}, true
	})
}

func (l *loader) renameTeamRefs(from, to string) {
	for _, r := range collect[personRow](l.txn.Get(tablePeople, indexTeam, from)) {
		p := r.Person.clone()
		p.TeamName = to
		p.VirtualTeams = cleanVirtualTeams(p.VirtualTeams, to)
		must(l.txn.Insert(tablePeople, &personRow{Person: *p, Seq: r.Seq}))
	}
	for _, r := range collect[personRow](l.txn.Get(tablePeople, indexVirtualTeam, from)) {
		p := r.Person.clone()
		for i, vt := range p.VirtualTeams {
			if vt == from {
				p.VirtualTeams[i] = to
			}
		}
		p.VirtualTeams = cleanVirtualTeams(p.VirtualTeams, p.TeamName)
		must(l.txn.Insert(tablePeople, &personRow{Person: *p, Seq: r.Seq}))
	}
	for _, r := range collect[teamRow](l.txn.Get(tableTeams, indexParentTeam, from)) {
		t := r.Team
		t.ParentTeam = to
		must(l.txn.Insert(tableTeams, &teamRow{Team: t, Seq: r.Seq}))
	}
}

// RemoveTeam deletes the team called name. Its members keep their
// team_name and virtual_team values.
func (s *Store) RemoveTeam(name string) bool {
	return s.write(func(l *loader) (Event, bool) {
		r := l.team(name)
		if r == nil {
			return Event{}, false
		}
		must(l.txn.Delete(tableTeams, r))
		return Event{Kind: KindTeams, ID: name, Op: OpRemove}, true
	})
}

func (s *Store) Team(name string) (*Team, bool) {
	r := first[teamRow](s.read(), tableTeams, indexID, name)
	if r == nil {
		return nil, false
	}
	t := r.Team
	return &t, true
}

// TeamMembers returns the primary members of a team followed by its
// virtual members.
func (s *Store) TeamMembers(name string) []string {
	txn := s.read()
	return append(names(peopleBy(txn, indexTeam, name)), names(peopleBy(txn, indexVirtualTeam, name))...)
}

// AllTeamNames returns the names of all teams, sorted.
func (s *Store) AllTeamNames() []string {
	set := map[string]struct{}{}
	for _, r := range collect[teamRow](s.read().Get(tableTeams, indexID)) {
		set[r.Name] = struct{}{}
	}
	return sortedKeys(set)
}

func teamsBySeq(txn *memdb.Txn) []*teamRow {
	return bySeq(collect[teamRow](txn.Get(tableTeams, indexID)), func(r *teamRow) uint64 { return r.Seq })
}

// AllTeams lists teams in insertion order.
func (s *Store) AllTeams() []*Team {
	rows := teamsBySeq(s.read())
	out := make([]*Team, len(rows))
	for i, r := range rows {
		t := r.Team
		out[i] = &t
	}
	return out
}

var ampersandRe = regexp.MustCompile(`(?i)\s+(&|and)\s+`)

// SuggestShortName derives a three letter code from a team name, with
// "&" and "and" turned into N: "Research and Development" gives "RES",
// "R & D" gives "RND".
func SuggestShortName(teamName string) string {
	s := ampersandRe.ReplaceAllString(teamName, "N")
	s = strings.Map(func(r rune) rune {
		if r <= unicode.MaxASCII && unicode.IsLetter(r) {
			return r
		}
		return -1
	}, s)
	if len(s) > 3 {
		s = s[:3]
	}
	return strings.ToUpper(s)
}
