package directory

import memdb "github.com/hashicorp/go-memdb"

// AddProject appends a project. It returns false when the name is empty or
// taken.
func (s *Store) AddProject(p Project) bool {
	return s.write(func(l *loader) (Event, bool) {
		if p.Name == "" || first[projectRow](l.txn, tableProjects, indexID, p.Name) != nil {
			return Event{}, false
		}
		l.seq++
		must(l.txn.Insert(tableProjects, &projectRow{Project: p, Seq: l.seq}))
		return Event{Kind: KindProjects, ID: p.Name, Op: OpAdd}, true
	})
}

// UpdateProject changes the project called name in place.
func (s *Store) UpdateProject(name string, u ProjectUpdate) bool {
	return s.write(func(l *loader) (Event, bool) {
		old := first[projectRow](l.txn, tableProjects, indexID, name)
		if old == nil {
			return Event{}, false
		}
		p := old.Project

		if u.Name != nil && *u.Name != p.Name {
			if *u.Name == "" || first[projectRow](l.txn, tableProjects, indexID, *u.Name) != nil {
				return Event{}, false
			}
			p.Name = *u.Name
			must(l.txn.Delete(tableProjects, old))
		}
		if u.ProjectLead != nil {
			p.ProjectLead = *u.ProjectLead
		}

		must(l.txn.Insert(tableProjects, &projectRow{Project: p, Seq: old.Seq}))
		return Event{Kind: KindProjects, ID: p.Name, Op: OpUpdate}, true
	})
}

func (s *Store) RemoveProject(name string) bool {
	return s.write(func(l *loader) (Event, bool) {
		r := first[projectRow](l.txn, tableProjects, indexID, name)
		if r == nil {
			return Event{}, false
		}
		must(l.txn.Delete(tableProjects, r))
		return Event{Kind: KindProjects, ID: name, Op: OpRemove}, true
	})
}

func (s *Store) Project(name string) (*Project, bool) {
	r := first[projectRow](s.read(), tableProjects, indexID, name)
	if r == nil {
		return nil, false
	}
	p := r.Project
	return &p, true
}

func projectsBySeq(txn *memdb.Txn) []*projectRow {
	return bySeq(collect[projectRow](txn.Get(tableProjects, indexID)), func(r *projectRow) uint64 { return r.Seq })
}

// Projects lists projects in the order they were added.
func (s *Store) Projects() []*Project {
	rows := projectsBySeq(s.read())
	out := make([]*Project, len(rows))
	for i, r := range rows {
		p := r.Project
		out[i] = &p
	}
	return out
}
