// Package directory holds the people, teams and projects of the team
// directory in memory, together with the absence ledger imported from the
// HR system.
//
// Entities live in a go-memdb database. Team membership and manager
// reports are answered from secondary indexes, so they can never drift
// from the person records they are derived from.
package directory

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"sync"
	"time"

	memdb "github.com/hashicorp/go-memdb"

	"github.com/dmitrijs2005/teamdb/internal/document"
)

const defaultSite = "LY"

type Store struct {
	mu  sync.RWMutex
	db  *memdb.MemDB
	seq uint64
	// last placeholder number handed out, reset by Load
	placeholder int

	obsMu     sync.Mutex
	obsNext   int
	observers map[int]Observer

	now func() time.Time
}

type Option func(*Store)

// WithClock overrides the clock used for default date ranges and versions.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		db:        newMemDB(),
		observers: map[int]Observer{},
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// LoadRaw parses a JSON or YAML snapshot and loads it.
func (s *Store) LoadRaw(raw []byte) error {
	doc, err := document.Parse(raw)
	if err != nil {
		return err
	}
	return s.Load(doc)
}

// Load replaces the whole directory with doc. The new state is built aside
// and swapped in only on success; the ledger is dropped and has to be
// imported again.
func (s *Store) Load(doc *document.Document) error {
	if doc == nil {
		return fmt.Errorf("failed to load snapshot: %w", errNilDocument)
	}

	db := newMemDB()
	l := &loader{txn: db.Txn(true)}

	for _, t := range doc.Database.Teams {
		if t.Name == "" || l.team(t.Name) != nil {
			continue
		}
		l.insertTeam(Team{
			Name:              t.Name,
			ShortName:         t.ShortName,
			FunctionalManager: t.FunctionalManager,
			ProductOwner:      t.ProductOwner,
			ParentTeam:        t.ParentTeam,
			Virtual:           bool(t.Virtual),
		})
	}

	for _, p := range doc.Database.Projects {
		if p.Name == "" || first[projectRow](l.txn, tableProjects, indexID, p.Name) != nil {
			continue
		}
		l.seq++
		must(l.txn.Insert(tableProjects, &projectRow{Project: Project{Name: p.Name, ProjectLead: p.ProjectLead}, Seq: l.seq}))
	}

	// explicit ids first so placeholders never collide with them
	taken := map[string]bool{}
	for _, r := range doc.Database.People {
		if r.UserID != "" {
			taken[r.UserID] = true
		}
	}
	for _, r := range doc.Database.People {
		if r.Name == "" || l.personByName(r.Name) != nil {
			continue
		}
		p := personFromRecord(r)
		if p.UserID == "" || l.personByID(p.UserID) != nil {
			p.UserID = l.nextPlaceholder(taken)
		}
		l.insertPerson(p)
	}

	l.txn.Commit()

	s.mu.Lock()
	s.db = db
	s.seq = l.seq
	s.placeholder = l.placeholder
	s.mu.Unlock()
	return nil
}

func personFromRecord(r document.PersonRecord) *Person {
	p := &Person{
		UserID:            r.UserID,
		Name:              r.Name,
		Birthday:          r.Birthday,
		Title:             r.Title,
		External:          bool(r.External),
		TeamName:          r.TeamName,
		LegalManager:      cmp.Or(r.LegalManager, r.LineManager),
		FunctionalManager: cmp.Or(r.FunctionalManager, r.LegalManager, r.LineManager),
		CarryOverHolidays: r.CarryOverHolidays,
		Site:              cmp.Or(r.Site, defaultSite),
	}
	p.VirtualTeams = cleanVirtualTeams(r.VirtualTeam, p.TeamName)
	return p
}

func (s *Store) read() *memdb.Txn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.Txn(false)
}

// write runs fn in a write transaction. fn returns the event to emit, or
// ok=false to discard all changes.
func (s *Store) write(fn func(l *loader) (Event, bool)) bool {
	s.mu.Lock()
	l := &loader{txn: s.db.Txn(true), seq: s.seq, placeholder: s.placeholder}
	e, ok := fn(l)
	if !ok {
		l.txn.Abort()
		s.mu.Unlock()
		return false
	}
	l.txn.Commit()
	s.seq = l.seq
	s.placeholder = l.placeholder
	s.mu.Unlock()

	if e.Kind != "" {
		s.notify(e)
	}
	return true
}

// loader wraps a write transaction with the bookkeeping every mutation
// needs.
type loader struct {
	txn         *memdb.Txn
	seq         uint64
	placeholder int
}

func (l *loader) personByName(name string) *personRow {
	return first[personRow](l.txn, tablePeople, indexName, name)
}

func (l *loader) personByID(id string) *personRow {
	return first[personRow](l.txn, tablePeople, indexID, id)
}

func (l *loader) team(name string) *teamRow {
	return first[teamRow](l.txn, tableTeams, indexID, name)
}

// nextPlaceholder returns the next free ext_<n> id.
func (l *loader) nextPlaceholder(taken map[string]bool) string {
	for {
		l.placeholder++
		id := PlaceholderPrefix + strconv.Itoa(l.placeholder)
		if !taken[id] && l.personByID(id) == nil {
			return id
		}
	}
}

func (l *loader) insertTeam(t Team) {
	l.seq++
	must(l.txn.Insert(tableTeams, &teamRow{Team: t, Seq: l.seq}))
}

// ensureTeams creates the teams p refers to that do not exist yet.
func (l *loader) ensureTeams(p *Person) {
	if p.TeamName != "" && l.team(p.TeamName) == nil {
		l.insertTeam(Team{Name: p.TeamName})
	}
	for _, vt := range p.VirtualTeams {
		if l.team(vt) == nil {
			l.insertTeam(Team{Name: vt, Virtual: true})
		}
	}
}

func (l *loader) insertPerson(p *Person) {
	l.ensureTeams(p)
	l.seq++
	must(l.txn.Insert(tablePeople, &personRow{Person: *p, Seq: l.seq}))
}

// replacePerson stores p in place of old, keeping its position.
func (l *loader) replacePerson(old *personRow, p *Person) {
	l.ensureTeams(p)
	if old.UserID != p.UserID {
		must(l.txn.Delete(tablePeople, old))
	}
	must(l.txn.Insert(tablePeople, &personRow{Person: *p, Seq: old.Seq}))
}

func sortedKeys(set map[string]struct{}) []string {
	return slices.Sorted(maps.Keys(set))
}
