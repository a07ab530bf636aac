package directory

import "slices"

// Kind names the collection an event refers to. The values double as the
// keys of the pending change set.
type Kind string

const (
	KindPeople   Kind = "people"
	KindTeams    Kind = "teams"
	KindProjects Kind = "projects"
)

type Op string

const (
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpRemove Op = "remove"
)

// Event describes one committed mutation. ID is the entity name after the
// change.
type Event struct {
	Kind Kind
	ID   string
	Op   Op
}

// Observer is called synchronously, once per successful mutation, after the
// change is visible to readers. Bulk loads and ledger imports do not emit
// events.
type Observer func(Event)

// Subscribe registers o and returns a function that removes it again.
func (s *Store) Subscribe(o Observer) (unsubscribe func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()

	s.obsNext++
	id := s.obsNext
	s.observers[id] = o

	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		delete(s.observers, id)
	}
}

func (s *Store) notify(e Event) {
	s.obsMu.Lock()
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	obs := make([]Observer, 0, len(ids))
	// subscription order
	slices.Sort(ids)
	for _, id := range ids {
		obs = append(obs, s.observers[id])
	}
	s.obsMu.Unlock()

	for _, o := range obs {
		o(e)
	}
}
