// Package models defines the client-side records persisted in the local
// cache and exchanged with the sync client.
package models

import (
	"slices"
	"time"

	"github.com/dmitrijs2005/teamdb/internal/document"
)

// ModifiedAtLayout is the wire format of LocalEntry.ModifiedAt and of the
// X-Client-Modified-At header.
const ModifiedAtLayout = "2006-01-02T15:04:05Z"

// FormatModifiedAt renders t in UTC without sub-second precision.
func FormatModifiedAt(t time.Time) string {
	return t.UTC().Format(ModifiedAtLayout)
}

// LocalEntry is the locally edited snapshot waiting to be pushed.
type LocalEntry struct {
	Data       *document.Document `json:"data"`
	ModifiedAt string             `json:"modified_at"`
	Pending    bool               `json:"pending"`
}

// Change kinds, matching the keys of PendingChangeSet.
const (
	KindPeople   = "people"
	KindTeams    = "teams"
	KindProjects = "projects"
)

// PendingChangeSet lists the names of entities edited since the last
// successful sync. It only decorates the UI; the whole snapshot is always
// pushed.
type PendingChangeSet struct {
	People   []string `json:"people"`
	Teams    []string `json:"teams"`
	Projects []string `json:"projects"`
}

// NewPendingChangeSet returns a set with empty, non-nil lists.
func NewPendingChangeSet() *PendingChangeSet {
	return &PendingChangeSet{People: []string{}, Teams: []string{}, Projects: []string{}}
}

func (s *PendingChangeSet) list(kind string) *[]string {
	switch kind {
	case KindPeople:
		return &s.People
	case KindTeams:
		return &s.Teams
	case KindProjects:
		return &s.Projects
	}
	return nil
}

// Add appends name under kind unless already present. Unknown kinds are
// ignored.
func (s *PendingChangeSet) Add(kind, name string) {
	l := s.list(kind)
	if l == nil || slices.Contains(*l, name) {
		return
	}
	*l = append(*l, name)
}

func (s *PendingChangeSet) Contains(kind, name string) bool {
	l := s.list(kind)
	return l != nil && slices.Contains(*l, name)
}

func (s *PendingChangeSet) Empty() bool {
	return len(s.People) == 0 && len(s.Teams) == 0 && len(s.Projects) == 0
}

// Source is where the active snapshot came from.
type Source string

const (
	SourceNone   Source = ""
	SourceServer Source = "server"
	SourceLocal  Source = "local"
	SourceCache  Source = "cache"
	SourceDisk   Source = "disk"
)
