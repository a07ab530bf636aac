package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatModifiedAt(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 30, 45, 999_000_000, time.FixedZone("EET", 2*3600))
	assert.Equal(t, "2026-03-01T10:30:45Z", FormatModifiedAt(ts))
}

func TestPendingChangeSet_Add(t *testing.T) {
	s := NewPendingChangeSet()
	assert.True(t, s.Empty())

	s.Add(KindPeople, "Alice")
	s.Add(KindPeople, "Alice")
	s.Add(KindTeams, "Core")
	s.Add("widgets", "ignored")

	assert.Equal(t, []string{"Alice"}, s.People)
	assert.Equal(t, []string{"Core"}, s.Teams)
	assert.Empty(t, s.Projects)
	assert.True(t, s.Contains(KindTeams, "Core"))
	assert.False(t, s.Contains(KindProjects, "Core"))
	assert.False(t, s.Contains("widgets", "ignored"))
	assert.False(t, s.Empty())
}
