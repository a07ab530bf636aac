package directory

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/teamdb/internal/common"
	"github.com/dmitrijs2005/teamdb/internal/document"
)

const fixture = `
version: "20260101"
database:
  people:
    - name: Alice
      title: Head
      team_name: Core
      site: ERL
    - name: Bob
      title: Engineer
      team_name: Core
      virtual_team: [Guild, Core, Guild]
      line_manager: Alice
      carry_over_holidays: 2
    - name: Carol
      userId: u-carol
      title: Engineer
      team_name: Apps
      legal_manager: Alice
      functional_manager: Bob
      external: "true"
  teams:
    - name: Core
      short_name: COR
      product_owner: Alice
  projects:
    - name: Apollo
      project_lead: Bob
    - name: Zeus
      project_lead: Alice
`

var fixedNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, s.LoadRaw([]byte(fixture)))
	return s
}

func recordEvents(s *Store) *[]Event {
	var events []Event
	s.Subscribe(func(e Event) { events = append(events, e) })
	return &events
}

func TestLoad_NormalizesPeopleAndDerivesIndexes(t *testing.T) {
	s := newTestStore(t)

	alice, ok := s.PersonByName("Alice")
	require.True(t, ok)
	assert.Equal(t, "ext_1", alice.UserID)
	assert.Equal(t, "ERL", alice.Site)
	assert.False(t, alice.HasHolidayData())

	bob, ok := s.PersonByName("Bob")
	require.True(t, ok)
	assert.Equal(t, "ext_2", bob.UserID)
	assert.Equal(t, "Alice", bob.LegalManager)
	assert.Equal(t, "Alice", bob.FunctionalManager)
	assert.Equal(t, []string{"Guild"}, bob.VirtualTeams)
	assert.Equal(t, "LY", bob.Site)
	assert.Equal(t, 2.0, bob.CarryOverHolidays)

	carol, ok := s.PersonByUserID("u-carol")
	require.True(t, ok)
	assert.Equal(t, "Carol", carol.Name)
	assert.True(t, carol.External)
	assert.True(t, carol.HasHolidayData())

	assert.Equal(t, []string{"Apps", "Core", "Guild"}, s.AllTeamNames())
	assert.Equal(t, []string{"Alice", "Bob"}, s.TeamMembers("Core"))
	assert.Equal(t, []string{"Bob"}, s.TeamMembers("Guild"))
	assert.Equal(t, []string{"Bob", "Carol"}, s.Reports("Alice"))
	assert.Equal(t, []string{"Alice", "Bob"}, s.AllManagers())
	assert.Equal(t, []string{"Engineer", "Head"}, s.AllTitles())
	assert.Equal(t, "Core", s.PersonTeam("Bob"))
	assert.Equal(t, "", s.PersonTeam("Nobody"))

	guild, ok := s.Team("Guild")
	require.True(t, ok)
	assert.True(t, guild.Virtual)

	apps, ok := s.Team("Apps")
	require.True(t, ok)
	assert.False(t, apps.Virtual)

	core, _ := s.Team("Core")
	assert.Equal(t, "COR", core.ShortName)
}

func TestLoad_DuplicateNamesFirstWins(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Load(&document.Document{Database: document.Database{
		People: []document.PersonRecord{
			{Name: "A", Title: "first", UserID: "u1"},
			{Name: "A", Title: "second"},
			{Name: "B", UserID: "u1"},
		},
	}}))

	a, _ := s.PersonByName("A")
	assert.Equal(t, "first", a.Title)

	b, _ := s.PersonByName("B")
	assert.Equal(t, "ext_1", b.UserID)
	assert.Len(t, s.AllPeople(""), 2)
}

func TestLoadRaw_MalformedKeepsPreviousState(t *testing.T) {
	s := newTestStore(t)

	err := s.LoadRaw([]byte(`{"version":"20260101","people":[]}`))
	require.ErrorIs(t, err, common.ErrMalformedInput)

	assert.Len(t, s.AllPeople(""), 3)
	assert.Len(t, s.Projects(), 2)
}

func TestExport_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	doc := s.Export("")
	assert.Equal(t, document.Version("20260301"), doc.Version)

	raw, err := doc.YAML()
	require.NoError(t, err)

	back := NewStore()
	require.NoError(t, back.LoadRaw(raw))

	opts := cmpopts.EquateEmpty()
	assert.Empty(t, cmp.Diff(s.AllPeople(""), back.AllPeople(""), opts))
	assert.Empty(t, cmp.Diff(s.AllTeams(), back.AllTeams(), opts))
	assert.Empty(t, cmp.Diff(s.Projects(), back.Projects(), opts))
	assert.Equal(t, s.AllTeamNames(), back.AllTeamNames())
	assert.True(t, document.Equal(doc, back.Export(doc.Version)))
}

func TestExport_SkipsUnassignedTeam(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Load(&document.Document{Database: document.Database{
		People: []document.PersonRecord{{Name: "A", TeamName: "N/A"}},
	}}))

	_, ok := s.Team("N/A")
	require.True(t, ok)

	doc := s.Export("20260101")
	assert.Empty(t, doc.Database.Teams)
	assert.Equal(t, "N/A", doc.Database.People[0].TeamName)
}

func TestUpdatePerson_RenameCascades(t *testing.T) {
	s := newTestStore(t)
	events := recordEvents(s)

	require.True(t, s.UpdatePerson("Alice", PersonUpdate{Name: Ptr("Alicia")}))

	_, ok := s.PersonByName("Alice")
	assert.False(t, ok)

	alicia, ok := s.PersonByName("Alicia")
	require.True(t, ok)
	assert.Equal(t, "ext_1", alicia.UserID)

	bob, _ := s.PersonByName("Bob")
	assert.Equal(t, "Alicia", bob.LegalManager)
	assert.Equal(t, "Alicia", bob.FunctionalManager)

	carol, _ := s.PersonByName("Carol")
	assert.Equal(t, "Alicia", carol.LegalManager)
	assert.Equal(t, "Bob", carol.FunctionalManager)

	core, _ := s.Team("Core")
	assert.Equal(t, "Alicia", core.ProductOwner)

	zeus, _ := s.Project("Zeus")
	assert.Equal(t, "Alicia", zeus.ProjectLead)

	assert.Equal(t, []string{"Bob", "Carol"}, s.Reports("Alicia"))
	assert.Empty(t, s.Reports("Alice"))
	assert.Equal(t, []string{"Alicia", "Bob"}, s.TeamMembers("Core"))

	assert.Equal(t, []Event{{Kind: KindPeople, ID: "Alicia", Op: OpUpdate}}, *events)
}

func TestUpdatePerson_Failures(t *testing.T) {
	s := newTestStore(t)
	events := recordEvents(s)

	assert.False(t, s.UpdatePerson("Nobody", PersonUpdate{Title: Ptr("x")}))
	assert.False(t, s.UpdatePerson("Alice", PersonUpdate{Name: Ptr("Bob")}))
	assert.False(t, s.UpdatePerson("Alice", PersonUpdate{Name: Ptr("")}))
	assert.False(t, s.UpdatePersonByUserID("missing", PersonUpdate{Title: Ptr("x")}))

	alice, _ := s.PersonByName("Alice")
	assert.Equal(t, "Head", alice.Title)
	assert.Empty(t, *events)
}

func TestUpdatePersonByUserID_MovesTeamAndManager(t *testing.T) {
	s := newTestStore(t)

	require.True(t, s.UpdatePersonByUserID("u-carol", PersonUpdate{
		TeamName:     Ptr("Core"),
		VirtualTeams: Ptr([]string{"Core", "Lab"}),
		LegalManager: Ptr("Bob"),
	}))

	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, s.TeamMembers("Core"))
	assert.Empty(t, s.TeamMembers("Apps"))
	assert.Equal(t, []string{"Carol"}, s.TeamMembers("Lab"))
	assert.Equal(t, []string{"Bob"}, s.Reports("Alice"))
	assert.Equal(t, []string{"Carol"}, s.Reports("Bob"))

	lab, ok := s.Team("Lab")
	require.True(t, ok)
	assert.True(t, lab.Virtual)

	_, ok = s.Team("Apps")
	assert.True(t, ok)
}

func TestAddPerson(t *testing.T) {
	s := newTestStore(t)
	events := recordEvents(s)

	require.True(t, s.AddPerson(Person{
		Name:         "Eve",
		TeamName:     "Ops",
		VirtualTeams: []string{"Ops", "Guild"},
		LegalManager: "Carol",
		Holidays:     []LedgerDay{{Date: "2026-01-01"}},
	}))
	assert.False(t, s.AddPerson(Person{Name: "Eve"}))
	assert.False(t, s.AddPerson(Person{}))
	require.True(t, s.AddPerson(Person{Name: "Frank", UserID: "u-carol"}))

	eve, ok := s.PersonByName("Eve")
	require.True(t, ok)
	assert.Equal(t, "ext_3", eve.UserID)
	assert.Equal(t, "Carol", eve.FunctionalManager)
	assert.Equal(t, []string{"Guild"}, eve.VirtualTeams)
	assert.Equal(t, "LY", eve.Site)
	assert.Empty(t, eve.Holidays)

	frank, _ := s.PersonByName("Frank")
	assert.Equal(t, "ext_4", frank.UserID)

	ops, ok := s.Team("Ops")
	require.True(t, ok)
	assert.False(t, ops.Virtual)
	assert.Equal(t, []string{"Bob", "Eve"}, s.TeamMembers("Guild"))

	assert.Equal(t, []Event{
		{Kind: KindPeople, ID: "Eve", Op: OpAdd},
		{Kind: KindPeople, ID: "Frank", Op: OpAdd},
	}, *events)
}

func TestRemovePerson(t *testing.T) {
	s := newTestStore(t)

	require.True(t, s.RemovePerson("Bob"))
	assert.False(t, s.RemovePerson("Bob"))

	assert.Equal(t, []string{"Carol"}, s.Reports("Alice"))
	assert.Equal(t, []string{"Alice"}, s.TeamMembers("Core"))
	assert.Empty(t, s.TeamMembers("Guild"))

	// dangling references stay
	carol, _ := s.PersonByName("Carol")
	assert.Equal(t, "Bob", carol.FunctionalManager)
	apollo, _ := s.Project("Apollo")
	assert.Equal(t, "Bob", apollo.ProjectLead)
}

func TestUpdateTeam_RenameCascades(t *testing.T) {
	s := newTestStore(t)
	events := recordEvents(s)

	require.True(t, s.UpdateTeam("Core", TeamUpdate{Name: Ptr("Platform"), ShortName: Ptr("PLT")}))
	require.True(t, s.UpdateTeam("Guild", TeamUpdate{Name: Ptr("Chapter")}))
	require.True(t, s.AddTeam(Team{Name: "Web", ParentTeam: "Platform"}))
	require.True(t, s.UpdateTeam("Platform", TeamUpdate{Name: Ptr("Infra")}))

	alice, _ := s.PersonByName("Alice")
	assert.Equal(t, "Infra", alice.TeamName)

	bob, _ := s.PersonByName("Bob")
	assert.Equal(t, "Infra", bob.TeamName)
	assert.Equal(t, []string{"Chapter"}, bob.VirtualTeams)

	web, _ := s.Team("Web")
	assert.Equal(t, "Infra", web.ParentTeam)

	infra, ok := s.Team("Infra")
	require.True(t, ok)
	assert.Equal(t, "PLT", infra.ShortName)
	assert.Equal(t, "Alice", infra.ProductOwner)

	assert.NotContains(t, s.AllTeamNames(), "Core")
	assert.Equal(t, []string{"Alice", "Bob"}, s.TeamMembers("Infra"))
	assert.Len(t, *events, 4)
}

func TestUpdateTeam_Failures(t *testing.T) {
	s := newTestStore(t)

	assert.False(t, s.UpdateTeam("Nope", TeamUpdate{ShortName: Ptr("X")}))
	assert.False(t, s.UpdateTeam("Core", TeamUpdate{Name: Ptr("Apps")}))
	assert.False(t, s.AddTeam(Team{Name: "Core"}))
	assert.False(t, s.AddTeam(Team{}))

	bob, _ := s.PersonByName("Bob")
	assert.Equal(t, "Core", bob.TeamName)
}

func TestRemoveTeam_LeavesMembersAlone(t *testing.T) {
	s := newTestStore(t)

	require.True(t, s.RemoveTeam("Apps"))
	assert.False(t, s.RemoveTeam("Apps"))

	_, ok := s.Team("Apps")
	assert.False(t, ok)

	carol, _ := s.PersonByName("Carol")
	assert.Equal(t, "Apps", carol.TeamName)
	assert.NotContains(t, s.AllTeamNames(), "Apps")
}

func TestProjects(t *testing.T) {
	s := newTestStore(t)
	events := recordEvents(s)

	assert.False(t, s.AddProject(Project{Name: "Apollo"}))
	require.True(t, s.AddProject(Project{Name: "Hermes", ProjectLead: "Carol"}))
	require.True(t, s.UpdateProject("Apollo", ProjectUpdate{Name: Ptr("Artemis")}))
	assert.False(t, s.UpdateProject("Artemis", ProjectUpdate{Name: Ptr("Zeus")}))
	assert.False(t, s.UpdateProject("Missing", ProjectUpdate{ProjectLead: Ptr("x")}))

	got := s.Projects()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Artemis", "Zeus", "Hermes"}, []string{got[0].Name, got[1].Name, got[2].Name})
	assert.Equal(t, "Bob", got[0].ProjectLead)

	require.True(t, s.RemoveProject("Zeus"))
	assert.False(t, s.RemoveProject("Zeus"))
	assert.Len(t, s.Projects(), 2)

	assert.Len(t, *events, 3)
}

func TestAllPeople_Sorting(t *testing.T) {
	s := newTestStore(t)

	byTeam := s.AllPeople(SortByTeam)
	assert.Equal(t, []string{"Carol", "Alice", "Bob"}, []string{byTeam[0].Name, byTeam[1].Name, byTeam[2].Name})

	unknown := s.AllPeople("shoe_size")
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, []string{unknown[0].Name, unknown[1].Name, unknown[2].Name})

	// callers get copies
	unknown[0].Name = "changed"
	_, ok := s.PersonByName("Alice")
	assert.True(t, ok)
}

func TestSubscribe_DeliversAfterCommitAndUnsubscribes(t *testing.T) {
	s := newTestStore(t)

	var seen []string
	unsubscribe := s.Subscribe(func(e Event) {
		p, ok := s.PersonByName(e.ID)
		require.True(t, ok)
		seen = append(seen, p.Title)
	})

	require.True(t, s.UpdatePerson("Bob", PersonUpdate{Title: Ptr("Lead")}))
	unsubscribe()
	require.True(t, s.UpdatePerson("Bob", PersonUpdate{Title: Ptr("CTO")}))

	assert.Equal(t, []string{"Lead"}, seen)
}

func TestSuggestShortName(t *testing.T) {
	tests := map[string]string{
		"Research and Development": "RES",
		"R & D":                    "RND",
		"Sales AND marketing":      "SAL",
		"Q & A":                    "QNA",
		"42 Platform":              "PLA",
		"":                         "",
		"ab":                       "AB",
	}
	for in, want := range tests {
		assert.Equal(t, want, SuggestShortName(in), in)
	}
}
