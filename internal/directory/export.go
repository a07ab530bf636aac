package directory

import (
	"cmp"
	"slices"

	"github.com/dmitrijs2005/teamdb/internal/document"
)

// unassignedTeam is a bookkeeping team that is never exported.
const unassignedTeam = "N/A"

// Export returns the directory as a snapshot document. An empty version is
// replaced by today's date. Ledger fields are not part of the snapshot.
func (s *Store) Export(version document.Version) *document.Document {
	if version == "" {
		version = document.NewVersion(s.now())
	}
	txn := s.read()

	doc := &document.Document{
		Version: version,
		Database: document.Database{
			People:   []document.PersonRecord{},
			Teams:    []document.TeamRecord{},
			Projects: []document.ProjectRecord{},
		},
	}

	for _, r := range peopleBy(txn, indexSeq) {
		doc.Database.People = append(doc.Database.People, document.PersonRecord{
			UserID:            r.UserID,
			Name:              r.Name,
			Birthday:          r.Birthday,
			Title:             r.Title,
			External:          document.Flag(r.External),
			TeamName:          r.TeamName,
			VirtualTeam:       slices.Clone(r.VirtualTeams),
			LegalManager:      r.LegalManager,
			FunctionalManager: cmp.Or(r.FunctionalManager, r.LegalManager),
			CarryOverHolidays: r.CarryOverHolidays,
			Site:              cmp.Or(r.Site, defaultSite),
		})
	}

	for _, t := range teamsBySeq(txn) {
		if t.Name == unassignedTeam {
			continue
		}
		doc.Database.Teams = append(doc.Database.Teams, document.TeamRecord{
			Name:              t.Name,
			ShortName:         t.ShortName,
			FunctionalManager: t.FunctionalManager,
			ProductOwner:      t.ProductOwner,
			ParentTeam:        t.ParentTeam,
			Virtual:           document.Flag(t.Virtual),
		})
	}

	for _, p := range projectsBySeq(txn) {
		doc.Database.Projects = append(doc.Database.Projects, document.ProjectRecord{
			Name:        p.Name,
			ProjectLead: p.ProjectLead,
		})
	}

	return doc
}
