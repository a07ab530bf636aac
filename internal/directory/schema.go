package directory

import (
	"fmt"

	memdb "github.com/hashicorp/go-memdb"
)

const (
	tablePeople   = "people"
	tableTeams    = "teams"
	tableProjects = "projects"

	indexID                = "id"
	indexSeq               = "seq"
	indexName              = "name"
	indexTeam              = "team"
	indexVirtualTeam       = "virtual_team"
	indexLegalManager      = "legal_manager"
	indexFunctionalManager = "functional_manager"
	indexProductOwner      = "product_owner"
	indexParentTeam        = "parent_team"
	indexProjectLead       = "project_lead"
)

// Rows carry an insertion sequence so listings and exports keep the order
// entities were loaded or added in. Stored rows are never modified in place.
type personRow struct {
	Person
	Seq uint64
}

type teamRow struct {
	Team
	Seq uint64
}

type projectRow struct {
	Project
	Seq uint64
}

func stringIndex(name, field string) *memdb.IndexSchema {
	return &memdb.IndexSchema{
		Name:         name,
		AllowMissing: true,
		Indexer:      &memdb.StringFieldIndex{Field: field},
	}
}

func seqIndex() *memdb.IndexSchema {
	return &memdb.IndexSchema{
		Name:    indexSeq,
		Unique:  true,
		Indexer: &memdb.UintFieldIndex{Field: "Seq"},
	}
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tablePeople: {
				Name: tablePeople,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "UserID"},
					},
					indexSeq: seqIndex(),
					// Uniqueness of names is checked before every insert;
					// memdb only enforces it for the id index.
					indexName: {
						Name:    indexName,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Name"},
					},
					indexTeam: stringIndex(indexTeam, "TeamName"),
					indexVirtualTeam: {
						Name:         indexVirtualTeam,
						AllowMissing: true,
						Indexer:      &memdb.StringSliceFieldIndex{Field: "VirtualTeams"},
					},
					indexLegalManager:      stringIndex(indexLegalManager, "LegalManager"),
					indexFunctionalManager: stringIndex(indexFunctionalManager, "FunctionalManager"),
				},
			},
			tableTeams: {
				Name: tableTeams,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Name"},
					},
					indexSeq:               seqIndex(),
					indexProductOwner:      stringIndex(indexProductOwner, "ProductOwner"),
					indexFunctionalManager: stringIndex(indexFunctionalManager, "FunctionalManager"),
					indexParentTeam:        stringIndex(indexParentTeam, "ParentTeam"),
				},
			},
			tableProjects: {
				Name: tableProjects,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Name"},
					},
					indexSeq:         seqIndex(),
					indexProjectLead: stringIndex(indexProjectLead, "ProjectLead"),
				},
			},
		},
	}
}

func newMemDB() *memdb.MemDB {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		panic(fmt.Sprintf("directory: invalid schema: %v", err))
	}
	return db
}

// must panics on memdb errors. They only happen when a row does not match
// the schema, which is a programming error.
func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("directory: %v", err))
	}
}

func collect[T any](it memdb.ResultIterator, err error) []*T {
	must(err)
	var out []*T
	for obj := it.Next(); obj != nil; obj = it.Next() {
		out = append(out, obj.(*T))
	}
	return out
}

func first[T any](txn *memdb.Txn, table, index string, args ...any) *T {
	obj, err := txn.First(table, index, args...)
	must(err)
	if obj == nil {
		return nil
	}
	return obj.(*T)
}
