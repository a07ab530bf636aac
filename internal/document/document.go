// Package document implements the bulk snapshot format exchanged between
// clients, the directory server and the on-disk fallback file:
//
//	version: "20260107"
//	database:
//	  people:   [...]
//	  teams:    [...]
//	  projects: [...]
//
// Documents are accepted as JSON or YAML. Internally everything is converted
// to JSON first so a single set of struct tags describes the format.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"sigs.k8s.io/yaml"

	"github.com/dmitrijs2005/teamdb/internal/common"
)

// VersionLayout is the layout of generated document versions.
const VersionLayout = "20060102"

// Version is the sortable document version, usually YYYYMMDD. YAML files in
// the wild carry it both quoted and bare, so numbers are accepted too.
type Version string

func (v *Version) UnmarshalJSON(b []byte) error {
	r := gjson.ParseBytes(b)
	switch r.Type {
	case gjson.Null:
		*v = ""
	case gjson.String:
		*v = Version(r.Str)
	case gjson.Number:
		*v = Version(r.Raw)
	default:
		return fmt.Errorf("%w: version must be a string", common.ErrMalformedInput)
	}
	return nil
}

// Flag is a boolean that also accepts the string "true".
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	r := gjson.ParseBytes(b)
	*f = Flag(r.Type == gjson.True || (r.Type == gjson.String && r.Str == "true"))
	return nil
}

// PersonRecord is the exported field set of a person. Absence ledger fields
// are runtime-only and never appear here.
type PersonRecord struct {
	UserID            string   `json:"userId,omitempty"`
	Name              string   `json:"name"`
	Birthday          string   `json:"birthday"`
	Title             string   `json:"title"`
	External          Flag     `json:"external"`
	TeamName          string   `json:"team_name"`
	VirtualTeam       []string `json:"virtual_team"`
	LegalManager      string   `json:"legal_manager"`
	FunctionalManager string   `json:"functional_manager"`
	LineManager       string   `json:"line_manager,omitempty"`
	CarryOverHolidays float64  `json:"carry_over_holidays"`
	Site              string   `json:"site"`
}

type TeamRecord struct {
	Name              string `json:"name"`
	ShortName         string `json:"short_name"`
	FunctionalManager string `json:"functional_manager"`
	ProductOwner      string `json:"product_owner,omitempty"`
	ParentTeam        string `json:"parent_team,omitempty"`
	Virtual           Flag   `json:"virtual,omitempty"`
}

type ProjectRecord struct {
	Name        string `json:"name"`
	ProjectLead string `json:"project_lead"`
}

type Database struct {
	People   []PersonRecord  `json:"people"`
	Teams    []TeamRecord    `json:"teams"`
	Projects []ProjectRecord `json:"projects"`
}

// Document is the canonical in-memory shape of a snapshot.
type Document struct {
	Version  Version  `json:"version"`
	Database Database `json:"database"`
}

// NewVersion returns the version stamp for a document exported at t.
func NewVersion(t time.Time) Version {
	return Version(t.UTC().Format(VersionLayout))
}

// JSON returns the canonical serialization: fixed field order, arrays never
// null.
func (d *Document) JSON() ([]byte, error) {
	c := *d
	if c.Database.People == nil {
		c.Database.People = []PersonRecord{}
	}
	if c.Database.Teams == nil {
		c.Database.Teams = []TeamRecord{}
	}
	if c.Database.Projects == nil {
		c.Database.Projects = []ProjectRecord{}
	}
	people := make([]PersonRecord, len(c.Database.People))
	for i, p := range c.Database.People {
		if p.VirtualTeam == nil {
			p.VirtualTeam = []string{}
		}
		people[i] = p
	}
	c.Database.People = people

	b, err := json.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return b, nil
}

// YAML renders the document the way it is kept on disk and in the cache.
func (d *Document) YAML() ([]byte, error) {
	js, err := d.JSON()
	if err != nil {
		return nil, err
	}
	out, err := yaml.JSONToYAML(js)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document as yaml: %w", err)
	}
	return out, nil
}

// Equal reports whether a and b have the same canonical serialization.
func Equal(a, b *Document) bool {
	if a == nil || b == nil {
		return a == b
	}
	ja, err := a.JSON()
	if err != nil {
		return false
	}
	jb, err := b.JSON()
	if err != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}
