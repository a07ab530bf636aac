package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"sigs.k8s.io/yaml"

	"github.com/dmitrijs2005/teamdb/internal/common"
)

// Shape identifies which wire layout a payload arrived in.
type Shape int

const (
	// ShapeFull is {version, database: {people, teams, projects}}.
	ShapeFull Shape = iota + 1
	// ShapeBare is {people, teams, projects} without the wrapper.
	ShapeBare
	// ShapeEnvelope is {database: <full document>, last_modified}.
	ShapeEnvelope
)

func (s Shape) String() string {
	switch s {
	case ShapeFull:
		return "full"
	case ShapeBare:
		return "bare"
	case ShapeEnvelope:
		return "envelope"
	}
	return "unknown"
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrMalformedInput, fmt.Sprintf(format, args...))
}

// ToJSON converts a JSON or YAML payload to JSON.
func ToJSON(raw []byte) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, malformed("empty document")
	}
	if gjson.ValidBytes(raw) {
		return raw, nil
	}
	js, err := yaml.YAMLToJSON(raw)
	if err != nil {
		return nil, malformed("cannot parse document: %v", err)
	}
	return js, nil
}

// Parse decodes a snapshot document. The top-level "database" mapping is
// required.
func Parse(raw []byte) (*Document, error) {
	js, err := ToJSON(raw)
	if err != nil {
		return nil, err
	}
	root := gjson.ParseBytes(js)
	if !root.IsObject() || !root.Get("database").IsObject() {
		return nil, malformed(`Database object missing required "database" key`)
	}
	return decode(js)
}

// ParseServerResponse accepts every layout the server has been known to
// answer with and normalizes it to a full Document.
func ParseServerResponse(raw []byte) (*Document, Shape, error) {
	js, err := ToJSON(raw)
	if err != nil {
		return nil, 0, err
	}
	root := gjson.ParseBytes(js)
	if !root.IsObject() {
		return nil, 0, malformed("server response is not an object")
	}

	inner := root.Get("database")
	switch {
	case inner.IsObject() && hasCollections(inner):
		doc, err := decode(js)
		return doc, ShapeFull, err

	case inner.IsObject() && inner.Get("database").IsObject():
		doc, err := decode([]byte(inner.Raw))
		return doc, ShapeEnvelope, err

	case hasCollections(root):
		var db Database
		if err := json.Unmarshal(js, &db); err != nil {
			return nil, 0, malformed("cannot decode database: %v", err)
		}
		doc := &Document{Database: db}
		if v := root.Get("version"); v.Exists() {
			if err := doc.Version.UnmarshalJSON([]byte(v.Raw)); err != nil {
				return nil, 0, err
			}
		}
		return doc, ShapeBare, nil
	}

	return nil, 0, malformed("unrecognized server response layout")
}

func hasCollections(r gjson.Result) bool {
	return r.Get("people").Exists() || r.Get("teams").Exists() || r.Get("projects").Exists()
}

func decode(js []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(js, &doc); err != nil {
		return nil, malformed("cannot decode document: %v", err)
	}
	return &doc, nil
}
