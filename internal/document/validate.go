package document

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/tidwall/gjson"

	"github.com/dmitrijs2005/teamdb/internal/common"
)

var versionRe = regexp.MustCompile(`^\d{8}$`)

// FieldError describes one schema violation.
type FieldError struct {
	Path    string
	Message string
}

func (e *FieldError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s at %s", e.Message, e.Path)
}

func (e *FieldError) Is(target error) bool {
	return target == common.ErrorValidation
}

type validator struct {
	errs *multierror.Error
}

func (v *validator) fail(path, format string, args ...any) {
	v.errs = multierror.Append(v.errs, &FieldError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) str(r gjson.Result, path string) {
	if r.Exists() && r.Type != gjson.String {
		v.fail(path, "must be a string")
	}
}

func (v *validator) boolean(r gjson.Result, path string) {
	if r.Exists() && r.Type != gjson.True && r.Type != gjson.False {
		v.fail(path, "must be a boolean")
	}
}

func (v *validator) strList(r gjson.Result, path string) {
	if !r.Exists() {
		return
	}
	if !r.IsArray() {
		v.fail(path, "must be a list")
		return
	}
	for i, item := range r.Array() {
		if item.Type != gjson.String {
			v.fail(join(path, i), "list items must be strings")
		}
	}
}

func (v *validator) required(r gjson.Result, path, what string) {
	if !r.Exists() {
		v.fail(path, "%s is required", what)
		return
	}
	if r.Type != gjson.String || r.Str == "" {
		v.fail(path, "must be a non-empty string")
	}
}

func join(path string, parts ...any) string {
	var b strings.Builder
	b.WriteString(path)
	for _, p := range parts {
		b.WriteByte('/')
		switch x := p.(type) {
		case int:
			b.WriteString(strconv.Itoa(x))
		default:
			fmt.Fprint(&b, x)
		}
	}
	return b.String()
}

// Validate checks a JSON or YAML payload against the snapshot schema and
// returns every violation found, each matching common.ErrorValidation.
func Validate(raw []byte) error {
	js, err := ToJSON(raw)
	if err != nil {
		return err
	}
	root := gjson.ParseBytes(js)

	v := &validator{}
	if !root.IsObject() {
		v.fail("", "document must be a mapping")
		return v.errs.ErrorOrNil()
	}

	if ver := root.Get("version"); ver.Type != gjson.String || !versionRe.MatchString(ver.Str) {
		v.fail("version", "'version' must be a date string like '20260107'")
	}

	db := root.Get("database")
	if !db.IsObject() {
		v.fail("database", "'database' mapping is required")
		return v.errs.ErrorOrNil()
	}

	people, teams, projects := db.Get("people"), db.Get("teams"), db.Get("projects")
	if !people.IsArray() {
		v.fail("database/people", "'people' must be a list")
	}
	if !teams.IsArray() {
		v.fail("database/teams", "'teams' must be a list")
	}
	if projects.Exists() && !projects.IsArray() {
		v.fail("database/projects", "'projects' must be a list")
	}

	if people.IsArray() {
		for i, p := range people.Array() {
			v.person(p, join("database/people", i))
		}
	}
	if teams.IsArray() {
		for i, t := range teams.Array() {
			v.team(t, join("database/teams", i))
		}
	}
	if projects.IsArray() {
		for i, p := range projects.Array() {
			v.project(p, join("database/projects", i))
		}
	}

	return v.errs.ErrorOrNil()
}

func (v *validator) person(p gjson.Result, path string) {
	if !p.IsObject() {
		v.fail(path, "person entry must be a mapping")
		return
	}
	v.required(p.Get("name"), join(path, "name"), "person.name")

	if b := p.Get("birthday"); b.Exists() && b.Type != gjson.Null {
		if b.Type != gjson.String {
			v.fail(join(path, "birthday"), "birthday must be an ISO date string or empty")
		} else if b.Str != "" {
			if _, err := time.Parse(time.DateOnly, b.Str); err != nil {
				v.fail(join(path, "birthday"), "birthday must be ISO date yyyy-mm-dd or empty")
			}
		}
	}

	for _, f := range []string{"title", "team_name", "legal_manager", "functional_manager"} {
		v.str(p.Get(f), join(path, f))
	}
	v.boolean(p.Get("external"), join(path, "external"))
	v.strList(p.Get("virtual_team"), join(path, "virtual_team"))

	if c := p.Get("carry_over_holidays"); c.Exists() {
		if c.Type != gjson.Number || strings.ContainsAny(c.Raw, ".eE") {
			v.fail(join(path, "carry_over_holidays"), "must be an integer")
		} else if c.Int() < 0 {
			v.fail(join(path, "carry_over_holidays"), "must not be negative")
		}
	}

	if s := p.Get("site"); s.Exists() {
		if s.Type != gjson.String {
			v.fail(join(path, "site"), "must be a string")
		} else if site := strings.ToUpper(s.Str); site != "" && site != "LY" && site != "ERL" {
			v.fail(join(path, "site"), "unknown site %q", s.Str)
		}
	}
}

func (v *validator) team(t gjson.Result, path string) {
	if !t.IsObject() {
		v.fail(path, "team entry must be a mapping")
		return
	}
	v.required(t.Get("name"), join(path, "name"), "team.name")
	for _, f := range []string{"short_name", "product_owner", "functional_manager", "parent_team"} {
		v.str(t.Get(f), join(path, f))
	}
	v.boolean(t.Get("virtual"), join(path, "virtual"))
}

func (v *validator) project(p gjson.Result, path string) {
	if !p.IsObject() {
		v.fail(path, "project entry must be a mapping")
		return
	}
	v.required(p.Get("name"), join(path, "name"), "project.name")
	v.str(p.Get("project_lead"), join(path, "project_lead"))
}
