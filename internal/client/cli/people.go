package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/teamdb/internal/accrual"
	"github.com/dmitrijs2005/teamdb/internal/directory"
)

var listSortKeys = []string{
	directory.SortByName,
	directory.SortByTitle,
	directory.SortByTeam,
	directory.SortBySite,
	directory.SortByLegalManager,
}

// List prints everyone, sorted by name unless another key is given.
func (a *App) List(ctx context.Context, args []string) error {
	sortBy := directory.SortByName
	if len(args) > 0 {
		sortBy = args[0]
	}
	if !slices.Contains(listSortKeys, sortBy) {
		return usage("list [" + strings.Join(listSortKeys, "|") + "]")
	}

	store, err := a.session.Directory(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTITLE\tTEAM\tSITE\tMANAGER")
	for _, p := range store.AllPeople(sortBy) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.Name, p.Title, p.TeamName, p.Site, p.LegalManager)
	}
	return tw.Flush()
}

// Show prints one person with their reports.
func (a *App) Show(ctx context.Context, args []string) error {
	name := strings.Join(args, " ")
	if name == "" {
		return usage("show <person>")
	}

	store, err := a.session.Directory(ctx)
	if err != nil {
		return err
	}
	p, ok := store.PersonByName(name)
	if !ok {
		return notFound("person", name)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	row := func(k, v string) {
		if v != "" {
			fmt.Fprintf(tw, "%s:\t%s\n", k, v)
		}
	}
	row("Name", p.Name)
	row("User id", p.UserID)
	row("Title", p.Title)
	row("Team", p.TeamName)
	row("Virtual teams", strings.Join(p.VirtualTeams, ", "))
	row("Legal manager", p.LegalManager)
	row("Functional manager", p.FunctionalManager)
	row("Birthday", p.Birthday)
	row("Site", p.Site)
	row("External", fmt.Sprint(p.External))
	row("Carry over", accrual.FormatDays(p.CarryOverHolidays))
	row("Reports", strings.Join(store.Reports(p.Name), ", "))
	row("Holiday data", fmt.Sprint(p.HasHolidayData()))
	return tw.Flush()
}

func (a *App) addPerson(ctx context.Context) error {
	store, err := a.session.Directory(ctx)
	if err != nil {
		return err
	}

	var p directory.Person
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Name", &p.Name},
		{"Title", &p.Title},
		{"Team", &p.TeamName},
		{"Legal manager", &p.LegalManager},
		{"Functional manager (empty for the legal manager)", &p.FunctionalManager},
		{"Site (LY or ERL, empty for LY)", &p.Site},
		{"Birthday (yyyy-mm-dd, optional)", &p.Birthday},
	}
	for _, f := range fields {
		if *f.dst, err = a.ask(f.prompt); err != nil {
			return err
		}
	}

	virtual, err := a.ask("Virtual teams (comma separated, optional)")
	if err != nil {
		return err
	}
	p.VirtualTeams = splitList(virtual)

	carry, err := a.ask("Carry over holidays (days, optional)")
	if err != nil {
		return err
	}
	if p.CarryOverHolidays, err = parseDays(carry); err != nil {
		return err
	}

	if p.External, err = GetYesNo(a.reader, "External", false, a.out); err != nil {
		return err
	}

	if _, ok := accrual.PolicyFor(p.Site); !ok {
		a.logger.Warn(ctx, "unknown site, ERL rules apply", "site", p.Site)
	}
	p.Site = strings.ToUpper(p.Site)

	if !store.AddPerson(p) {
		return fmt.Errorf("%w: person %q already exists or has no name", ErrRejected, p.Name)
	}
	a.printf("Added person %s\n", p.Name)
	return nil
}

// personUpdate maps field=value assignments onto a PersonUpdate.
func personUpdate(fields map[string]string) (directory.PersonUpdate, error) {
	var u directory.PersonUpdate
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = directory.Ptr(v)
		case "birthday":
			u.Birthday = directory.Ptr(v)
		case "title":
			u.Title = directory.Ptr(v)
		case "team", "team_name":
			u.TeamName = directory.Ptr(v)
		case "virtual_team", "virtual_teams":
			u.VirtualTeams = directory.Ptr(splitList(v))
		case "legal_manager":
			u.LegalManager = directory.Ptr(v)
		case "functional_manager":
			u.FunctionalManager = directory.Ptr(v)
		case "site":
			u.Site = directory.Ptr(strings.ToUpper(v))
		case "external":
			b, err := parseBool(v)
			if err != nil {
				return u, err
			}
			u.External = &b
		case "carry_over_holidays", "carry_over":
			d, err := parseDays(v)
			if err != nil {
				return u, err
			}
			u.CarryOverHolidays = &d
		default:
			return u, fmt.Errorf("unknown person field %q", k)
		}
	}
	return u, nil
}

func (a *App) updatePerson(ctx context.Context, name string) error {
	store, err := a.session.Directory(ctx)
	if err != nil {
		return err
	}
	if _, ok := store.PersonByName(name); !ok {
		return notFound("person", name)
	}

	fields, err := a.assignments()
	if err != nil {
		return err
	}
	u, err := personUpdate(fields)
	if err != nil {
		return err
	}
	if u.Site != nil {
		if _, ok := accrual.PolicyFor(*u.Site); !ok {
			a.logger.Warn(ctx, "unknown site, ERL rules apply", "site", *u.Site)
		}
	}

	if !store.UpdatePerson(name, u) {
		return fmt.Errorf("%w: person %q not updated", ErrRejected, name)
	}
	a.printf("Updated person %s\n", name)
	return nil
}

func (a *App) removePerson(ctx context.Context, name string) error {
	store, err := a.session.Directory(ctx)
	if err != nil {
		return err
	}
	if !store.RemovePerson(name) {
		return notFound("person", name)
	}
	a.printf("Removed person %s\n", name)
	return nil
}

func (a *App) assignments() (map[string]string, error) {
	lines, err := GetAssignments(a.reader, a.out)
	if err != nil {
		return nil, err
	}
	return ParseAssignments(lines)
}
