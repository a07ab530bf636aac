package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/teamdb/internal/directory"
)

// Teams lists teams in the order they were defined.
func (a *App) Teams(ctx context.Context) error {
	store, err := a.session.Directory(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSHORT\tPARENT\tMEMBERS\tVIRTUAL")
	for _, t := range store.AllTeams() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%v\n", t.Name, t.ShortName, t.ParentTeam, len(store.TeamMembers(t.Name)), t.Virtual)
	}
	return tw.Flush()
}

// Team prints one team and its members.
func (a *App) Team(ctx context.Context, args []string) error {
	name := strings.Join(args, " ")
	if name == "" {
		return usage("team <name>")
	}

	store, err := a.session.Directory(ctx)
	if err != nil {
		return err
	}
	t, ok := store.Team(name)
	if !ok {
		return notFound("team", name)
	}

	a.printf("Team: %s\n", t.Name)
	if t.ShortName != "" {
		a.printf("Short name: %s\n", t.ShortName)
	}
	if t.ParentTeam != "" {
		a.printf("Parent team: %s\n", t.ParentTeam)
	}
	if t.FunctionalManager != "" {
		a.printf("Functional manager: %s\n", t.FunctionalManager)
	}
	if t.ProductOwner != "" {
		a.printf("Product owner: %s\n", t.ProductOwner)
	}
	if t.Virtual {
		a.println("Virtual: true")
	}
	a.printf("Members: %s\n", strings.Join(store.TeamMembers(t.Name), ", "))
	return nil
}

func (a *App) addTeam(ctx context.Context) error {
	store, err := a.session.Directory(ctx)
	if err != nil {
		return err
	}

	var t directory.Team
	if t.Name, err = a.ask("Name"); err != nil {
		return err
	}
	suggested := directory.SuggestShortName(t.Name)
	if t.ShortName, err = a.ask(fmt.Sprintf("Short name (empty for %s)", suggested)); err != nil {
		return err
	}
	if t.ShortName == "" {
		t.ShortName = suggested
	}
	if t.ParentTeam, err = a.ask("Parent team (optional)"); err != nil {
		return err
	}
	if t.FunctionalManager, err = a.ask("Functional manager (optional)"); err != nil {
		return err
	}
	if t.ProductOwner, err = a.ask("Product owner (optional)"); err != nil {
		return err
	}
	if t.Virtual, err = GetYesNo(a.reader, "Virtual", false, a.out); err != nil {
		return err
	}

	if !store.AddTeam(t) {
		return fmt.Errorf("%w: team %q already exists or has no name", ErrRejected, t.Name)
	}
	a.printf("Added team %s\n", t.Name)
	return nil
}

func teamUpdate(fields map[string]string) (directory.TeamUpdate, error) {
	var u directory.TeamUpdate
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = directory.Ptr(v)
		case "short_name":
			u.ShortName = directory.Ptr(v)
		case "functional_manager":
			u.FunctionalManager = directory.Ptr(v)
		case "product_owner":
			u.ProductOwner = directory.Ptr(v)
		case "parent_team":
			u.ParentTeam = directory.Ptr(v)
		case "virtual":
			b, err := parseBool(v)
			if err != nil {
				return u, err
			}
			u.Virtual = &b
		default:
			return u, fmt.Errorf("unknown team field %q", k)
		}
	}
	return u, nil
}

func (a *App) updateTeam(ctx context.Context, name string) error {
	store, err := a.session.Directory(ctx)
	if err != nil {
		return err
	}
	if _, ok := store.Team(name); !ok {
		return notFound("team", name)
	}

	fields, err := a.assignments()
	if err != nil {
		return err
	}
	u, err := teamUpdate(fields)
	if err != nil {
		return err
	}
	if !store.UpdateTeam(name, u) {
		return fmt.Errorf("%w: team %q not updated", ErrRejected, name)
	}
	a.printf("Updated team %s\n", name)
	return nil
}

func (a *App) removeTeam(ctx context.Context, name string) error {
	store, err := a.session.Directory(ctx)
	if err != nil {
		return err
	}
	if !store.RemoveTeam(name) {
		return notFound("team", name)
	}
	a.printf("Removed team %s\n", name)
	return nil
}
