package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/teamdb/internal/directory"
)

func (a *App) Projects(ctx context.Context) error {
	store, err := a.session.Directory(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLEAD")
	for _, p := range store.Projects() {
		fmt.Fprintf(tw, "%s\t%s\n", p.Name, p.ProjectLead)
	}
	return tw.Flush()
}

func (a *App) addProject(ctx context.Context) error {
	store, err := a.session.Directory(ctx)
	if err != nil {
		return err
	}

	var p directory.Project
	if p.Name, err = a.ask("Name"); err != nil {
		return err
	}
	if p.ProjectLead, err = a.ask("Project lead (optional)"); err != nil {
		return err
	}

	if !store.AddProject(p) {
		return fmt.Errorf("%w: project %q already exists or has no name", ErrRejected, p.Name)
	}
	a.printf("Added project %s\n", p.Name)
	return nil
}

func projectUpdate(fields map[string]string) (directory.ProjectUpdate, error) {
	var u directory.ProjectUpdate
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = directory.Ptr(v)
		case "project_lead", "lead":
			u.ProjectLead = directory.Ptr(v)
		default:
			return u, fmt.Errorf("unknown project field %q", k)
		}
	}
	return u, nil
}

func (a *App) updateProject(ctx context.Context, name string) error {
	store, err := a.session.Directory(ctx)
	if err != nil {
		return err
	}
	if _, ok := store.Project(name); !ok {
		return notFound("project", name)
	}

	fields, err := a.assignments()
	if err != nil {
		return err
	}
	u, err := projectUpdate(fields)
	if err != nil {
		return err
	}
	if !store.UpdateProject(name, u) {
		return fmt.Errorf("%w: project %q not updated", ErrRejected, name)
	}
	a.printf("Updated project %s\n", name)
	return nil
}

func (a *App) removeProject(ctx context.Context, name string) error {
	store, err := a.session.Directory(ctx)
	if err != nil {
		return err
	}
	if !store.RemoveProject(name) {
		return notFound("project", name)
	}
	a.printf("Removed project %s\n", name)
	return nil
}

// Add dispatches "add person|team|project".
func (a *App) Add(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("add person|team|project")
	}
	switch args[0] {
	case "person":
		return a.addPerson(ctx)
	case "team":
		return a.addTeam(ctx)
	case "project":
		return a.addProject(ctx)
	}
	return usage("add person|team|project")
}

// Update dispatches "update person|team|project <name>".
func (a *App) Update(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("update person|team|project <name>")
	}
	name := strings.Join(args[1:], " ")
	switch args[0] {
	case "person":
		return a.updatePerson(ctx, name)
	case "team":
		return a.updateTeam(ctx, name)
	case "project":
		return a.updateProject(ctx, name)
	}
	return usage("update person|team|project <name>")
}

// Remove dispatches "remove person|team|project <name>".
func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("remove person|team|project <name>")
	}
	name := strings.Join(args[1:], " ")
	switch args[0] {
	case "person":
		return a.removePerson(ctx, name)
	case "team":
		return a.removeTeam(ctx, name)
	case "project":
		return a.removeProject(ctx, name)
	}
	return usage("remove person|team|project <name>")
}
