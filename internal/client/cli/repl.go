package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Teams(ctx context.Context) error
	Team(ctx context.Context, args []string) error
	Projects(ctx context.Context) error
	Add(ctx context.Context, args []string) error
	Update(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Holidays(ctx context.Context, args []string) error
	Pending(ctx context.Context) error
	Save(ctx context.Context, args []string) error
	Discard(ctx context.Context) error
	Reload(ctx context.Context) error
	ClearCache(ctx context.Context) error
	ImportAbsence(ctx context.Context, args []string) error
	Server(ctx context.Context) error
	Login(ctx context.Context) error
	RequestToken(ctx context.Context) error
	Status(ctx context.Context) error
}

const helpText = `Available commands:
  (l)ist [name|title|team_name|site|legal_manager]   list people
  show <person>                                      show one person
  teams | team <name>                                list teams or show one
  projects                                           list projects
  add person|team|project                            add an entity
  update person|team|project <name>                  change fields of an entity
  remove person|team|project <name>                  remove an entity
  holidays <person>                                  holiday entitlement and urgency
  import-absence <file>                              merge an absence feed
  pending | save [force] | discard                   unsaved changes
  reload | clearcache                                reload the directory
  server | login | token | status                    server settings
  exit | quit`

// runREPL starts a simple read–eval–print loop for the teamdb CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches the remaining tokens to methods on a. The loop exits on EOF
// or when the user types "exit" or "quit".
//
// Command errors are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("teamdb %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			printlnFn(helpText)
		case "l", "list":
			cmdErr = a.List(ctx, args)
		case "show":
			cmdErr = a.Show(ctx, args)
		case "teams":
			cmdErr = a.Teams(ctx)
		case "team":
			cmdErr = a.Team(ctx, args)
		case "projects":
			cmdErr = a.Projects(ctx)
		case "add":
			cmdErr = a.Add(ctx, args)
		case "update":
			cmdErr = a.Update(ctx, args)
		case "remove":
			cmdErr = a.Remove(ctx, args)
		case "holidays":
			cmdErr = a.Holidays(ctx, args)
		case "import-absence":
			cmdErr = a.ImportAbsence(ctx, args)
		case "pending":
			cmdErr = a.Pending(ctx)
		case "save":
			cmdErr = a.Save(ctx, args)
		case "discard":
			cmdErr = a.Discard(ctx)
		case "reload":
			cmdErr = a.Reload(ctx)
		case "clearcache":
			cmdErr = a.ClearCache(ctx)
		case "server":
			cmdErr = a.Server(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "token":
			cmdErr = a.RequestToken(ctx)
		case "status":
			cmdErr = a.Status(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("error:", cmdErr)
		}
		if err != nil {
			return
		}
	}
}
