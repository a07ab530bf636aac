// Package flagx lets the config loaders of a binary each parse only the
// flags they define, out of one shared os.Args.
package flagx

import (
	"flag"
	"os"
	"strings"
)

func flagName(arg string) (name, value string, hasValue bool) {
	name = strings.TrimLeft(arg, "-")
	name, value, hasValue = strings.Cut(name, "=")
	return name, value, hasValue
}

// filter keeps the arguments naming a flag in known. The map value tells
// whether the flag is boolean, in which case it never consumes the next
// argument.
func filter(args []string, known map[string]bool) []string {
	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, inline := flagName(arg)
		isBool, ok := known[name]
		if !ok {
			continue
		}
		filtered = append(filtered, arg)

		if inline || isBool {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// FilterArgs returns the arguments that set one of the named flags, with
// their values. Names are given without dashes; "-c v", "--c v", "-c=v"
// and "--c=v" all match "c".
func FilterArgs(args []string, names ...string) []string {
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[strings.TrimLeft(n, "-")] = false
	}
	return filter(args, known)
}

// ParseKnown parses into fs only the arguments naming flags fs defines.
func ParseKnown(fs *flag.FlagSet, args []string) error {
	known := map[string]bool{}
	fs.VisitAll(func(f *flag.Flag) {
		b, ok := f.Value.(interface{ IsBoolFlag() bool })
		known[f.Name] = ok && b.IsBoolFlag()
	})
	return fs.Parse(filter(args, known))
}

// ConfigPath returns the JSON config file named by -c or -config, or "".
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = ParseKnown(fs, args)

	return path
}

// JsonConfigFlags is ConfigPath applied to the process arguments.
func JsonConfigFlags() string {
	return ConfigPath(os.Args[1:])
}
