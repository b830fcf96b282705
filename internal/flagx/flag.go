// Package flagx helps several flag sets share one command line.
//
// Each config layer parses only the flags it owns, so an unknown flag meant
// for another layer never aborts parsing.
package flagx

import (
	"flag"
	"strings"
)

// flagName strips one or two leading dashes and any "=value" suffix.
// It returns "" when arg is not a flag.
func flagName(arg string) string {
	if len(arg) < 2 || arg[0] != '-' {
		return ""
	}
	name := strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
	if i := strings.IndexByte(name, '='); i >= 0 {
		name = name[:i]
	}
	return name
}

// FilterArgs keeps only the flags listed in names, together with their
// values. Names are given without dashes; both -name and --name spellings
// are accepted, as with the standard flag package.
//
// Supported forms:
//
//	-c conf.json
//	--config=conf.json
//
// A token starting with "-" is never consumed as a value.
func FilterArgs(args []string, names ...string) []string {
	allowed := make(map[string]struct{}, len(names))
	for _, n := range names {
		allowed[strings.TrimLeft(n, "-")] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}

		name := flagName(arg)
		if name == "" {
			continue
		}
		if _, ok := allowed[name]; !ok {
			continue
		}

		filtered = append(filtered, arg)
		if strings.Contains(arg, "=") {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigPath returns the JSON config path given via -c or -config, or ""
// when neither is present. The last occurrence wins.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.SetOutput(discard{})
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, "c", "config"))

	return path
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
