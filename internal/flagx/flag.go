// Package flagx helps layered config parsing: each config component parses
// only the flags it owns, so several flag sets can coexist on one command
// line without tripping over each other's arguments.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// Filter returns the subset of args consisting of the allowed flags and
// their values. Both "-f value" and "-f=value" forms are supported.
func Filter(args []string, allowed ...string) []string {
	set := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		set[name] = struct{}{}
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := set[name]; ok {
				out = append(out, arg)
			}
			continue
		}

		if _, ok := set[arg]; ok {
			out = append(out, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				out = append(out, args[i+1])
				i++
			}
		}
	}
	return out
}

// Positional returns the command line starting at the first argument
// that is not a flag or a flag value. Arguments after that point are
// returned verbatim, so a value that happens to start with "-" (such as
// a note reference) is preserved.
func Positional(args []string) []string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") {
			if !strings.Contains(arg, "=") && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
			}
			continue
		}
		return args[i:]
	}
	return nil
}

// ConfigFile extracts the config file path given via -c or -config,
// ignoring every other argument. Returns "" when neither flag is present.
func ConfigFile() string {
	var path string

	args := Filter(os.Args[1:], "-c", "-config")

	fs := flag.NewFlagSet("configfile", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(args)

	return path
}
