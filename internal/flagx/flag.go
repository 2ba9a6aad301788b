// Package flagx lets several packages read their own flags from one command
// line without tripping over each other's definitions.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs returns the subset of args that belong to allowedFlags, keeping
// each flag's value. Both "-f value" and "-f=value" forms are recognised; a
// following argument that starts with "-" is never taken as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	own, _ := SplitArgs(args, allowedFlags)
	return own
}

// SplitArgs is FilterArgs that also returns the remaining arguments, in
// order, for another parser such as a command tree.
func SplitArgs(args []string, allowedFlags []string) (own, rest []string) {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	own = make([]string, 0, len(args))
	rest = make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				own = append(own, arg)
			} else {
				rest = append(rest, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			rest = append(rest, arg)
			continue
		}

		own = append(own, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			own = append(own, args[i+1])
			i++
		}
	}

	return own, rest
}

// ConfigFileFlag extracts the config file path given with -c or -config
// (single or double dash). It returns "" when neither is present.
func ConfigFileFlag(args []string) string {
	var config string

	filtered := FilterArgs(args, []string{"-c", "-config", "--c", "--config"})

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.SetOutput(discard{})
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(filtered)

	return config
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
