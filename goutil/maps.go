package goutil

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Entries returns m as KEY=VALUE pairs sorted by key, the format exec.Cmd.Env
// expects.
func Entries(m map[string]string) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)

	r := make([]string, 0, len(keys))
	for _, name := range keys {
		r = append(r, fmt.Sprintf("%s=%s", name, m[name]))
	}
	return r
}
